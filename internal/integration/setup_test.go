package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// connectDB skips the test unless DATABASE_URL is set and applies the
// migrations before returning the pool.
func connectDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)
	return db
}

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

// newTestUser builds a user with a unique external id so reruns against
// the same database never collide.
func newTestUser(name string) *domain.User {
	return &domain.User{
		ID:         uuid.New(),
		ExternalID: "it-" + uuid.NewString(),
		Name:       name,
		Email:      name + "@example.com",
		CreatedAt:  time.Now().UTC(),
	}
}
