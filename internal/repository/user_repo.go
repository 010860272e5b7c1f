package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// GetByExternalID returns the user with the given external identity, or
// nil when absent. The empty sentinel never matches anything.
func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, nil
	}

	row := r.db.QueryRow(ctx,
		`SELECT id, external_id, name, email, created_at, last_login_at
		 FROM users
		 WHERE external_id = $1`,
		externalID,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, external_id, name, email, created_at, last_login_at
		 FROM users
		 WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

// Create inserts a new user. Two concurrent provisioning calls can race on
// the external_id unique index; on a unique violation the existing row is
// re-read and returned, making the insert idempotent under contention.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, external_id, name, email, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.ExternalID, u.Name, u.Email, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			existing, readErr := r.GetByExternalID(ctx, u.ExternalID)
			if readErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET name = $1, email = $2, last_login_at = $3 WHERE id = $4`,
		u.Name, u.Email, u.LastLoginAt, u.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search returns users whose name or email contains the search term
// (case-insensitive), ordered by name ascending.
func (r *UserRepository) Search(ctx context.Context, search string, page, pageSize int) (domain.Page[domain.User], error) {
	page, pageSize = domain.NormalizePaging(page, pageSize)

	where := ""
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		where = `WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+s+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total); err != nil {
		return domain.Page[domain.User]{}, err
	}

	n := len(args)
	listArgs := append(args, pageSize, (page-1)*pageSize)
	rows, err := r.db.Query(ctx,
		`SELECT id, external_id, name, email, created_at, last_login_at
		 FROM users `+where+`
		 ORDER BY name ASC
		 LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		listArgs...,
	)
	if err != nil {
		return domain.Page[domain.User]{}, err
	}
	defer rows.Close()

	var items []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.ExternalID, &u.Name, &u.Email, &u.CreatedAt, &u.LastLoginAt); err != nil {
			return domain.Page[domain.User]{}, err
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.User]{}, err
	}

	return domain.Page[domain.User]{Items: items, TotalCount: total, Page: page, PageSize: pageSize}, nil
}

// TouchLastLogin stamps the last authenticated contact; errors are not
// fatal to the caller and surface for logging only.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
	return err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.ExternalID, &u.Name, &u.Email, &u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
