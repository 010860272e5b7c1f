package integration

import (
	"context"
	"testing"

	"taskboard/internal/domain"
	"taskboard/internal/repository"

	"github.com/google/uuid"
)

func TestNotificationRepository_CreateAndReadFlow(t *testing.T) {
	db := connectDB(t)
	users := repository.NewUserRepository(db)
	notifications := repository.NewNotificationRepository(db)
	ctx := context.Background()

	bob := newTestUser("bob")
	if _, err := users.Create(ctx, bob); err != nil {
		t.Fatalf("create user: %v", err)
	}

	var ids []uuid.UUID
	for _, title := range []string{"one", "two", "three"} {
		n := &domain.Notification{
			ID:              uuid.New(),
			RecipientUserID: bob.ID,
			Title:           title,
			Type:            domain.NotificationGeneric,
		}
		if err := notifications.Create(ctx, n); err != nil {
			t.Fatalf("create notification: %v", err)
		}
		if n.IsRead {
			t.Fatal("new notification must be unread")
		}
		if n.CreatedAt.IsZero() {
			t.Fatal("created_at not read back")
		}
		ids = append(ids, n.ID)
	}

	page, err := notifications.GetByUser(ctx, bob.ID, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalCount != 3 {
		t.Fatalf("total = %d, want 3", page.TotalCount)
	}

	count, err := notifications.UnreadCount(ctx, bob.ID)
	if err != nil || count != 3 {
		t.Fatalf("unread = %d err=%v", count, err)
	}

	if err := notifications.MarkAsRead(ctx, ids[0]); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	got, err := notifications.GetByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsRead || got.ReadAt == nil {
		t.Fatalf("notification not marked read: %+v", got)
	}

	// idempotent for read and missing ids
	if err := notifications.MarkAsRead(ctx, ids[0]); err != nil {
		t.Fatalf("repeat mark read: %v", err)
	}
	if err := notifications.MarkAsRead(ctx, uuid.New()); err != nil {
		t.Fatalf("mark missing: %v", err)
	}

	if err := notifications.MarkAllAsRead(ctx, bob.ID); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	count, err = notifications.UnreadCount(ctx, bob.ID)
	if err != nil || count != 0 {
		t.Fatalf("unread after mark all = %d err=%v", count, err)
	}
}
