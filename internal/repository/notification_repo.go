package repository

import (
	"context"
	"errors"

	"taskboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification; is_read and created_at come from column
// defaults and are read back.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO notifications (id, recipient_user_id, related_task_id, title, message, type)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING is_read, created_at`,
		n.ID, n.RecipientUserID, n.RelatedTaskID, n.Title, n.Message, n.Type,
	).Scan(&n.IsRead, &n.CreatedAt)
}

// GetByUser returns the recipient's notifications, newest first.
func (r *NotificationRepository) GetByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) (domain.Page[domain.Notification], error) {
	page, pageSize = domain.NormalizePaging(page, pageSize)

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_user_id = $1`, userID,
	).Scan(&total); err != nil {
		return domain.Page[domain.Notification]{}, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, recipient_user_id, related_task_id, title, message, type, is_read, created_at, read_at
		 FROM notifications
		 WHERE recipient_user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return domain.Page[domain.Notification]{}, err
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.RecipientUserID, &n.RelatedTaskID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt, &n.ReadAt); err != nil {
			return domain.Page[domain.Notification]{}, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Notification]{}, err
	}

	return domain.Page[domain.Notification]{Items: items, TotalCount: total, Page: page, PageSize: pageSize}, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.QueryRow(ctx,
		`SELECT id, recipient_user_id, related_task_id, title, message, type, is_read, created_at, read_at
		 FROM notifications
		 WHERE id = $1`,
		id,
	).Scan(&n.ID, &n.RecipientUserID, &n.RelatedTaskID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt, &n.ReadAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_user_id = $1 AND NOT is_read`, userID,
	).Scan(&count)
	return count, err
}

// MarkAsRead flips the read flag once; already-read or missing rows are a
// no-op.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true, read_at = now() WHERE id = $1 AND NOT is_read`, id,
	)
	return err
}

// MarkAllAsRead marks every unread notification for the user in a single
// statement.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true, read_at = now() WHERE recipient_user_id = $1 AND NOT is_read`, userID,
	)
	return err
}
