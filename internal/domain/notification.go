package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationGeneric           NotificationType = "Generic"
	NotificationTaskAssigned      NotificationType = "TaskAssigned"
	NotificationTaskDueSoon       NotificationType = "TaskDueSoon"
	NotificationTaskStatusChanged NotificationType = "TaskStatusChanged"
)

// ParseNotificationType validates a type string coming off the wire.
func ParseNotificationType(s string) (NotificationType, error) {
	switch NotificationType(s) {
	case NotificationGeneric, NotificationTaskAssigned, NotificationTaskDueSoon, NotificationTaskStatusChanged:
		return NotificationType(s), nil
	}
	return "", fmt.Errorf("%w: invalid notification type %q", ErrValidation, s)
}

// Notification is append-only except for the read flag: once created the
// only mutation is flipping IsRead/ReadAt.
type Notification struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	RecipientUserID uuid.UUID        `db:"recipient_user_id" json:"recipientUserId"`
	RelatedTaskID   *uuid.UUID       `db:"related_task_id" json:"relatedTaskId,omitempty"`
	Title           string           `db:"title" json:"title"`
	Message         string           `db:"message" json:"message,omitempty"`
	Type            NotificationType `db:"type" json:"type"`
	IsRead          bool             `db:"is_read" json:"isRead"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	ReadAt          *time.Time       `db:"read_at" json:"readAt,omitempty"`
}
