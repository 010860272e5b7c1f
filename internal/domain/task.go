package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "InProgress"
	StatusDone       TaskStatus = "Done"
)

// ParseTaskStatus validates a status string coming off the wire.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusPending, StatusInProgress, StatusDone:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
}

// Task is a unit of work. CreatedByUserID is set at creation and immutable;
// AssignedToUserID may be nil (unassigned). DueDate carries date-only
// semantics and is always stored in UTC.
type Task struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	Status           TaskStatus `db:"status" json:"status"`
	DueDate          *time.Time `db:"due_date" json:"dueDate,omitempty"`
	CreatedByUserID  uuid.UUID  `db:"created_by_user_id" json:"createdByUserId"`
	AssignedToUserID *uuid.UUID `db:"assigned_to_user_id" json:"assignedToUserId,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        *time.Time `db:"updated_at" json:"updatedAt,omitempty"`

	// Loaded explicitly by the repository on list/get queries.
	CreatedBy  *UserSummary `json:"createdBy,omitempty"`
	AssignedTo *UserSummary `json:"assignedTo,omitempty"`
}

// IsOwnerOrAssignee is the single authorization rule for task access:
// the caller must be the creator or the current assignee.
func (t *Task) IsOwnerOrAssignee(userID uuid.UUID) bool {
	return t.CreatedByUserID == userID ||
		(t.AssignedToUserID != nil && *t.AssignedToUserID == userID)
}

// IsOverdue reports whether the due date's calendar day precedes today's
// UTC calendar day. A task due today is not overdue. Status is ignored.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	due := t.DueDate.UTC()
	today := now.UTC()
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	nowDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return dueDay.Before(nowDay)
}
