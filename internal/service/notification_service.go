package service

import (
	"context"
	"fmt"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/logger"

	"github.com/google/uuid"
)

// NotificationStore is the persistence surface for notifications.
// Implemented by repository.NotificationRepository.
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) (domain.Page[domain.Notification], error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
}

// Publisher delivers a stored notification to a real-time channel.
// Delivery is fire-and-forget; a failed publish never fails the request.
type Publisher interface {
	Publish(ctx context.Context, n *domain.Notification) error
}

// NoopPublisher is the default when no delivery channel is wired.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *domain.Notification) error { return nil }

// NotificationDTO is the wire shape for notifications.
type NotificationDTO struct {
	ID              uuid.UUID               `json:"id"`
	RecipientUserID uuid.UUID               `json:"recipientUserId"`
	RelatedTaskID   *uuid.UUID              `json:"relatedTaskId,omitempty"`
	Title           string                  `json:"title"`
	Message         string                  `json:"message,omitempty"`
	Type            domain.NotificationType `json:"type"`
	IsRead          bool                    `json:"isRead"`
	CreatedAt       time.Time               `json:"createdAt"`
	ReadAt          *time.Time              `json:"readAt,omitempty"`
}

// CreateNotificationInput carries a caller-supplied notification.
type CreateNotificationInput struct {
	RecipientUserID uuid.UUID
	RelatedTaskID   *uuid.UUID
	Title           string
	Message         string
	Type            domain.NotificationType
}

type NotificationService struct {
	store     NotificationStore
	users     UserStore
	publisher Publisher
}

func NewNotificationService(store NotificationStore, users UserStore, publisher Publisher) *NotificationService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &NotificationService{store: store, users: users, publisher: publisher}
}

// Create persists a notification for a known recipient and hands it to
// the publisher.
func (s *NotificationService) Create(ctx context.Context, in CreateNotificationInput) (*NotificationDTO, error) {
	if err := validateNotification(in.Title, in.Message); err != nil {
		return nil, err
	}

	recipient, err := s.users.GetByID(ctx, in.RecipientUserID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, fmt.Errorf("%w: recipient user", domain.ErrNotFound)
	}

	typ := domain.NotificationGeneric
	if in.Type != "" {
		parsed, err := domain.ParseNotificationType(string(in.Type))
		if err != nil {
			return nil, err
		}
		typ = parsed
	}

	n := &domain.Notification{
		ID:              uuid.New(),
		RecipientUserID: recipient.ID,
		RelatedTaskID:   in.RelatedTaskID,
		Title:           in.Title,
		Message:         in.Message,
		Type:            typ,
	}
	return s.save(ctx, n)
}

// CreateForTaskAssignment builds and stores the templated assignment
// notification for the task's assignee.
func (s *NotificationService) CreateForTaskAssignment(ctx context.Context, task *domain.Task) (*NotificationDTO, error) {
	if task.AssignedToUserID == nil {
		return nil, fmt.Errorf("%w: task has no assignee", domain.ErrValidation)
	}

	message := fmt.Sprintf("You have been assigned task %q", task.Title)
	if task.DueDate != nil {
		message += fmt.Sprintf(" with due date %s.", task.DueDate.UTC().Format("2006-01-02"))
	} else {
		message += "."
	}

	taskID := task.ID
	n := &domain.Notification{
		ID:              uuid.New(),
		RecipientUserID: *task.AssignedToUserID,
		RelatedTaskID:   &taskID,
		Title:           "Assigned task: " + task.Title,
		Message:         message,
		Type:            domain.NotificationTaskAssigned,
	}
	return s.save(ctx, n)
}

func (s *NotificationService) save(ctx context.Context, n *domain.Notification) (*NotificationDTO, error) {
	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, n); err != nil {
		logger.Warn("notification publish failed", "notification_id", n.ID, "error", err)
	}
	return toNotificationDTO(n), nil
}

// GetByUser returns the caller's notifications, newest first.
func (s *NotificationService) GetByUser(ctx context.Context, externalID string, page, pageSize int) (domain.Page[NotificationDTO], error) {
	caller, err := s.resolveCaller(ctx, externalID)
	if err != nil {
		return domain.Page[NotificationDTO]{}, err
	}

	paged, err := s.store.GetByUser(ctx, caller.ID, page, pageSize)
	if err != nil {
		return domain.Page[NotificationDTO]{}, err
	}

	dtos := make([]NotificationDTO, 0, len(paged.Items))
	for i := range paged.Items {
		dtos = append(dtos, *toNotificationDTO(&paged.Items[i]))
	}

	return domain.Page[NotificationDTO]{
		Items:      dtos,
		TotalCount: paged.TotalCount,
		Page:       paged.Page,
		PageSize:   paged.PageSize,
	}, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, externalID string) (int, error) {
	caller, err := s.resolveCaller(ctx, externalID)
	if err != nil {
		return 0, err
	}
	return s.store.UnreadCount(ctx, caller.ID)
}

// MarkAsRead is a no-op when the notification is missing or already read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.store.MarkAsRead(ctx, id)
}

// MarkAllAsRead batch-marks all of the caller's unread notifications.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, externalID string) error {
	caller, err := s.resolveCaller(ctx, externalID)
	if err != nil {
		return err
	}
	return s.store.MarkAllAsRead(ctx, caller.ID)
}

func (s *NotificationService) resolveCaller(ctx context.Context, externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: external id is required", domain.ErrValidation)
	}
	caller, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	return caller, nil
}

func validateNotification(title, message string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if len(title) > 200 {
		return fmt.Errorf("%w: title must be at most 200 characters", domain.ErrValidation)
	}
	if len(message) > 2000 {
		return fmt.Errorf("%w: message must be at most 2000 characters", domain.ErrValidation)
	}
	return nil
}

func toNotificationDTO(n *domain.Notification) *NotificationDTO {
	return &NotificationDTO{
		ID:              n.ID,
		RecipientUserID: n.RecipientUserID,
		RelatedTaskID:   n.RelatedTaskID,
		Title:           n.Title,
		Message:         n.Message,
		Type:            n.Type,
		IsRead:          n.IsRead,
		CreatedAt:       n.CreatedAt,
		ReadAt:          n.ReadAt,
	}
}
