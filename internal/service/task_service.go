package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/logger"
	"taskboard/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

// Task scopes select what "my tasks" means; anything else behaves as all.
const (
	ScopeCreated  = "created"
	ScopeAssigned = "assigned"
	ScopeAll      = "all"
)

// TaskStore is the persistence surface for tasks. Implemented by
// repository.TaskRepository.
type TaskStore interface {
	GetTasksForUser(ctx context.Context, userID uuid.UUID, f repository.TaskFilter, page, pageSize int) (domain.Page[domain.Task], error)
	CountForUser(ctx context.Context, userID uuid.UUID, f repository.TaskFilter) (int, error)
	CountCreatedForUser(ctx context.Context, userID uuid.UUID, f repository.TaskFilter) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// AssignmentNotifier is notified after a task gains an assignee. Delivery
// is best effort; failures never fail the task operation.
type AssignmentNotifier interface {
	CreateForTaskAssignment(ctx context.Context, t *domain.Task) (*NotificationDTO, error)
}

// TaskListItem is the list projection with the computed overdue flag.
type TaskListItem struct {
	ID         uuid.UUID           `json:"id"`
	Title      string              `json:"title"`
	Status     domain.TaskStatus   `json:"status"`
	DueDate    *time.Time          `json:"dueDate,omitempty"`
	IsOverdue  bool                `json:"isOverdue"`
	AssignedTo *domain.UserSummary `json:"assignedTo,omitempty"`
	CreatedBy  *domain.UserSummary `json:"createdBy,omitempty"`
}

// TaskDetail adds description and timestamps to the list projection.
type TaskDetail struct {
	TaskListItem
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// TaskInput is the create/update payload. An empty AssignedToExternalID
// means unassigned (and clears the assignment on update).
type TaskInput struct {
	Title                string
	Description          string
	DueDate              *time.Time
	Status               domain.TaskStatus
	AssignedToExternalID string
}

// TaskService translates an authenticated external identity into
// authorization decisions and scoped views over the task store.
type TaskService struct {
	tasks    TaskStore
	users    *UserService
	notifier AssignmentNotifier
	now      func() time.Time
}

func NewTaskService(tasks TaskStore, users *UserService, notifier AssignmentNotifier) *TaskService {
	return &TaskService{tasks: tasks, users: users, notifier: notifier, now: time.Now}
}

// GetTasks returns the caller's tasks (creator or assignee), post-filtered
// in memory by scope. The total count reflects the scope: creator-scoped
// counts count only created tasks, everything else uses the unscoped
// creator-or-assignee count.
func (s *TaskService) GetTasks(ctx context.Context, externalID string, f repository.TaskFilter, page, pageSize int, scope string) (domain.Page[TaskListItem], error) {
	caller, err := s.users.ProvisionCurrentUser(ctx, externalID)
	if err != nil {
		return domain.Page[TaskListItem]{}, err
	}

	paged, err := s.tasks.GetTasksForUser(ctx, caller.ID, f, page, pageSize)
	if err != nil {
		return domain.Page[TaskListItem]{}, err
	}

	items := paged.Items
	switch {
	case strings.EqualFold(scope, ScopeCreated):
		items = filterTasks(items, func(t *domain.Task) bool { return t.CreatedByUserID == caller.ID })
	case strings.EqualFold(scope, ScopeAssigned):
		items = filterTasks(items, func(t *domain.Task) bool {
			return t.AssignedToUserID != nil && *t.AssignedToUserID == caller.ID
		})
	}

	var total int
	if strings.EqualFold(scope, ScopeCreated) {
		total, err = s.tasks.CountCreatedForUser(ctx, caller.ID, f)
	} else {
		total, err = s.tasks.CountForUser(ctx, caller.ID, f)
	}
	if err != nil {
		return domain.Page[TaskListItem]{}, err
	}

	now := s.now()
	dtos := make([]TaskListItem, 0, len(items))
	for i := range items {
		dtos = append(dtos, s.toListItem(&items[i], now))
	}

	return domain.Page[TaskListItem]{
		Items:      dtos,
		TotalCount: total,
		Page:       paged.Page,
		PageSize:   paged.PageSize,
	}, nil
}

// GetByID fetches a task the caller may see. A missing task is NotFound;
// a task the caller neither created nor is assigned to is Unauthorized,
// checked in that order.
func (s *TaskService) GetByID(ctx context.Context, externalID string, taskID uuid.UUID) (*TaskDetail, error) {
	_, task, err := s.fetchAuthorized(ctx, externalID, taskID)
	if err != nil {
		return nil, err
	}
	return s.toDetail(task), nil
}

// Create persists a new task for the caller. Status always starts Pending
// regardless of input; an assignee external id must resolve to a known
// user.
func (s *TaskService) Create(ctx context.Context, externalID string, in TaskInput) (*TaskDetail, error) {
	if err := validateTaskInput(in); err != nil {
		return nil, err
	}

	caller, err := s.users.ProvisionCurrentUser(ctx, externalID)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:              uuid.New(),
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		Status:          domain.StatusPending,
		DueDate:         in.DueDate,
		CreatedByUserID: caller.ID,
		CreatedAt:       s.now().UTC(),
	}

	if in.AssignedToExternalID != "" {
		assignee, err := s.users.GetUserSummaryByExternalID(ctx, in.AssignedToExternalID)
		if err != nil {
			return nil, err
		}
		if assignee == nil {
			return nil, fmt.Errorf("%w: assigned user not found", domain.ErrValidation)
		}
		task.AssignedToUserID = &assignee.ID
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, fmt.Errorf("%w: referenced user does not exist", domain.ErrConflict)
		}
		return nil, err
	}

	created, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		// The row vanished between the insert and the re-read.
		return nil, fmt.Errorf("%w: task", domain.ErrNotFound)
	}

	if created.AssignedTo != nil {
		s.notifyAssignment(ctx, created)
	}
	return s.toDetail(created), nil
}

// Update overwrites title, description, due date and status. A present
// assignee external id re-resolves the assignment; an absent one clears
// it.
func (s *TaskService) Update(ctx context.Context, externalID string, taskID uuid.UUID, in TaskInput) (*TaskDetail, error) {
	if err := validateTaskInput(in); err != nil {
		return nil, err
	}

	_, task, err := s.fetchAuthorized(ctx, externalID, taskID)
	if err != nil {
		return nil, err
	}

	previousAssignee := task.AssignedToUserID

	task.Title = strings.TrimSpace(in.Title)
	task.Description = strings.TrimSpace(in.Description)
	task.DueDate = in.DueDate
	task.Status = in.Status
	now := s.now().UTC()
	task.UpdatedAt = &now

	if in.AssignedToExternalID != "" {
		assignee, err := s.users.GetUserSummaryByExternalID(ctx, in.AssignedToExternalID)
		if err != nil {
			return nil, err
		}
		if assignee == nil {
			return nil, fmt.Errorf("%w: assigned user not found", domain.ErrValidation)
		}
		task.AssignedToUserID = &assignee.ID
	} else {
		task.AssignedToUserID = nil
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	updated, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: task", domain.ErrNotFound)
	}

	if updated.AssignedTo != nil && (previousAssignee == nil || *previousAssignee != updated.AssignedTo.ID) {
		s.notifyAssignment(ctx, updated)
	}
	return s.toDetail(updated), nil
}

// UpdateStatus sets only the status and stamps updatedAt.
func (s *TaskService) UpdateStatus(ctx context.Context, externalID string, taskID uuid.UUID, status domain.TaskStatus) (*TaskDetail, error) {
	_, task, err := s.fetchAuthorized(ctx, externalID, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = status
	now := s.now().UTC()
	task.UpdatedAt = &now

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return s.toDetail(task), nil
}

// Delete removes a task the caller may access.
func (s *TaskService) Delete(ctx context.Context, externalID string, taskID uuid.UUID) (bool, error) {
	_, task, err := s.fetchAuthorized(ctx, externalID, taskID)
	if err != nil {
		return false, err
	}
	return s.tasks.Delete(ctx, task.ID)
}

// fetchAuthorized resolves the caller and task and enforces the
// creator-or-assignee rule. NotFound always wins over Unauthorized.
func (s *TaskService) fetchAuthorized(ctx context.Context, externalID string, taskID uuid.UUID) (*domain.User, *domain.Task, error) {
	caller, err := s.users.ProvisionCurrentUser(ctx, externalID)
	if err != nil {
		return nil, nil, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, nil, fmt.Errorf("%w: task", domain.ErrNotFound)
	}
	if !task.IsOwnerOrAssignee(caller.ID) {
		return nil, nil, fmt.Errorf("%w: not creator or assignee of this task", domain.ErrUnauthorized)
	}
	return caller, task, nil
}

func (s *TaskService) notifyAssignment(ctx context.Context, task *domain.Task) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.CreateForTaskAssignment(ctx, task); err != nil {
		logger.Error("assignment notification failed", "task_id", task.ID, "error", err)
	}
}

func (s *TaskService) toListItem(t *domain.Task, now time.Time) TaskListItem {
	return TaskListItem{
		ID:         t.ID,
		Title:      t.Title,
		Status:     t.Status,
		DueDate:    t.DueDate,
		IsOverdue:  t.IsOverdue(now),
		AssignedTo: t.AssignedTo,
		CreatedBy:  t.CreatedBy,
	}
}

func (s *TaskService) toDetail(t *domain.Task) *TaskDetail {
	return &TaskDetail{
		TaskListItem: s.toListItem(t, s.now()),
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func validateTaskInput(in TaskInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if len(title) > 100 {
		return fmt.Errorf("%w: title must be at most 100 characters", domain.ErrValidation)
	}
	if len(strings.TrimSpace(in.Description)) > 500 {
		return fmt.Errorf("%w: description must be at most 500 characters", domain.ErrValidation)
	}
	return nil
}

func filterTasks(tasks []domain.Task, keep func(*domain.Task) bool) []domain.Task {
	out := tasks[:0:0]
	for i := range tasks {
		if keep(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}
