package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"taskboard/internal/directory"
	"taskboard/internal/domain"
	"taskboard/internal/repository"

	"github.com/google/uuid"
)

// In-memory stores backing the service tests. They mirror the SQL
// repositories' observable behavior: nil for missing rows, inclusive due
// bounds, newest-first ordering.

type fakeUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (s *fakeUserStore) GetByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	for _, u := range s.users {
		if u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range s.users {
		if existing.ExternalID == u.ExternalID {
			cp := *existing
			return &cp, nil
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	out := cp
	return &out, nil
}

func (s *fakeUserStore) Update(_ context.Context, u *domain.User) error {
	if _, ok := s.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := s.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (s *fakeUserStore) Search(_ context.Context, search string, page, pageSize int) (domain.Page[domain.User], error) {
	page, pageSize = domain.NormalizePaging(page, pageSize)

	var matched []domain.User
	needle := strings.ToLower(search)
	for _, u := range s.users {
		if needle == "" ||
			strings.Contains(strings.ToLower(u.Name), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) {
			matched = append(matched, *u)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return domain.Page[domain.User]{Items: matched[start:end], TotalCount: total, Page: page, PageSize: pageSize}, nil
}

func (s *fakeUserStore) add(externalID, name, email string) *domain.User {
	u := &domain.User{
		ID:         uuid.New(),
		ExternalID: externalID,
		Name:       name,
		Email:      email,
		CreatedAt:  time.Now().UTC(),
	}
	s.users[u.ID] = u
	return u
}

type fakeTaskStore struct {
	tasks map[uuid.UUID]*domain.Task
	users *fakeUserStore
}

func newFakeTaskStore(users *fakeUserStore) *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task), users: users}
}

func matchesFilter(t *domain.Task, f repository.TaskFilter) bool {
	if s := strings.TrimSpace(f.Search); s != "" {
		needle := strings.ToLower(s)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.DueFrom != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueFrom)) {
		return false
	}
	if f.DueTo != nil && (t.DueDate == nil || t.DueDate.After(*f.DueTo)) {
		return false
	}
	return true
}

func (s *fakeTaskStore) loaded(t *domain.Task) *domain.Task {
	cp := *t
	if cb, ok := s.users.users[t.CreatedByUserID]; ok {
		cp.CreatedBy = cb.Summary()
	}
	if t.AssignedToUserID != nil {
		if au, ok := s.users.users[*t.AssignedToUserID]; ok {
			cp.AssignedTo = au.Summary()
		}
	}
	return &cp
}

func (s *fakeTaskStore) visible(userID uuid.UUID, f repository.TaskFilter) []domain.Task {
	var out []domain.Task
	for _, t := range s.tasks {
		if !t.IsOwnerOrAssignee(userID) {
			continue
		}
		if !matchesFilter(t, f) {
			continue
		}
		out = append(out, *s.loaded(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *fakeTaskStore) GetTasksForUser(_ context.Context, userID uuid.UUID, f repository.TaskFilter, page, pageSize int) (domain.Page[domain.Task], error) {
	page, pageSize = domain.NormalizePaging(page, pageSize)
	all := s.visible(userID, f)

	total := len(all)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return domain.Page[domain.Task]{Items: all[start:end], TotalCount: total, Page: page, PageSize: pageSize}, nil
}

func (s *fakeTaskStore) CountForUser(_ context.Context, userID uuid.UUID, f repository.TaskFilter) (int, error) {
	return len(s.visible(userID, f)), nil
}

func (s *fakeTaskStore) CountCreatedForUser(_ context.Context, userID uuid.UUID, f repository.TaskFilter) (int, error) {
	count := 0
	for _, t := range s.tasks {
		if t.CreatedByUserID == userID && matchesFilter(t, f) {
			count++
		}
	}
	return count, nil
}

func (s *fakeTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	return s.loaded(t), nil
}

func (s *fakeTaskStore) Create(_ context.Context, t *domain.Task) error {
	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

func (s *fakeTaskStore) Update(_ context.Context, t *domain.Task) error {
	if _, ok := s.tasks[t.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *t
	cp.CreatedBy, cp.AssignedTo = nil, nil
	s.tasks[t.ID] = &cp
	return nil
}

func (s *fakeTaskStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}

type fakeNotificationStore struct {
	notifications []*domain.Notification
	seq           time.Time
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{seq: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *fakeNotificationStore) Create(_ context.Context, n *domain.Notification) error {
	s.seq = s.seq.Add(time.Second)
	n.CreatedAt = s.seq
	cp := *n
	s.notifications = append(s.notifications, &cp)
	return nil
}

func (s *fakeNotificationStore) GetByUser(_ context.Context, userID uuid.UUID, page, pageSize int) (domain.Page[domain.Notification], error) {
	page, pageSize = domain.NormalizePaging(page, pageSize)

	var all []domain.Notification
	for _, n := range s.notifications {
		if n.RecipientUserID == userID {
			all = append(all, *n)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return domain.Page[domain.Notification]{Items: all[start:end], TotalCount: total, Page: page, PageSize: pageSize}, nil
}

func (s *fakeNotificationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	for _, n := range s.notifications {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeNotificationStore) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range s.notifications {
		if n.RecipientUserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *fakeNotificationStore) MarkAsRead(_ context.Context, id uuid.UUID) error {
	for _, n := range s.notifications {
		if n.ID == id && !n.IsRead {
			now := time.Now().UTC()
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

func (s *fakeNotificationStore) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	for _, n := range s.notifications {
		if n.RecipientUserID == userID && !n.IsRead {
			now := time.Now().UTC()
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

// stubDirectory returns a fixed profile per external id.
type stubDirectory struct {
	profiles map[string]directory.Profile
	err      error
}

func (d *stubDirectory) Lookup(_ context.Context, externalID string) (directory.Profile, error) {
	if d.err != nil {
		return directory.Profile{}, d.err
	}
	return d.profiles[externalID], nil
}

// testEnv bundles the fakes and services most tests need.
type testEnv struct {
	userStore         *fakeUserStore
	taskStore         *fakeTaskStore
	notificationStore *fakeNotificationStore

	users         *UserService
	tasks         *TaskService
	notifications *NotificationService
	dashboard     *DashboardService
}

func newTestEnv(now time.Time) *testEnv {
	userStore := newFakeUserStore()
	taskStore := newFakeTaskStore(userStore)
	notificationStore := newFakeNotificationStore()

	users := NewUserService(userStore, &stubDirectory{profiles: map[string]directory.Profile{}})
	users.now = func() time.Time { return now }

	notifications := NewNotificationService(notificationStore, userStore, nil)

	tasks := NewTaskService(taskStore, users, notifications)
	tasks.now = func() time.Time { return now }

	dashboard := NewDashboardService(tasks, users)
	dashboard.now = func() time.Time { return now }

	return &testEnv{
		userStore:         userStore,
		taskStore:         taskStore,
		notificationStore: notificationStore,
		users:             users,
		tasks:             tasks,
		notifications:     notifications,
		dashboard:         dashboard,
	}
}
