package service

import (
	"context"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

// Relevant period labels, chosen by precedence today > week > month >
// upcoming based on which window has at least one due task.
const (
	PeriodToday    = "for today"
	PeriodThisWeek = "for this week"
	PeriodMonth    = "for this month"
	PeriodUpcoming = "upcoming"
)

const dashboardTopN = 5

type TaskCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Done       int `json:"done"`
	Total      int `json:"total"`
}

type Dashboard struct {
	RelevantPeriod    string         `json:"relevantPeriod"`
	TasksDueToday     []TaskListItem `json:"tasksDueToday"`
	TasksDueThisWeek  []TaskListItem `json:"tasksDueThisWeek"`
	TasksDueThisMonth []TaskListItem `json:"tasksDueThisMonth"`
	UpcomingTasks     []TaskListItem `json:"upcomingTasks"`
	Counts            TaskCounts     `json:"counts"`
}

// DashboardService composes the task service and user registry into a
// multi-window summary. Windows are fixed UTC, weeks start on Sunday;
// nothing is cached, every call recomputes from the store.
type DashboardService struct {
	tasks *TaskService
	users *UserService
	now   func() time.Time
}

func NewDashboardService(tasks *TaskService, users *UserService) *DashboardService {
	return &DashboardService{tasks: tasks, users: users, now: time.Now}
}

func (s *DashboardService) GetDashboard(ctx context.Context, externalID string) (*Dashboard, error) {
	if _, err := s.users.GetCurrentUser(ctx, externalID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayEnd := todayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)

	weekStart := todayStart.AddDate(0, 0, -int(todayStart.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7).Add(-time.Nanosecond)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	upcomingFrom := todayStart.AddDate(0, 0, 1)
	upcomingTo := todayStart.AddDate(0, 0, 30)

	today, err := s.window(ctx, externalID, todayStart, todayEnd)
	if err != nil {
		return nil, err
	}
	week, err := s.window(ctx, externalID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	month, err := s.window(ctx, externalID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.window(ctx, externalID, upcomingFrom, upcomingTo)
	if err != nil {
		return nil, err
	}

	counts, err := s.statusCounts(ctx, externalID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		RelevantPeriod:    relevantPeriod(today.TotalCount, week.TotalCount, month.TotalCount),
		TasksDueToday:     today.Items,
		TasksDueThisWeek:  week.Items,
		TasksDueThisMonth: month.Items,
		UpcomingTasks:     upcoming.Items,
		Counts:            counts,
	}, nil
}

func (s *DashboardService) window(ctx context.Context, externalID string, from, to time.Time) (domain.Page[TaskListItem], error) {
	f := repository.TaskFilter{DueFrom: &from, DueTo: &to}
	return s.tasks.GetTasks(ctx, externalID, f, 1, dashboardTopN, ScopeAll)
}

// statusCounts reads TotalCount off three single-item pages, one per
// status, and sums them for the total.
func (s *DashboardService) statusCounts(ctx context.Context, externalID string) (TaskCounts, error) {
	var counts TaskCounts
	for _, st := range []struct {
		status domain.TaskStatus
		target *int
	}{
		{domain.StatusPending, &counts.Pending},
		{domain.StatusInProgress, &counts.InProgress},
		{domain.StatusDone, &counts.Done},
	} {
		status := st.status
		paged, err := s.tasks.GetTasks(ctx, externalID, repository.TaskFilter{Status: &status}, 1, 1, ScopeAll)
		if err != nil {
			return TaskCounts{}, err
		}
		*st.target = paged.TotalCount
	}
	counts.Total = counts.Pending + counts.InProgress + counts.Done
	return counts, nil
}

func relevantPeriod(todayCount, weekCount, monthCount int) string {
	switch {
	case todayCount > 0:
		return PeriodToday
	case weekCount > 0:
		return PeriodThisWeek
	case monthCount > 0:
		return PeriodMonth
	default:
		return PeriodUpcoming
	}
}
