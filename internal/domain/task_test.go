package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIsOverdue_CalendarDayBoundary(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		due  *time.Time
		want bool
	}{
		{"no due date", nil, false},
		{"due yesterday", timePtr(time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)), true},
		{"due today later", timePtr(time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)), false},
		{"due today earlier", timePtr(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)), false},
		{"due tomorrow", timePtr(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := Task{DueDate: tc.due, Status: StatusDone}
			if got := task.IsOverdue(now); got != tc.want {
				t.Fatalf("IsOverdue = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsOverdue_IgnoresStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, status := range []TaskStatus{StatusPending, StatusInProgress, StatusDone} {
		task := Task{DueDate: &due, Status: status}
		if !task.IsOverdue(now) {
			t.Fatalf("status %s: expected overdue", status)
		}
	}
}

func TestIsOwnerOrAssignee(t *testing.T) {
	owner := uuid.New()
	assignee := uuid.New()
	stranger := uuid.New()

	task := Task{CreatedByUserID: owner, AssignedToUserID: &assignee}
	if !task.IsOwnerOrAssignee(owner) {
		t.Fatal("owner must have access")
	}
	if !task.IsOwnerOrAssignee(assignee) {
		t.Fatal("assignee must have access")
	}
	if task.IsOwnerOrAssignee(stranger) {
		t.Fatal("stranger must not have access")
	}

	unassigned := Task{CreatedByUserID: owner}
	if unassigned.IsOwnerOrAssignee(assignee) {
		t.Fatal("nil assignee must not match")
	}
}

func TestParseTaskStatus(t *testing.T) {
	for _, valid := range []string{"Pending", "InProgress", "Done"} {
		if _, err := ParseTaskStatus(valid); err != nil {
			t.Fatalf("ParseTaskStatus(%q): %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "pending", "DONE", "Cancelled"} {
		if _, err := ParseTaskStatus(invalid); err == nil {
			t.Fatalf("ParseTaskStatus(%q): expected error", invalid)
		}
	}
}

func TestNormalizePaging(t *testing.T) {
	cases := []struct {
		page, pageSize         int
		wantPage, wantPageSize int
	}{
		{1, 20, 1, 20},
		{0, 0, 1, DefaultPageSize},
		{-3, -1, 1, DefaultPageSize},
		{2, 500, 2, MaxPageSize},
	}
	for _, tc := range cases {
		p, ps := NormalizePaging(tc.page, tc.pageSize)
		if p != tc.wantPage || ps != tc.wantPageSize {
			t.Fatalf("NormalizePaging(%d, %d) = (%d, %d), want (%d, %d)",
				tc.page, tc.pageSize, p, ps, tc.wantPage, tc.wantPageSize)
		}
	}
}

func timePtr(t time.Time) *time.Time { return &t }
