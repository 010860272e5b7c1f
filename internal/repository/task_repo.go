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
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskFilter carries the optional list filters. Search matches title or
// description case-insensitively; due bounds are inclusive.
type TaskFilter struct {
	Search  string
	Status  *domain.TaskStatus
	DueFrom *time.Time
	DueTo   *time.Time
}

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `t.id, t.title, t.description, t.status, t.due_date,
	t.created_by_user_id, t.assigned_to_user_id, t.created_at, t.updated_at,
	cb.id, cb.external_id, cb.name, cb.email,
	au.id, au.external_id, au.name, au.email`

const taskJoins = `
	FROM tasks t
	JOIN users cb ON cb.id = t.created_by_user_id
	LEFT JOIN users au ON au.id = t.assigned_to_user_id`

// buildFilter appends WHERE clauses for f to conds/args, returning both.
func buildFilter(f TaskFilter, conds []string, args []any) ([]string, []any) {
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		p := "$" + strconv.Itoa(len(args))
		conds = append(conds, "(t.title ILIKE "+p+" OR t.description ILIKE "+p+")")
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, "t.status = $"+strconv.Itoa(len(args)))
	}
	if f.DueFrom != nil {
		args = append(args, *f.DueFrom)
		conds = append(conds, "t.due_date >= $"+strconv.Itoa(len(args)))
	}
	if f.DueTo != nil {
		args = append(args, *f.DueTo)
		conds = append(conds, "t.due_date <= $"+strconv.Itoa(len(args)))
	}
	return conds, args
}

// GetTasksForUser returns tasks where the user is creator or assignee,
// newest first, with creator and assignee summaries loaded.
func (r *TaskRepository) GetTasksForUser(ctx context.Context, userID uuid.UUID, f TaskFilter, page, pageSize int) (domain.Page[domain.Task], error) {
	page, pageSize = domain.NormalizePaging(page, pageSize)

	conds := []string{"(t.created_by_user_id = $1 OR t.assigned_to_user_id = $1)"}
	args := []any{userID}
	conds, args = buildFilter(f, conds, args)
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM tasks t"+where, args...).Scan(&total); err != nil {
		return domain.Page[domain.Task]{}, err
	}

	listArgs := append(args, pageSize, (page-1)*pageSize)
	n := len(args)
	rows, err := r.db.Query(ctx,
		"SELECT "+taskColumns+taskJoins+where+`
		 ORDER BY t.created_at DESC
		 LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		listArgs...,
	)
	if err != nil {
		return domain.Page[domain.Task]{}, err
	}
	defer rows.Close()

	var items []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return domain.Page[domain.Task]{}, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Task]{}, err
	}

	return domain.Page[domain.Task]{Items: items, TotalCount: total, Page: page, PageSize: pageSize}, nil
}

// CountForUser counts tasks where the user is creator or assignee,
// applying the same filters as GetTasksForUser.
func (r *TaskRepository) CountForUser(ctx context.Context, userID uuid.UUID, f TaskFilter) (int, error) {
	return r.count(ctx, "(t.created_by_user_id = $1 OR t.assigned_to_user_id = $1)", userID, f)
}

// CountCreatedForUser counts only tasks the user created.
func (r *TaskRepository) CountCreatedForUser(ctx context.Context, userID uuid.UUID, f TaskFilter) (int, error) {
	return r.count(ctx, "t.created_by_user_id = $1", userID, f)
}

func (r *TaskRepository) count(ctx context.Context, scopeCond string, userID uuid.UUID, f TaskFilter) (int, error) {
	conds := []string{scopeCond}
	args := []any{userID}
	conds, args = buildFilter(f, conds, args)

	var total int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM tasks t WHERE "+strings.Join(conds, " AND "),
		args...,
	).Scan(&total)
	return total, err
}

// GetByID loads a task with its creator and assignee summaries, or nil
// when absent.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, "SELECT "+taskColumns+taskJoins+" WHERE t.id = $1", id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts the task. Foreign-key violations (nonexistent creator or
// assignee) surface as driver errors for the service layer to translate.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (id, title, description, status, due_date, created_by_user_id, assigned_to_user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Title, t.Description, t.Status, t.DueDate, t.CreatedByUserID, t.AssignedToUserID, t.CreatedAt,
	)
	return err
}

// Update persists all mutable fields. A vanished row fails with
// domain.ErrNotFound (optimistic-concurrency style).
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, status = $3, due_date = $4, assigned_to_user_id = $5, updated_at = $6
		 WHERE id = $7`,
		t.Title, t.Description, t.Status, t.DueDate, t.AssignedToUserID, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a task, reporting whether a row was actually deleted.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var cb domain.UserSummary
	var auID *uuid.UUID
	var auExternalID, auName, auEmail *string

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.DueDate,
		&t.CreatedByUserID, &t.AssignedToUserID, &t.CreatedAt, &t.UpdatedAt,
		&cb.ID, &cb.ExternalID, &cb.Name, &cb.Email,
		&auID, &auExternalID, &auName, &auEmail,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedBy = &cb
	if auID != nil {
		t.AssignedTo = &domain.UserSummary{
			ID:         *auID,
			ExternalID: *auExternalID,
			Name:       *auName,
			Email:      *auEmail,
		}
	}
	return &t, nil
}
