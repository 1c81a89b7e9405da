package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck-go/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

// OrderBy selects the primary sort key for task listings.
type OrderBy string

const (
	OrderByCreatedAt OrderBy = "created_at"
	OrderByPriority  OrderBy = "priority"
	OrderByStatus    OrderBy = "status"
	OrderByDeadline  OrderBy = "deadline"
)

// OrderDir is the sort direction.
type OrderDir string

const (
	OrderAsc  OrderDir = "asc"
	OrderDesc OrderDir = "desc"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// TaskFilter carries the optional list/count filters. Zero values
// mean "no filter".
type TaskFilter struct {
	Status   model.Status
	Priority *int
	Query    string
}

// ListOptions carries pagination and ordering for List.
type ListOptions struct {
	Limit    int
	Offset   int
	OrderBy  OrderBy
	OrderDir OrderDir
}

// TaskRepository handles task persistence. Every operation is scoped
// to the owning user: rows belonging to other owners are invisible
// and surface as not-found, never as forbidden.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, status, priority, deadline, created_at, updated_at, owner_id`

// statusRankExpr maps the textual status column to its ordinal rank
// so "descending status" surfaces done tasks first.
var statusRankExpr = fmt.Sprintf(
	"CASE status WHEN '%s' THEN %d WHEN '%s' THEN %d WHEN '%s' THEN %d ELSE 0 END",
	model.StatusTodo, model.StatusTodo.Rank(),
	model.StatusInProgress, model.StatusInProgress.Rank(),
	model.StatusDone, model.StatusDone.Rank(),
)

// buildFilter returns the shared WHERE clause and arguments for List
// and Count, always starting with the owner scope.
func buildFilter(ownerID int64, f TaskFilter) (string, []any) {
	where := " WHERE owner_id = ?"
	args := []any{ownerID}

	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, string(f.Status))
	}
	if f.Priority != nil {
		where += " AND priority = ?"
		args = append(args, *f.Priority)
	}
	if f.Query != "" {
		// Pattern built here rather than with SQL concatenation so the
		// same statement works on both supported dialects.
		where += " AND LOWER(title) LIKE ?"
		args = append(args, "%"+strings.ToLower(f.Query)+"%")
	}

	return where, args
}

// orderClause builds the ORDER BY clause. Every ordering appends a
// stable (created_at, id) secondary key in the primary direction, so
// page boundaries stay deterministic when the primary key ties.
func orderClause(by OrderBy, dir OrderDir) string {
	var primary string
	switch by {
	case OrderByPriority:
		primary = "COALESCE(priority, 0)"
	case OrderByStatus:
		primary = statusRankExpr
	case OrderByDeadline:
		// Undated tasks sort by creation time instead of collapsing
		// into one indistinguishable bucket.
		primary = "COALESCE(deadline, created_at)"
	default:
		primary = "created_at"
	}

	d := "DESC"
	if dir == OrderAsc {
		d = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, created_at %s, id %s", primary, d, d, d)
}

// List returns one page of the owner's tasks with filters and
// ordering applied. Limit is clamped to [1, MaxLimit].
func (r *TaskRepository) List(ctx context.Context, ownerID int64, f TaskFilter, opts ListOptions) ([]model.Task, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	where, args := buildFilter(ownerID, f)
	query := `SELECT ` + taskColumns + ` FROM tasks` + where + orderClause(opts.OrderBy, opts.OrderDir) + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// Count returns the total number of rows matching the filters, i.e.
// the number List would return across all pages.
func (r *TaskRepository) Count(ctx context.Context, ownerID int64, f TaskFilter) (int64, error) {
	where, args := buildFilter(ownerID, f)

	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(id) FROM tasks`+where, args...).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Create inserts a new task for the owner with status forced to todo.
func (r *TaskRepository) Create(ctx context.Context, ownerID int64, title string, priority int, deadline *time.Time) (*model.Task, error) {
	now := time.Now().UTC()

	query := `INSERT INTO tasks (title, status, priority, deadline, created_at, updated_at, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		title, string(model.StatusTodo), priority, nullableTime(deadline), now, now, ownerID,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, id, ownerID)
}

// Get fetches a single owned task, or ErrTaskNotFound.
func (r *TaskRepository) Get(ctx context.Context, id, ownerID int64) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND owner_id = ?`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Replace overwrites title, status, priority, and deadline of an
// owned task and refreshes updated_at.
func (r *TaskRepository) Replace(ctx context.Context, id, ownerID int64, title string, status model.Status, priority int, deadline *time.Time) (*model.Task, error) {
	query := `UPDATE tasks SET title = ?, status = ?, priority = ?, deadline = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`
	if _, err := r.db.ExecContext(ctx, query,
		title, string(status), priority, nullableTime(deadline), time.Now().UTC(), id, ownerID,
	); err != nil {
		return nil, err
	}

	return r.Get(ctx, id, ownerID)
}

// Update applies a partial update. Only fields present in the patch
// change; an explicit null deadline clears it. updated_at is always
// refreshed on success.
func (r *TaskRepository) Update(ctx context.Context, id, ownerID int64, patch model.TaskPatch) (*model.Task, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if patch.Title.Set && patch.Title.Valid {
		sets = append(sets, "title = ?")
		args = append(args, patch.Title.Value)
	}
	if patch.Status.Set && patch.Status.Valid {
		sets = append(sets, "status = ?")
		args = append(args, string(patch.Status.Value))
	}
	if patch.Priority.Set && patch.Priority.Valid {
		sets = append(sets, "priority = ?")
		args = append(args, patch.Priority.Value)
	}
	if patch.Deadline.Set {
		sets = append(sets, "deadline = ?")
		if patch.Deadline.Valid {
			args = append(args, patch.Deadline.Value)
		} else {
			args = append(args, nil)
		}
	}

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND owner_id = ?`
	args = append(args, id, ownerID)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}

	return r.Get(ctx, id, ownerID)
}

// Delete removes an owned task, reporting whether a row was deleted.
func (r *TaskRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// BulkDelete removes the owned tasks among ids in one statement and
// returns how many rows were deleted. Foreign and missing ids are
// silently skipped.
func (r *TaskRepository) BulkDelete(ctx context.Context, ownerID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM tasks WHERE owner_id = ? AND id IN (` + inPlaceholders(len(ids)) + `)`
	result, err := r.db.ExecContext(ctx, query, bulkArgs(ownerID, ids)...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// BulkComplete transitions the owned tasks among ids to done and
// returns how many rows actually changed. Rows already done are
// skipped and do not count toward the result.
func (r *TaskRepository) BulkComplete(ctx context.Context, ownerID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `UPDATE tasks SET status = ?, updated_at = ?
		WHERE owner_id = ? AND status <> ? AND id IN (` + inPlaceholders(len(ids)) + `)`
	args := []any{string(model.StatusDone), time.Now().UTC(), ownerID, string(model.StatusDone)}
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var (
		task     model.Task
		deadline sql.NullTime
		owner    sql.NullInt64
	)
	err := row.Scan(
		&task.ID, &task.Title, &task.Status, &task.Priority,
		&deadline, &task.CreatedAt, &task.UpdatedAt, &owner,
	)
	if err != nil {
		return model.Task{}, err
	}
	if deadline.Valid {
		t := deadline.Time
		task.Deadline = &t
	}
	if owner.Valid {
		id := owner.Int64
		task.OwnerID = &id
	}
	return task, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func inPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func bulkArgs(ownerID int64, ids []int64) []any {
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
