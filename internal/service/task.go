package service

import (
	"context"
	"errors"
	"strings"

	"github.com/taskdeck/taskdeck-go/internal/model"
	"github.com/taskdeck/taskdeck-go/internal/repository"
)

var (
	ErrTitleRequired   = errors.New("title must be 1-120 characters")
	ErrPriorityRange   = errors.New("priority must be between 1 and 5")
	ErrStatusInvalid   = errors.New("status must be one of: todo, in_progress, done")
	ErrTaskNotFound    = errors.New("task not found")
	ErrNoIDs           = errors.New("ids must not be empty")
	ErrMissingRequired = errors.New("title, status and priority are required")
)

// TaskService validates task input and orchestrates the repository.
// All operations act on behalf of a single owner.
type TaskService struct {
	repo *repository.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// ListPage is one page of tasks plus the total matching count across
// all pages, so clients can compute page counts without fetching
// every row.
type ListPage struct {
	Tasks []model.Task
	Total int64
}

// List returns a filtered, ordered page and the total count for the
// same filters.
func (s *TaskService) List(ctx context.Context, ownerID int64, f repository.TaskFilter, opts repository.ListOptions) (ListPage, error) {
	total, err := s.repo.Count(ctx, ownerID, f)
	if err != nil {
		return ListPage{}, err
	}

	tasks, err := s.repo.List(ctx, ownerID, f, opts)
	if err != nil {
		return ListPage{}, err
	}

	return ListPage{Tasks: tasks, Total: total}, nil
}

// Create validates and inserts a new task; status is forced to todo.
func (s *TaskService) Create(ctx context.Context, ownerID int64, req model.TaskCreate) (*model.Task, error) {
	title, err := validTitle(req.Title)
	if err != nil {
		return nil, err
	}

	priority := model.PriorityMin
	if req.Priority != nil {
		priority = *req.Priority
		if err := validPriority(priority); err != nil {
			return nil, err
		}
	}

	return s.repo.Create(ctx, ownerID, title, priority, req.Deadline)
}

// Get fetches a single owned task.
func (s *TaskService) Get(ctx context.Context, id, ownerID int64) (*model.Task, error) {
	task, err := s.repo.Get(ctx, id, ownerID)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return nil, ErrTaskNotFound
	}
	return task, err
}

// Replace performs a full overwrite. Every field except deadline must
// be present in the request; otherwise the caller gets
// ErrMissingRequired before any storage work happens.
func (s *TaskService) Replace(ctx context.Context, id, ownerID int64, req model.TaskPut) (*model.Task, error) {
	if req.Title == nil || req.Status == nil || req.Priority == nil {
		return nil, ErrMissingRequired
	}

	title, err := validTitle(*req.Title)
	if err != nil {
		return nil, err
	}
	if !req.Status.Valid() {
		return nil, ErrStatusInvalid
	}
	if err := validPriority(*req.Priority); err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}

	return s.repo.Replace(ctx, id, ownerID, title, *req.Status, *req.Priority, req.Deadline)
}

// Update applies a partial update; only supplied fields change. An
// empty patch is a read, not a write.
func (s *TaskService) Update(ctx context.Context, id, ownerID int64, patch model.TaskPatch) (*model.Task, error) {
	if patch.IsZero() {
		return s.Get(ctx, id, ownerID)
	}

	if patch.Title.Set && patch.Title.Valid {
		title, err := validTitle(patch.Title.Value)
		if err != nil {
			return nil, err
		}
		patch.Title.Value = title
	}
	if patch.Status.Set && patch.Status.Valid && !patch.Status.Value.Valid() {
		return nil, ErrStatusInvalid
	}
	if patch.Priority.Set && patch.Priority.Valid {
		if err := validPriority(patch.Priority.Value); err != nil {
			return nil, err
		}
	}

	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, ownerID, patch)
}

// Delete removes an owned task, reporting found/deleted.
func (s *TaskService) Delete(ctx context.Context, id, ownerID int64) error {
	deleted, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}

// BulkDelete deletes the owned tasks among ids, best-effort.
func (s *TaskService) BulkDelete(ctx context.Context, ownerID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoIDs
	}
	return s.repo.BulkDelete(ctx, ownerID, ids)
}

// BulkComplete marks the owned tasks among ids as done, best-effort.
func (s *TaskService) BulkComplete(ctx context.Context, ownerID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoIDs
	}
	return s.repo.BulkComplete(ctx, ownerID, ids)
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || len([]rune(title)) > model.TitleMaxLen {
		return "", ErrTitleRequired
	}
	return title, nil
}

func validPriority(p int) error {
	if p < model.PriorityMin || p > model.PriorityMax {
		return ErrPriorityRange
	}
	return nil
}
