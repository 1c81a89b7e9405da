package model

import "time"

// Status is the task workflow state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// statusRanks maps each status to its ordinal rank for ordering:
// todo < in_progress < done, so sorting by status descending
// surfaces completed tasks first.
var statusRanks = map[Status]int{
	StatusTodo:       0,
	StatusInProgress: 1,
	StatusDone:       2,
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	_, ok := statusRanks[s]
	return ok
}

// Rank returns the ordinal rank of s, or 0 for unknown values.
func (s Status) Rank() int {
	return statusRanks[s]
}

const (
	// TitleMaxLen is the maximum task title length in characters.
	TitleMaxLen = 120

	PriorityMin = 1
	PriorityMax = 5
)

// Task represents a task row in the database.
type Task struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Status    Status     `json:"status"`
	Priority  int        `json:"priority"`
	Deadline  *time.Time `json:"deadline"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	OwnerID   *int64     `json:"-"`
}

// TaskCreate represents a task creation request. Status is always
// forced to "todo" on create.
type TaskCreate struct {
	Title    string     `json:"title"`
	Priority *int       `json:"priority"`
	Deadline *time.Time `json:"deadline"`
}

// TaskPut represents a full-replace (PUT) request. Every field except
// deadline is required; pointer fields let the handler distinguish
// "missing" from "provided" and reject incomplete bodies.
type TaskPut struct {
	Title    *string    `json:"title"`
	Status   *Status    `json:"status"`
	Priority *int       `json:"priority"`
	Deadline *time.Time `json:"deadline"`
}

// TaskPatch represents a partial-update (PATCH) request. Optional
// fields track JSON presence, so "field absent" and "field set to
// null" are distinguishable: an explicit null deadline clears it,
// while an absent deadline leaves it untouched.
type TaskPatch struct {
	Title    Optional[string]    `json:"title"`
	Status   Optional[Status]    `json:"status"`
	Priority Optional[int]       `json:"priority"`
	Deadline Optional[time.Time] `json:"deadline"`
}

// IsZero reports whether the patch carries no fields at all.
func (p TaskPatch) IsZero() bool {
	return !p.Title.Set && !p.Status.Set && !p.Priority.Set && !p.Deadline.Set
}

// TaskIDList carries the target ids of a bulk operation.
type TaskIDList struct {
	IDs []int64 `json:"ids"`
}

// BulkDeleteResponse reports how many rows a bulk delete removed.
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// BulkCompleteResponse reports how many rows a bulk complete
// actually transitioned to done.
type BulkCompleteResponse struct {
	Updated int64 `json:"updated"`
}
