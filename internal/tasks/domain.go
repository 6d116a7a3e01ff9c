// Package tasks implements task CRUD, filtering, and assignment on top of
// the permission engine.
package tasks

import "time"

// Status is the task workflow state.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusInReview   Status = "IN_REVIEW"
	StatusDone       Status = "DONE"
	StatusCancelled  Status = "CANCELLED"
)

// Valid reports whether s is a declared status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Priority is the task urgency level.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Valid reports whether p is a declared priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task is the persisted task record. Pointer fields are nullable columns.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CategoryID  *string    `json:"categoryId,omitempty"`
	ProjectID   *string    `json:"projectId,omitempty"`
	AssigneeID  *string    `json:"assigneeId,omitempty"`
	CreatedByID string     `json:"createdById"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Filters narrows task listings. Zero values mean "no constraint".
type Filters struct {
	Status     Status
	Priority   Priority
	CategoryID string
	ProjectID  string
	AssigneeID string
	Search     string
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

// Stats aggregates a user's tasks for the stats endpoint.
type Stats struct {
	Total      int              `json:"total"`
	ByStatus   map[Status]int   `json:"byStatus"`
	ByPriority map[Priority]int `json:"byPriority"`
	Overdue    int              `json:"overdue"`
}

// CreateInput carries validated values for task creation.
type CreateInput struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	CategoryID  *string
	ProjectID   *string
	AssigneeID  *string
}

// UpdateInput carries a partial update; nil fields are left untouched.
// The Clear flags distinguish "not provided" from "set to null" for the
// nullable columns.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
	ClearDue    bool
	CategoryID  *string
	ClearCat    bool
	ProjectID   *string
	ClearProj   bool
	AssigneeID  *string
	ClearAssign bool
}
