// Package notifications implements the per-user notification feed.
// Writes arrive through the background worker; the HTTP surface is
// read, mark-read, and delete.
package notifications

import "time"

// Type discriminates notification kinds.
type Type string

const (
	TypeTaskAssigned  Type = "TASK_ASSIGNED"
	TypeTaskUpdated   Type = "TASK_UPDATED"
	TypeTaskCompleted Type = "TASK_COMPLETED"
	TypeTaskDueSoon   Type = "TASK_DUE_SOON"
	TypeProjectInvite Type = "PROJECT_INVITE"
	TypeMention       Type = "MENTION"
)

// Valid reports whether t is a declared type.
func (t Type) Valid() bool {
	switch t {
	case TypeTaskAssigned, TypeTaskUpdated, TypeTaskCompleted, TypeTaskDueSoon, TypeProjectInvite, TypeMention:
		return true
	}
	return false
}

// Notification is one feed entry. RelatedID points at the task or
// project that triggered it, when there is one.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	RelatedID *string   `json:"relatedId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
