// Package projects implements project and membership management. Every
// mutation is authorized by the permission guard; list and detail
// payloads carry optimistic capability hints for clients.
package projects

import (
	"time"

	"github.com/FerDom92/task-manager-pro/internal/permissions"
)

// Project is the persisted project record.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Member is one user's membership in a project.
type Member struct {
	ID        string           `json:"id"`
	ProjectID string           `json:"projectId"`
	UserID    string           `json:"userId"`
	Role      permissions.Role `json:"role"`
	JoinedAt  time.Time        `json:"joinedAt"`
}

// View is a project decorated with the caller's role and the optimistic
// capability hints derived from it.
type View struct {
	Project
	Role         permissions.Role                `json:"role"`
	MemberCount  int                             `json:"memberCount"`
	TaskCount    int                             `json:"taskCount"`
	Capabilities permissions.ProjectCapabilities `json:"capabilities"`
}

// CreateInput carries validated values for project creation.
type CreateInput struct {
	Name        string
	Description string
	Color       string
}

// UpdateInput carries a partial project update; nil fields are untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Color       *string
}
