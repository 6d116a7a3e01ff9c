package notifications

import (
	"context"
	"fmt"
)

// listCap bounds the feed so clients never page notifications.
const listCap = 50

// Store is the persistence dependency of the service.
type Store interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) (Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) error
}

// Service implements the notification feed.
type Service struct {
	store Store
}

// NewService constructs a service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns the user's newest notifications, capped at 50.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	return s.store.ListForUser(ctx, userID, unreadOnly, listCap)
}

// UnreadCount returns the user's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, userID, id string) (Notification, error) {
	return s.store.MarkRead(ctx, userID, id)
}

// MarkAllRead flags all of the user's notifications as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllRead(ctx, userID)
}

// Delete removes one notification.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.Delete(ctx, userID, id)
}

// DeleteAll clears the user's feed.
func (s *Service) DeleteAll(ctx context.Context, userID string) error {
	return s.store.DeleteAll(ctx, userID)
}

// Typed constructors below shape the title and message for each
// notification kind. The worker calls these when delivering jobs.

// NotifyTaskAssigned records a task assignment for the assignee.
func (s *Service) NotifyTaskAssigned(ctx context.Context, userID, taskID, taskTitle string) (Notification, error) {
	return s.store.Create(ctx, Notification{
		UserID:    userID,
		Type:      TypeTaskAssigned,
		Title:     "Task assigned to you",
		Message:   fmt.Sprintf("You have been assigned to %q", taskTitle),
		RelatedID: &taskID,
	})
}

// NotifyTaskCompleted records a task completion for the task creator.
func (s *Service) NotifyTaskCompleted(ctx context.Context, userID, taskID, taskTitle string) (Notification, error) {
	return s.store.Create(ctx, Notification{
		UserID:    userID,
		Type:      TypeTaskCompleted,
		Title:     "Task completed",
		Message:   fmt.Sprintf("%q has been marked as done", taskTitle),
		RelatedID: &taskID,
	})
}

// NotifyTaskDueSoon records an approaching due date for the assignee or creator.
func (s *Service) NotifyTaskDueSoon(ctx context.Context, userID, taskID, taskTitle string) (Notification, error) {
	return s.store.Create(ctx, Notification{
		UserID:    userID,
		Type:      TypeTaskDueSoon,
		Title:     "Task due soon",
		Message:   fmt.Sprintf("%q is due within 24 hours", taskTitle),
		RelatedID: &taskID,
	})
}

// NotifyProjectInvite records a project membership for the invitee.
func (s *Service) NotifyProjectInvite(ctx context.Context, userID, projectID, projectName string) (Notification, error) {
	return s.store.Create(ctx, Notification{
		UserID:    userID,
		Type:      TypeProjectInvite,
		Title:     "Added to a project",
		Message:   fmt.Sprintf("You have been added to %q", projectName),
		RelatedID: &projectID,
	})
}
