package services

import (
	"context"
	"time"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
)

// Fanout writes notification records into a sink. It holds no state of its
// own: the engine binds it to the transaction-scoped repository with WithSink
// so notifications commit or roll back together with the task change.
type Fanout struct {
	sink     ports.NotificationRepository
	messages *Messages
	now      func() time.Time
}

func NewFanout(sink ports.NotificationRepository, messages *Messages, now func() time.Time) *Fanout {
	if messages == nil {
		messages = NewMessages("en")
	}
	if now == nil {
		now = time.Now
	}
	return &Fanout{sink: sink, messages: messages, now: now}
}

// WithSink returns a copy writing into sink.
func (f *Fanout) WithSink(sink ports.NotificationRepository) *Fanout {
	cp := *f
	cp.sink = sink
	return &cp
}

// Notify persists one unread notification for recipient.
func (f *Fanout) Notify(ctx context.Context, message string, recipient uint, taskID *uint) (*domain.Notification, error) {
	n := &domain.Notification{
		Message:   message,
		Read:      false,
		UserID:    recipient,
		TaskID:    taskID,
		CreatedAt: f.now(),
	}
	if err := f.sink.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (f *Fanout) TaskAssigned(ctx context.Context, task *domain.Task, recipient uint) error {
	_, err := f.Notify(ctx, f.messages.TaskAssigned(task.Title), recipient, &task.ID)
	return err
}

func (f *Fanout) FieldChanged(ctx context.Context, task *domain.Task, recipient uint, change FieldChange) error {
	msg := f.messages.FieldChanged(task.Title, change.Field, change.OldValue, change.NewValue)
	_, err := f.Notify(ctx, msg, recipient, &task.ID)
	return err
}

func (f *Fanout) LabelAdded(ctx context.Context, task *domain.Task, label *domain.Label, recipient uint) error {
	_, err := f.Notify(ctx, f.messages.LabelAdded(label.Name, task.Title), recipient, &task.ID)
	return err
}

func (f *Fanout) LabelRemoved(ctx context.Context, task *domain.Task, label *domain.Label, recipient uint) error {
	_, err := f.Notify(ctx, f.messages.LabelRemoved(label.Name, task.Title), recipient, &task.ID)
	return err
}

// TaskCompleted tells every admin that an employee finished task.
func (f *Fanout) TaskCompleted(ctx context.Context, task *domain.Task, admins []domain.User) error {
	msg := f.messages.TaskCompleted(task.Title)
	for _, admin := range admins {
		if _, err := f.Notify(ctx, msg, admin.ID, &task.ID); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fanout) EmployeeCommented(ctx context.Context, task *domain.Task, author string, admins []domain.User) error {
	msg := f.messages.EmployeeCommented(author, task.Title)
	for _, admin := range admins {
		if _, err := f.Notify(ctx, msg, admin.ID, &task.ID); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fanout) AdminCommented(ctx context.Context, task *domain.Task, recipient uint) error {
	_, err := f.Notify(ctx, f.messages.AdminCommented(task.Title), recipient, &task.ID)
	return err
}

func (f *Fanout) CommentReplied(ctx context.Context, task *domain.Task, recipient uint) error {
	_, err := f.Notify(ctx, f.messages.CommentReplied(task.Title), recipient, &task.ID)
	return err
}
