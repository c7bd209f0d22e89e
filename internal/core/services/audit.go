package services

import (
	"context"
	"strconv"
	"time"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
)

// Watched field keys, in the order history rows are written.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldDueDate     = "dueDate"
	FieldAssignedTo  = "assignedTo"
)

const (
	noDueDateDisplay  = "none"
	unassignedDisplay = "unassigned"
)

// FieldChange is one differing watched field in display-string form.
type FieldChange struct {
	Field    string
	OldValue string
	NewValue string
}

var watchedFields = []struct {
	name    string
	display func(t *domain.Task) string
}{
	{FieldTitle, func(t *domain.Task) string { return t.Title }},
	{FieldDescription, func(t *domain.Task) string { return t.Description }},
	{FieldStatus, func(t *domain.Task) string { return string(t.Status) }},
	{FieldPriority, func(t *domain.Task) string { return t.Priority }},
	{FieldDueDate, func(t *domain.Task) string { return displayDueDate(t.DueDate) }},
	{FieldAssignedTo, func(t *domain.Task) string { return displayAssignee(t.AssignedToID) }},
}

func displayDueDate(d *time.Time) string {
	if d == nil {
		return noDueDateDisplay
	}
	return d.UTC().Format(time.RFC3339)
}

func displayAssignee(id *uint) string {
	if id == nil {
		return unassignedDisplay
	}
	return strconv.FormatUint(uint64(*id), 10)
}

// DiffTask compares the watched fields of current and proposed by their
// display strings and returns the differing ones in fixed field order.
func DiffTask(current, proposed *domain.Task) []FieldChange {
	var changes []FieldChange
	for _, f := range watchedFields {
		oldValue, newValue := f.display(current), f.display(proposed)
		if oldValue != newValue {
			changes = append(changes, FieldChange{Field: f.name, OldValue: oldValue, NewValue: newValue})
		}
	}
	return changes
}

// AuditRecorder appends one history row per field change.
type AuditRecorder struct {
	now func() time.Time
}

func NewAuditRecorder(now func() time.Time) *AuditRecorder {
	if now == nil {
		now = time.Now
	}
	return &AuditRecorder{now: now}
}

func (r *AuditRecorder) Record(ctx context.Context, sink ports.TaskHistoryRepository, taskID uint, modifiedBy *uint, changes []FieldChange) ([]domain.TaskHistoryEntry, error) {
	at := r.now()
	entries := make([]domain.TaskHistoryEntry, 0, len(changes))
	for _, c := range changes {
		entry := domain.TaskHistoryEntry{
			TaskID:       taskID,
			ModifiedByID: modifiedBy,
			Field:        c.Field,
			OldValue:     c.OldValue,
			NewValue:     c.NewValue,
			ModifiedAt:   at,
		}
		if err := sink.Create(ctx, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
