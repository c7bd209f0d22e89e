package dto

import (
	"strings"
	"time"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
)

// ==================== REQUESTS ====================

type CreateTaskRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	DueDate      *string `json:"due_date,omitempty"`
	Status       string  `json:"status,omitempty"`
	Priority     string  `json:"priority,omitempty"`
	AssignedToID *uint   `json:"assigned_to_id,omitempty"`
	LabelIDs     []uint  `json:"label_ids,omitempty"`
}

func (r *CreateTaskRequest) Validate() []string {
	var errors []string

	if strings.TrimSpace(r.Title) == "" {
		errors = append(errors, "title is required")
	}
	if r.DueDate != nil && *r.DueDate != "" {
		if _, err := time.Parse(time.RFC3339, *r.DueDate); err != nil {
			errors = append(errors, "due_date must be an RFC3339 timestamp")
		}
	}

	return errors
}

// ToInput assumes Validate passed.
func (r *CreateTaskRequest) ToInput() ports.CreateTaskInput {
	input := ports.CreateTaskInput{
		Title:        r.Title,
		Description:  r.Description,
		Status:       domain.TaskStatus(r.Status),
		Priority:     r.Priority,
		AssignedToID: r.AssignedToID,
		LabelIDs:     r.LabelIDs,
	}
	if r.DueDate != nil && *r.DueDate != "" {
		due, _ := time.Parse(time.RFC3339, *r.DueDate)
		input.DueDate = &due
	}
	return input
}

// UpdateTaskRequest is a change set. An omitted field is left alone and an
// explicit null clears the field where clearing is allowed.
type UpdateTaskRequest struct {
	Title        domain.Optional[string] `json:"title"`
	Description  domain.Optional[string] `json:"description"`
	Status       domain.Optional[string] `json:"status"`
	Priority     domain.Optional[string] `json:"priority"`
	DueDate      domain.Optional[string] `json:"due_date"`
	AssignedToID domain.Optional[uint]   `json:"assigned_to_id"`
}

func (r *UpdateTaskRequest) Validate() []string {
	var errors []string

	if r.Title.Set && (r.Title.Value == nil || strings.TrimSpace(*r.Title.Value) == "") {
		errors = append(errors, "title cannot be empty")
	}
	if r.DueDate.Set && r.DueDate.Value != nil {
		if _, err := time.Parse(time.RFC3339, *r.DueDate.Value); err != nil {
			errors = append(errors, "due_date must be an RFC3339 timestamp or null")
		}
	}

	return errors
}

// ToInput assumes Validate passed.
func (r *UpdateTaskRequest) ToInput() ports.UpdateTaskInput {
	input := ports.UpdateTaskInput{
		Title:        r.Title,
		Description:  r.Description,
		Priority:     r.Priority,
		AssignedToID: r.AssignedToID,
	}
	if r.Status.Set {
		if r.Status.Value == nil {
			input.Status = domain.Null[domain.TaskStatus]()
		} else {
			input.Status = domain.Some(domain.TaskStatus(*r.Status.Value))
		}
	}
	if r.DueDate.Set {
		if r.DueDate.Value == nil {
			input.DueDate = domain.Null[time.Time]()
		} else {
			due, _ := time.Parse(time.RFC3339, *r.DueDate.Value)
			input.DueDate = domain.Some(due)
		}
	}
	return input
}

// ==================== RESPONSES ====================

type TaskResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"due_date"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	AssignedTo  *UserSummary    `json:"assigned_to"`
	CreatedBy   *UserSummary    `json:"created_by"`
	Labels      []LabelResponse `json:"labels"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func TaskToResponse(t *domain.Task) TaskResponse {
	labels := make([]LabelResponse, 0, len(t.Labels))
	for i := range t.Labels {
		labels = append(labels, LabelToResponse(&t.Labels[i]))
	}
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      string(t.Status),
		Priority:    t.Priority,
		AssignedTo:  UserSummaryOf(t.AssignedTo),
		CreatedBy:   UserSummaryOf(t.CreatedBy),
		Labels:      labels,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func TasksToResponse(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, TaskToResponse(&tasks[i]))
	}
	return out
}

type BoardColumnResponse struct {
	Status string         `json:"status"`
	Tasks  []TaskResponse `json:"tasks"`
}

type BoardResponse struct {
	Columns []BoardColumnResponse `json:"columns"`
}

func BoardToResponse(b ports.Board) BoardResponse {
	cols := make([]BoardColumnResponse, 0, len(b.Columns))
	for _, c := range b.Columns {
		cols = append(cols, BoardColumnResponse{Status: string(c.Status), Tasks: TasksToResponse(c.Tasks)})
	}
	return BoardResponse{Columns: cols}
}

type HistoryEntryResponse struct {
	ID         uint         `json:"id"`
	TaskID     uint         `json:"task_id"`
	Field      string       `json:"field"`
	OldValue   string       `json:"old_value"`
	NewValue   string       `json:"new_value"`
	ModifiedBy *UserSummary `json:"modified_by"`
	ModifiedAt time.Time    `json:"modified_at"`
}

func HistoryEntryToResponse(e *domain.TaskHistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:         e.ID,
		TaskID:     e.TaskID,
		Field:      e.Field,
		OldValue:   e.OldValue,
		NewValue:   e.NewValue,
		ModifiedBy: UserSummaryOf(e.ModifiedBy),
		ModifiedAt: e.ModifiedAt,
	}
}

// TaskSearchParams is bound from the query string of GET /tasks/search.
type TaskSearchParams struct {
	Title       string `query:"title"`
	Description string `query:"description"`
	Status      string `query:"status"`
	Priority    string `query:"priority"`
	Labels      string `query:"labels"`
}
