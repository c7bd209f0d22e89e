package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskboard/backend/internal/domain"
)

func TestDiffTask(t *testing.T) {
	t.Parallel()

	u1, u2 := uint(1), uint(2)
	due := time.Date(2025, 5, 1, 8, 30, 0, 0, time.FixedZone("CET", 3600))
	sameInstant := due.UTC()
	base := domain.Task{
		Title: "t", Description: "d", Status: domain.TaskStatusTodo, Priority: "LOW",
		DueDate: &due, AssignedToID: &u1,
	}

	tests := []struct {
		name   string
		mutate func(*domain.Task)
		want   []FieldChange
	}{
		{"identical", func(*domain.Task) {}, nil},
		{"same instant other zone", func(p *domain.Task) { p.DueDate = &sameInstant }, nil},
		{"clear due date", func(p *domain.Task) { p.DueDate = nil }, []FieldChange{
			{FieldDueDate, "2025-05-01T07:30:00Z", "none"},
		}},
		{"unassign", func(p *domain.Task) { p.AssignedToID = nil }, []FieldChange{
			{FieldAssignedTo, "1", "unassigned"},
		}},
		{"every field", func(p *domain.Task) {
			p.AssignedToID = &u2
			p.DueDate = nil
			p.Priority = "HIGH"
			p.Status = domain.TaskStatusDone
			p.Description = "d2"
			p.Title = "t2"
		}, []FieldChange{
			{FieldTitle, "t", "t2"},
			{FieldDescription, "d", "d2"},
			{FieldStatus, "TODO", "DONE"},
			{FieldPriority, "LOW", "HIGH"},
			{FieldDueDate, "2025-05-01T07:30:00Z", "none"},
			{FieldAssignedTo, "1", "2"},
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			proposed := base
			tt.mutate(&proposed)
			got := DiffTask(&base, &proposed)
			if len(got) != len(tt.want) {
				t.Fatalf("DiffTask() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("DiffTask()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDiffTaskBothDueDatesAbsent(t *testing.T) {
	t.Parallel()
	a := domain.Task{Title: "x"}
	b := domain.Task{Title: "x"}
	if got := DiffTask(&a, &b); len(got) != 0 {
		t.Fatalf("DiffTask() = %+v, want none", got)
	}
}

func TestAuditRecorderRecord(t *testing.T) {
	s := newMemStore()
	rec := NewAuditRecorder(fixedClock)
	by := uint(3)
	changes := []FieldChange{
		{FieldTitle, "a", "b"},
		{FieldStatus, "TODO", "DONE"},
	}

	entries, err := rec.Record(context.Background(), s.repos().History, 42, &by, changes)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(entries) != 2 || len(s.history) != 2 {
		t.Fatalf("entries = %d stored = %d, want 2", len(entries), len(s.history))
	}
	for i, e := range s.history {
		if e.TaskID != 42 || *e.ModifiedByID != by || !e.ModifiedAt.Equal(testNow) {
			t.Fatalf("history[%d] = %+v, want task 42 by 3 at %v", i, e, testNow)
		}
		if e.Field != changes[i].Field || e.OldValue != changes[i].OldValue || e.NewValue != changes[i].NewValue {
			t.Fatalf("history[%d] = %+v, want %+v", i, e, changes[i])
		}
	}
}

type failingHistory struct{ *fakeHistoryRepo }

func (failingHistory) Create(ctx context.Context, e *domain.TaskHistoryEntry) error {
	return errors.New("disk full")
}

func TestAuditRecorderPropagatesSinkError(t *testing.T) {
	rec := NewAuditRecorder(nil)
	_, err := rec.Record(context.Background(), failingHistory{}, 1, nil, []FieldChange{{FieldTitle, "a", "b"}})
	if err == nil {
		t.Fatal("Record() error = nil, want sink error")
	}
}
