package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/core/services"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
)

// These tests drive the task engine through real transactions.

func newEngine(t *testing.T) (ports.TaskService, ports.Repositories) {
	t.Helper()
	repos, database := newTestRepos(t)
	log := logger.NewNop()
	svc := services.NewTaskService(services.TaskServiceConfig{
		Repos:       repos,
		UnitOfWork:  NewUnitOfWork(database, log),
		Messages:    services.NewMessages("en"),
		Logger:      log,
		Now:         func() time.Time { return baseTime },
		EnableLocks: true,
	})
	return svc, repos
}

func TestEngineReassignment(t *testing.T) {
	svc, repos := newEngine(t)
	ctx := context.Background()
	boss := mustUser(t, repos, "boss", domain.RoleAdmin)
	sam := mustUser(t, repos, "sam", domain.RoleEmployee)
	kim := mustUser(t, repos, "kim", domain.RoleEmployee)
	task := mustTask(t, repos, "Quarterly report", &sam.ID)

	updated, err := svc.UpdateTask(ctx, domain.Caller{UserID: boss.ID, Role: domain.RoleAdmin}, task.ID, ports.UpdateTaskInput{
		AssignedToID: domain.Some(kim.ID),
		Priority:     domain.Some("HIGH"),
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !updated.IsAssignedTo(kim.ID) || updated.AssignedTo == nil || updated.AssignedTo.Name != "kim" {
		t.Fatalf("assignee = %+v", updated.AssignedTo)
	}

	history, total, _ := repos.History.GetByTask(ctx, task.ID, ports.PageRequest{Size: 10})
	if total != 2 {
		t.Fatalf("history = %d entries, want 2", total)
	}
	// Same timestamp, so the id tie-break puts the later field first.
	if history[0].Field != services.FieldAssignedTo || history[1].Field != services.FieldPriority {
		t.Fatalf("history fields = %q, %q", history[0].Field, history[1].Field)
	}
	if history[0].OldValue != "2" || history[0].NewValue != "3" {
		t.Fatalf("assignee change = %q -> %q, want 2 -> 3", history[0].OldValue, history[0].NewValue)
	}
	if history[0].ModifiedByID == nil || *history[0].ModifiedByID != boss.ID {
		t.Fatalf("modifier = %v, want boss", history[0].ModifiedByID)
	}

	samInbox, _, _ := repos.Notifications.GetByUser(ctx, sam.ID, false, ports.PageRequest{Size: 10})
	if len(samInbox) != 1 || samInbox[0].Message != "Task Quarterly report was updated: the priority changed from 'MEDIUM' to 'HIGH'" {
		t.Fatalf("previous assignee inbox = %+v", samInbox)
	}
	kimInbox, _, _ := repos.Notifications.GetByUser(ctx, kim.ID, false, ports.PageRequest{Size: 10})
	if len(kimInbox) != 1 || kimInbox[0].Message != "You have been assigned to task: Quarterly report" {
		t.Fatalf("new assignee inbox = %+v", kimInbox)
	}
}

func TestEngineRollsBackOnInvalidAssignee(t *testing.T) {
	svc, repos := newEngine(t)
	ctx := context.Background()
	boss := mustUser(t, repos, "boss", domain.RoleAdmin)
	sam := mustUser(t, repos, "sam", domain.RoleEmployee)
	task := mustTask(t, repos, "Report", &sam.ID)

	_, err := svc.UpdateTask(ctx, domain.Caller{UserID: boss.ID, Role: domain.RoleAdmin}, task.ID, ports.UpdateTaskInput{
		Title:        domain.Some("Renamed"),
		AssignedToID: domain.Some(uint(404)),
	})
	if !errors.Is(err, services.ErrInvalidReference) {
		t.Fatalf("UpdateTask() error = %v, want ErrInvalidReference", err)
	}
	got, _ := repos.Tasks.GetByID(ctx, task.ID)
	if got.Title != "Report" {
		t.Fatalf("title = %q, want unchanged", got.Title)
	}
	if _, total, _ := repos.History.GetByTask(ctx, task.ID, ports.PageRequest{Size: 10}); total != 0 {
		t.Fatalf("history = %d entries, want 0", total)
	}
}

func TestEngineCompletionAndDelete(t *testing.T) {
	svc, repos := newEngine(t)
	ctx := context.Background()
	boss := mustUser(t, repos, "boss", domain.RoleAdmin)
	sam := mustUser(t, repos, "sam", domain.RoleEmployee)
	bug := mustLabel(t, repos, "bug")
	adminCaller := domain.Caller{UserID: boss.ID, Role: domain.RoleAdmin}

	created, err := svc.CreateTask(ctx, adminCaller, ports.CreateTaskInput{
		Title: "Ship it", AssignedToID: &sam.ID, LabelIDs: []uint{bug.ID},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if len(created.Labels) != 1 || created.Status != domain.TaskStatusTodo {
		t.Fatalf("created = %+v", created)
	}

	done, err := svc.UpdateTask(ctx, domain.Caller{UserID: sam.ID, Role: domain.RoleEmployee}, created.ID, ports.UpdateTaskInput{
		Status: domain.Some(domain.TaskStatusDone),
	})
	if err != nil || done.Status != domain.TaskStatusDone {
		t.Fatalf("completion = %+v, %v", done, err)
	}
	bossInbox, _, _ := repos.Notifications.GetByUser(ctx, boss.ID, false, ports.PageRequest{Size: 10})
	if len(bossInbox) != 1 || bossInbox[0].Message != "An employee completed task: Ship it" {
		t.Fatalf("admin inbox = %+v", bossInbox)
	}

	if err := svc.DeleteTask(ctx, adminCaller, created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if ok, _ := repos.Tasks.Exists(ctx, created.ID); ok {
		t.Fatal("task still exists")
	}
	samInbox, _, _ := repos.Notifications.GetByUser(ctx, sam.ID, false, ports.PageRequest{Size: 10})
	if len(samInbox) != 1 || samInbox[0].TaskID != nil {
		t.Fatalf("assignment notification = %+v, want kept and detached", samInbox)
	}
}
