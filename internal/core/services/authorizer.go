package services

import (
	"fmt"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
)

// MutationPath tells the engine which update routine an approved request runs.
type MutationPath int

const (
	PathDenied MutationPath = iota
	// PathFull applies any change set and audits every differing field.
	PathFull
	// PathCompletion only moves the task to the terminal status.
	PathCompletion
)

// Decision is the outcome of one authorization check.
type Decision struct {
	Allowed bool
	Path    MutationPath
	Reason  string
}

func allow(path MutationPath) Decision {
	return Decision{Allowed: true, Path: path}
}

func deny(reason string) Decision {
	return Decision{Path: PathDenied, Reason: reason}
}

// Err returns nil for an approval, otherwise an error wrapping base.
func (d Decision) Err(base error) error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", base, d.Reason)
}

// Authorizer holds the role rules for task mutations. Existence of the task is
// resolved by the caller before any check here, and denial reasons never
// mention whether a task exists.
type Authorizer struct{}

func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

func (a *Authorizer) AuthorizeCreate(caller domain.Caller) Decision {
	switch caller.Role {
	case domain.RoleAdmin, domain.RoleEmployee:
		return allow(PathFull)
	default:
		return deny("unknown role")
	}
}

func (a *Authorizer) AuthorizeDelete(caller domain.Caller) Decision {
	if caller.IsAdmin() {
		return allow(PathFull)
	}
	return deny("only administrators can delete tasks")
}

// AuthorizeUpdate approves an admin for any change set. An employee may only
// complete a task assigned to them: the change set must hold nothing but the
// status, and that status must be DONE.
func (a *Authorizer) AuthorizeUpdate(caller domain.Caller, task *domain.Task, changes ports.UpdateTaskInput) Decision {
	if caller.IsAdmin() {
		return allow(PathFull)
	}
	if caller.Role != domain.RoleEmployee {
		return deny("unknown role")
	}
	if task == nil || !task.IsAssignedTo(caller.UserID) {
		return deny("you are not allowed to modify this task")
	}
	fields := changes.Fields()
	if len(fields) != 1 || fields[0] != "status" {
		return deny("you can only change the status of your task")
	}
	if changes.Status.Value == nil || *changes.Status.Value != domain.TaskStatusDone {
		return deny(fmt.Sprintf("you can only mark your task as %s", domain.TaskStatusDone))
	}
	return allow(PathCompletion)
}

// AuthorizeView covers reads and the non-audited task edits (labels, comments,
// attachments): admins see everything, employees only their own tasks.
func (a *Authorizer) AuthorizeView(caller domain.Caller, task *domain.Task) Decision {
	if caller.IsAdmin() {
		return allow(PathFull)
	}
	if caller.Role == domain.RoleEmployee && task != nil && task.IsAssignedTo(caller.UserID) {
		return allow(PathFull)
	}
	return deny("you are not allowed to access this task")
}
