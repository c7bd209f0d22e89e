package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
)

type TaskServiceConfig struct {
	Repos       ports.Repositories
	UnitOfWork  ports.UnitOfWork
	Files       ports.FileStore
	Messages    *Messages
	Logger      *logger.Logger
	Pager       Pager
	Now         func() time.Time
	EnableLocks bool
}

// taskService is the mutation engine: every write authorizes, applies, audits
// and notifies inside one unit of work.
type taskService struct {
	repos  ports.Repositories
	uow    ports.UnitOfWork
	files  ports.FileStore
	authz  *Authorizer
	audit  *AuditRecorder
	fanout *Fanout
	logger *logger.Logger
	pager  Pager
	now    func() time.Time
	locks  *keyedLocker
}

func NewTaskService(cfg TaskServiceConfig) ports.TaskService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	pager := cfg.Pager
	if pager.DefaultSize == 0 {
		pager = DefaultPager()
	}
	return &taskService{
		repos:  cfg.Repos,
		uow:    cfg.UnitOfWork,
		files:  cfg.Files,
		authz:  NewAuthorizer(),
		audit:  NewAuditRecorder(now),
		fanout: NewFanout(cfg.Repos.Notifications, cfg.Messages, now),
		logger: log,
		pager:  pager,
		now:    now,
		locks:  newKeyedLocker(cfg.EnableLocks),
	}
}

func loadTask(ctx context.Context, repo ports.TaskRepository, id uint) (*domain.Task, error) {
	task, err := repo.GetByID(ctx, id)
	if errors.Is(err, ports.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	return task, err
}

func requireUser(ctx context.Context, repo ports.UserRepository, id uint, missing error) error {
	_, err := repo.GetByID(ctx, id)
	if errors.Is(err, ports.ErrRecordNotFound) {
		return missing
	}
	return err
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sameAssignee(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ==================== Mutations ====================

func (s *taskService) CreateTask(ctx context.Context, caller domain.Caller, input ports.CreateTaskInput) (*domain.Task, error) {
	if err := s.authz.AuthorizeCreate(caller).Err(ErrTaskAccessDenied); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTaskTitleRequired
	}
	status := input.Status
	if status == "" {
		status = domain.TaskStatusTodo
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.DefaultPriority
	}

	var created *domain.Task
	err := s.uow.Do(ctx, func(repos ports.Repositories) error {
		if input.AssignedToID != nil {
			if err := requireUser(ctx, repos.Users, *input.AssignedToID, ErrTaskAssigneeMissing); err != nil {
				return err
			}
		}
		labelIDs := uniqueIDs(input.LabelIDs)
		labels, err := repos.Labels.GetByIDs(ctx, labelIDs)
		if err != nil {
			return err
		}
		if len(labels) != len(labelIDs) {
			return ErrTaskLabelMissing
		}

		now := s.now()
		creator := caller.UserID
		task := &domain.Task{
			Title:        title,
			Description:  input.Description,
			DueDate:      input.DueDate,
			Status:       status,
			Priority:     priority,
			AssignedToID: input.AssignedToID,
			CreatedByID:  &creator,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repos.Tasks.Create(ctx, task); err != nil {
			return err
		}
		for i := range labels {
			if err := repos.Tasks.AddLabel(ctx, task, &labels[i]); err != nil {
				return err
			}
		}
		if task.AssignedToID != nil {
			if err := s.fanout.WithSink(repos.Notifications).TaskAssigned(ctx, task, *task.AssignedToID); err != nil {
				return err
			}
		}
		created, err = repos.Tasks.GetByID(ctx, task.ID)
		return err
	})
	if err != nil {
		s.logger.Errorw("task_create_failed", "caller_id", caller.UserID, "error", err)
		return nil, err
	}
	s.logger.Infow("task_created", "task_id", created.ID, "caller_id", caller.UserID)
	return created, nil
}

// applyChanges returns a copy of current with every present field of in
// written over it.
func applyChanges(current *domain.Task, in ports.UpdateTaskInput) (*domain.Task, error) {
	next := *current
	if in.Title.Set {
		if in.Title.Value == nil || strings.TrimSpace(*in.Title.Value) == "" {
			return nil, ErrTaskTitleRequired
		}
		next.Title = strings.TrimSpace(*in.Title.Value)
	}
	if in.Description.Set {
		next.Description = ""
		if in.Description.Value != nil {
			next.Description = *in.Description.Value
		}
	}
	if in.Status.Set {
		if in.Status.Value == nil || *in.Status.Value == "" {
			return nil, ErrTaskStatusRequired
		}
		next.Status = *in.Status.Value
	}
	if in.Priority.Set {
		if in.Priority.Value == nil || *in.Priority.Value == "" {
			return nil, ErrTaskPriorityEmpty
		}
		next.Priority = *in.Priority.Value
	}
	if in.DueDate.Set {
		next.DueDate = in.DueDate.Value
	}
	if in.AssignedToID.Set {
		next.AssignedToID = in.AssignedToID.Value
		if !sameAssignee(current.AssignedToID, next.AssignedToID) {
			next.AssignedTo = nil
		}
	}
	return &next, nil
}

func (s *taskService) UpdateTask(ctx context.Context, caller domain.Caller, id uint, input ports.UpdateTaskInput) (*domain.Task, error) {
	unlock := s.locks.lockKeys(taskKey(id))
	defer unlock()

	var (
		updated *domain.Task
		path    MutationPath
		changes []FieldChange
	)
	err := s.uow.Do(ctx, func(repos ports.Repositories) error {
		task, err := loadTask(ctx, repos.Tasks, id)
		if err != nil {
			return err
		}
		decision := s.authz.AuthorizeUpdate(caller, task, input)
		if err := decision.Err(ErrTaskAccessDenied); err != nil {
			return err
		}
		path = decision.Path
		fanout := s.fanout.WithSink(repos.Notifications)

		switch path {
		case PathCompletion:
			task.Status = domain.TaskStatusDone
			task.UpdatedAt = s.now()
			if err := repos.Tasks.Update(ctx, task); err != nil {
				return err
			}
			admins, err := repos.Users.GetByRole(ctx, domain.RoleAdmin)
			if err != nil {
				return err
			}
			if err := fanout.TaskCompleted(ctx, task, admins); err != nil {
				return err
			}
		default:
			proposed, err := applyChanges(task, input)
			if err != nil {
				return err
			}
			if proposed.AssignedToID != nil && !sameAssignee(task.AssignedToID, proposed.AssignedToID) {
				if err := requireUser(ctx, repos.Users, *proposed.AssignedToID, ErrTaskAssigneeMissing); err != nil {
					return err
				}
			}

			changes = DiffTask(task, proposed)
			modifier := caller.UserID
			if _, err := s.audit.Record(ctx, repos.History, task.ID, &modifier, changes); err != nil {
				return err
			}
			prior := task.AssignedToID
			if prior != nil {
				for _, c := range changes {
					if c.Field == FieldAssignedTo {
						continue
					}
					if err := fanout.FieldChanged(ctx, task, *prior, c); err != nil {
						return err
					}
				}
			}

			proposed.UpdatedAt = s.now()
			if err := repos.Tasks.Update(ctx, proposed); err != nil {
				return err
			}
			if proposed.AssignedToID != nil && !sameAssignee(prior, proposed.AssignedToID) {
				if err := fanout.TaskAssigned(ctx, proposed, *proposed.AssignedToID); err != nil {
					return err
				}
			}
		}

		updated, err = repos.Tasks.GetByID(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Warnw("task_update_failed", "task_id", id, "caller_id", caller.UserID, "error", err)
		return nil, err
	}
	s.logger.Infow("task_update_applied",
		"task_id", id,
		"caller_id", caller.UserID,
		"completion", path == PathCompletion,
		"changed_fields", len(changes),
	)
	return updated, nil
}

// DeleteTask removes the task together with its history, comments,
// attachments and label links, and detaches its notifications. Attachment
// files are removed from the store once the rows are gone.
func (s *taskService) DeleteTask(ctx context.Context, caller domain.Caller, id uint) error {
	unlock := s.locks.lockKeys(taskKey(id))
	defer unlock()

	var files []domain.Attachment
	err := s.uow.Do(ctx, func(repos ports.Repositories) error {
		task, err := loadTask(ctx, repos.Tasks, id)
		if err != nil {
			return err
		}
		if err := s.authz.AuthorizeDelete(caller).Err(ErrTaskAccessDenied); err != nil {
			return err
		}
		if err := repos.History.DeleteByTask(ctx, id); err != nil {
			return err
		}
		if err := repos.Comments.DeleteByTask(ctx, id); err != nil {
			return err
		}
		files, err = repos.Attachments.GetByTask(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Attachments.DeleteByTask(ctx, id); err != nil {
			return err
		}
		if err := repos.Notifications.DetachTask(ctx, id); err != nil {
			return err
		}
		if err := repos.Tasks.ClearLabels(ctx, task); err != nil {
			return err
		}
		return repos.Tasks.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Warnw("task_delete_failed", "task_id", id, "caller_id", caller.UserID, "error", err)
		return err
	}

	if s.files != nil {
		for _, a := range files {
			if err := s.files.Delete(ctx, a.StorageKey); err != nil {
				s.logger.Warnw("attachment_file_delete_failed", "task_id", id, "storage_key", a.StorageKey, "error", err)
			}
		}
	}
	s.logger.Infow("task_deleted", "task_id", id, "caller_id", caller.UserID, "attachments", len(files))
	return nil
}

func (s *taskService) AddLabel(ctx context.Context, caller domain.Caller, taskID, labelID uint) (*domain.Task, error) {
	return s.changeLabel(ctx, caller, taskID, labelID, true)
}

func (s *taskService) RemoveLabel(ctx context.Context, caller domain.Caller, taskID, labelID uint) (*domain.Task, error) {
	return s.changeLabel(ctx, caller, taskID, labelID, false)
}

// changeLabel attaches or detaches one label. Adding a label already present
// or removing one that is absent leaves the task untouched and notifies no one.
func (s *taskService) changeLabel(ctx context.Context, caller domain.Caller, taskID, labelID uint, add bool) (*domain.Task, error) {
	unlock := s.locks.lockKeys(taskKey(taskID))
	defer unlock()

	var result *domain.Task
	err := s.uow.Do(ctx, func(repos ports.Repositories) error {
		task, err := loadTask(ctx, repos.Tasks, taskID)
		if err != nil {
			return err
		}
		if err := s.authz.AuthorizeView(caller, task).Err(ErrTaskAccessDenied); err != nil {
			return err
		}
		label, err := repos.Labels.GetByID(ctx, labelID)
		if errors.Is(err, ports.ErrRecordNotFound) {
			return ErrLabelNotFound
		}
		if err != nil {
			return err
		}

		if task.HasLabel(labelID) == add {
			result = task
			return nil
		}
		fanout := s.fanout.WithSink(repos.Notifications)
		if add {
			if err := repos.Tasks.AddLabel(ctx, task, label); err != nil {
				return err
			}
			if task.AssignedToID != nil {
				if err := fanout.LabelAdded(ctx, task, label, *task.AssignedToID); err != nil {
					return err
				}
			}
		} else {
			if err := repos.Tasks.RemoveLabel(ctx, task, label); err != nil {
				return err
			}
			if task.AssignedToID != nil {
				if err := fanout.LabelRemoved(ctx, task, label, *task.AssignedToID); err != nil {
					return err
				}
			}
		}
		result, err = repos.Tasks.GetByID(ctx, taskID)
		return err
	})
	if err != nil {
		s.logger.Warnw("task_label_change_failed", "task_id", taskID, "label_id", labelID, "add", add, "error", err)
		return nil, err
	}
	return result, nil
}

// ==================== Reads ====================

func (s *taskService) GetTask(ctx context.Context, caller domain.Caller, id uint) (*domain.Task, error) {
	task, err := loadTask(ctx, s.repos.Tasks, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeView(caller, task).Err(ErrTaskAccessDenied); err != nil {
		return nil, err
	}
	return task, nil
}

// scopeFilter limits employees to the tasks assigned to them.
func scopeFilter(caller domain.Caller, filter ports.TaskFilter) ports.TaskFilter {
	if !caller.IsAdmin() {
		self := caller.UserID
		filter.AssignedToID = &self
	}
	return filter
}

func (s *taskService) ListTasks(ctx context.Context, caller domain.Caller, page ports.PageRequest) (ports.Page[domain.Task], error) {
	return s.SearchTasks(ctx, caller, ports.TaskFilter{}, page)
}

func (s *taskService) ListTasksByUser(ctx context.Context, caller domain.Caller, userID uint, page ports.PageRequest) (ports.Page[domain.Task], error) {
	if !caller.IsAdmin() && caller.UserID != userID {
		return ports.Page[domain.Task]{}, ErrTaskAccessDenied
	}
	if err := requireUser(ctx, s.repos.Users, userID, ErrUserNotFound); err != nil {
		return ports.Page[domain.Task]{}, err
	}
	return s.SearchTasks(ctx, caller, ports.TaskFilter{AssignedToID: &userID}, page)
}

func (s *taskService) SearchTasks(ctx context.Context, caller domain.Caller, filter ports.TaskFilter, page ports.PageRequest) (ports.Page[domain.Task], error) {
	page = s.pager.Clamp(page)
	items, total, err := s.repos.Tasks.Find(ctx, scopeFilter(caller, filter), page)
	if err != nil {
		return ports.Page[domain.Task]{}, err
	}
	return ports.NewPage(items, page, total), nil
}

// GetHistory only needs the task row for employees, whose access depends on
// the assignee; admins get an existence check.
func (s *taskService) GetHistory(ctx context.Context, caller domain.Caller, taskID uint, page ports.PageRequest) (ports.Page[domain.TaskHistoryEntry], error) {
	if caller.IsAdmin() {
		ok, err := s.repos.Tasks.Exists(ctx, taskID)
		if err != nil {
			return ports.Page[domain.TaskHistoryEntry]{}, err
		}
		if !ok {
			return ports.Page[domain.TaskHistoryEntry]{}, ErrTaskNotFound
		}
	} else if _, err := s.GetTask(ctx, caller, taskID); err != nil {
		return ports.Page[domain.TaskHistoryEntry]{}, err
	}
	page = s.pager.Clamp(page)
	items, total, err := s.repos.History.GetByTask(ctx, taskID, page)
	if err != nil {
		return ports.Page[domain.TaskHistoryEntry]{}, err
	}
	return ports.NewPage(items, page, total), nil
}

// GetBoard projects every task for admins and the caller's own tasks for
// employees.
func (s *taskService) GetBoard(ctx context.Context, caller domain.Caller) (ports.Board, error) {
	tasks, err := s.repos.Tasks.GetAll(ctx)
	if err != nil {
		return ports.Board{}, err
	}
	if !caller.IsAdmin() {
		own := tasks[:0:0]
		for _, t := range tasks {
			if t.IsAssignedTo(caller.UserID) {
				own = append(own, t)
			}
		}
		tasks = own
	}
	return ProjectBoard(tasks), nil
}

func (s *taskService) GetAnalytics(ctx context.Context, caller domain.Caller, timeFrame string) (*ports.Analytics, error) {
	if !caller.IsAdmin() {
		return nil, ErrTaskAccessDenied
	}
	tasks, err := s.repos.Tasks.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(tasks, timeFrame, s.now()), nil
}
