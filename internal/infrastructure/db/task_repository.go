package db

import (
	"context"
	"errors"
	"strings"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type taskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepository(db *gorm.DB, log *logger.Logger) ports.TaskRepository {
	return &taskRepository{db: db, log: log}
}

// withRefs preloads what the board, analytics and DTOs read from a task.
func (r *taskRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("AssignedTo").
		Preload("CreatedBy").
		Preload("Labels", func(db *gorm.DB) *gorm.DB { return db.Order("labels.id") })
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		r.log.Errorw("task_repo_create_failed", "title", task.Title, "error", err)
		return err
	}
	r.log.Infow("task_repo_create_ok", "id", task.ID)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	if err := r.withRefs(ctx).First(&task, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Errorw("task_repo_get_failed", "id", id, "error", err)
		}
		return nil, translate(err)
	}
	return &task, nil
}

func (r *taskRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		r.log.Errorw("task_repo_exists_failed", "id", id, "error", err)
		return false, err
	}
	return count > 0, nil
}

func (r *taskRepository) GetAll(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.withRefs(ctx).Order("id").Find(&tasks).Error; err != nil {
		r.log.Errorw("task_repo_list_failed", "error", err)
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) applyFilter(q *gorm.DB, f ports.TaskFilter) *gorm.DB {
	if s := strings.TrimSpace(f.Title); s != "" {
		q = q.Where("LOWER(tasks.title) LIKE ? ESCAPE '\\'", likePattern(strings.ToLower(s)))
	}
	if s := strings.TrimSpace(f.Description); s != "" {
		q = q.Where("LOWER(tasks.description) LIKE ? ESCAPE '\\'", likePattern(strings.ToLower(s)))
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		q = q.Where("tasks.status = ?", s)
	}
	if s := strings.TrimSpace(f.Priority); s != "" {
		q = q.Where("tasks.priority = ?", s)
	}
	if f.AssignedToID != nil {
		q = q.Where("tasks.assigned_to_id = ?", *f.AssignedToID)
	}
	if len(f.LabelIDs) > 0 {
		q = q.Where("tasks.id IN (?)",
			r.db.Table("task_labels").Select("task_id").Where("label_id IN ?", f.LabelIDs))
	}
	return q
}

// Find returns one page of the tasks matching f, ordered by id, and the total
// match count.
func (r *taskRepository) Find(ctx context.Context, f ports.TaskFilter, page ports.PageRequest) ([]domain.Task, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&domain.Task{}), f).Count(&total).Error; err != nil {
		r.log.Errorw("task_repo_find_failed", "error", err)
		return nil, 0, err
	}

	var tasks []domain.Task
	q := r.applyFilter(r.withRefs(ctx), f).Order("tasks.id")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&tasks).Error; err != nil {
		r.log.Errorw("task_repo_find_failed", "error", err)
		return nil, 0, err
	}
	return tasks, total, nil
}

// Update writes the scalar columns and the foreign keys. Label links are
// managed by AddLabel and RemoveLabel.
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error; err != nil {
		r.log.Errorw("task_repo_update_failed", "id", task.ID, "error", err)
		return err
	}
	r.log.Infow("task_repo_update_ok", "id", task.ID)
	return nil
}

func (r *taskRepository) AddLabel(ctx context.Context, task *domain.Task, label *domain.Label) error {
	if err := r.db.WithContext(ctx).Model(task).Omit("Labels.*").Association("Labels").Append(label); err != nil {
		r.log.Errorw("task_repo_add_label_failed", "id", task.ID, "label_id", label.ID, "error", err)
		return err
	}
	r.log.Infow("task_repo_add_label_ok", "id", task.ID, "label_id", label.ID)
	return nil
}

func (r *taskRepository) RemoveLabel(ctx context.Context, task *domain.Task, label *domain.Label) error {
	if err := r.db.WithContext(ctx).Model(task).Association("Labels").Delete(label); err != nil {
		r.log.Errorw("task_repo_remove_label_failed", "id", task.ID, "label_id", label.ID, "error", err)
		return err
	}
	r.log.Infow("task_repo_remove_label_ok", "id", task.ID, "label_id", label.ID)
	return nil
}

func (r *taskRepository) ClearLabels(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Model(task).Association("Labels").Clear(); err != nil {
		r.log.Errorw("task_repo_clear_labels_failed", "id", task.ID, "error", err)
		return err
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Task{}, id).Error; err != nil {
		r.log.Errorw("task_repo_delete_failed", "id", id, "error", err)
		return err
	}
	r.log.Infow("task_repo_delete_ok", "id", id)
	return nil
}
