package db

import (
	"context"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type historyRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskHistoryRepository(db *gorm.DB, log *logger.Logger) ports.TaskHistoryRepository {
	return &historyRepository{db: db, log: log}
}

func (r *historyRepository) Create(ctx context.Context, entry *domain.TaskHistoryEntry) error {
	if err := r.db.WithContext(ctx).Omit("ModifiedBy").Create(entry).Error; err != nil {
		r.log.Errorw("history_repo_create_failed", "task_id", entry.TaskID, "field", entry.Field, "error", err)
		return err
	}
	return nil
}

// GetByTask pages a task's history newest first. Entries written in the same
// update share a timestamp, so the id breaks ties.
func (r *historyRepository) GetByTask(ctx context.Context, taskID uint, page ports.PageRequest) ([]domain.TaskHistoryEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.TaskHistoryEntry{}).Where("task_id = ?", taskID).Count(&total).Error; err != nil {
		r.log.Errorw("history_repo_list_failed", "task_id", taskID, "error", err)
		return nil, 0, err
	}

	var entries []domain.TaskHistoryEntry
	q := r.db.WithContext(ctx).
		Preload("ModifiedBy").
		Where("task_id = ?", taskID).
		Order("modified_at DESC").
		Order("id DESC")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&entries).Error; err != nil {
		r.log.Errorw("history_repo_list_failed", "task_id", taskID, "error", err)
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *historyRepository) DeleteByTask(ctx context.Context, taskID uint) error {
	res := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&domain.TaskHistoryEntry{})
	if res.Error != nil {
		r.log.Errorw("history_repo_delete_failed", "task_id", taskID, "error", res.Error)
		return res.Error
	}
	r.log.Infow("history_repo_delete_ok", "task_id", taskID, "rows", res.RowsAffected)
	return nil
}
