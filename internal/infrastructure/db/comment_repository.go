package db

import (
	"context"
	"errors"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type commentRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepository(db *gorm.DB, log *logger.Logger) ports.CommentRepository {
	return &commentRepository{db: db, log: log}
}

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		r.log.Errorw("comment_repo_create_failed", "task_id", c.TaskID, "error", err)
		return err
	}
	r.log.Infow("comment_repo_create_ok", "id", c.ID, "task_id", c.TaskID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*domain.Comment, error) {
	var c domain.Comment
	if err := r.db.WithContext(ctx).Preload("CreatedBy").First(&c, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Errorw("comment_repo_get_failed", "id", id, "error", err)
		}
		return nil, translate(err)
	}
	return &c, nil
}

func (r *commentRepository) byTask(ctx context.Context, taskID uint) *gorm.DB {
	return r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("created_at").Order("id")
}

// GetByTask returns every comment of the task in creation order.
func (r *commentRepository) GetByTask(ctx context.Context, taskID uint) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := r.byTask(ctx, taskID).Preload("CreatedBy").Find(&comments).Error; err != nil {
		r.log.Errorw("comment_repo_list_failed", "task_id", taskID, "error", err)
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) GetByTaskPaged(ctx context.Context, taskID uint, page ports.PageRequest) ([]domain.Comment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Comment{}).Where("task_id = ?", taskID).Count(&total).Error; err != nil {
		r.log.Errorw("comment_repo_list_failed", "task_id", taskID, "error", err)
		return nil, 0, err
	}
	var comments []domain.Comment
	q := r.byTask(ctx, taskID).Preload("CreatedBy")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&comments).Error; err != nil {
		r.log.Errorw("comment_repo_list_failed", "task_id", taskID, "error", err)
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *commentRepository) Update(ctx context.Context, c *domain.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error; err != nil {
		r.log.Errorw("comment_repo_update_failed", "id", c.ID, "error", err)
		return err
	}
	r.log.Infow("comment_repo_update_ok", "id", c.ID)
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Comment{}).Error; err != nil {
		r.log.Errorw("comment_repo_delete_failed", "ids", ids, "error", err)
		return err
	}
	r.log.Infow("comment_repo_delete_ok", "ids", ids)
	return nil
}

func (r *commentRepository) DeleteByTask(ctx context.Context, taskID uint) error {
	res := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&domain.Comment{})
	if res.Error != nil {
		r.log.Errorw("comment_repo_delete_failed", "task_id", taskID, "error", res.Error)
		return res.Error
	}
	r.log.Infow("comment_repo_delete_ok", "task_id", taskID, "rows", res.RowsAffected)
	return nil
}
