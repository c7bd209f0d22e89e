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

type attachmentRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttachmentRepository(db *gorm.DB, log *logger.Logger) ports.AttachmentRepository {
	return &attachmentRepository{db: db, log: log}
}

func (r *attachmentRepository) Create(ctx context.Context, a *domain.Attachment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		r.log.Errorw("attachment_repo_create_failed", "task_id", a.TaskID, "storage_key", a.StorageKey, "error", err)
		return err
	}
	r.log.Infow("attachment_repo_create_ok", "id", a.ID, "task_id", a.TaskID)
	return nil
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uint) (*domain.Attachment, error) {
	var a domain.Attachment
	if err := r.db.WithContext(ctx).Preload("UploadedBy").First(&a, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Errorw("attachment_repo_get_failed", "id", id, "error", err)
		}
		return nil, translate(err)
	}
	return &a, nil
}

func (r *attachmentRepository) GetByTask(ctx context.Context, taskID uint) ([]domain.Attachment, error) {
	var items []domain.Attachment
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("id").Find(&items).Error; err != nil {
		r.log.Errorw("attachment_repo_list_failed", "task_id", taskID, "error", err)
		return nil, err
	}
	return items, nil
}

func (r *attachmentRepository) GetByTaskPaged(ctx context.Context, taskID uint, page ports.PageRequest) ([]domain.Attachment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Attachment{}).Where("task_id = ?", taskID).Count(&total).Error; err != nil {
		r.log.Errorw("attachment_repo_list_failed", "task_id", taskID, "error", err)
		return nil, 0, err
	}
	var items []domain.Attachment
	q := r.db.WithContext(ctx).Preload("UploadedBy").Where("task_id = ?", taskID).Order("id")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&items).Error; err != nil {
		r.log.Errorw("attachment_repo_list_failed", "task_id", taskID, "error", err)
		return nil, 0, err
	}
	return items, total, nil
}

func (r *attachmentRepository) GetByUploader(ctx context.Context, userID uint) ([]domain.Attachment, error) {
	var items []domain.Attachment
	if err := r.db.WithContext(ctx).Where("uploaded_by_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		r.log.Errorw("attachment_repo_list_failed", "uploaded_by_id", userID, "error", err)
		return nil, err
	}
	return items, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Attachment{}, id).Error; err != nil {
		r.log.Errorw("attachment_repo_delete_failed", "id", id, "error", err)
		return err
	}
	r.log.Infow("attachment_repo_delete_ok", "id", id)
	return nil
}

func (r *attachmentRepository) DeleteByTask(ctx context.Context, taskID uint) error {
	res := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&domain.Attachment{})
	if res.Error != nil {
		r.log.Errorw("attachment_repo_delete_failed", "task_id", taskID, "error", res.Error)
		return res.Error
	}
	r.log.Infow("attachment_repo_delete_ok", "task_id", taskID, "rows", res.RowsAffected)
	return nil
}
