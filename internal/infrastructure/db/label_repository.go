package db

import (
	"context"
	"errors"
	"strings"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type labelRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLabelRepository(db *gorm.DB, log *logger.Logger) ports.LabelRepository {
	return &labelRepository{db: db, log: log}
}

func (r *labelRepository) Create(ctx context.Context, label *domain.Label) error {
	if err := r.db.WithContext(ctx).Create(label).Error; err != nil {
		r.log.Errorw("label_repo_create_failed", "name", label.Name, "error", err)
		return err
	}
	r.log.Infow("label_repo_create_ok", "id", label.ID, "name", label.Name)
	return nil
}

func (r *labelRepository) GetByID(ctx context.Context, id uint) (*domain.Label, error) {
	var label domain.Label
	if err := r.db.WithContext(ctx).First(&label, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Errorw("label_repo_get_failed", "id", id, "error", err)
		}
		return nil, translate(err)
	}
	return &label, nil
}

// GetByIDs returns the labels that exist among ids; missing ids are skipped.
func (r *labelRepository) GetByIDs(ctx context.Context, ids []uint) ([]domain.Label, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var labels []domain.Label
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&labels).Error; err != nil {
		r.log.Errorw("label_repo_get_many_failed", "ids", ids, "error", err)
		return nil, err
	}
	return labels, nil
}

func (r *labelRepository) List(ctx context.Context, page ports.PageRequest) ([]domain.Label, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Label{}).Count(&total).Error; err != nil {
		r.log.Errorw("label_repo_list_failed", "error", err)
		return nil, 0, err
	}
	var labels []domain.Label
	q := r.db.WithContext(ctx).Order("id")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&labels).Error; err != nil {
		r.log.Errorw("label_repo_list_failed", "error", err)
		return nil, 0, err
	}
	return labels, total, nil
}

func (r *labelRepository) SearchByName(ctx context.Context, name string) ([]domain.Label, error) {
	var labels []domain.Label
	pattern := likePattern(strings.ToLower(strings.TrimSpace(name)))
	if err := r.db.WithContext(ctx).Where("LOWER(name) LIKE ? ESCAPE '\\'", pattern).Order("id").Find(&labels).Error; err != nil {
		r.log.Errorw("label_repo_search_failed", "name", name, "error", err)
		return nil, err
	}
	return labels, nil
}

func (r *labelRepository) Update(ctx context.Context, label *domain.Label) error {
	if err := r.db.WithContext(ctx).Save(label).Error; err != nil {
		r.log.Errorw("label_repo_update_failed", "id", label.ID, "error", err)
		return err
	}
	r.log.Infow("label_repo_update_ok", "id", label.ID)
	return nil
}

// Delete unlinks the label from every task before removing it.
func (r *labelRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_labels WHERE label_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Label{}, id).Error
	})
	if err != nil {
		r.log.Errorw("label_repo_delete_failed", "id", id, "error", err)
		return err
	}
	r.log.Infow("label_repo_delete_ok", "id", id)
	return nil
}
