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

type notificationRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepository(db *gorm.DB, log *logger.Logger) ports.NotificationRepository {
	return &notificationRepository{db: db, log: log}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(n).Error; err != nil {
		r.log.Errorw("notification_repo_create_failed", "user_id", n.UserID, "error", err)
		return err
	}
	r.log.Infow("notification_repo_create_ok", "id", n.ID, "user_id", n.UserID)
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*domain.Notification, error) {
	var n domain.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Errorw("notification_repo_get_failed", "id", id, "error", err)
		}
		return nil, translate(err)
	}
	return &n, nil
}

func (r *notificationRepository) inbox(ctx context.Context, userID uint, unreadOnly bool) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	return q
}

// GetByUser pages the inbox newest first.
func (r *notificationRepository) GetByUser(ctx context.Context, userID uint, unreadOnly bool, page ports.PageRequest) ([]domain.Notification, int64, error) {
	var total int64
	if err := r.inbox(ctx, userID, unreadOnly).Count(&total).Error; err != nil {
		r.log.Errorw("notification_repo_list_failed", "user_id", userID, "error", err)
		return nil, 0, err
	}
	var items []domain.Notification
	q := r.inbox(ctx, userID, unreadOnly).Order("created_at DESC").Order("id DESC")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&items).Error; err != nil {
		r.log.Errorw("notification_repo_list_failed", "user_id", userID, "error", err)
		return nil, 0, err
	}
	return items, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.inbox(ctx, userID, true).Count(&count).Error; err != nil {
		r.log.Errorw("notification_repo_count_failed", "user_id", userID, "error", err)
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		r.log.Errorw("notification_repo_mark_read_failed", "id", id, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrRecordNotFound
	}
	return nil
}

// DetachTask keeps the notifications of a deleted task readable by clearing
// their task link.
func (r *notificationRepository) DetachTask(ctx context.Context, taskID uint) error {
	res := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("task_id = ?", taskID).Update("task_id", nil)
	if res.Error != nil {
		r.log.Errorw("notification_repo_detach_failed", "task_id", taskID, "error", res.Error)
		return res.Error
	}
	r.log.Infow("notification_repo_detach_ok", "task_id", taskID, "rows", res.RowsAffected)
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Notification{}, id).Error; err != nil {
		r.log.Errorw("notification_repo_delete_failed", "id", id, "error", err)
		return err
	}
	r.log.Infow("notification_repo_delete_ok", "id", id)
	return nil
}
