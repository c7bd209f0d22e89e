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

type userRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepository(db *gorm.DB, log *logger.Logger) ports.UserRepository {
	return &userRepository{db: db, log: log}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.Errorw("user_repo_create_failed", "email", user.Email, "error", err)
		return err
	}
	r.log.Infow("user_repo_create_ok", "id", user.ID, "role", user.Role)
	return nil
}

func (r *userRepository) first(ctx context.Context, op string, query any, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Errorw("user_repo_"+op+"_failed", "error", err)
		}
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.first(ctx, "get", "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "get_by_email", "email = ?", email)
}

func (r *userRepository) GetByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("id").Find(&users).Error; err != nil {
		r.log.Errorw("user_repo_get_by_role_failed", "role", role, "error", err)
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role domain.UserRole) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", role).Count(&count).Error; err != nil {
		r.log.Errorw("user_repo_count_failed", "role", role, "error", err)
		return 0, err
	}
	return count, nil
}

// Search matches query against name and email, case-insensitively.
func (r *userRepository) Search(ctx context.Context, query string, role *domain.UserRole, page ports.PageRequest) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if query = strings.ToLower(strings.TrimSpace(query)); query != "" {
		p := likePattern(query)
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'", p, p)
	}
	if role != nil {
		q = q.Where("role = ?", *role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		r.log.Errorw("user_repo_search_failed", "error", err)
		return nil, 0, err
	}
	var users []domain.User
	q = q.Order("id")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&users).Error; err != nil {
		r.log.Errorw("user_repo_search_failed", "error", err)
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		r.log.Errorw("user_repo_update_failed", "id", user.ID, "error", err)
		return err
	}
	r.log.Infow("user_repo_update_ok", "id", user.ID)
	return nil
}

// Delete removes the account together with what only makes sense while it
// exists: its inbox, its comments and its attachment records. Tasks and
// history entries that reference it keep their rows with the link cleared.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Task{}).Where("assigned_to_id = ?", id).Update("assigned_to_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Task{}).Where("created_by_id = ?", id).Update("created_by_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.TaskHistoryEntry{}).Where("modified_by_id = ?", id).Update("modified_by_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("created_by_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("uploaded_by_id = ?", id).Delete(&domain.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.User{}, id).Error
	})
	if err != nil {
		r.log.Errorw("user_repo_delete_failed", "id", id, "error", err)
		return err
	}
	r.log.Infow("user_repo_delete_ok", "id", id)
	return nil
}
