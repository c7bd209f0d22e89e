package db

import (
	"context"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// NewRepositories binds every repository to db, which may be a transaction.
func NewRepositories(db *gorm.DB, log *logger.Logger) ports.Repositories {
	return ports.Repositories{
		Tasks:         NewTaskRepository(db, log),
		Users:         NewUserRepository(db, log),
		Labels:        NewLabelRepository(db, log),
		History:       NewTaskHistoryRepository(db, log),
		Notifications: NewNotificationRepository(db, log),
		Comments:      NewCommentRepository(db, log),
		Attachments:   NewAttachmentRepository(db, log),
	}
}

type unitOfWork struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUnitOfWork(db *gorm.DB, log *logger.Logger) ports.UnitOfWork {
	return &unitOfWork{db: db, log: log}
}

// Do runs fn inside one database transaction. Returning an error from fn, or
// panicking, rolls back every write made through the repositories it got.
func (u *unitOfWork) Do(ctx context.Context, fn func(repos ports.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx, u.log))
	})
}
