package db

import (
	"github.com/taskboard/backend/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// AutoMigrate all models
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Label{},
		&domain.Task{},
		&domain.TaskHistoryEntry{},
		&domain.Notification{},
		&domain.Comment{},
		&domain.Attachment{},
	)
	if err != nil {
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		return err
	}

	return nil
}

func createCustomIndexes(db *gorm.DB) error {
	// Inbox reads filter by recipient and read flag, newest first.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_notifications_inbox
		ON notifications (user_id, read, created_at)
	`).Error; err != nil {
		return err
	}

	// History is always read per task, newest first.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_task_history_task_time
		ON task_history (task_id, modified_at)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_comments_task_parent
		ON comments (task_id, parent_id)
	`).Error; err != nil {
		return err
	}

	return nil
}
