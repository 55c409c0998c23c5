package db

import (
	"github.com/taskflow/backend/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return err
	}

	// Listing filters by status and sorts newest first.
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tasks_status_created_at
		ON tasks (status, created_at DESC)
	`).Error
}
