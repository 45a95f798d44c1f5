package database

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yukikurage/todo-tracker/internal/models"
)

// Migrate creates or updates the todos table
func Migrate(db *gorm.DB, logr log.FieldLogger) error {
	logr.Info("Running database migrations...")
	if err := db.AutoMigrate(&models.Todo{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logr.Info("Database migrations completed")
	return nil
}
