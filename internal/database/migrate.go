package database

import (
	"github.com/sjperalta/condominio-api/internal/models"

	"gorm.io/gorm"
)

// Migrate runs schema auto-migration for all models
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Floor{},
		&models.User{},
		&models.RefreshToken{},
		&models.Notification{},
		&models.AuditLog{},
		&models.MaintenanceEvent{},
		&models.MonthlyPayment{},
		&models.EventPayment{},
		&models.Expense{},
		&models.SystemBalance{},
		&models.MonthlyDueConfig{},
	)
}
