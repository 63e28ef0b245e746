package db

import (
	"github.com/mohith182/turbine-ai/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}
	return db.Gorm.AutoMigrate(
		&models.Identity{},
		&models.PredictionRecord{},
		&models.AlertRecord{},
	)
}
