package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PredictionRecord is one scored /predict call, kept per subject.
type PredictionRecord struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	Subject string `gorm:"type:varchar(320);not null;index:idx_prediction_subject_created,priority:1"`

	Temperature float64 `gorm:"not null"`
	Vibration   float64 `gorm:"not null"`
	Current     float64 `gorm:"not null"`

	RUL              decimal.Decimal `gorm:"type:numeric(6,1);not null"`
	Status           string          `gorm:"type:varchar(20);not null"`
	RiskLevel        string          `gorm:"type:varchar(20);not null"`
	DaysUntilFailure int             `gorm:"not null"`
	RootCauses       datatypes.JSON  `gorm:"type:jsonb"`
	Confidence       decimal.Decimal `gorm:"type:numeric(6,1)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index:idx_prediction_subject_created,priority:2"`
}

func (PredictionRecord) TableName() string {
	return "prediction_records"
}
