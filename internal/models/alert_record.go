package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AlertRecord is written when a machine's severity changes between scans.
type AlertRecord struct {
	ID               uint64          `gorm:"primaryKey;autoIncrement"`
	MachineID        string          `gorm:"type:varchar(32);not null;index"`
	Severity         string          `gorm:"type:varchar(20);not null;index"`
	PreviousSeverity string          `gorm:"type:varchar(20)"`
	Status           string          `gorm:"type:varchar(20);not null"`
	HealthScore      decimal.Decimal `gorm:"type:numeric(6,1)"`
	DaysUntilFailure int             `gorm:"not null"`
	RootCauses       datatypes.JSON  `gorm:"type:jsonb"`
	Message          string          `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (AlertRecord) TableName() string {
	return "alert_records"
}
