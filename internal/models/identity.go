package models

import "time"

// Identity is a login subject. Rows are created on first OTP request.
type Identity struct {
	Email       string     `gorm:"type:varchar(320);primaryKey"`
	DisplayName string     `gorm:"type:varchar(200);not null"`
	LastLoginAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Identity) TableName() string {
	return "identities"
}
