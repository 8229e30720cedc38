package model

import (
	"time"
)

// Plan is a purchasable tariff: a period of full access to mock tests and
// AI scoring. Prices are stored in tiyin (UZS minor unit) to keep all money
// arithmetic integral.
type Plan struct {
	ID           string    `gorm:"type:varchar(64);primaryKey" json:"id"` // slug, e.g. "pro-monthly"
	Name         string    `gorm:"type:varchar(128);not null" json:"name"`
	Amount       int64     `gorm:"not null" json:"amount"` // tiyin
	DurationDays int       `gorm:"not null" json:"duration_days"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Plan) TableName() string {
	return "plan"
}
