package models

import "time"

// SiteStatusActive is written on every successful deploy.
const SiteStatusActive = "Ativo"

// Site tracks the current state of one deployed domain.
type Site struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Domain    string    `gorm:"column:domain;uniqueIndex;not null" json:"domain"`
	Status    string    `gorm:"column:status" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"` // set on first insert only
	UpdatedAt time.Time `gorm:"column:updated_at" json:"-"`
}
