package models

import "time"

const (
	DeployStatusSuccess = "SUCESSO"
	DeployStatusFailure = "FALHA"
)

// DeployLog records one deploy attempt. Rows are never updated or deleted.
type DeployLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Domain    string    `gorm:"column:domain;index;not null" json:"domain"` // not a foreign key
	Status    string    `gorm:"column:status;not null" json:"status"`
	Message   string    `gorm:"column:message" json:"message,omitempty"`
	Timestamp time.Time `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}
