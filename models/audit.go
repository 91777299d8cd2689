package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records who did what to which aggregate. Write paths of the
// ledger append entries; nothing ever updates or deletes one.
type AuditLog struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ActorID    *string        `json:"actor_id" gorm:"type:VARCHAR(64);index"`
	Action     string         `json:"action" gorm:"type:VARCHAR(50);not null"`
	EntityType string         `json:"entity_type" gorm:"type:VARCHAR(100);not null"`
	EntityID   string         `json:"entity_id" gorm:"type:VARCHAR(100);not null;index"`
	Before     datatypes.JSON `json:"before" gorm:"type:jsonb"`
	After      datatypes.JSON `json:"after" gorm:"type:jsonb"`
	Metadata   datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
}
