package services

import (
	"encoding/json"
	"log"

	"billing-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LogAction appends an audit entry inside the caller's transaction so the
// entry commits or rolls back with the write it describes.
func LogAction(tx *gorm.DB, actorID, action, entityType, entityID string, before, after any, metadata map[string]any) {
	entry := models.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Before:     toJSON(before),
		After:      toJSON(after),
		Metadata:   toJSON(metadata),
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if err := tx.Create(&entry).Error; err != nil {
		// The audited write matters more than its log line.
		log.Printf("audit log write failed: %v", err)
	}
}

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
