// Package audit writes domain-level audit entries: what a save replaced,
// what a delete removed. Request-level entries come from the middleware.
package audit

import (
	"encoding/json"
	"fmt"

	"aidtrack/internal/models"

	"gorm.io/gorm"
)

// Record writes one audit row. payload is marshalled to JSON; a marshal
// failure degrades to a note rather than losing the entry.
func Record(db *gorm.DB, userID uint, action, entityType, entityID string, payload interface{}) {
	body := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			body = fmt.Sprintf("unmarshallable payload: %v", err)
		} else {
			body = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:     &userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    body,
	}
	_ = db.Create(&entry).Error
}
