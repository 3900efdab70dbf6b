package audit

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"taskify-backend/internal/database"
	"taskify-backend/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog records a mutation. A failed audit write is logged and swallowed;
// it must never fail the request that triggered it.
func WriteLog(opts LogOptions) {
	// jsonb columns reject the empty string, use the JSON null literal.
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		logrus.Errorf("audit log write failed (%s %s #%d): %v", opts.Action, opts.EntityType, opts.EntityID, err)
	}
}
