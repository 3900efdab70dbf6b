package audit

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskify-backend/internal/database"
	"taskify-backend/internal/models"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	UserID      uint               `json:"userId"`
	UserName    string             `json:"userName"`
	EntityType  string             `json:"entityType"`
	EntityID    uint               `json:"entityId"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	BeforeData  string             `json:"beforeData"`
	AfterData   string             `json:"afterData"`
	CreatedAt   string             `json:"createdAt"`
}

type AuditLogListResponse struct {
	Data  []AuditLogResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Pages int                `json:"pages"`
}

// GET /api/audit-logs (admin)
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		limit := c.QueryInt("limit", 20)
		if limit < 1 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		filtered := func() *gorm.DB {
			query := database.DB.Model(&models.AuditLog{})
			if entityType := c.Query("entityType"); entityType != "" {
				query = query.Where("entity_type = ?", entityType)
			}
			if action := c.Query("action"); action != "" {
				query = query.Where("action = ?", action)
			}
			return query
		}

		var total int64
		if err := filtered().Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Audit logs could not be counted")
		}

		var logs []models.AuditLog
		if err := filtered().
			Order("created_at desc").
			Order("id desc").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Audit logs could not be listed")
		}

		data := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			data = append(data, AuditLogResponse{
				ID:          l.ID,
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				BeforeData:  l.BeforeData,
				AfterData:   l.AfterData,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		pages := int((total + int64(limit) - 1) / int64(limit))

		return c.JSON(AuditLogListResponse{
			Data:  data,
			Total: total,
			Page:  page,
			Pages: pages,
		})
	}
}
