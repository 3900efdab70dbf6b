package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskify-backend/internal/auth"
	"taskify-backend/internal/database"
	"taskify-backend/internal/models"
)

type StatusCounts struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
}

type PriorityCounts struct {
	Low    int64 `json:"low"`
	Medium int64 `json:"medium"`
	High   int64 `json:"high"`
}

type OverviewResponse struct {
	Total    int64          `json:"total"`
	Status   StatusCounts   `json:"status"`
	Priority PriorityCounts `json:"priority"`
	Overdue  int64          `json:"overdue"`
}

type countRow struct {
	Name  string
	Count int64
}

// GET /api/dashboard/overview
//
// Admins see counts over every task, employees over their own tasks only —
// the same scoping rule as the task list.
func OverviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, role, err := auth.CallerIdentity(c)
		if err != nil {
			return err
		}

		scoped := func() *gorm.DB {
			q := database.DB.Model(&models.Task{})
			if role == models.RoleEmployee {
				q = q.Where("assigned_to_id = ?", callerID)
			}
			return q
		}

		var res OverviewResponse

		if err := scoped().Count(&res.Total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tasks could not be counted")
		}

		var statusRows []countRow
		if err := scoped().
			Select("status as name, count(*) as count").
			Group("status").
			Scan(&statusRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Status counts could not be loaded")
		}
		for _, r := range statusRows {
			switch models.TaskStatus(r.Name) {
			case models.StatusPending:
				res.Status.Pending = r.Count
			case models.StatusInProgress:
				res.Status.InProgress = r.Count
			case models.StatusCompleted:
				res.Status.Completed = r.Count
			}
		}

		var priorityRows []countRow
		if err := scoped().
			Select("priority as name, count(*) as count").
			Group("priority").
			Scan(&priorityRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Priority counts could not be loaded")
		}
		for _, r := range priorityRows {
			switch models.TaskPriority(r.Name) {
			case models.PriorityLow:
				res.Priority.Low = r.Count
			case models.PriorityMedium:
				res.Priority.Medium = r.Count
			case models.PriorityHigh:
				res.Priority.High = r.Count
			}
		}

		if err := scoped().
			Where("due_date IS NOT NULL AND due_date < ? AND status <> ?", time.Now(), models.StatusCompleted).
			Count(&res.Overdue).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Overdue count could not be loaded")
		}

		return c.JSON(res)
	}
}
