package tasks

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"taskify-backend/internal/database"
	"taskify-backend/internal/models"
)

// GET /api/tasks/export (admin)
//
// Streams the full task list as an XLSX workbook with assignee and creator
// resolved to readable names.
func ExportTasksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tasks []models.Task
		if err := database.DB.
			Preload("AssignedTo").
			Preload("CreatedBy").
			Order("due_date asc").
			Order("id asc").
			Find(&tasks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tasks could not be loaded")
		}

		f := excelize.NewFile()
		defer f.Close()

		const sheet = "Tasks"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"ID", "Title", "Description", "Status", "Priority", "Due Date", "Assigned To", "Created By", "Assigned To All", "Created At"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for row, t := range tasks {
			values := []any{
				t.ID,
				t.Title,
				t.Description,
				string(t.Status),
				string(t.Priority),
				formatDate(t.DueDate),
				userLabel(t.AssignedTo),
				userLabel(&t.CreatedBy),
				t.IsAssignedToAll,
				t.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Export could not be generated")
		}

		filename := fmt.Sprintf("tasks-%s.xlsx", time.Now().Format("2006-01-02"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.SendStream(buf)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func userLabel(u *models.User) string {
	if u == nil || u.ID == 0 {
		return ""
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}
