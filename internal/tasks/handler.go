package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskify-backend/internal/audit"
	"taskify-backend/internal/auth"
	"taskify-backend/internal/database"
	"taskify-backend/internal/models"
	"taskify-backend/internal/validation"
)

type TaskUserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TaskResponse struct {
	ID              uint                `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	DueDate         *time.Time          `json:"dueDate"`
	Priority        models.TaskPriority `json:"priority"`
	Status          models.TaskStatus   `json:"status"`
	AssignedTo      *TaskUserResponse   `json:"assignedTo"`
	CreatedBy       *TaskUserResponse   `json:"createdBy"`
	IsAssignedToAll bool                `json:"isAssignedToAll"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo  Assignee   `json:"assignedTo"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo  *uint      `json:"assignedTo"`
	Status      *string    `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type PriorityRequest struct {
	Priority string `json:"priority"`
}

type BulkCreateResponse struct {
	Message       string         `json:"message"`
	Tasks         []TaskResponse `json:"tasks"`
	AssignedToAll bool           `json:"assignedToAll"`
}

type TaskListResponse struct {
	Data  []TaskResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
}

func userRef(u *models.User) *TaskUserResponse {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &TaskUserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func taskResponse(t *models.Task) TaskResponse {
	return TaskResponse{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		DueDate:         t.DueDate,
		Priority:        t.Priority,
		Status:          t.Status,
		AssignedTo:      userRef(t.AssignedTo),
		CreatedBy:       userRef(&t.CreatedBy),
		IsAssignedToAll: t.IsAssignedToAll,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// loadTask fetches a task with both user references resolved.
func loadTask(id any) (*models.Task, error) {
	var task models.Task
	if err := database.DB.
		Preload("AssignedTo").
		Preload("CreatedBy").
		First(&task, "id = ?", id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Task not found")
	}
	return &task, nil
}

func callerName(userID uint) string {
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return ""
	}
	return user.Name
}

// POST /api/tasks (admin)
func CreateTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, _, err := auth.CallerIdentity(c)
		if err != nil {
			return err
		}

		var body CreateTaskRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		body.Title = strings.TrimSpace(body.Title)
		if body.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "The field 'title' is required")
		}

		priority := models.TaskPriority(body.Priority)
		if priority == "" {
			priority = models.PriorityLow
		}

		if body.AssignedTo.All {
			return createForAllEmployees(c, callerID, &body, priority)
		}

		task := models.Task{
			Title:       body.Title,
			Description: body.Description,
			DueDate:     body.DueDate,
			Priority:    priority,
			Status:      models.StatusPending,
			CreatedByID: callerID,
		}

		if body.AssignedTo.ID != nil {
			var assignee models.User
			if err := database.DB.First(&assignee, "id = ?", *body.AssignedTo.ID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Assignee not found")
			}
			task.AssignedToID = &assignee.ID
		}

		if err := database.DB.Create(&task).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Task could not be created")
		}

		created, err := loadTask(task.ID)
		if err != nil {
			return err
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      callerID,
			UserName:    callerName(callerID),
			EntityType:  "task",
			EntityID:    created.ID,
			Action:      models.AuditActionCreate,
			Description: "task created: " + created.Title,
			After:       taskResponse(created),
		})

		return c.Status(fiber.StatusCreated).JSON(taskResponse(created))
	}
}

// createForAllEmployees fans a single request out into one independent task
// per employee. The inserts are not wrapped in a transaction; a failure
// partway through leaves the tasks created so far in place.
func createForAllEmployees(c *fiber.Ctx, callerID uint, body *CreateTaskRequest, priority models.TaskPriority) error {
	var employees []models.User
	if err := database.DB.Where("role = ?", models.RoleEmployee).Find(&employees).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Employees could not be loaded")
	}
	if len(employees) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No employees found to assign task to")
	}

	actorName := callerName(callerID)

	created := make([]TaskResponse, 0, len(employees))
	for i := range employees {
		task := models.Task{
			Title:           body.Title,
			Description:     body.Description,
			DueDate:         body.DueDate,
			Priority:        priority,
			Status:          models.StatusPending,
			AssignedToID:    &employees[i].ID,
			CreatedByID:     callerID,
			IsAssignedToAll: true,
		}

		if err := database.DB.Create(&task).Error; err != nil {
			logrus.Errorf("assign-to-all fan-out failed after %d of %d tasks: %v", len(created), len(employees), err)
			return fiber.NewError(fiber.StatusInternalServerError, "Task creation failed partway through")
		}

		full, err := loadTask(task.ID)
		if err != nil {
			return err
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      callerID,
			UserName:    actorName,
			EntityType:  "task",
			EntityID:    full.ID,
			Action:      models.AuditActionCreate,
			Description: "task created (assigned to all): " + full.Title,
			After:       taskResponse(full),
		})

		created = append(created, taskResponse(full))
	}

	logrus.Infof("task %q assigned to all %d employees", body.Title, len(created))

	return c.Status(fiber.StatusCreated).JSON(BulkCreateResponse{
		Message:       fmt.Sprintf("Task created for %d employees", len(created)),
		Tasks:         created,
		AssignedToAll: true,
	})
}

// GET /api/tasks
func ListTasksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, role, err := auth.CallerIdentity(c)
		if err != nil {
			return err
		}

		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		limit := c.QueryInt("limit", 10)
		if limit < 1 {
			limit = 10
		}
		if limit > 50 {
			limit = 50
		}

		filtered := func() *gorm.DB {
			query := database.DB.Model(&models.Task{})

			if status := c.Query("status"); status != "" {
				query = query.Where("status = ?", status)
			}
			if priority := c.Query("priority"); priority != "" {
				query = query.Where("priority = ?", priority)
			}
			if search := c.Query("search"); search != "" {
				query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
			}

			// Employees only ever see their own tasks; any requested assignedTo
			// filter is overridden. Admins filter freely.
			if role == models.RoleEmployee {
				query = query.Where("assigned_to_id = ?", callerID)
			} else if assignedTo := c.Query("assignedTo"); assignedTo != "" {
				query = query.Where("assigned_to_id = ?", assignedTo)
			}
			return query
		}

		var total int64
		if err := filtered().Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tasks could not be counted")
		}

		var tasks []models.Task
		if err := filtered().
			Order("due_date asc").
			Order("id asc").
			Offset((page - 1) * limit).
			Limit(limit).
			Preload("AssignedTo").
			Preload("CreatedBy").
			Find(&tasks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tasks could not be listed")
		}

		data := make([]TaskResponse, 0, len(tasks))
		for i := range tasks {
			data = append(data, taskResponse(&tasks[i]))
		}

		pages := int((total + int64(limit) - 1) / int64(limit))

		return c.JSON(TaskListResponse{
			Data:  data,
			Total: total,
			Page:  page,
			Pages: pages,
		})
	}
}

// GET /api/tasks/:id
//
// Deliberately not assignee-scoped: a direct fetch by id works for any
// authenticated caller even though the list endpoint filters for employees.
func GetTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		task, err := loadTask(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(taskResponse(task))
	}
}

// requireOwnership rejects employees touching a task not assigned to them.
// Admins pass unconditionally.
func requireOwnership(task *models.Task, callerID uint, role models.UserRole) error {
	if role != models.RoleEmployee {
		return nil
	}
	if task.AssignedToID == nil || *task.AssignedToID != callerID {
		return fiber.NewError(fiber.StatusForbidden, "Not authorized to update this task")
	}
	return nil
}

// PUT /api/tasks/:id
func UpdateTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, role, err := auth.CallerIdentity(c)
		if err != nil {
			return err
		}

		task, err := loadTask(c.Params("id"))
		if err != nil {
			return err
		}

		var body UpdateTaskRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		if err := requireOwnership(task, callerID, role); err != nil {
			return err
		}

		before := taskResponse(task)

		updates := map[string]any{}
		if role == models.RoleEmployee {
			// Employees may only progress the status; every other field in
			// the body is silently ignored.
			if body.Status != nil {
				updates["status"] = *body.Status
			}
		} else {
			if body.Title != nil {
				updates["title"] = strings.TrimSpace(*body.Title)
			}
			if body.Description != nil {
				updates["description"] = *body.Description
			}
			if body.DueDate != nil {
				updates["due_date"] = *body.DueDate
			}
			if body.Priority != nil {
				updates["priority"] = *body.Priority
			}
			if body.Status != nil {
				updates["status"] = *body.Status
			}
			if body.AssignedTo != nil {
				var assignee models.User
				if err := database.DB.First(&assignee, "id = ?", *body.AssignedTo).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Assignee not found")
				}
				updates["assigned_to_id"] = assignee.ID
			}
		}

		if len(updates) > 0 {
			if err := database.DB.Model(task).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Task could not be updated")
			}
		}

		updated, err := loadTask(task.ID)
		if err != nil {
			return err
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      callerID,
			UserName:    callerName(callerID),
			EntityType:  "task",
			EntityID:    updated.ID,
			Action:      models.AuditActionUpdate,
			Description: "task updated: " + updated.Title,
			Before:      before,
			After:       taskResponse(updated),
		})

		return c.JSON(taskResponse(updated))
	}
}

// PATCH /api/tasks/:id/status
func SetStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, role, err := auth.CallerIdentity(c)
		if err != nil {
			return err
		}

		var body StatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		status := models.TaskStatus(body.Status)
		if !status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid status")
		}

		task, err := loadTask(c.Params("id"))
		if err != nil {
			return err
		}
		if err := requireOwnership(task, callerID, role); err != nil {
			return err
		}

		before := taskResponse(task)

		if err := database.DB.Model(task).Update("status", status).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Status could not be updated")
		}

		updated, err := loadTask(task.ID)
		if err != nil {
			return err
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      callerID,
			UserName:    callerName(callerID),
			EntityType:  "task",
			EntityID:    updated.ID,
			Action:      models.AuditActionUpdate,
			Description: "status set to " + string(status),
			Before:      before,
			After:       taskResponse(updated),
		})

		return c.JSON(taskResponse(updated))
	}
}

// PATCH /api/tasks/:id/priority (admin)
func SetPriorityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, _, err := auth.CallerIdentity(c)
		if err != nil {
			return err
		}

		var body PriorityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		priority := models.TaskPriority(body.Priority)
		if !priority.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid priority")
		}

		task, err := loadTask(c.Params("id"))
		if err != nil {
			return err
		}

		before := taskResponse(task)

		if err := database.DB.Model(task).Update("priority", priority).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Priority could not be updated")
		}

		updated, err := loadTask(task.ID)
		if err != nil {
			return err
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      callerID,
			UserName:    callerName(callerID),
			EntityType:  "task",
			EntityID:    updated.ID,
			Action:      models.AuditActionUpdate,
			Description: "priority set to " + string(priority),
			Before:      before,
			After:       taskResponse(updated),
		})

		return c.JSON(taskResponse(updated))
	}
}

// DELETE /api/tasks/:id (admin)
func DeleteTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, _, err := auth.CallerIdentity(c)
		if err != nil {
			return err
		}

		task, err := loadTask(c.Params("id"))
		if err != nil {
			return err
		}

		if err := database.DB.Delete(&models.Task{}, "id = ?", task.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Task could not be deleted")
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      callerID,
			UserName:    callerName(callerID),
			EntityType:  "task",
			EntityID:    task.ID,
			Action:      models.AuditActionDelete,
			Description: "task deleted: " + task.Title,
			Before:      taskResponse(task),
		})

		return c.JSON(fiber.Map{"message": "Task deleted"})
	}
}
