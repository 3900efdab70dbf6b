package main

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"

	"taskify-backend/internal/audit"
	"taskify-backend/internal/auth"
	"taskify-backend/internal/config"
	"taskify-backend/internal/dashboard"
	"taskify-backend/internal/database"
	"taskify-backend/internal/models"
	"taskify-backend/internal/tasks"
	"taskify-backend/internal/users"
)

func main() {
	cfg := config.Load()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logrus.Errorf("unexpected error on %s %s: %v", c.Method(), c.Path(), err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Tasks
	protected.Get("/tasks/export", auth.RequireRole(models.RoleAdmin), tasks.ExportTasksHandler())
	protected.Post("/tasks", auth.RequireRole(models.RoleAdmin), tasks.CreateTaskHandler())
	protected.Get("/tasks", tasks.ListTasksHandler())
	protected.Get("/tasks/:id", tasks.GetTaskHandler())
	protected.Put("/tasks/:id", tasks.UpdateTaskHandler())
	protected.Patch("/tasks/:id/status", tasks.SetStatusHandler())
	protected.Patch("/tasks/:id/priority", auth.RequireRole(models.RoleAdmin), tasks.SetPriorityHandler())
	protected.Delete("/tasks/:id", auth.RequireRole(models.RoleAdmin), tasks.DeleteTaskHandler())

	// Own profile (before /users/:id so "profile" is not read as an id)
	protected.Get("/users/profile", users.GetProfileHandler())
	protected.Put("/users/profile", users.UpdateProfileHandler())

	// User administration
	protected.Get("/users", auth.RequireRole(models.RoleAdmin), users.ListUsersHandler())
	protected.Post("/users", auth.RequireRole(models.RoleAdmin), users.CreateUserHandler())
	protected.Put("/users/:id", auth.RequireRole(models.RoleAdmin), users.UpdateUserHandler())
	protected.Delete("/users/:id", auth.RequireRole(models.RoleAdmin), users.DeleteUserHandler())

	// Dashboard
	protected.Get("/dashboard/overview", dashboard.OverviewHandler())

	// Audit logs
	protected.Get("/audit-logs", auth.RequireRole(models.RoleAdmin), audit.ListAuditLogsHandler())

	logrus.Infof("server listening on port %s", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logrus.Fatal(err)
	}
}
