package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskify-backend/internal/auth"
	"taskify-backend/internal/config"
	"taskify-backend/internal/database"
	"taskify-backend/internal/models"
)

var testCfg = &config.Config{
	JWTSecret: strings.Repeat("s", 32),
	JWTExpiry: time.Hour,
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	database.InitTest()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		},
	})
	app.Get("/api/audit-logs", auth.JWTMiddleware(testCfg), auth.RequireRole(models.RoleAdmin), ListAuditLogsHandler())
	return app
}

func get(t *testing.T, app *fiber.App, path string, user *models.User) *http.Response {
	t.Helper()
	tok, err := auth.GenerateToken(testCfg.JWTSecret, testCfg.JWTExpiry, user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestListAuditLogs(t *testing.T) {
	app := newTestApp(t)

	admin := &models.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, database.DB.Create(admin).Error)
	emp := &models.User{Name: "Worker", Email: "worker@example.com", PasswordHash: "x", Role: models.RoleEmployee}
	require.NoError(t, database.DB.Create(emp).Error)

	WriteLog(LogOptions{
		UserID: admin.ID, UserName: admin.Name,
		EntityType: "task", EntityID: 1,
		Action: models.AuditActionCreate, Description: "task created: t1",
		After: map[string]string{"title": "t1"},
	})
	WriteLog(LogOptions{
		UserID: admin.ID, UserName: admin.Name,
		EntityType: "task", EntityID: 1,
		Action: models.AuditActionDelete, Description: "task deleted: t1",
		Before: map[string]string{"title": "t1"},
	})

	forbidden := get(t, app, "/api/audit-logs", emp)
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)

	resp := get(t, app, "/api/audit-logs", admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body AuditLogListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, int64(2), body.Total)
	require.Len(t, body.Data, 2)

	// Newest first.
	assert.Equal(t, models.AuditActionDelete, body.Data[0].Action)
	assert.Equal(t, models.AuditActionCreate, body.Data[1].Action)
	assert.Equal(t, "Admin", body.Data[0].UserName)
	assert.JSONEq(t, `{"title":"t1"}`, body.Data[1].AfterData)
	assert.Equal(t, "null", body.Data[1].BeforeData)

	filtered := get(t, app, "/api/audit-logs?action=create", admin)
	var filteredBody AuditLogListResponse
	require.NoError(t, json.NewDecoder(filtered.Body).Decode(&filteredBody))
	assert.Equal(t, int64(1), filteredBody.Total)
}
