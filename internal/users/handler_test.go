package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
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

	api := app.Group("/api")
	protected := api.Group("", auth.JWTMiddleware(testCfg))

	protected.Get("/users/profile", GetProfileHandler())
	protected.Put("/users/profile", UpdateProfileHandler())
	protected.Get("/users", auth.RequireRole(models.RoleAdmin), ListUsersHandler())
	protected.Post("/users", auth.RequireRole(models.RoleAdmin), CreateUserHandler())
	protected.Put("/users/:id", auth.RequireRole(models.RoleAdmin), UpdateUserHandler())
	protected.Delete("/users/:id", auth.RequireRole(models.RoleAdmin), DeleteUserHandler())

	return app
}

func seedUser(t *testing.T, name string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhash",
		Role:         role,
	}
	require.NoError(t, database.DB.Create(user).Error)
	return user
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	tok, err := auth.GenerateToken(testCfg.JWTSecret, testCfg.JWTExpiry, user)
	require.NoError(t, err)
	return tok
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestListUsers_AdminOnlyAndNoHashLeak(t *testing.T) {
	app := newTestApp(t)
	admin := seedUser(t, "Admin", models.RoleAdmin)
	emp := seedUser(t, "Worker", models.RoleEmployee)

	forbidden := doJSON(t, app, http.MethodGet, "/api/users", tokenFor(t, emp), nil)
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)

	resp := doJSON(t, app, http.MethodGet, "/api/users", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "notarealhash", "password hashes must never appear in responses")

	var users []UserResponse
	require.NoError(t, json.Unmarshal(raw, &users))
	require.Len(t, users, 2)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	admin := seedUser(t, "Admin", models.RoleAdmin)
	adminTok := tokenFor(t, admin)

	first := doJSON(t, app, http.MethodPost, "/api/users", adminTok, fiber.Map{
		"name": "New", "email": "new@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second := doJSON(t, app, http.MethodPost, "/api/users", adminTok, fiber.Map{
		"name": "Clone", "email": "new@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, second.StatusCode)

	var count int64
	database.DB.Model(&models.User{}).Where("email = ?", "new@example.com").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteUser_SelfDeleteGuard(t *testing.T) {
	app := newTestApp(t)
	admin := seedUser(t, "Admin", models.RoleAdmin)
	other := seedUser(t, "Other", models.RoleEmployee)
	adminTok := tokenFor(t, admin)

	self := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, self.StatusCode)

	var count int64
	database.DB.Model(&models.User{}).Where("id = ?", admin.ID).Count(&count)
	assert.Equal(t, int64(1), count, "self-delete must not remove the account")

	ok := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", other.ID), adminTok, nil)
	require.Equal(t, http.StatusOK, ok.StatusCode)

	missing := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", other.ID), adminTok, nil)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestUpdateUser_PatchSemantics(t *testing.T) {
	app := newTestApp(t)
	admin := seedUser(t, "Admin", models.RoleAdmin)
	emp := seedUser(t, "Worker", models.RoleEmployee)

	resp := doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d", emp.ID), tokenFor(t, admin), fiber.Map{
		"role": "admin",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.User
	require.NoError(t, database.DB.First(&updated, emp.ID).Error)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.Equal(t, "Worker", updated.Name, "absent fields stay untouched")
	assert.Equal(t, "worker@example.com", updated.Email)
}

func TestProfile_ReadAndUpdateOwnRecord(t *testing.T) {
	app := newTestApp(t)
	emp := seedUser(t, "Worker", models.RoleEmployee)
	empTok := tokenFor(t, emp)

	resp := doJSON(t, app, http.MethodGet, "/api/users/profile", empTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&profile))
	assert.Equal(t, emp.ID, profile.ID)
	assert.Equal(t, "worker@example.com", profile.Email)

	upd := doJSON(t, app, http.MethodPut, "/api/users/profile", empTok, fiber.Map{
		"name": "Renamed Worker",
	})
	require.Equal(t, http.StatusOK, upd.StatusCode)

	var stored models.User
	require.NoError(t, database.DB.First(&stored, emp.ID).Error)
	assert.Equal(t, "Renamed Worker", stored.Name)
	assert.Equal(t, models.RoleEmployee, stored.Role)
}
