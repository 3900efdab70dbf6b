package users

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"taskify-backend/internal/auth"
	"taskify-backend/internal/database"
	"taskify-backend/internal/models"
	"taskify-backend/internal/validation"
)

type UserResponse struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	CreatedAt string          `json:"createdAt"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin employee"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role" validate:"omitempty,oneof=admin employee"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

func userResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/users (admin)
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := database.DB.Order("created_at desc").Order("id desc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Users could not be listed")
		}

		res := make([]UserResponse, 0, len(users))
		for i := range users {
			res = append(res, userResponse(&users[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/users (admin)
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var count int64
		database.DB.Model(&models.User{}).
			Where("email = ?", body.Email).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "User already exists")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Password could not be hashed")
		}

		role := models.UserRole(body.Role)
		if role == "" {
			role = models.RoleEmployee
		}

		user := models.User{
			Name:         strings.TrimSpace(body.Name),
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         role,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "User already exists")
		}

		return c.Status(fiber.StatusCreated).JSON(userResponse(&user))
	}
}

// PUT /api/users/:id (admin)
func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := database.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		updates := map[string]any{}
		if body.Name != nil {
			updates["name"] = strings.TrimSpace(*body.Name)
		}
		if body.Email != nil {
			updates["email"] = strings.TrimSpace(strings.ToLower(*body.Email))
		}
		if body.Role != nil {
			updates["role"] = *body.Role
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Email already in use")
			}
		}

		return c.JSON(userResponse(&user))
	}
}

// DELETE /api/users/:id (admin)
func DeleteUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, _, err := auth.CallerIdentity(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		if user.ID == callerID {
			return fiber.NewError(fiber.StatusBadRequest, "Cannot delete your own account")
		}

		if err := database.DB.Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "User could not be deleted")
		}

		return c.JSON(fiber.Map{"message": "User deleted successfully"})
	}
}

// GET /api/users/profile
func GetProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, _, err := auth.CallerIdentity(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", callerID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		return c.JSON(userResponse(&user))
	}
}

// PUT /api/users/profile
//
// Restricted to name and email. Role changes go through the admin route.
func UpdateProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, _, err := auth.CallerIdentity(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", callerID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		var body UpdateProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		updates := map[string]any{}
		if body.Name != nil {
			updates["name"] = strings.TrimSpace(*body.Name)
		}
		if body.Email != nil {
			updates["email"] = strings.TrimSpace(strings.ToLower(*body.Email))
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Email already in use")
			}
		}

		return c.JSON(userResponse(&user))
	}
}
