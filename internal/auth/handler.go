package auth

import (
	"errors"
	"strings"
	"time"

	"erp-backend/internal/apperr"
	"erp-backend/internal/config"
	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID       uint            `json:"id"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}

// POST /api/auth/register
func RegisterHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Invalid("NOT_READABLE", "invalid request body")
		}
		body.Username = strings.TrimSpace(strings.ToLower(body.Username))
		if err := apperr.Validate(&body); err != nil {
			return err
		}

		var count int64
		if err := db.WithContext(c.UserContext()).Model(&models.User{}).Where("username = ?", body.Username).Count(&count).Error; err != nil {
			return apperr.Internal(err, "look up username")
		}
		if count > 0 {
			return apperr.Conflict("USERNAME_TAKEN", "username %s is already registered", body.Username)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return apperr.Internal(err, "hash password")
		}

		user := models.User{
			Username:     body.Username,
			PasswordHash: string(hash),
			Role:         models.RoleUser,
			Active:       true,
		}
		if err := db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
			return apperr.Internal(err, "create user")
		}
		return c.Status(fiber.StatusCreated).JSON(toUserResponse(&user))
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, db *gorm.DB) fiber.Handler {
	ttl := time.Duration(cfg.JWTTTLMinutes) * time.Minute
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Invalid("NOT_READABLE", "invalid request body")
		}
		body.Username = strings.TrimSpace(strings.ToLower(body.Username))
		if err := apperr.Validate(&body); err != nil {
			return err
		}

		badCredentials := apperr.New(apperr.KindUnauthorized, "BAD_CREDENTIALS", "invalid username or password")

		var user models.User
		err := db.WithContext(c.UserContext()).Where("username = ?", body.Username).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return badCredentials
		}
		if err != nil {
			return apperr.Internal(err, "load user")
		}
		if !user.Active {
			return badCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return badCredentials
		}

		token, err := GenerateToken(cfg.JWTSecret, ttl, &user)
		if err != nil {
			return apperr.Internal(err, "sign token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  toUserResponse(&user),
		})
	}
}

// GET /api/auth/me
func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(CtxUserIDKey).(uint)
		if !ok {
			return apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		var user models.User
		err := db.WithContext(c.UserContext()).First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "user no longer exists")
		}
		if err != nil {
			return apperr.Internal(err, "load user")
		}
		return c.JSON(toUserResponse(&user))
	}
}

// POST /api/auth/logout. Tokens are stateless; the client drops its copy.
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	}
}
