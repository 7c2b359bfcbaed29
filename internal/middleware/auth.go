package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/auth"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"
	"tasktracker/pkg/logger"
)

const currentUserKey = "currentUser"

// TokenAuth guards identity-scoped routes. It extracts the bearer token,
// verifies it, loads the matching user and stores it in the request
// locals. Missing, malformed, invalid or expired tokens and tokens whose
// subject no longer exists all end the request with 401.
func TokenAuth(tokens *auth.TokenService, users *repository.UserRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "No token provided"})
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token format"})
		}

		subject, err := tokens.Verify(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Token expired"})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
		}

		user, err := users.FindByEmail(c.Context(), subject)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				logger.SecurityLogger.Warn("Valid token for unknown user", zap.String("subject", subject))
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
			}
			logger.ErrorLogger.Error("Error resolving token subject", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error resolving user"})
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user resolved by TokenAuth. It must only be
// called from handlers behind that middleware.
func CurrentUser(c *fiber.Ctx) models.User {
	return c.Locals(currentUserKey).(models.User)
}
