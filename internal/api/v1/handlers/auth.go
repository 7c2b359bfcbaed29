package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/auth"
	"tasktracker/internal/repository"
	"tasktracker/pkg/logger"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	Users    *repository.UserRepo
	Tokens   *auth.TokenService
	Validate *validator.Validate
}

func NewAuthHandler(users *repository.UserRepo, tokens *auth.TokenService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Validate: validate}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error hashing password",
		})
	}

	user, err := h.Users.Create(c.Context(), req.Email, hashedPassword)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			logger.SecurityLogger.Warn("Duplicate email", zap.String("email", req.Email))
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Email already registered",
			})
		}
		logger.ErrorLogger.Error("Error creating user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error creating user",
		})
	}

	logger.AuditLogger.Info("User registered successfully", zap.Int("userID", user.ID))
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	// The original web client submits the email under the form field
	// "username", so both spellings are accepted.
	type LoginRequest struct {
		Email    string `json:"email" form:"email"`
		Username string `form:"username"`
		Password string `json:"password" form:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}
	email := req.Email
	if email == "" {
		email = req.Username
	}

	if err := h.Validate.Struct(req); err != nil || email == "" {
		logger.AuditLogger.Warn("Validation error during login", zap.String("email", email))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  "email and password are required",
		})
	}

	user, err := h.Users.FindByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logger.SecurityLogger.Warn("User not found", zap.String("email", email))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid credentials",
			})
		}
		logger.ErrorLogger.Error("Error fetching user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching user",
		})
	}

	if !auth.CheckPassword(user.HashedPassword, req.Password) {
		logger.SecurityLogger.Warn("Invalid password", zap.String("email", email))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	tokenString, err := h.Tokens.Issue(user.Email)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error generating token",
		})
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID))
	return c.JSON(fiber.Map{
		"access_token": tokenString,
		"token_type":   "bearer",
	})
}
