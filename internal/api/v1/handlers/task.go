package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/middleware"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"
	"tasktracker/pkg/logger"
)

// TaskHandler serves the task CRUD routes. Every operation acts on the
// identity resolved by the auth middleware; ownership is enforced inside
// the repository, never here.
type TaskHandler struct {
	Tasks    *repository.TaskRepo
	Validate *validator.Validate
}

func NewTaskHandler(tasks *repository.TaskRepo, validate *validator.Validate) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Validate: validate}
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	// Title must be present but may be empty; status is an open string,
	// an omitted one defaults to "pending" in the repository.
	type TaskRequest struct {
		Title       *string `json:"title" validate:"required"`
		Description string  `json:"description"`
		Status      string  `json:"status"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in create task", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	task, err := h.Tasks.Create(c.Context(), user.ID, *req.Title, req.Description, req.Status)
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error creating task",
		})
	}

	logger.AuditLogger.Info("Task created successfully", zap.Int("task_id", task.ID), zap.Int("owner_id", user.ID))
	return c.JSON(task)
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	status := c.Query("status")

	tasks, err := h.Tasks.ListByOwner(c.Context(), user.ID, status)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching tasks",
		})
	}

	return c.JSON(tasks)
}

func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task ID",
		})
	}

	var patch models.TaskPatch
	if err := c.BodyParser(&patch); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}

	task, err := h.Tasks.Update(c.Context(), user.ID, taskID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Task not found",
			})
		}
		logger.ErrorLogger.Error("Error updating task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error updating task",
		})
	}

	logger.AuditLogger.Info("Task updated", zap.Int("task_id", taskID), zap.Int("owner_id", user.ID))
	return c.JSON(task)
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task ID",
		})
	}

	if err := h.Tasks.Delete(c.Context(), user.ID, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Task not found",
			})
		}
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error deleting task",
		})
	}

	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", taskID), zap.Int("owner_id", user.ID))
	return c.SendStatus(fiber.StatusNoContent)
}
