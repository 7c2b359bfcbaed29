package v1

import (
	"github.com/gofiber/fiber/v2"

	"tasktracker/internal/api/v1/handlers"
)

// RegisterRoutes mounts the API. The guard middleware runs before every
// /tasks route; the repositories only ever see the identity it resolved.
func RegisterRoutes(app *fiber.App, authHandler *handlers.AuthHandler, taskHandler *handlers.TaskHandler, guard fiber.Handler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to the Task Tracker API"})
	})

	// Auth
	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)

	// Task
	taskRoutes := app.Group("/tasks", guard)
	taskRoutes.Post("/", taskHandler.CreateTask)
	taskRoutes.Get("/", taskHandler.ListTasks)
	taskRoutes.Put("/:id", taskHandler.UpdateTask)
	taskRoutes.Delete("/:id", taskHandler.DeleteTask)
}
