package handlers

import (
	"log"

	"flashcards/internal/middleware"
	"flashcards/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles the admin-only user management endpoints.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes registers the user management routes. Mount on an
// admin-guarded group.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleGetUsers)
	userRoutes.Patch("/:id/active", h.HandleSetActive)
	userRoutes.Patch("/:id/admin", h.HandleSetAdmin)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

// HandleGetUsers lists all users, newest first.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers()
	if err != nil {
		log.Printf("Error getting all users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve users",
		})
	}
	return c.JSON(users)
}

// HandleSetActive enables or disables an account.
func (h *UserHandler) HandleSetActive(c *fiber.Ctx) error {
	userID := c.Params("id")

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing set-active body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	user, err := h.service.SetActive(userID, req.IsActive)
	if err != nil {
		log.Printf("Error setting active=%t for user %s: %v", req.IsActive, userID, err)
		return serviceErrorResponse(c, "Could not update user", err)
	}
	return c.JSON(user)
}

// HandleSetAdmin grants or revokes the admin flag. Self-demotion is
// rejected by the service.
func (h *UserHandler) HandleSetAdmin(c *fiber.Ctx) error {
	userID := c.Params("id")
	actor := middleware.CurrentUser(c)

	var req struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing set-admin body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	user, err := h.service.SetAdmin(actor.ID, userID, req.IsAdmin)
	if err != nil {
		log.Printf("Error setting admin=%t for user %s: %v", req.IsAdmin, userID, err)
		return serviceErrorResponse(c, "Could not update user", err)
	}
	return c.JSON(user)
}

// HandleDeleteUser deletes a user and cascades to their progress data.
// Self-deletion is rejected by the service.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	userID := c.Params("id")
	actor := middleware.CurrentUser(c)

	if err := h.service.DeleteUser(actor.ID, userID); err != nil {
		log.Printf("Error deleting user %s: %v", userID, err)
		return serviceErrorResponse(c, "Could not delete user", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
