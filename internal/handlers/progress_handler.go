package handlers

import (
	"log"

	"flashcards/internal/middleware"
	"flashcards/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProgressHandler handles HTTP requests for the progress ledger.
type ProgressHandler struct {
	service *services.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(service *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		service: service,
	}
}

// RegisterRoutes registers the progress routes for authenticated users.
func (h *ProgressHandler) RegisterRoutes(router fiber.Router) {
	progressRoutes := router.Group("/progress")
	progressRoutes.Get("/my", h.HandleGetMyProgress)
	progressRoutes.Post("/", h.HandleInitProgress)
	progressRoutes.Put("/", h.HandleUpdateProgress)
	progressRoutes.Post("/complete/:cardId", h.HandleCompleteCard)
	progressRoutes.Post("/reset/:cardId", h.HandleResetCard)
}

// RegisterAdminRoutes registers the admin-only progress listing.
func (h *ProgressHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/progress", h.HandleGetAllProgress)
}

// HandleGetMyProgress returns the caller's aggregate, creating it lazily on
// first access.
func (h *ProgressHandler) HandleGetMyProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	progress, err := h.service.EnsureInitialized(user.ID)
	if err != nil {
		log.Printf("Error getting progress for user %s: %v", user.ID, err)
		return serviceErrorResponse(c, "Could not retrieve progress", err)
	}
	return c.JSON(progress)
}

// HandleInitProgress explicitly creates the caller's aggregate row. Calling
// it when the row already exists is treated as already satisfied.
func (h *ProgressHandler) HandleInitProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	progress, err := h.service.EnsureInitialized(user.ID)
	if err != nil {
		log.Printf("Error initializing progress for user %s: %v", user.ID, err)
		return serviceErrorResponse(c, "Could not initialize progress", err)
	}
	return c.Status(fiber.StatusCreated).JSON(progress)
}

// UpdateProgressRequest represents the direct aggregate update body. Nil
// fields are left untouched.
type UpdateProgressRequest struct {
	CompletedCards  *int `json:"completed_cards"`
	MarkedImportant *int `json:"marked_important"`
}

// HandleUpdateProgress applies a direct overwrite of the caller's counters.
// Values outside the allowed ranges are rejected before commit.
func (h *ProgressHandler) HandleUpdateProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing progress update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	progress, err := h.service.UpdateAggregate(user.ID, req.CompletedCards, req.MarkedImportant)
	if err != nil {
		log.Printf("Error updating progress for user %s: %v", user.ID, err)
		return serviceErrorResponse(c, "Could not update progress", err)
	}
	return c.JSON(progress)
}

// HandleCompleteCard marks a card as learned for the caller.
func (h *ProgressHandler) HandleCompleteCard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	cardID := c.Params("cardId")

	progress, err := h.service.MarkComplete(user, cardID)
	if err != nil {
		log.Printf("Error completing card %s for user %s: %v", cardID, user.ID, err)
		return serviceErrorResponse(c, "Could not mark card as learned", err)
	}
	return c.JSON(progress)
}

// HandleResetCard resets a learned card back to not started for the caller.
func (h *ProgressHandler) HandleResetCard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	cardID := c.Params("cardId")

	progress, err := h.service.MarkIncomplete(user, cardID)
	if err != nil {
		log.Printf("Error resetting card %s for user %s: %v", cardID, user.ID, err)
		return serviceErrorResponse(c, "Could not reset card", err)
	}
	return c.JSON(progress)
}

// HandleGetAllProgress lists every user's aggregate (admin view).
func (h *ProgressHandler) HandleGetAllProgress(c *fiber.Ctx) error {
	progresses, err := h.service.ListAll()
	if err != nil {
		log.Printf("Error getting all progress: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve progress records",
		})
	}
	return c.JSON(progresses)
}
