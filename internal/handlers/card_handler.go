package handlers

import (
	"log"

	"flashcards/internal/middleware"
	"flashcards/internal/models"
	"flashcards/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CardHandler handles HTTP requests for flashcards.
type CardHandler struct {
	service  *services.CardService
	validate *validator.Validate
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(service *services.CardService) *CardHandler {
	return &CardHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the read-only card routes for authenticated users.
func (h *CardHandler) RegisterRoutes(router fiber.Router) {
	cardRoutes := router.Group("/cards")
	cardRoutes.Get("/", h.HandleGetCards)
	cardRoutes.Get("/:id", h.HandleGetCardByID)
}

// RegisterAdminRoutes registers the card management routes. The admin guard
// is applied by the route group these are mounted on.
func (h *CardHandler) RegisterAdminRoutes(router fiber.Router) {
	cardRoutes := router.Group("/cards")
	cardRoutes.Post("/", h.HandleCreateCard)
	cardRoutes.Put("/:id", h.HandleUpdateCard)
	cardRoutes.Delete("/:id", h.HandleDeleteCard)
}

// HandleGetCards lists cards. Regular users see the public study set; admins
// see every card including non-public ones.
func (h *CardHandler) HandleGetCards(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var (
		cards []models.Card
		err   error
	)
	if user != nil && user.IsAdmin {
		cards, err = h.service.GetAllCards()
	} else {
		cards, err = h.service.GetPublicCards()
	}
	if err != nil {
		log.Printf("Error getting cards: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cards",
		})
	}
	return c.JSON(cards)
}

// HandleGetCardByID retrieves a single card by its ID.
func (h *CardHandler) HandleGetCardByID(c *fiber.Ctx) error {
	cardID := c.Params("id")
	card, err := h.service.GetCardByID(cardID)
	if err != nil {
		log.Printf("Error getting card by ID %s: %v", cardID, err)
		return serviceErrorResponse(c, "Could not retrieve card", err)
	}
	return c.JSON(card)
}

// HandleCreateCard creates a new card owned by the calling admin.
func (h *CardHandler) HandleCreateCard(c *fiber.Ctx) error {
	var card models.Card
	if err := c.BodyParser(&card); err != nil {
		log.Printf("Error parsing card request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(card); err != nil {
		return validationErrorResponse(c, err)
	}

	user := middleware.CurrentUser(c)
	if err := h.service.CreateCard(&card, user.ID); err != nil {
		log.Printf("Error creating card: %v", err)
		return serviceErrorResponse(c, "Could not create card", err)
	}

	return c.Status(fiber.StatusCreated).JSON(card)
}

// HandleUpdateCard updates an existing card.
func (h *CardHandler) HandleUpdateCard(c *fiber.Ctx) error {
	cardID := c.Params("id")

	existing, err := h.service.GetCardByID(cardID)
	if err != nil {
		return serviceErrorResponse(c, "Could not retrieve card", err)
	}

	var update models.Card
	if err := c.BodyParser(&update); err != nil {
		log.Printf("Error parsing card update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	existing.ForeignWord = update.ForeignWord
	existing.NativeTranslation = update.NativeTranslation
	existing.Example = update.Example
	existing.IsPublic = update.IsPublic

	if err := h.validate.Struct(existing); err != nil {
		return validationErrorResponse(c, err)
	}

	if err := h.service.UpdateCard(existing); err != nil {
		log.Printf("Error updating card %s: %v", cardID, err)
		return serviceErrorResponse(c, "Could not update card", err)
	}

	return c.JSON(existing)
}

// HandleDeleteCard deletes a card and its dependent progress records.
func (h *CardHandler) HandleDeleteCard(c *fiber.Ctx) error {
	cardID := c.Params("id")
	if err := h.service.DeleteCard(cardID); err != nil {
		log.Printf("Error deleting card %s: %v", cardID, err)
		return serviceErrorResponse(c, "Could not delete card", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
