package handlers

import (
	"errors"
	"fmt"

	"flashcards/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// statusForError maps service sentinel errors to HTTP status codes. The
// 401/403 split matters: an unauthenticated caller is told to log in, a
// recognized caller with insufficient rights is told access is denied.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrPasswordTooLong):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrUserInactive):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrSelfAction),
		errors.Is(err, services.ErrAdminsDoNotStudy):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrCardNotFound),
		errors.Is(err, services.ErrProgressNotFound),
		errors.Is(err, services.ErrNotYetCompleted):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrUsernameTaken):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrCardNotEligible),
		errors.Is(err, services.ErrInvalidAggregate):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// serviceErrorResponse writes the JSON error body for a failed service call.
// Internal errors are not echoed back to the client.
func serviceErrorResponse(c *fiber.Ctx, message string, err error) error {
	status := statusForError(err)
	body := fiber.Map{"message": message}
	if status != fiber.StatusInternalServerError {
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

// validationErrorResponse formats validator.v10 failures with field-level
// detail.
func validationErrorResponse(c *fiber.Ctx, err error) error {
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
