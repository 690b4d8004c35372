package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ats-resume-analyzer/internal/models"
	"alfredoptarigan/ats-resume-analyzer/internal/repositories"
	"alfredoptarigan/ats-resume-analyzer/internal/services"
)

const internalErrorMessage = "Internal server error"

func failure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.AnalyzeResponse{
		Success: false,
		Error:   message,
	})
}

// respondError maps service and repository errors to a status code. Details of
// unclassified errors are logged, never returned.
func respondError(c *fiber.Ctx, err error) error {
	var inputErr *services.InputError

	switch {
	case errors.As(err, &inputErr):
		return failure(c, fiber.StatusBadRequest, inputErr.Message)
	case errors.Is(err, services.ErrDocumentProcessing):
		return failure(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		return failure(c, fiber.StatusNotFound, "Analysis not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		return failure(c, fiber.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, services.ErrUserExists):
		return failure(c, fiber.StatusConflict, "Username or email already registered")
	case errors.Is(err, services.ErrIndexDisabled):
		return failure(c, fiber.StatusServiceUnavailable, "Similar analysis search is not configured")
	}

	log.Printf("❌ [%v] %s %s: %v\n", c.Locals("requestid"), c.Method(), c.Path(), err)
	return failure(c, fiber.StatusInternalServerError, internalErrorMessage)
}

// NewErrorHandler returns the app-wide Fiber error handler. Bodies over the
// configured limit are rejected by Fiber before any handler runs.
func NewErrorHandler(maxFileSize int64) fiber.ErrorHandler {
	tooLarge := services.FileTooLargeMessage(maxFileSize)

	return func(c *fiber.Ctx, err error) error {
		var e *fiber.Error
		if errors.As(err, &e) {
			if e.Code == fiber.StatusRequestEntityTooLarge {
				return failure(c, e.Code, tooLarge)
			}
			if e.Code < fiber.StatusInternalServerError {
				return failure(c, e.Code, e.Message)
			}
		}

		log.Printf("❌ Unhandled error on %s %s: %v\n", c.Method(), c.Path(), err)
		return failure(c, fiber.StatusInternalServerError, internalErrorMessage)
	}
}
