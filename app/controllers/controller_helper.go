package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sabaipics/sabaipics/internal/pkg/admission"
	"github.com/sabaipics/sabaipics/internal/pkg/credits"
	"github.com/sabaipics/sabaipics/internal/pkg/normalize"
	"github.com/sabaipics/sabaipics/internal/pkg/presign"
)

var validate = validator.New()

// jsonError writes the uniform error envelope.
func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

// respondDomainError maps service-layer errors onto HTTP statuses. Expected
// conditions each get a stable machine-readable code; anything unmapped is a
// plain 500.
func respondDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, presign.ErrEventNotFound), errors.Is(err, admission.ErrEventNotFound):
		return jsonError(c, fiber.StatusNotFound, "event_not_found", "Event not found")
	case errors.Is(err, presign.ErrEventExpired), errors.Is(err, admission.ErrEventExpired):
		return jsonError(c, fiber.StatusGone, "event_expired", "Event has expired")
	case errors.Is(err, credits.ErrInsufficientCredits):
		return jsonError(c, fiber.StatusPaymentRequired, "insufficient_credits", "Not enough credits")
	case errors.Is(err, presign.ErrInvalidMediaType):
		return jsonError(c, fiber.StatusUnsupportedMediaType, "unsupported_media_type", "Content type is not accepted")
	case errors.Is(err, presign.ErrInvalidLength):
		return jsonError(c, fiber.StatusUnprocessableEntity, "invalid_content_length", "Content length is out of bounds")
	case errors.Is(err, admission.ErrPhotoNotFound):
		return jsonError(c, fiber.StatusNotFound, "photo_not_found", "Photo not found")
	case errors.Is(err, presign.ErrIntentNotFound):
		return jsonError(c, fiber.StatusNotFound, "upload_not_found", "Upload not found")
	case errors.Is(err, presign.ErrNotRetryable):
		return jsonError(c, fiber.StatusConflict, "upload_not_retryable", "Upload is completed or in flight and cannot be retried")
	case errors.Is(err, admission.ErrQueueEnqueue):
		// admitted and charged, but the indexing job is not queued
		return jsonError(c, fiber.StatusInternalServerError, "enqueue_failed", "Photo was stored but could not be queued for indexing")
	}

	var nerr *normalize.Error
	if errors.As(err, &nerr) {
		if nerr.Stage == normalize.StageDecode {
			return jsonError(c, fiber.StatusUnprocessableEntity, "invalid_image", "Image could not be decoded")
		}
		return jsonError(c, fiber.StatusInternalServerError, "normalization_failed", "Image processing failed")
	}

	return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Something went wrong")
}
