package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sabaipics/sabaipics/internal/pkg/presign"
	"github.com/sabaipics/sabaipics/internal/pkg/usercontext"
)

// PresignController serves the direct-to-storage upload grant endpoints.
type PresignController struct {
	presign *presign.Service
}

// NewPresignController creates the controller around the presign service.
func NewPresignController(svc *presign.Service) *PresignController {
	return &PresignController{presign: svc}
}

// PresignRequest is the body for a new upload grant.
type PresignRequest struct {
	ContentType   string `json:"content_type" validate:"required"`
	ContentLength int64  `json:"content_length" validate:"required,gt=0"`
}

// HandleCreateUpload issues a presigned upload grant for an event.
//
// POST /api/v1/events/:id/uploads/presign
func (ctrl *PresignController) HandleCreateUpload(c *fiber.Ctx) error {
	photographerID := usercontext.GetPhotographerID(c)

	eventID, err := c.ParamsInt("id")
	if err != nil || eventID <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid event id")
	}

	var req PresignRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "content_type and a positive content_length are required")
	}

	grant, err := ctrl.presign.Presign(c.UserContext(), photographerID, uint(eventID), req.ContentType, req.ContentLength)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(grant)
}

// HandleUploadStatus returns the caller's upload intents for the requested
// ids. Foreign and unknown ids are omitted without distinction.
//
// GET /api/v1/uploads/status?ids=a,b,c
func (ctrl *PresignController) HandleUploadStatus(c *fiber.Ctx) error {
	photographerID := usercontext.GetPhotographerID(c)

	raw := strings.TrimSpace(c.Query("ids"))
	if raw == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Query parameter ids is required")
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	intents, err := ctrl.presign.Status(photographerID, ids)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"uploads": intents})
}

// HandleRetryUpload rotates the object key of a retryable intent and issues
// a fresh grant.
//
// POST /api/v1/uploads/:id/presign
func (ctrl *PresignController) HandleRetryUpload(c *fiber.Ctx) error {
	photographerID := usercontext.GetPhotographerID(c)

	uploadID := c.Params("id")
	if uploadID == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Missing upload id")
	}

	grant, err := ctrl.presign.Represign(c.UserContext(), photographerID, uploadID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(grant)
}
