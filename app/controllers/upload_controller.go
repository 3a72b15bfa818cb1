package controllers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/sabaipics/sabaipics/internal/pkg/admission"
	"github.com/sabaipics/sabaipics/internal/pkg/metrics/counter"
	"github.com/sabaipics/sabaipics/internal/pkg/presign"
	"github.com/sabaipics/sabaipics/internal/pkg/upload"
	"github.com/sabaipics/sabaipics/internal/pkg/usercontext"
)

// UploadController serves the synchronous multipart upload path.
type UploadController struct {
	admission *admission.Service
}

// NewUploadController creates the controller around the admission pipeline.
func NewUploadController(svc *admission.Service) *UploadController {
	return &UploadController{admission: svc}
}

// HandleUploadPhoto admits one multipart photo into an event.
//
// POST /api/v1/events/:id/photos
func (ctrl *UploadController) HandleUploadPhoto(c *fiber.Ctx) error {
	photographerID := usercontext.GetPhotographerID(c)

	eventID, err := c.ParamsInt("id")
	if err != nil || eventID <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid event id")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Missing file field")
	}
	if fileHeader.Size <= 0 || fileHeader.Size > presign.MaxContentLength {
		return jsonError(c, fiber.StatusUnprocessableEntity, "invalid_content_length", "File size is out of bounds")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Could not read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fiberlog.Errorf("[Upload] Failed to read multipart body: %v", err)
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Could not read uploaded file")
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	mime, err := upload.ValidateImageBySniff(fileHeader.Filename, head)
	if err != nil {
		return jsonError(c, fiber.StatusUnsupportedMediaType, "unsupported_media_type", err.Error())
	}

	photo, err := ctrl.admission.Admit(c.UserContext(), photographerID, uint(eventID), admission.Upload{
		Data:        data,
		ContentType: mime,
		Filename:    fileHeader.Filename,
	})
	if err != nil {
		return respondDomainError(c, err)
	}

	if err := counter.AddEventPhoto(photo.EventID); err != nil {
		fiberlog.Warnf("[Upload] Failed to count photo for event %d: %v", photo.EventID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(photo)
}

// HandleGetPhoto returns one photo by UUID, scoped to the caller.
//
// GET /api/v1/photos/:uuid
func (ctrl *UploadController) HandleGetPhoto(c *fiber.Ctx) error {
	photographerID := usercontext.GetPhotographerID(c)
	uuid := c.Params("uuid")
	if uuid == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Missing photo uuid")
	}

	photo, err := ctrl.admission.GetOwnedPhoto(photographerID, uuid)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(photo)
}
