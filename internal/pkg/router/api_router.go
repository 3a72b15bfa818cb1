package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/sabaipics/sabaipics/internal/pkg/middleware"
)

// ApiRouter wires the authenticated v1 API.
type ApiRouter struct {
	deps Deps
}

func NewApiRouter(deps Deps) *ApiRouter {
	return &ApiRouter{deps: deps}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// signature-authenticated, no API key
	api.Post("/webhooks/billing", h.deps.Billing.HandleCheckoutWebhook)

	// Every v1 route requires a photographer API key.
	v1 := api.Group("/v1", middleware.APIKeyAuth(h.deps.Repos.Photographers), middleware.RequireAuth)

	// direct-to-storage upload grants
	v1.Post("/events/:id/uploads/presign", h.deps.Presigns.HandleCreateUpload)
	v1.Get("/uploads/status", h.deps.Presigns.HandleUploadStatus)
	v1.Post("/uploads/:id/presign", h.deps.Presigns.HandleRetryUpload)

	// synchronous multipart admission
	v1.Post("/events/:id/photos", h.deps.Uploads.HandleUploadPhoto)
	v1.Get("/photos/:uuid", h.deps.Uploads.HandleGetPhoto)
}
