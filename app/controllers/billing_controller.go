package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/sabaipics/sabaipics/internal/pkg/billing"
	"github.com/sabaipics/sabaipics/internal/pkg/env"
)

// BillingController receives payment-provider webhooks. These routes carry
// no API key; the HMAC signature is the authentication.
type BillingController struct {
	billing *billing.Service
}

// NewBillingController creates the controller around the billing service.
func NewBillingController(svc *billing.Service) *BillingController {
	return &BillingController{billing: svc}
}

// HandleCheckoutWebhook verifies and applies a checkout event.
//
// POST /api/webhooks/billing
func (ctrl *BillingController) HandleCheckoutWebhook(c *fiber.Ctx) error {
	secret := env.GetEnv("BILLING_WEBHOOK_SECRET", "")
	if secret == "" {
		fiberlog.Error("[Billing] BILLING_WEBHOOK_SECRET is not configured, rejecting webhook")
		return jsonError(c, fiber.StatusServiceUnavailable, "webhook_unconfigured", "Billing webhooks are not configured")
	}

	payload := c.Body()
	if !billing.VerifyWebhookSignature(payload, c.Get("X-Billing-Signature"), secret) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_signature", "Webhook signature verification failed")
	}

	event, err := billing.ParseCheckoutEvent(payload)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_payload", "Webhook payload is invalid")
	}

	entry, err := ctrl.billing.ProcessCheckout(event)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPhotographer) {
			// do not retry forever on orders for accounts we cannot resolve
			fiberlog.Errorf("[Billing] Order %s references unknown auth id", event.OrderID)
			return jsonError(c, fiber.StatusBadRequest, "unknown_photographer", "No photographer for this order")
		}
		fiberlog.Errorf("[Billing] Failed to process order %s: %v", event.OrderID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not process order")
	}

	return c.JSON(fiber.Map{"status": "ok", "ledger_entry_id": entry.ID})
}
