package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/sabaipics/sabaipics/app/models"
	"github.com/sabaipics/sabaipics/app/repository"
	"github.com/sabaipics/sabaipics/internal/pkg/credits"
)

// Purchased credits stay valid for a year from the order.
const CreditValidity = 365 * 24 * time.Hour

// EventCheckoutCompleted is the only webhook event that grants credits.
const EventCheckoutCompleted = "checkout.completed"

var (
	ErrInvalidPayload      = errors.New("invalid webhook payload")
	ErrUnknownPhotographer = errors.New("no photographer for auth id")
)

// CheckoutEvent is the provider's webhook payload for a completed credit
// purchase.
type CheckoutEvent struct {
	EventType   string `json:"event_type"`
	OrderID     string `json:"order_id"`
	AuthID      string `json:"auth_id"`
	Credits     int64  `json:"credits"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// ParseCheckoutEvent decodes and validates a checkout webhook body.
func ParseCheckoutEvent(raw []byte) (*CheckoutEvent, error) {
	var event CheckoutEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if event.EventType != EventCheckoutCompleted {
		return nil, fmt.Errorf("%w: unsupported event type %q", ErrInvalidPayload, event.EventType)
	}
	if event.OrderID == "" || event.AuthID == "" || event.Credits <= 0 {
		return nil, fmt.Errorf("%w: order_id, auth_id and a positive credits count are required", ErrInvalidPayload)
	}
	return &event, nil
}

// orderReference namespaces the ledger's external reference per order.
func orderReference(orderID string) string {
	return "order:" + orderID
}

// Service applies checkout events to the credit ledger.
type Service struct {
	db            *gorm.DB
	engine        *credits.Engine
	photographers repository.PhotographerRepository
}

// NewService wires the webhook processor.
func NewService(db *gorm.DB, engine *credits.Engine, photographers repository.PhotographerRepository) *Service {
	return &Service{db: db, engine: engine, photographers: photographers}
}

// ProcessCheckout grants the purchased credits. Replays of an already
// processed order return the original ledger entry without granting again.
// The pre-check only covers sequential replays; concurrent deliveries of
// one order race on the ledger's unique external_reference index, and the
// loser resolves to the winner's entry.
func (s *Service) ProcessCheckout(event *CheckoutEvent) (*models.CreditLedgerEntry, error) {
	ref := orderReference(event.OrderID)

	if existing, err := s.findProcessedOrder(ref); err != nil {
		return nil, err
	} else if existing != nil {
		fiberlog.Infof("[Billing] Replayed order %s, keeping original ledger entry %d", event.OrderID, existing.ID)
		return existing, nil
	}

	photographer, err := s.photographers.GetByAuthID(event.AuthID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownPhotographer
		}
		return nil, fmt.Errorf("failed to resolve photographer: %w", err)
	}

	entry, err := s.engine.Grant(photographer.ID, event.Credits, models.LedgerTypePurchase, CreditValidity, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := s.findProcessedOrder(ref)
			if ferr != nil {
				return nil, ferr
			}
			if existing != nil {
				fiberlog.Infof("[Billing] Lost insert race for order %s, keeping ledger entry %d", event.OrderID, existing.ID)
				return existing, nil
			}
		}
		return nil, err
	}

	fiberlog.Infof("[Billing] Granted %d credits to photographer %d for order %s", event.Credits, photographer.ID, event.OrderID)
	return entry, nil
}

// findProcessedOrder returns the purchase entry for an order reference, or
// nil when the order has not been processed.
func (s *Service) findProcessedOrder(ref string) (*models.CreditLedgerEntry, error) {
	var existing models.CreditLedgerEntry
	err := s.db.Where("external_reference = ? AND type = ?", ref, models.LedgerTypePurchase).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to check order idempotency: %w", err)
}
