// Package presign issues time-boxed direct-to-storage upload grants and
// tracks their lifecycle. Presigned URLs are bound to a specific object key;
// every retry mints a fresh key and orphans the old one, so an abandoned
// attempt can never silently complete later and overwrite a retried
// upload's result.
package presign

import (
	"context"
	"errors"
	"fmt"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sabaipics/sabaipics/app/models"
	"github.com/sabaipics/sabaipics/app/repository"
	"github.com/sabaipics/sabaipics/internal/pkg/credits"
	"github.com/sabaipics/sabaipics/internal/pkg/objstorage"
)

// URL lifetime and upload size bounds.
const (
	URLTTL           = 10 * time.Minute
	MaxContentLength = 100 << 20 // 100 MiB, raw camera JPEGs stay well under
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrEventExpired     = errors.New("event expired")
	ErrIntentNotFound   = errors.New("upload intent not found")
	ErrNotRetryable     = errors.New("upload intent is not in a retryable state")
	ErrInvalidMediaType = errors.New("unsupported content type")
	ErrInvalidLength    = errors.New("invalid content length")
)

// acceptedContentTypes lists what cameras and phones actually send.
var acceptedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"image/heif": ".heif",
}

// Presigner issues presigned PUT URLs. Satisfied by *objstorage.Client.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, contentLength int64, expiresIn time.Duration) (*objstorage.PresignedUpload, error)
}

// BalanceReader is the read-only, lock-free balance check. Satisfied by
// *credits.Engine.
type BalanceReader interface {
	Balance(photographerID uint) (int64, error)
}

// Grant is the payload handed back to the uploader.
type Grant struct {
	UploadID        string            `json:"upload_id"`
	PutURL          string            `json:"put_url"`
	ObjectKey       string            `json:"object_key"`
	ExpiresAt       time.Time         `json:"expires_at"`
	RequiredHeaders map[string]string `json:"required_headers"`
}

// Service drives the upload intent state machine.
type Service struct {
	events    repository.EventRepository
	intents   repository.UploadIntentRepository
	balance   BalanceReader
	presigner Presigner
	urlTTL    time.Duration
}

// NewService wires the state machine to its collaborators.
func NewService(events repository.EventRepository, intents repository.UploadIntentRepository, balance BalanceReader, presigner Presigner) *Service {
	return &Service{
		events:    events,
		intents:   intents,
		balance:   balance,
		presigner: presigner,
		urlTTL:    URLTTL,
	}
}

// Presign validates ownership, fast-fails on an empty balance and persists a
// pending intent for a fresh presigned PUT URL. The balance check takes no
// lock: it may be stale by the time the upload finalizes, which is accepted
// because settlement re-checks under the row lock.
func (s *Service) Presign(ctx context.Context, photographerID, eventID uint, contentType string, contentLength int64) (*Grant, error) {
	ext, ok := acceptedContentTypes[contentType]
	if !ok {
		return nil, ErrInvalidMediaType
	}
	if contentLength <= 0 || contentLength > MaxContentLength {
		return nil, ErrInvalidLength
	}

	event, err := s.ownedLiveEvent(photographerID, eventID)
	if err != nil {
		return nil, err
	}

	balance, err := s.balance.Balance(photographerID)
	if err != nil {
		return nil, fmt.Errorf("balance pre-check failed: %w", err)
	}
	if balance < 1 {
		return nil, credits.ErrInsufficientCredits
	}

	intentID := uuid.New().String()
	key := intentObjectKey(event.ID, intentID, ext)

	presigned, err := s.presigner.PresignPut(ctx, key, contentType, contentLength, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	intent := &models.UploadIntent{
		ID:             intentID,
		PhotographerID: photographerID,
		EventID:        event.ID,
		ObjectKey:      key,
		ContentType:    contentType,
		ContentLength:  contentLength,
		Status:         models.IntentStatusPending,
		ExpiresAt:      presigned.ExpiresAt,
	}
	if err := s.intents.Create(intent); err != nil {
		return nil, fmt.Errorf("failed to persist upload intent: %w", err)
	}

	fiberlog.Infof("[Presign] Issued intent %s for event %d (key %s)", intentID, event.ID, key)
	return grantFrom(intent, presigned), nil
}

// Status returns the caller's intents for the requested ids. Foreign and
// unknown ids are omitted without distinction.
func (s *Service) Status(photographerID uint, ids []string) ([]models.UploadIntent, error) {
	return s.intents.GetOwnedByIDs(photographerID, ids)
}

// Represign re-issues a grant for a pending, expired or failed intent. The
// object key always rotates: the in-flight presigned URL for the old key
// must not be able to race a write after logical abandonment. Completed or
// mid-flight uploaded intents conflict and are left untouched.
func (s *Service) Represign(ctx context.Context, photographerID uint, uploadID string) (*Grant, error) {
	intent, err := s.intents.GetOwnedByID(photographerID, uploadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("failed to load upload intent: %w", err)
	}

	if !intent.Retryable() {
		return nil, ErrNotRetryable
	}

	if _, err := s.ownedLiveEvent(photographerID, intent.EventID); err != nil {
		return nil, err
	}

	ext, ok := acceptedContentTypes[intent.ContentType]
	if !ok {
		// Can only happen if the accepted set shrank after the intent was
		// created; treat like a fresh validation failure.
		return nil, ErrInvalidMediaType
	}

	key := intentObjectKey(intent.EventID, intent.ID, ext)
	presigned, err := s.presigner.PresignPut(ctx, key, intent.ContentType, intent.ContentLength, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	intent.ObjectKey = key
	intent.Status = models.IntentStatusPending
	intent.ErrorCode = ""
	intent.ErrorMessage = ""
	intent.ExpiresAt = presigned.ExpiresAt
	if err := s.intents.ResetForRepresign(intent); err != nil {
		return nil, fmt.Errorf("failed to reset upload intent: %w", err)
	}

	fiberlog.Infof("[Presign] Rotated key for intent %s (new key %s)", intent.ID, key)
	return grantFrom(intent, presigned), nil
}

func (s *Service) ownedLiveEvent(photographerID, eventID uint) (*models.Event, error) {
	event, err := s.events.GetOwnedByID(photographerID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event.Expired() {
		return nil, ErrEventExpired
	}
	return event, nil
}

// intentObjectKey namespaces a key by event and intent id. The nanosecond
// suffix makes every attempt's key unique, which is what lets re-presigning
// orphan the previous URL.
func intentObjectKey(eventID uint, intentID, ext string) string {
	return fmt.Sprintf("events/%d/incoming/%s-%d%s", eventID, intentID, time.Now().UnixNano(), ext)
}

func grantFrom(intent *models.UploadIntent, presigned *objstorage.PresignedUpload) *Grant {
	return &Grant{
		UploadID:        intent.ID,
		PutURL:          presigned.URL,
		ObjectKey:       intent.ObjectKey,
		ExpiresAt:       presigned.ExpiresAt,
		RequiredHeaders: presigned.Headers,
	}
}
