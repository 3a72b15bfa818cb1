// Package admission is the synchronous upload path: it decides whether an
// incoming photo may be admitted, normalizes it, stores it, settles its cost
// against the credit ledger and hands it to the face-index queue. The stage
// order is chosen to bound financial and storage risk: cheap checks first,
// settlement only after the bytes are durable.
package admission

import (
	"context"
	"errors"
	"fmt"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sabaipics/sabaipics/app/models"
	"github.com/sabaipics/sabaipics/app/repository"
	"github.com/sabaipics/sabaipics/internal/pkg/credits"
	"github.com/sabaipics/sabaipics/internal/pkg/jobqueue"
	"github.com/sabaipics/sabaipics/internal/pkg/normalize"
	"github.com/sabaipics/sabaipics/internal/pkg/photometa"
)

// Normalized output is always WebP, regardless of what came in.
const normalizedContentType = "image/webp"

// Storage is the blob write capability. Satisfied by *objstorage.Client.
type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Enqueuer publishes face-index jobs. Satisfied by *jobqueue.Producer.
type Enqueuer interface {
	EnqueueFaceIndex(ctx context.Context, payload jobqueue.FaceIndexPayload) error
}

// BalanceReader is the lock-free balance pre-check. Satisfied by
// *credits.Engine.
type BalanceReader interface {
	Balance(photographerID uint) (int64, error)
}

// Upload carries one multipart file through admission.
type Upload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Service sequences the admission pipeline.
type Service struct {
	events     repository.EventRepository
	photos     repository.PhotoRepository
	balance    BalanceReader
	normalizer normalize.Normalizer
	storage    Storage
	settler    Settler
	queue      Enqueuer
}

// NewService wires the orchestrator to its collaborators.
func NewService(
	events repository.EventRepository,
	photos repository.PhotoRepository,
	balance BalanceReader,
	normalizer normalize.Normalizer,
	storage Storage,
	settler Settler,
	queue Enqueuer,
) *Service {
	return &Service{
		events:     events,
		photos:     photos,
		balance:    balance,
		normalizer: normalizer,
		storage:    storage,
		settler:    settler,
		queue:      queue,
	}
}

// Admit runs the full synchronous pipeline and returns the persisted photo.
//
// Ordering: ownership and expiry first (cheapest), then a lock-free balance
// fast-fail (a stale read is fine, settlement re-checks under the lock),
// then normalize and store, and only after the storage write succeeds the
// locked settlement transaction. A normalization or storage failure can
// therefore never charge a credit. Queue publish comes last; its failure is
// reported but never rolled back.
func (s *Service) Admit(ctx context.Context, photographerID, eventID uint, up Upload) (*models.Photo, error) {
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

	balance, err := s.balance.Balance(photographerID)
	if err != nil {
		return nil, fmt.Errorf("balance pre-check failed: %w", err)
	}
	if balance < 1 {
		return nil, credits.ErrInsufficientCredits
	}

	photoUUID := uuid.New().String()
	objectKey := photoObjectKey(event.ID, photoUUID)

	result, err := s.normalizer.Normalize(ctx, up.Data, up.ContentType)
	if err != nil {
		// stage-tagged *normalize.Error passes through for the controller
		return nil, err
	}

	if err := s.storage.Put(ctx, objectKey, result.Bytes, normalizedContentType); err != nil {
		fiberlog.Errorf("[Admission] Storage write failed for photo %s (event %d, key %s): %v",
			photoUUID, event.ID, objectKey, err)
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	photo := &models.Photo{
		UUID:           photoUUID,
		EventID:        event.ID,
		PhotographerID: photographerID,
		ObjectKey:      objectKey,
		Status:         models.PhotoStatusUploading,
		FileSize:       int64(len(result.Bytes)),
		Width:          result.Width,
		Height:         result.Height,
		OriginalMime:   up.ContentType,
		OriginalSize:   int64(len(up.Data)),
	}
	// Best-effort EXIF supplement from the original bytes; never blocks
	// admission.
	photometa.Extract(photo, up.Data)

	if err := s.settler.Settle(ctx, photographerID, photo); err != nil {
		if errors.Is(err, credits.ErrInsufficientCredits) {
			// lost the race against a concurrent upload after the pre-check;
			// the stored object is uncharged and will be swept
			return nil, err
		}
		// Stored but uncharged state needs manual reconciliation, log with
		// full context.
		fiberlog.Errorf("[Admission] Settlement failed for photo %s (photographer %d, event %d, key %s): %v",
			photoUUID, photographerID, event.ID, objectKey, err)
		if errors.Is(err, credits.ErrLedgerInconsistent) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSettlement, err)
	}

	if err := s.queue.EnqueueFaceIndex(ctx, jobqueue.FaceIndexPayload{
		PhotoID:   photo.UUID,
		EventID:   event.ID,
		ObjectKey: objectKey,
	}); err != nil {
		// Credit is spent and the object stored; the photo stays in its
		// recoverable pre-processing state instead of being rolled back.
		fiberlog.Errorf("[Admission] Enqueue failed for admitted photo %s (event %d, key %s): %v",
			photo.UUID, event.ID, objectKey, err)
		return photo, ErrQueueEnqueue
	}

	if err := s.photos.UpdateStatus(photo.UUID, models.PhotoStatusProcessing); err != nil {
		// the job is queued; the worker owns status from here
		fiberlog.Warnf("[Admission] Failed to mark photo %s processing: %v", photo.UUID, err)
	} else {
		photo.Status = models.PhotoStatusProcessing
	}

	return photo, nil
}

// GetOwnedPhoto loads one of the caller's photos by UUID. Foreign photos are
// indistinguishable from missing ones.
func (s *Service) GetOwnedPhoto(photographerID uint, uuid string) (*models.Photo, error) {
	photo, err := s.photos.GetOwnedByUUID(photographerID, uuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to load photo: %w", err)
	}
	return photo, nil
}

// photoObjectKey embeds the photo id so the key is derivable from the row
// alone.
func photoObjectKey(eventID uint, photoUUID string) string {
	return fmt.Sprintf("events/%d/photos/%s.webp", eventID, photoUUID)
}
