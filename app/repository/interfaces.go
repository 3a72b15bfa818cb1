package repository

import (
	"gorm.io/gorm"

	"github.com/sabaipics/sabaipics/app/models"
)

// PhotographerRepository defines the interface for photographer lookups.
type PhotographerRepository interface {
	Create(photographer *models.Photographer) error
	GetByAuthID(authID string) (*models.Photographer, error)
	GetByAPIKeyHash(hash string) (*models.Photographer, error)
	TouchAPIKeyUsage(photographerID uint) error
}

// EventRepository defines the interface for event-related database operations.
type EventRepository interface {
	GetOwnedByID(photographerID, eventID uint) (*models.Event, error)
}

// PhotoRepository defines the interface for photo-related database operations.
type PhotoRepository interface {
	CreateTx(tx *gorm.DB, photo *models.Photo) error
	GetOwnedByUUID(photographerID uint, uuid string) (*models.Photo, error)
	UpdateStatus(uuid string, status string) error
}

// UploadIntentRepository defines the interface for upload intent operations.
type UploadIntentRepository interface {
	Create(intent *models.UploadIntent) error
	GetOwnedByID(photographerID uint, id string) (*models.UploadIntent, error)
	GetOwnedByIDs(photographerID uint, ids []string) ([]models.UploadIntent, error)
	ResetForRepresign(intent *models.UploadIntent) error
}

// Repositories provides access to all repository implementations.
type Repositories struct {
	Photographers PhotographerRepository
	Events        EventRepository
	Photos        PhotoRepository
	Intents       UploadIntentRepository
}

// NewRepositories creates the repository set backed by the given database.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Photographers: NewPhotographerRepository(db),
		Events:        NewEventRepository(db),
		Photos:        NewPhotoRepository(db),
		Intents:       NewUploadIntentRepository(db),
	}
}
