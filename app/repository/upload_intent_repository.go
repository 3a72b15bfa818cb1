package repository

import (
	"gorm.io/gorm"

	"github.com/sabaipics/sabaipics/app/models"
)

// uploadIntentRepository implements the UploadIntentRepository interface
type uploadIntentRepository struct {
	db *gorm.DB
}

// NewUploadIntentRepository creates a new upload intent repository instance
func NewUploadIntentRepository(db *gorm.DB) UploadIntentRepository {
	return &uploadIntentRepository{db: db}
}

// Create persists a freshly presigned intent
func (r *uploadIntentRepository) Create(intent *models.UploadIntent) error {
	return r.db.Create(intent).Error
}

// GetOwnedByID retrieves an intent by id, scoped to the owning photographer
func (r *uploadIntentRepository) GetOwnedByID(photographerID uint, id string) (*models.UploadIntent, error) {
	var intent models.UploadIntent
	err := r.db.Where("id = ? AND photographer_id = ?", id, photographerID).
		First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// GetOwnedByIDs returns the intents from ids that belong to the photographer.
// Foreign and unknown ids are silently omitted; callers cannot tell which a
// missing id was, which blocks enumeration of other tenants' upload ids.
func (r *uploadIntentRepository) GetOwnedByIDs(photographerID uint, ids []string) ([]models.UploadIntent, error) {
	if len(ids) == 0 {
		return []models.UploadIntent{}, nil
	}
	var intents []models.UploadIntent
	err := r.db.Where("photographer_id = ? AND id IN ?", photographerID, ids).
		Find(&intents).Error
	if err != nil {
		return nil, err
	}
	return intents, nil
}

// ResetForRepresign writes the rotated key, fresh expiry and cleared error
// fields back in one update. Explicit column selection keeps zero values
// (empty error strings) from being skipped by gorm.
func (r *uploadIntentRepository) ResetForRepresign(intent *models.UploadIntent) error {
	return r.db.Model(intent).
		Select("object_key", "status", "error_code", "error_message", "expires_at").
		Updates(map[string]interface{}{
			"object_key":    intent.ObjectKey,
			"status":        intent.Status,
			"error_code":    intent.ErrorCode,
			"error_message": intent.ErrorMessage,
			"expires_at":    intent.ExpiresAt,
		}).Error
}
