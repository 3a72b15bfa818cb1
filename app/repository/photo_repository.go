package repository

import (
	"gorm.io/gorm"

	"github.com/sabaipics/sabaipics/app/models"
)

// photoRepository implements the PhotoRepository interface
type photoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository creates a new photo repository instance
func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepository{db: db}
}

// CreateTx inserts a photo inside the caller's transaction. Settlement
// requires the insert to commit or roll back together with the ledger debit.
func (r *photoRepository) CreateTx(tx *gorm.DB, photo *models.Photo) error {
	return tx.Create(photo).Error
}

// GetOwnedByUUID retrieves a photo by UUID, scoped to the owning
// photographer. A foreign uuid behaves exactly like a missing one.
func (r *photoRepository) GetOwnedByUUID(photographerID uint, uuid string) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.Where("uuid = ? AND photographer_id = ?", uuid, photographerID).
		First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// UpdateStatus updates the processing status of a photo
func (r *photoRepository) UpdateStatus(uuid string, status string) error {
	return r.db.Model(&models.Photo{}).Where("uuid = ?", uuid).
		Update("status", status).Error
}
