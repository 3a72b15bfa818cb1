package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/sabaipics/sabaipics/app/models"
)

// photographerRepository implements the PhotographerRepository interface
type photographerRepository struct {
	db *gorm.DB
}

// NewPhotographerRepository creates a new photographer repository instance
func NewPhotographerRepository(db *gorm.DB) PhotographerRepository {
	return &photographerRepository{db: db}
}

// Create persists a new photographer
func (r *photographerRepository) Create(photographer *models.Photographer) error {
	return r.db.Create(photographer).Error
}

// GetByAuthID resolves a photographer from the external auth subject
func (r *photographerRepository) GetByAuthID(authID string) (*models.Photographer, error) {
	var photographer models.Photographer
	err := r.db.Where("auth_id = ?", authID).First(&photographer).Error
	if err != nil {
		return nil, err
	}
	return &photographer, nil
}

// GetByAPIKeyHash resolves a photographer from a hashed API key
func (r *photographerRepository) GetByAPIKeyHash(hash string) (*models.Photographer, error) {
	var photographer models.Photographer
	err := r.db.Where("api_key_hash = ?", hash).First(&photographer).Error
	if err != nil {
		return nil, err
	}
	return &photographer, nil
}

// TouchAPIKeyUsage refreshes the key's last-used timestamp, best effort
func (r *photographerRepository) TouchAPIKeyUsage(photographerID uint) error {
	now := time.Now()
	return r.db.Model(&models.Photographer{}).
		Where("id = ?", photographerID).
		Update("api_key_last_used_at", now).Error
}
