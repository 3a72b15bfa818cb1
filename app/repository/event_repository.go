package repository

import (
	"gorm.io/gorm"

	"github.com/sabaipics/sabaipics/app/models"
)

// eventRepository implements the EventRepository interface
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository instance
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// GetOwnedByID retrieves an event by id, scoped to the owning photographer.
// A foreign event id behaves exactly like a missing one.
func (r *eventRepository) GetOwnedByID(photographerID, eventID uint) (*models.Event, error) {
	var event models.Event
	err := r.db.Where("id = ? AND photographer_id = ?", eventID, photographerID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}
