package models

import (
	"time"

	"gorm.io/gorm"
)

// Event groups the photos of one shoot. Photos and upload intents are owned
// exclusively through their event; every query filters by the authenticated
// photographer's id, never by the path parameter alone.
type Event struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	PhotographerID uint           `gorm:"index;not null" json:"photographer_id"`
	Photographer   Photographer   `gorm:"foreignKey:PhotographerID" json:"-"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	ExpiresAt      time.Time      `gorm:"type:datetime;not null;index" json:"expires_at"`
	// PhotoCount lags reality by one counter flush; it exists for listings,
	// not for accounting.
	PhotoCount int64          `gorm:"default:0" json:"photo_count"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Expired reports whether the event is past its expiry.
func (e *Event) Expired() bool {
	return !e.ExpiresAt.IsZero() && e.ExpiresAt.Before(time.Now())
}
