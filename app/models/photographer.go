package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

// Photographer is the tenant anchor for every owned record. Identity and
// session handling live in the external auth provider; this row only exists
// so ownership filters and the per-photographer debit lock have a target.
type Photographer struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	AuthID     string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	Email      string         `gorm:"type:varchar(200);not null" json:"email"`
	StudioName string         `gorm:"type:varchar(200)" json:"studio_name"`
	// API key hash for upload tooling; the plain key is shown once at
	// creation and never stored.
	APIKeyHash       string     `gorm:"type:char(64);index" json:"-"`
	APIKeyLastUsedAt *time.Time `gorm:"type:datetime" json:"-"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// HashAPIKey returns the hex-encoded SHA-256 of an API key for storage and
// lookup.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
