package models

import "time"

// Upload intent states. Completed and expired are terminal.
const (
	IntentStatusPending   = "pending"
	IntentStatusUploaded  = "uploaded"
	IntentStatusCompleted = "completed"
	IntentStatusFailed    = "failed"
	IntentStatusExpired   = "expired"
)

// UploadIntent tracks one presigned direct-to-storage upload attempt. The id
// seeds the object key; every re-presign mints a fresh key and orphans the
// old one, so a stale presigned URL can never race a retried upload.
type UploadIntent struct {
	ID             string       `gorm:"type:char(36);primaryKey" json:"id"`
	PhotographerID uint         `gorm:"index;not null" json:"photographer_id"`
	Photographer   Photographer `gorm:"foreignKey:PhotographerID" json:"-"`
	EventID        uint         `gorm:"index;not null" json:"event_id"`
	Event          Event        `gorm:"foreignKey:EventID" json:"-"`
	ObjectKey      string       `gorm:"type:varchar(512);uniqueIndex;not null" json:"object_key"`
	ContentType    string       `gorm:"type:varchar(100);not null" json:"content_type"`
	ContentLength  int64        `gorm:"not null" json:"content_length"`
	Status         string       `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ErrorCode      string       `gorm:"type:varchar(50);default:''" json:"error_code,omitempty"`
	ErrorMessage   string       `gorm:"type:varchar(255);default:''" json:"error_message,omitempty"`
	PhotoID        *string      `gorm:"type:char(36);default:null" json:"photo_id,omitempty"`
	ExpiresAt      time.Time    `gorm:"type:datetime;not null" json:"expires_at"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// Retryable reports whether a re-presign may be issued from the current
// status. Completed uploads and uploads already observed in storage must
// never rotate their key, otherwise processed content could be replaced.
func (i *UploadIntent) Retryable() bool {
	switch i.Status {
	case IntentStatusPending, IntentStatusExpired, IntentStatusFailed:
		return true
	default:
		return false
	}
}
