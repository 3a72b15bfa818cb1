package models

import (
	"time"

	"gorm.io/gorm"
)

// Photo processing states.
const (
	PhotoStatusUploading  = "uploading"
	PhotoStatusProcessing = "processing"
	PhotoStatusIndexed    = "indexed"
	PhotoStatusFailed     = "failed"
)

// Photo is one successfully admitted image. The UUID is generated before the
// storage write so the object key can embed it; the row itself is only
// inserted in the settlement transaction, after the bytes are durable.
type Photo struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	UUID           string       `gorm:"type:char(36);uniqueIndex;not null" json:"uuid"`
	EventID        uint         `gorm:"index;not null" json:"event_id"`
	Event          Event        `gorm:"foreignKey:EventID" json:"-"`
	PhotographerID uint         `gorm:"index;not null" json:"photographer_id"`
	Photographer   Photographer `gorm:"foreignKey:PhotographerID" json:"-"`
	ObjectKey      string       `gorm:"type:varchar(512);uniqueIndex;not null" json:"object_key"`
	Status         string       `gorm:"type:varchar(20);not null;default:'uploading';index" json:"status"`
	FaceCount      int          `gorm:"default:0" json:"face_count"`
	FileSize       int64        `gorm:"type:bigint" json:"file_size"`
	Width          int          `gorm:"type:int" json:"width"`
	Height         int          `gorm:"type:int" json:"height"`
	OriginalMime   string       `gorm:"type:varchar(100)" json:"original_mime_type"`
	OriginalSize   int64        `gorm:"type:bigint" json:"original_file_size"`
	// EXIF supplement, best effort
	CameraModel *string    `gorm:"type:varchar(255)" json:"camera_model,omitempty"`
	TakenAt     *time.Time `gorm:"type:datetime" json:"taken_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
