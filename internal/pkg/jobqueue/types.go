package jobqueue

import "time"

// JobType defines the type of job
type JobType string

const (
	JobTypeFaceIndex JobType = "face_index"
)

// Job is the envelope pushed onto the queue. Workers (external) treat
// delivery as at-least-once.
type Job struct {
	ID        string           `json:"id"`
	Type      JobType          `json:"type"`
	Payload   FaceIndexPayload `json:"payload"`
	CreatedAt time.Time        `json:"created_at"`
}

// FaceIndexPayload references an admitted photo for downstream face
// detection and indexing.
type FaceIndexPayload struct {
	PhotoID   string `json:"photo_id"`
	EventID   uint   `json:"event_id"`
	ObjectKey string `json:"object_key"`
}
