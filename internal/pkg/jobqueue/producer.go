package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sabaipics/sabaipics/internal/pkg/cache"
)

const (
	// Redis key prefixes
	JobKeyPrefix = "job:"
	JobQueueKey  = "faceindex_queue"

	// Jobs expire after 24 hours if never picked up
	JobTTL = 24 * time.Hour
)

// Producer enqueues face-index jobs onto the Redis-backed queue. This core
// only produces; the recognition workers consuming the queue run elsewhere.
type Producer struct {
	client *redis.Client
}

// NewProducer creates a queue producer on the shared Redis client.
func NewProducer() *Producer {
	return &Producer{client: cache.GetClient()}
}

// EnqueueFaceIndex publishes a face-index job for an admitted photo. The job
// record is stored under its own key and the id pushed onto the queue list,
// so workers can requeue by id after a crash.
func (p *Producer) EnqueueFaceIndex(ctx context.Context, payload FaceIndexPayload) error {
	job := Job{
		ID:        uuid.New().String(),
		Type:      JobTypeFaceIndex,
		Payload:   payload,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	jobKey := JobKeyPrefix + job.ID
	if err := p.client.Set(ctx, jobKey, data, JobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}
	if err := p.client.LPush(ctx, JobQueueKey, job.ID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}

	fiberlog.Infof("[JobQueue] Enqueued %s job %s for photo %s", job.Type, job.ID, payload.PhotoID)
	return nil
}
