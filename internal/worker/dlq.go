package worker

// dlq.go — Dead Letter Queue
// Jobs past the retry ceiling land here for manual inspection. One redis list
// per source queue (dlq:{queue}). Export jobs also carry their export record
// id so an operator can trace an entry back to the quote it was rendering.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a dead job with enough context to debug it without
// replaying the queue.
type DLQEntry struct {
	Queue    string          `json:"queue"`
	JobType  string          `json:"job_type"`
	ExportID string          `json:"export_id,omitempty"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	FailedAt string          `json:"failed_at"` // ISO 8601
	Attempts int             `json:"attempts"`
}

// SendToDLQ stamps the entry and pushes it onto the source queue's DLQ.
func SendToDLQ(ctx context.Context, rdb *redis.Client, entry DLQEntry) {
	entry.FailedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", entry.Queue).Msg("dlq: failed to marshal entry")
		return
	}

	dlqKey := DLQPrefix + entry.Queue
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: failed to push to DLQ")
		return
	}

	log.Warn().
		Str("queue", entry.Queue).
		Str("job_type", entry.JobType).
		Str("export_id", entry.ExportID).
		Str("reason", entry.Reason).
		Int("attempts", entry.Attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
