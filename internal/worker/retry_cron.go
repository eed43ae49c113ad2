package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues export records stuck in
// 'pending' or 'failed'. Records past the retry ceiling go to the DLQ.

import (
	"context"
	"fmt"
	"time"

	"merchquote/internal/model"
	"merchquote/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
	staleAfter        = 2 * time.Minute
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ExportRepo repository.ExportRepository
	Dispatcher *Dispatcher
	RDB        *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries stale export records, and re-enqueues them.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	cutoff := time.Now().Add(-staleAfter)
	records, err := cfg.ExportRepo.StalePending(ctx, cutoff, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query stale exports")
		return
	}

	if len(records) == 0 {
		return
	}

	log.Info().Int("count", len(records)).Msg("retry_cron: re-enqueueing stale exports")

	for i := range records {
		record := &records[i]

		if record.RetryCount >= model.MaxExportRetries {
			reason := fmt.Sprintf("max retries (%d) exceeded", model.MaxExportRetries)
			if record.LastError != nil {
				reason = fmt.Sprintf("%s: %s", reason, *record.LastError)
			}
			_ = cfg.ExportRepo.MarkFailed(ctx, record.ID, reason)
			payload := fmt.Sprintf(`{"export_id":"%s"}`, record.ID)
			SendToDLQ(ctx, cfg.RDB, DLQEntry{
				Queue:    QueueExport,
				JobType:  "export",
				ExportID: record.ID.String(),
				Payload:  []byte(payload),
				Reason:   reason,
				Attempts: record.RetryCount,
			})
			continue
		}

		job := ExportJobPayload{ExportID: record.ID.String()}
		if err := cfg.Dispatcher.EnqueueExport(ctx, job); err != nil {
			log.Error().Err(err).Str("export_id", record.ID.String()).Msg("retry_cron: enqueue failed")
			continue
		}
		log.Info().
			Str("export_id", record.ID.String()).
			Int("retry_count", record.RetryCount).
			Msg("retry_cron: export re-enqueued")
	}
}
