package worker

// export_worker.go
// Processes document render jobs from QueueExport. The render payload was
// frozen on the export record at enqueue time, so this worker never touches a
// live quoting session.

import (
	"context"
	"encoding/json"
	"fmt"

	"merchquote/internal/infra"
	"merchquote/internal/model"
	"merchquote/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ExportJobPayload is the job envelope sent to QueueExport.
type ExportJobPayload struct {
	ExportID string `json:"export_id"`
}

// ExportWorker renders PDF / spreadsheet documents for export records.
type ExportWorker struct {
	exportRepo  repository.ExportRepository
	dispatcher  *Dispatcher
	storagePath string
}

func NewExportWorker(exportRepo repository.ExportRepository, dispatcher *Dispatcher, storagePath string) *ExportWorker {
	return &ExportWorker{
		exportRepo:  exportRepo,
		dispatcher:  dispatcher,
		storagePath: storagePath,
	}
}

// Process handles a single export job:
//  1. Parse ExportJobPayload and load the export record
//  2. Mark it running, decode the frozen render payload
//  3. Render to PDF or XLSX
//  4. Mark completed (or failed, for the retry cron to pick up)
//  5. Optionally enqueue an email job with the rendered file attached
func (w *ExportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ExportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("export_worker: invalid payload")
		return err
	}

	exportID, err := uuid.Parse(payload.ExportID)
	if err != nil {
		log.Error().Str("export_id", payload.ExportID).Msg("export_worker: invalid export_id")
		return err
	}

	record, err := w.exportRepo.FindByID(ctx, exportID)
	if err != nil {
		log.Error().Err(err).Str("export_id", payload.ExportID).Msg("export_worker: record not found")
		return err
	}
	if record.Status == model.ExportCompleted {
		// Re-enqueued duplicate — already done
		return nil
	}

	if err := w.exportRepo.MarkRunning(ctx, exportID); err != nil {
		log.Warn().Err(err).Str("export_id", payload.ExportID).Msg("export_worker: mark running failed")
	}

	var doc infra.QuoteDocument
	if err := json.Unmarshal(record.RenderData, &doc); err != nil {
		reason := fmt.Sprintf("decode render data: %v", err)
		_ = w.exportRepo.MarkFailed(ctx, exportID, reason)
		return fmt.Errorf("export_worker: %s", reason)
	}

	var filePath string
	switch record.Format {
	case "pdf":
		filePath, err = infra.GenerateQuotePDF(&doc, w.storagePath)
	case "xlsx":
		filePath, err = infra.GenerateQuoteXLSX(&doc, w.storagePath)
	default:
		err = fmt.Errorf("unknown format %q", record.Format)
	}
	if err != nil {
		_ = w.exportRepo.MarkFailed(ctx, exportID, err.Error())
		log.Error().Err(err).Str("export_id", payload.ExportID).Msg("export_worker: render failed")
		return err
	}

	if err := w.exportRepo.MarkCompleted(ctx, exportID, filePath); err != nil {
		log.Error().Err(err).Str("export_id", payload.ExportID).Msg("export_worker: mark completed failed")
		return err
	}
	log.Info().Str("export_id", payload.ExportID).Str("file", filePath).Msg("export_worker: document rendered")

	if record.EmailTo != nil && *record.EmailTo != "" {
		emailJob := EmailJobPayload{
			ToEmail:        *record.EmailTo,
			Subject:        fmt.Sprintf("Quotation %s", doc.Number),
			Body:           fmt.Sprintf("Please find the attached quotation.\nTotal: %s KRW", infra.FormatKRW(doc.GrandTotal)),
			AttachmentPath: filePath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *record.EmailTo).Msg("export_worker: failed to enqueue email")
		} else {
			log.Info().Str("email", *record.EmailTo).Msg("export_worker: email job enqueued")
		}
	}
	return nil
}
