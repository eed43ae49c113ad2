package service

import (
	"context"
	"encoding/json"
	"time"

	"merchquote/internal/dto"
	"merchquote/internal/infra"
	"merchquote/internal/model"
	"merchquote/internal/repository"
	"merchquote/internal/session"
	"merchquote/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ExportService interface {
	Enqueue(ctx context.Context, operatorID uuid.UUID, req dto.ExportRequest) (*dto.ExportResponse, error)
	Preview(ctx context.Context, sessionID string) (*infra.QuoteDocument, error)
	Get(ctx context.Context, operatorID, id uuid.UUID) (*dto.ExportResponse, error)
	List(ctx context.Context, operatorID uuid.UUID, filter dto.ExportFilter) (*dto.ExportListResponse, error)
}

type exportService struct {
	registry   *session.Registry
	settings   SettingsService
	exportRepo repository.ExportRepository
	dispatcher *worker.Dispatcher
}

func NewExportService(
	registry *session.Registry,
	settings SettingsService,
	exportRepo repository.ExportRepository,
	dispatcher *worker.Dispatcher,
) ExportService {
	return &exportService{
		registry:   registry,
		settings:   settings,
		exportRepo: exportRepo,
		dispatcher: dispatcher,
	}
}

// Enqueue freezes the session into a render payload, persists the export
// record, and pushes a job. The worker renders from the frozen payload only,
// so later session edits never change a requested document.
func (s *exportService) Enqueue(ctx context.Context, operatorID uuid.UUID, req dto.ExportRequest) (*dto.ExportResponse, error) {
	q, ok := s.registry.Get(req.SessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	q.Lock()
	q.Touch()
	letterheadKey := q.Letterhead
	doc := buildDocument(q)
	q.Unlock()

	if len(doc.Lines) == 0 {
		return nil, ErrEmptyQuote
	}

	if err := s.attachIssuer(ctx, &doc, letterheadKey); err != nil {
		return nil, err
	}

	renderData, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	record := &model.ExportRecord{
		OperatorID: operatorID,
		Format:     req.Format,
		Letterhead: letterheadKey,
		Status:     model.ExportPending,
		RenderData: renderData,
		EmailTo:    req.EmailTo,
	}
	if err := s.exportRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	job := worker.ExportJobPayload{ExportID: record.ID.String()}
	if err := s.dispatcher.EnqueueExport(ctx, job); err != nil {
		// Record stays pending; the retry cron will re-enqueue it
		reason := err.Error()
		record.LastError = &reason
		if perr := s.exportRepo.SetLastError(ctx, record.ID, reason); perr != nil {
			log.Error().Err(perr).Str("export_id", record.ID.String()).Msg("export: failed to record dispatch error")
		}
		log.Warn().Err(err).Str("export_id", record.ID.String()).Msg("export: dispatch failed, waiting for retry cron")
	}

	resp := toExportResponse(record)
	return &resp, nil
}

// Preview assembles the render payload for a live session without persisting
// anything. The UI shows this before the operator commits to an export.
func (s *exportService) Preview(ctx context.Context, sessionID string) (*infra.QuoteDocument, error) {
	q, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	q.Lock()
	q.Touch()
	letterheadKey := q.Letterhead
	doc := buildDocument(q)
	q.Unlock()

	if err := s.attachIssuer(ctx, &doc, letterheadKey); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *exportService) attachIssuer(ctx context.Context, doc *infra.QuoteDocument, letterheadKey string) error {
	lh, err := s.settings.LoadLetterhead(ctx, letterheadKey)
	if err != nil {
		return err
	}
	doc.Issuer = infra.DocumentIssuer{
		CompanyName:    lh.CompanyName,
		Registration:   lh.Registration,
		Representative: lh.Representative,
		Address:        lh.Address,
		Phone:          lh.Phone,
		Email:          lh.Email,
		BankAccount:    lh.BankAccount,
		SealImagePath:  lh.SealImagePath,
	}
	return nil
}

// Get is scoped to the requesting operator; another operator's export reads
// as absent rather than forbidden.
func (s *exportService) Get(ctx context.Context, operatorID, id uuid.UUID) (*dto.ExportResponse, error) {
	record, err := s.exportRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.OperatorID != operatorID {
		return nil, gorm.ErrRecordNotFound
	}
	resp := toExportResponse(record)
	return &resp, nil
}

func (s *exportService) List(ctx context.Context, operatorID uuid.UUID, filter dto.ExportFilter) (*dto.ExportListResponse, error) {
	records, total, err := s.exportRepo.List(ctx, operatorID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ExportResponse, len(records))
	for i := range records {
		data[i] = toExportResponse(&records[i])
	}
	return &dto.ExportListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// buildDocument assembles the render payload from a live session. Callers
// hold the session lock.
func buildDocument(q *session.Quote) infra.QuoteDocument {
	items := session.ApplyOverrides(q.Ledger.Items(), q.Overrides)
	totals := totalsFor(items, q.Ledger.DiscountRate(), q.Ledger.Truncation(), q.VATIncluded)

	lines := make([]infra.DocumentLine, len(items))
	for i, item := range items {
		line := infra.DocumentLine{
			Name:      item.Name,
			Options:   formatOptions(item.Options),
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.Total(),
		}
		for _, addon := range item.Addons {
			line.Addons = append(line.Addons, infra.DocumentAddon{
				Name:      addon.Name,
				UnitPrice: addon.UnitPrice,
				Quantity:  addon.Quantity,
			})
		}
		lines[i] = line
	}

	return infra.QuoteDocument{
		Number:           draftNumber(q.ID),
		Date:             time.Now().Format("2006-01-02"),
		Customer:         q.Customer,
		Lines:            lines,
		VATIncluded:      q.VATIncluded,
		DiscountRate:     totals.DiscountRate,
		Subtotal:         totals.Subtotal,
		DiscountAmount:   totals.DiscountAmount,
		TruncationAmount: totals.TruncationAmount,
		SupplyAmount:     totals.SupplyAmount,
		VAT:              totals.VAT,
		GrandTotal:       totals.GrandTotal,
	}
}

// draftNumber derives a printable number for documents exported before the
// quote is saved.
func draftNumber(sessionID string) string {
	short := sessionID
	if len(short) > 8 {
		short = short[:8]
	}
	return "D" + time.Now().Format("20060102") + "-" + short
}

func toExportResponse(record *model.ExportRecord) dto.ExportResponse {
	resp := dto.ExportResponse{
		ID:         record.ID.String(),
		Format:     record.Format,
		Status:     record.Status,
		FilePath:   record.FilePath,
		RetryCount: record.RetryCount,
		LastError:  record.LastError,
		CreatedAt:  record.CreatedAt.Format(time.RFC3339),
	}
	if record.CompletedAt != nil {
		done := record.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &done
	}
	return resp
}
