package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"merchquote/internal/dto"
	"merchquote/internal/model"
	"merchquote/internal/pricing"
	"merchquote/internal/repository"
	"merchquote/internal/session"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrLineNotFound    = errors.New("line not found")
	ErrAddonNotFound   = errors.New("addon not found")
	ErrEmptyQuote      = errors.New("quote has no lines")
)

type QuoteService interface {
	CreateSession() *dto.SessionResponse
	GetSession(sessionID string) (*dto.SessionResponse, error)
	DeleteSession(sessionID string) error

	CommitLine(ctx context.Context, sessionID string, req dto.CommitLineRequest) (*dto.SessionResponse, error)
	CommitAddonLine(ctx context.Context, sessionID string, req dto.AddonSelectionRequest) (*dto.SessionResponse, error)
	CommitManualLine(sessionID string, req dto.ManualLineRequest) (*dto.SessionResponse, error)
	UpdateLine(sessionID string, lineID int64, req dto.UpdateLineRequest) (*dto.SessionResponse, error)
	RemoveLine(sessionID string, lineID int64) (*dto.SessionResponse, error)
	ClearLines(sessionID string) (*dto.SessionResponse, error)

	OverrideLine(sessionID string, lineID int64, req dto.OverrideLineRequest) (*dto.SessionResponse, error)
	ClearOverride(sessionID string, lineID int64) (*dto.SessionResponse, error)

	UpdateSettings(sessionID string, req dto.QuoteSettingsRequest) (*dto.SessionResponse, error)

	Save(ctx context.Context, sessionID string, operatorID uuid.UUID, req dto.SaveQuoteRequest) (*dto.SavedQuoteResponse, error)
	ListSaved(ctx context.Context, filter dto.SavedQuoteFilter) (*dto.SavedQuoteListResponse, error)
	GetSaved(ctx context.Context, id uuid.UUID) (*dto.SavedQuoteResponse, error)
	DeleteSaved(ctx context.Context, id uuid.UUID) error
}

type quoteService struct {
	registry  *session.Registry
	fetcher   CatalogFetcher
	quoteRepo repository.QuoteRepository
}

func NewQuoteService(registry *session.Registry, fetcher CatalogFetcher, quoteRepo repository.QuoteRepository) QuoteService {
	return &quoteService{registry: registry, fetcher: fetcher, quoteRepo: quoteRepo}
}

// ─── Session lifecycle ───────────────────────────────────────────────────────

func (s *quoteService) CreateSession() *dto.SessionResponse {
	q := s.registry.Create()
	q.Lock()
	defer q.Unlock()
	return snapshot(q)
}

func (s *quoteService) GetSession(sessionID string) (*dto.SessionResponse, error) {
	return s.withSession(sessionID, func(q *session.Quote) error { return nil })
}

func (s *quoteService) DeleteSession(sessionID string) error {
	if _, ok := s.registry.Get(sessionID); !ok {
		return ErrSessionNotFound
	}
	s.registry.Delete(sessionID)
	return nil
}

// withSession runs fn under the session lock and returns a fresh snapshot.
func (s *quoteService) withSession(sessionID string, fn func(q *session.Quote) error) (*dto.SessionResponse, error) {
	q, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	q.Lock()
	defer q.Unlock()
	q.Touch()
	if err := fn(q); err != nil {
		return nil, err
	}
	return snapshot(q), nil
}

// ─── Line operations ─────────────────────────────────────────────────────────

func (s *quoteService) CommitLine(ctx context.Context, sessionID string, req dto.CommitLineRequest) (*dto.SessionResponse, error) {
	catalog, err := s.fetcher.FetchCatalog(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	res, err := pricing.Resolve(catalog, req.Selected)
	if err != nil {
		return nil, err
	}

	addons, err := s.buildAddons(ctx, req.Addons)
	if err != nil {
		return nil, err
	}

	item := pricing.LineItem{
		Name:          pricing.CleanProductName(catalog.Product.Name),
		Options:       req.Selected,
		OptionAmounts: res.AdditionalByName,
		UnitPrice:     res.UnitPrice,
		Quantity:      req.Quantity,
		Addons:        addons,
	}

	return s.withSession(sessionID, func(q *session.Quote) error {
		q.Ledger.Add(item)
		return nil
	})
}

// CommitAddonLine adds an addon as a standalone ledger line, for addons sold
// without a parent product.
func (s *quoteService) CommitAddonLine(ctx context.Context, sessionID string, req dto.AddonSelectionRequest) (*dto.SessionResponse, error) {
	addons, err := s.buildAddons(ctx, []dto.AddonSelectionRequest{req})
	if err != nil {
		return nil, err
	}
	addon := addons[0]

	return s.withSession(sessionID, func(q *session.Quote) error {
		q.Ledger.Add(pricing.LineItem{
			Name:      addon.Name,
			UnitPrice: addon.UnitPrice,
			Quantity:  addon.Quantity,
		})
		return nil
	})
}

// CommitManualLine adds a free-text line. No catalog lookup happens; the
// operator owns the name and price.
func (s *quoteService) CommitManualLine(sessionID string, req dto.ManualLineRequest) (*dto.SessionResponse, error) {
	return s.withSession(sessionID, func(q *session.Quote) error {
		q.Ledger.Add(pricing.LineItem{
			Name:      strings.TrimSpace(req.Name),
			UnitPrice: req.UnitPrice,
			Quantity:  req.Quantity,
		})
		return nil
	})
}

func (s *quoteService) buildAddons(ctx context.Context, reqs []dto.AddonSelectionRequest) ([]pricing.LineAddon, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	available, err := s.fetcher.FetchAddons(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]pricing.AddonProduct, len(available))
	for _, a := range available {
		byID[a.ID] = a
	}

	addons := make([]pricing.LineAddon, 0, len(reqs))
	for _, r := range reqs {
		addon, ok := byID[r.AddonID]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrAddonNotFound, r.AddonID)
		}
		sel, err := pricing.SelectAddon(addon, r.OptionText, r.Quantity)
		if err != nil {
			return nil, err
		}
		addons = append(addons, pricing.LineAddon{
			Name:      pricing.AddonDisplayName(addon, r.OptionText),
			UnitPrice: sel.UnitPrice,
			Quantity:  sel.Quantity,
		})
	}
	return addons, nil
}

func (s *quoteService) UpdateLine(sessionID string, lineID int64, req dto.UpdateLineRequest) (*dto.SessionResponse, error) {
	return s.withSession(sessionID, func(q *session.Quote) error {
		if _, ok := q.Ledger.Get(lineID); !ok {
			return ErrLineNotFound
		}
		if req.Name != nil {
			q.Ledger.UpdateName(lineID, *req.Name)
		}
		if req.Quantity != nil {
			q.Ledger.UpdateQuantity(lineID, *req.Quantity)
		}
		if req.UnitPrice != nil {
			q.Ledger.UpdateUnitPrice(lineID, *req.UnitPrice)
		}
		return nil
	})
}

func (s *quoteService) RemoveLine(sessionID string, lineID int64) (*dto.SessionResponse, error) {
	return s.withSession(sessionID, func(q *session.Quote) error {
		q.Ledger.Remove(lineID)
		delete(q.Overrides, lineID)
		return nil
	})
}

func (s *quoteService) ClearLines(sessionID string) (*dto.SessionResponse, error) {
	return s.withSession(sessionID, func(q *session.Quote) error {
		q.Ledger.Clear()
		q.Overrides = make(map[int64]session.LineOverride)
		return nil
	})
}

// ─── Overlay ─────────────────────────────────────────────────────────────────

func (s *quoteService) OverrideLine(sessionID string, lineID int64, req dto.OverrideLineRequest) (*dto.SessionResponse, error) {
	return s.withSession(sessionID, func(q *session.Quote) error {
		if _, ok := q.Ledger.Get(lineID); !ok {
			return ErrLineNotFound
		}
		q.Overrides[lineID] = session.LineOverride{
			Name:      req.Name,
			Quantity:  req.Quantity,
			UnitPrice: req.UnitPrice,
		}
		return nil
	})
}

func (s *quoteService) ClearOverride(sessionID string, lineID int64) (*dto.SessionResponse, error) {
	return s.withSession(sessionID, func(q *session.Quote) error {
		delete(q.Overrides, lineID)
		return nil
	})
}

// ─── Settings ────────────────────────────────────────────────────────────────

func (s *quoteService) UpdateSettings(sessionID string, req dto.QuoteSettingsRequest) (*dto.SessionResponse, error) {
	return s.withSession(sessionID, func(q *session.Quote) error {
		if req.DiscountRate != nil {
			q.Ledger.SetDiscountRate(*req.DiscountRate)
		}
		if req.Truncation != nil {
			mode, err := pricing.ParseTruncation(*req.Truncation)
			if err != nil {
				return err
			}
			q.Ledger.SetTruncation(mode)
		}
		if req.VATIncluded != nil {
			q.VATIncluded = *req.VATIncluded
		}
		if req.Letterhead != nil {
			q.Letterhead = *req.Letterhead
		}
		if req.Customer != nil {
			q.Customer = *req.Customer
		}
		return nil
	})
}

// ─── Persistence ─────────────────────────────────────────────────────────────

func (s *quoteService) Save(ctx context.Context, sessionID string, operatorID uuid.UUID, req dto.SaveQuoteRequest) (*dto.SavedQuoteResponse, error) {
	q, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	q.Lock()
	q.Touch()
	if req.Customer != "" {
		q.Customer = req.Customer
	}
	items := session.ApplyOverrides(q.Ledger.Items(), q.Overrides)
	totals := totalsFor(items, q.Ledger.DiscountRate(), q.Ledger.Truncation(), q.VATIncluded)
	record := &model.QuoteRecord{
		OperatorID:       operatorID,
		Customer:         q.Customer,
		Letterhead:       q.Letterhead,
		VATIncluded:      q.VATIncluded,
		DiscountRate:     totals.DiscountRate,
		Truncation:       q.Ledger.Truncation().Code(),
		Subtotal:         totals.Subtotal,
		DiscountAmount:   totals.DiscountAmount,
		TruncationAmount: totals.TruncationAmount,
		SupplyAmount:     totals.SupplyAmount,
		VAT:              totals.VAT,
		GrandTotal:       totals.GrandTotal,
	}
	for i, item := range items {
		line := model.QuoteLineRecord{
			Position:  i + 1,
			Name:      item.Name,
			Options:   formatOptions(item.Options),
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.Total(),
		}
		for _, addon := range item.Addons {
			line.Addons = append(line.Addons, model.QuoteLineAddonRecord{
				Name:      addon.Name,
				UnitPrice: addon.UnitPrice,
				Quantity:  addon.Quantity,
			})
		}
		record.Lines = append(record.Lines, line)
	}
	q.Unlock()

	if len(record.Lines) == 0 {
		return nil, ErrEmptyQuote
	}

	err := s.quoteRepo.DB().Transaction(func(tx *gorm.DB) error {
		number, err := s.quoteRepo.NextNumber(ctx, tx)
		if err != nil {
			return err
		}
		record.Number = number
		return s.quoteRepo.Create(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	resp := toSavedQuoteResponse(record)
	return &resp, nil
}

func (s *quoteService) ListSaved(ctx context.Context, filter dto.SavedQuoteFilter) (*dto.SavedQuoteListResponse, error) {
	records, total, err := s.quoteRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SavedQuoteResponse, len(records))
	for i := range records {
		data[i] = toSavedQuoteResponse(&records[i])
	}
	return &dto.SavedQuoteListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *quoteService) GetSaved(ctx context.Context, id uuid.UUID) (*dto.SavedQuoteResponse, error) {
	record, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toSavedQuoteResponse(record)
	return &resp, nil
}

func (s *quoteService) DeleteSaved(ctx context.Context, id uuid.UUID) error {
	return s.quoteRepo.Delete(ctx, id)
}

// ─── Mapping helpers ─────────────────────────────────────────────────────────

// snapshot builds the session view. Callers hold the session lock. Overrides
// are applied read-through so the ledger stays canonical.
func snapshot(q *session.Quote) *dto.SessionResponse {
	items := session.ApplyOverrides(q.Ledger.Items(), q.Overrides)

	lines := make([]dto.LineItemResponse, len(items))
	for i, item := range items {
		lines[i] = toLineResponse(item)
	}

	return &dto.SessionResponse{
		SessionID:   q.ID,
		Customer:    q.Customer,
		Letterhead:  q.Letterhead,
		VATIncluded: q.VATIncluded,
		Truncation:  q.Ledger.Truncation().Code(),
		Items:       lines,
		Totals:      totalsFor(items, q.Ledger.DiscountRate(), q.Ledger.Truncation(), q.VATIncluded),
	}
}

// totalsFor computes the totals view. VAT-inclusive sessions split the grand
// total; VAT-excluded sessions add VAT on top of the discounted subtotal and
// ignore truncation, matching the printed document.
func totalsFor(items []pricing.LineItem, rate int, trunc pricing.Truncation, vatIncluded bool) dto.TotalsResponse {
	t := pricing.Compute(items, rate, trunc, vatIncluded)
	resp := dto.TotalsResponse{
		Subtotal:         t.Subtotal,
		DiscountRate:     t.DiscountRate,
		DiscountAmount:   t.DiscountAmount,
		TruncationAmount: t.TruncationAmount,
		SupplyAmount:     t.SupplyAmount,
		VAT:              t.VAT,
		GrandTotal:       t.GrandTotal,
		VATIncluded:      t.VATIncluded,
		ItemCount:        t.ItemCount,
	}
	if !vatIncluded {
		view := pricing.ExclusiveView(t.Subtotal, t.DiscountAmount)
		resp.SupplyAmount = view.SupplyAmount
		resp.VAT = view.VAT
		resp.GrandTotal = view.Total
		resp.TruncationAmount = 0
	}
	return resp
}

func toLineResponse(item pricing.LineItem) dto.LineItemResponse {
	addons := make([]dto.LineAddonResponse, len(item.Addons))
	for i, a := range item.Addons {
		addons[i] = dto.LineAddonResponse{Name: a.Name, UnitPrice: a.UnitPrice, Quantity: a.Quantity}
	}
	if len(addons) == 0 {
		addons = nil
	}
	return dto.LineItemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Options:   item.Options,
		UnitPrice: item.UnitPrice,
		Quantity:  item.Quantity,
		LineTotal: item.Total(),
		Addons:    addons,
	}
}

func toSavedQuoteResponse(record *model.QuoteRecord) dto.SavedQuoteResponse {
	lines := make([]dto.LineItemResponse, len(record.Lines))
	for i, l := range record.Lines {
		addons := make([]dto.LineAddonResponse, len(l.Addons))
		for j, a := range l.Addons {
			addons[j] = dto.LineAddonResponse{Name: a.Name, UnitPrice: a.UnitPrice, Quantity: a.Quantity}
		}
		if len(addons) == 0 {
			addons = nil
		}
		lines[i] = dto.LineItemResponse{
			ID:        int64(l.Position),
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal,
			Addons:    addons,
		}
	}
	itemCount := len(record.Lines)
	return dto.SavedQuoteResponse{
		ID:         record.ID.String(),
		Number:     record.Number,
		Customer:   record.Customer,
		Letterhead: record.Letterhead,
		Items:      lines,
		Totals: dto.TotalsResponse{
			Subtotal:         record.Subtotal,
			DiscountRate:     record.DiscountRate,
			DiscountAmount:   record.DiscountAmount,
			TruncationAmount: record.TruncationAmount,
			SupplyAmount:     record.SupplyAmount,
			VAT:              record.VAT,
			GrandTotal:       record.GrandTotal,
			VATIncluded:      record.VATIncluded,
			ItemCount:        itemCount,
		},
		CreatedAt: record.CreatedAt.Format(time.RFC3339),
	}
}

// formatOptions renders a selection as "Name: Value / Name: Value", sorted by
// axis name so saved quotes read back deterministically.
func formatOptions(selected map[string]string) string {
	if len(selected) == 0 {
		return ""
	}
	names := make([]string, 0, len(selected))
	for name := range selected {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + selected[name]
	}
	return strings.Join(parts, " / ")
}
