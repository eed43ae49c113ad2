package service

import (
	"context"
	"testing"
	"time"

	"merchquote/internal/dto"
	"merchquote/internal/pricing"
	"merchquote/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stub catalog fetcher ─────────────────────────────────────────────────────

type stubFetcher struct {
	catalog pricing.Catalog
	addons  []pricing.AddonProduct
}

func (f *stubFetcher) FetchCatalog(_ context.Context, productID int64) (pricing.Catalog, error) {
	if productID != f.catalog.Product.ID {
		return pricing.Catalog{}, pricing.ErrNotFound
	}
	return f.catalog, nil
}

func (f *stubFetcher) SearchProducts(_ context.Context, _ string, _, _ int) ([]pricing.Product, int64, error) {
	return []pricing.Product{f.catalog.Product}, 1, nil
}

func (f *stubFetcher) FetchAddons(_ context.Context) ([]pricing.AddonProduct, error) {
	return f.addons, nil
}

func hoodieFetcher() *stubFetcher {
	return &stubFetcher{
		catalog: pricing.Catalog{
			Product: pricing.Product{ID: 42, Code: "HD-1", Name: "[Custom] Hoodie", BasePrice: 20000, HasOptions: true},
			Options: []pricing.ProductOption{
				{Name: "Size", Required: true, Values: []pricing.OptionValue{
					{Text: "S"}, {Text: "XL", AdditionalAmount: 2000},
				}},
				{Name: "Color", Values: []pricing.OptionValue{
					{Text: "Black"}, {Text: "Red", AdditionalAmount: 500},
				}},
			},
			Variants: []pricing.Variant{
				{Options: map[string]string{"Size": "XL", "Color": "Black"}, AdditionalAmount: 2000, StockQuantity: 3, Selling: true},
				{Options: map[string]string{"Size": "S"}, StockQuantity: 0, Selling: true},
			},
		},
		addons: []pricing.AddonProduct{
			{ID: 7, Code: "GW-1", Name: "[Addon] Gift Wrap", Price: 1500},
		},
	}
}

func newTestQuoteService() QuoteService {
	return NewQuoteService(session.NewRegistry(time.Hour), hoodieFetcher(), nil)
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestCommitLinePricesSelection(t *testing.T) {
	svc := newTestQuoteService()
	sess := svc.CreateSession()

	resp, err := svc.CommitLine(context.Background(), sess.SessionID, dto.CommitLineRequest{
		ProductID: 42,
		Selected:  map[string]string{"Size": "XL", "Color": "Black"},
		Quantity:  2,
		Addons:    []dto.AddonSelectionRequest{{AddonID: 7, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)

	line := resp.Items[0]
	assert.Equal(t, "Hoodie", line.Name)
	assert.Equal(t, int64(22000), line.UnitPrice) // base 20000 + variant 2000
	assert.Equal(t, 2, line.Quantity)
	require.Len(t, line.Addons, 1)
	assert.Equal(t, "Gift Wrap", line.Addons[0].Name)
	assert.Equal(t, int64(1500), line.Addons[0].UnitPrice)
	assert.Equal(t, int64(45500), line.LineTotal)

	assert.Equal(t, int64(45500), resp.Totals.Subtotal)
	assert.Equal(t, int64(45500), resp.Totals.GrandTotal)
	assert.True(t, resp.Totals.VATIncluded)
}

func TestCommitAddonLineStandsAlone(t *testing.T) {
	svc := newTestQuoteService()
	sess := svc.CreateSession()

	resp, err := svc.CommitAddonLine(context.Background(), sess.SessionID, dto.AddonSelectionRequest{
		AddonID:  7,
		Quantity: 2,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)

	line := resp.Items[0]
	assert.Equal(t, "Gift Wrap", line.Name)
	assert.Equal(t, int64(1500), line.UnitPrice)
	assert.Empty(t, line.Addons)
	assert.Equal(t, int64(3000), resp.Totals.Subtotal)
}

func TestCommitManualLine(t *testing.T) {
	svc := newTestQuoteService()
	sess := svc.CreateSession()

	resp, err := svc.CommitManualLine(sess.SessionID, dto.ManualLineRequest{
		Name:      "  Rush production fee ",
		UnitPrice: 9900,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)

	line := resp.Items[0]
	assert.Equal(t, "Rush production fee", line.Name)
	assert.Equal(t, int64(9900), line.UnitPrice)
	assert.Equal(t, int64(19800), line.LineTotal)
	assert.Equal(t, int64(19800), resp.Totals.Subtotal)
}

func TestCommitLineSoldOutCombination(t *testing.T) {
	svc := newTestQuoteService()
	sess := svc.CreateSession()

	_, err := svc.CommitLine(context.Background(), sess.SessionID, dto.CommitLineRequest{
		ProductID: 42,
		Selected:  map[string]string{"Size": "S"},
		Quantity:  1,
	})
	assert.ErrorIs(t, err, pricing.ErrSoldOut)
}

func TestCommitLineMissingRequiredOption(t *testing.T) {
	svc := newTestQuoteService()
	sess := svc.CreateSession()

	_, err := svc.CommitLine(context.Background(), sess.SessionID, dto.CommitLineRequest{
		ProductID: 42,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, pricing.ErrMissingRequiredOption)
}

func TestCommitLineUnknownAddon(t *testing.T) {
	svc := newTestQuoteService()
	sess := svc.CreateSession()

	_, err := svc.CommitLine(context.Background(), sess.SessionID, dto.CommitLineRequest{
		ProductID: 42,
		Selected:  map[string]string{"Size": "XL", "Color": "Black"},
		Quantity:  1,
		Addons:    []dto.AddonSelectionRequest{{AddonID: 999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrAddonNotFound)
}

func TestUpdateSettingsAppliesDiscountAndTruncation(t *testing.T) {
	svc := newTestQuoteService()
	sess := svc.CreateSession()

	_, err := svc.CommitLine(context.Background(), sess.SessionID, dto.CommitLineRequest{
		ProductID: 42,
		Selected:  map[string]string{"Size": "XL", "Color": "Black"},
		Quantity:  2,
		Addons:    []dto.AddonSelectionRequest{{AddonID: 7, Quantity: 1}},
	})
	require.NoError(t, err)

	rate := 10
	trunc := "100"
	resp, err := svc.UpdateSettings(sess.SessionID, dto.QuoteSettingsRequest{
		DiscountRate: &rate,
		Truncation:   &trunc,
	})
	require.NoError(t, err)

	// 45500 − 4550 = 40950, floored to 1000-won units
	assert.Equal(t, int64(45500), resp.Totals.Subtotal)
	assert.Equal(t, int64(4550), resp.Totals.DiscountAmount)
	assert.Equal(t, int64(950), resp.Totals.TruncationAmount)
	assert.Equal(t, int64(40000), resp.Totals.GrandTotal)
	assert.Equal(t, int64(36364), resp.Totals.SupplyAmount)
	assert.Equal(t, int64(3636), resp.Totals.VAT)
}

func TestUpdateSettingsVATExcludedView(t *testing.T) {
	svc := newTestQuoteService()
	sess := svc.CreateSession()

	_, err := svc.CommitLine(context.Background(), sess.SessionID, dto.CommitLineRequest{
		ProductID: 42,
		Selected:  map[string]string{"Size": "XL", "Color": "Black"},
		Quantity:  2,
		Addons:    []dto.AddonSelectionRequest{{AddonID: 7, Quantity: 1}},
	})
	require.NoError(t, err)

	rate := 10
	excluded := false
	resp, err := svc.UpdateSettings(sess.SessionID, dto.QuoteSettingsRequest{
		DiscountRate: &rate,
		VATIncluded:  &excluded,
	})
	require.NoError(t, err)

	// Exclusive view: supply = discounted subtotal, 10% added on top
	assert.Equal(t, int64(40950), resp.Totals.SupplyAmount)
	assert.Equal(t, int64(4095), resp.Totals.VAT)
	assert.Equal(t, int64(45045), resp.Totals.GrandTotal)
	assert.Zero(t, resp.Totals.TruncationAmount)
	assert.False(t, resp.Totals.VATIncluded)
}

func TestOverrideLineIsReadThrough(t *testing.T) {
	svc := newTestQuoteService()
	sess := svc.CreateSession()

	resp, err := svc.CommitLine(context.Background(), sess.SessionID, dto.CommitLineRequest{
		ProductID: 42,
		Selected:  map[string]string{"Size": "XL", "Color": "Black"},
		Quantity:  1,
	})
	require.NoError(t, err)
	lineID := resp.Items[0].ID

	price := int64(19900)
	resp, err = svc.OverrideLine(sess.SessionID, lineID, dto.OverrideLineRequest{UnitPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(19900), resp.Items[0].UnitPrice)

	// Clearing the override restores the committed price
	resp, err = svc.ClearOverride(sess.SessionID, lineID)
	require.NoError(t, err)
	assert.Equal(t, int64(22000), resp.Items[0].UnitPrice)
}

func TestClearLinesResetsModifiers(t *testing.T) {
	svc := newTestQuoteService()
	sess := svc.CreateSession()

	_, err := svc.CommitLine(context.Background(), sess.SessionID, dto.CommitLineRequest{
		ProductID: 42,
		Selected:  map[string]string{"Size": "XL", "Color": "Black"},
		Quantity:  1,
	})
	require.NoError(t, err)

	rate := 25
	trunc := "10"
	_, err = svc.UpdateSettings(sess.SessionID, dto.QuoteSettingsRequest{DiscountRate: &rate, Truncation: &trunc})
	require.NoError(t, err)

	resp, err := svc.ClearLines(sess.SessionID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.Totals.DiscountRate)
	assert.Equal(t, "none", resp.Truncation)
}

func TestRemoveLineDropsItsOverride(t *testing.T) {
	svc := newTestQuoteService()
	sess := svc.CreateSession()

	resp, err := svc.CommitLine(context.Background(), sess.SessionID, dto.CommitLineRequest{
		ProductID: 42,
		Selected:  map[string]string{"Size": "XL", "Color": "Black"},
		Quantity:  1,
	})
	require.NoError(t, err)
	lineID := resp.Items[0].ID

	name := "Special"
	_, err = svc.OverrideLine(sess.SessionID, lineID, dto.OverrideLineRequest{Name: &name})
	require.NoError(t, err)

	resp, err = svc.RemoveLine(sess.SessionID, lineID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	// Re-committing gets a fresh identity; the old override must not leak
	resp, err = svc.CommitLine(context.Background(), sess.SessionID, dto.CommitLineRequest{
		ProductID: 42,
		Selected:  map[string]string{"Size": "XL", "Color": "Black"},
		Quantity:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hoodie", resp.Items[0].Name)
}

func TestSessionLifecycle(t *testing.T) {
	svc := newTestQuoteService()

	_, err := svc.GetSession("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sess := svc.CreateSession()
	got, err := svc.GetSession(sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, sess.SessionID, got.SessionID)
	assert.Equal(t, "primary", got.Letterhead)
	assert.True(t, got.VATIncluded)

	require.NoError(t, svc.DeleteSession(sess.SessionID))
	_, err = svc.GetSession(sess.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
