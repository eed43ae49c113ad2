package service

import (
	"context"
	"testing"

	"merchquote/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePriceCompleteSelection(t *testing.T) {
	svc := NewCatalogService(hoodieFetcher())

	resp, err := svc.ResolvePrice(context.Background(), 42, map[string]string{"Size": "XL", "Color": "Black"})
	require.NoError(t, err)
	assert.Equal(t, int64(22000), resp.UnitPrice)
	assert.Empty(t, resp.MissingRequired)
}

func TestResolvePriceIncompleteSelectionIsNotAnError(t *testing.T) {
	svc := NewCatalogService(hoodieFetcher())

	resp, err := svc.ResolvePrice(context.Background(), 42, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Size"}, resp.MissingRequired)
	assert.Zero(t, resp.UnitPrice)
}

func TestResolvePriceSoldOutPropagates(t *testing.T) {
	svc := NewCatalogService(hoodieFetcher())

	_, err := svc.ResolvePrice(context.Background(), 42, map[string]string{"Size": "S"})
	assert.ErrorIs(t, err, pricing.ErrSoldOut)
}

func TestGetProductUnknownID(t *testing.T) {
	svc := NewCatalogService(hoodieFetcher())

	_, err := svc.GetProduct(context.Background(), 999)
	assert.ErrorIs(t, err, pricing.ErrNotFound)
}

func TestGetProductIncludesOptions(t *testing.T) {
	svc := NewCatalogService(hoodieFetcher())

	resp, err := svc.GetProduct(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "[Custom] Hoodie", resp.Name)
	require.Len(t, resp.Options, 2)
	assert.True(t, resp.Options[0].Required)
	assert.Equal(t, "Size", resp.Options[0].Name)
}
