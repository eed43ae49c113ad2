package service

import (
	"context"

	"merchquote/internal/dto"
	"merchquote/internal/pricing"
)

// CatalogFetcher is the slice of the storefront client the catalog and quote
// services need. Satisfied by *infra.StorefrontClient; tests substitute a stub.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context, productID int64) (pricing.Catalog, error)
	SearchProducts(ctx context.Context, query string, page, limit int) ([]pricing.Product, int64, error)
	FetchAddons(ctx context.Context) ([]pricing.AddonProduct, error)
}

type CatalogService interface {
	Search(ctx context.Context, filter dto.CatalogSearchFilter) (*dto.ProductListResponse, error)
	GetProduct(ctx context.Context, productID int64) (*dto.ProductDetailResponse, error)
	ResolvePrice(ctx context.Context, productID int64, selected map[string]string) (*dto.ResolvePriceResponse, error)
	ListAddons(ctx context.Context) ([]dto.AddonResponse, error)
}

type catalogService struct {
	fetcher CatalogFetcher
}

func NewCatalogService(fetcher CatalogFetcher) CatalogService {
	return &catalogService{fetcher: fetcher}
}

func (s *catalogService) Search(ctx context.Context, filter dto.CatalogSearchFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.fetcher.SearchProducts(ctx, filter.Query, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ProductSummaryResponse, len(products))
	for i, p := range products {
		data[i] = toProductSummary(p)
	}
	return &dto.ProductListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID int64) (*dto.ProductDetailResponse, error) {
	catalog, err := s.fetcher.FetchCatalog(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.ProductDetailResponse{
		ProductSummaryResponse: toProductSummary(catalog.Product),
		Options:                toOptionResponses(catalog.Options),
	}, nil
}

// ResolvePrice prices one selection against the live catalog. An incomplete
// selection is not an error at this layer; the response carries the missing
// axes so the UI can prompt for them.
func (s *catalogService) ResolvePrice(ctx context.Context, productID int64, selected map[string]string) (*dto.ResolvePriceResponse, error) {
	catalog, err := s.fetcher.FetchCatalog(ctx, productID)
	if err != nil {
		return nil, err
	}

	res, err := pricing.Resolve(catalog, selected)
	if err != nil {
		if len(res.MissingRequired) > 0 {
			return &dto.ResolvePriceResponse{MissingRequired: res.MissingRequired}, nil
		}
		return nil, err
	}
	return &dto.ResolvePriceResponse{
		UnitPrice:        res.UnitPrice,
		AdditionalByName: res.AdditionalByName,
	}, nil
}

func (s *catalogService) ListAddons(ctx context.Context) ([]dto.AddonResponse, error) {
	addons, err := s.fetcher.FetchAddons(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AddonResponse, len(addons))
	for i, a := range addons {
		resp[i] = dto.AddonResponse{
			ID:      a.ID,
			Code:    a.Code,
			Name:    a.Name,
			Price:   a.Price,
			Options: toOptionResponses(a.Options),
		}
	}
	return resp, nil
}

func toProductSummary(p pricing.Product) dto.ProductSummaryResponse {
	return dto.ProductSummaryResponse{
		ID:         p.ID,
		Code:       p.Code,
		Name:       p.Name,
		BasePrice:  p.BasePrice,
		HasOptions: p.HasOptions,
	}
}

func toOptionResponses(options []pricing.ProductOption) []dto.ProductOptionResponse {
	resp := make([]dto.ProductOptionResponse, len(options))
	for i, o := range options {
		values := make([]dto.OptionValueResponse, len(o.Values))
		for j, v := range o.Values {
			values[j] = dto.OptionValueResponse{Text: v.Text, AdditionalAmount: v.AdditionalAmount}
		}
		resp[i] = dto.ProductOptionResponse{Name: o.Name, Required: o.Required, Values: values}
	}
	return resp
}
