package dto

// ─── Filter / List ──────────────────────────────────────────────────────────

// CatalogSearchFilter is bound from query string of GET /v1/catalog/products.
type CatalogSearchFilter struct {
	Query string `form:"q"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ResolvePriceRequest carries the option selection to price. Keys are option
// names, values the chosen value text.
type ResolvePriceRequest struct {
	Selected map[string]string `json:"selected"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OptionValueResponse struct {
	Text             string `json:"text"`
	AdditionalAmount int64  `json:"additional_amount"`
}

type ProductOptionResponse struct {
	Name     string                `json:"name"`
	Required bool                  `json:"required"`
	Values   []OptionValueResponse `json:"values"`
}

type ProductSummaryResponse struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	BasePrice  int64  `json:"base_price"`
	HasOptions bool   `json:"has_options"`
}

type ProductDetailResponse struct {
	ProductSummaryResponse
	Options []ProductOptionResponse `json:"options"`
}

type ProductListResponse struct {
	Data  []ProductSummaryResponse `json:"data"`
	Total int64                    `json:"total"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
}

type AddonResponse struct {
	ID      int64                   `json:"id"`
	Code    string                  `json:"code"`
	Name    string                  `json:"name"`
	Price   int64                   `json:"price"`
	Options []ProductOptionResponse `json:"options"`
}

// ResolvePriceResponse carries the outcome of a selection resolution. When
// the selection is incomplete, MissingRequired names the axes still unset and
// UnitPrice is zero.
type ResolvePriceResponse struct {
	UnitPrice        int64            `json:"unit_price"`
	MissingRequired  []string         `json:"missing_required,omitempty"`
	AdditionalByName map[string]int64 `json:"additional_by_name,omitempty"`
}
