package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AddonSelectionRequest struct {
	AddonID    int64  `json:"addon_id"   validate:"required,min=1"`
	OptionText string `json:"option_text"`
	Quantity   int    `json:"quantity"   validate:"min=0"`
}

// CommitLineRequest adds one resolved product selection to the session ledger.
type CommitLineRequest struct {
	ProductID int64                   `json:"product_id" validate:"required,min=1"`
	Selected  map[string]string       `json:"selected"`
	Quantity  int                     `json:"quantity"   validate:"min=0"`
	Addons    []AddonSelectionRequest `json:"addons"     validate:"omitempty,dive"`
}

// ManualLineRequest adds a free-text line that never touched the catalog.
type ManualLineRequest struct {
	Name      string `json:"name"       validate:"required,min=1,max=200"`
	UnitPrice int64  `json:"unit_price" validate:"min=0"`
	Quantity  int    `json:"quantity"   validate:"min=0"`
}

type UpdateLineRequest struct {
	Name      *string `json:"name"       validate:"omitempty,min=1"`
	Quantity  *int    `json:"quantity"`
	UnitPrice *int64  `json:"unit_price"`
}

type OverrideLineRequest struct {
	Name      *string `json:"name"       validate:"omitempty,min=1"`
	Quantity  *int    `json:"quantity"`
	UnitPrice *int64  `json:"unit_price"`
}

type QuoteSettingsRequest struct {
	DiscountRate *int    `json:"discount_rate" validate:"omitempty,min=0,max=100"`
	Truncation   *string `json:"truncation"    validate:"omitempty,oneof=none 1 10 100"`
	VATIncluded  *bool   `json:"vat_included"`
	Letterhead   *string `json:"letterhead"    validate:"omitempty,oneof=primary secondary"`
	Customer     *string `json:"customer"`
}

type SaveQuoteRequest struct {
	Customer string `json:"customer"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineAddonResponse struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type LineItemResponse struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	Options   map[string]string   `json:"options,omitempty"`
	UnitPrice int64               `json:"unit_price"`
	Quantity  int                 `json:"quantity"`
	LineTotal int64               `json:"line_total"`
	Addons    []LineAddonResponse `json:"addons,omitempty"`
}

type TotalsResponse struct {
	Subtotal         int64 `json:"subtotal"`
	DiscountRate     int   `json:"discount_rate"`
	DiscountAmount   int64 `json:"discount_amount"`
	TruncationAmount int64 `json:"truncation_amount"`
	SupplyAmount     int64 `json:"supply_amount"`
	VAT              int64 `json:"vat"`
	GrandTotal       int64 `json:"grand_total"`
	VATIncluded      bool  `json:"vat_included"`
	ItemCount        int   `json:"item_count"`
}

type SessionResponse struct {
	SessionID   string             `json:"session_id"`
	Customer    string             `json:"customer,omitempty"`
	Letterhead  string             `json:"letterhead"`
	VATIncluded bool               `json:"vat_included"`
	Truncation  string             `json:"truncation"`
	Items       []LineItemResponse `json:"items"`
	Totals      TotalsResponse     `json:"totals"`
}

type SavedQuoteResponse struct {
	ID         string             `json:"id"`
	Number     string             `json:"number"`
	Customer   string             `json:"customer"`
	Letterhead string             `json:"letterhead"`
	Items      []LineItemResponse `json:"items"`
	Totals     TotalsResponse     `json:"totals"`
	CreatedAt  string             `json:"created_at"`
}

type SavedQuoteListResponse struct {
	Data  []SavedQuoteResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type SavedQuoteFilter struct {
	Customer string `form:"customer"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}
