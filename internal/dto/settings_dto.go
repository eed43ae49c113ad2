package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type UpdateLetterheadRequest struct {
	CompanyName    string `json:"company_name"   validate:"required,min=1,max=200"`
	Registration   string `json:"registration"   validate:"max=50"`
	Representative string `json:"representative" validate:"max=100"`
	Address        string `json:"address"        validate:"max=300"`
	Phone          string `json:"phone"          validate:"max=50"`
	Email          string `json:"email"          validate:"omitempty,email"`
	BankAccount    string `json:"bank_account"   validate:"max=100"`
	SealImagePath  string `json:"seal_image_path"`
}

type UpdateDefaultsRequest struct {
	DiscountRate *int    `json:"discount_rate" validate:"omitempty,min=0,max=100"`
	Truncation   *string `json:"truncation"    validate:"omitempty,oneof=none 1 10 100"`
	VATIncluded  *bool   `json:"vat_included"`
	Letterhead   *string `json:"letterhead"    validate:"omitempty,oneof=primary secondary"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LetterheadResponse struct {
	Key            string `json:"key"`
	CompanyName    string `json:"company_name"`
	Registration   string `json:"registration"`
	Representative string `json:"representative"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	BankAccount    string `json:"bank_account"`
	SealImagePath  string `json:"seal_image_path"`
}

type DefaultsResponse struct {
	DiscountRate int    `json:"discount_rate"`
	Truncation   string `json:"truncation"`
	VATIncluded  bool   `json:"vat_included"`
	Letterhead   string `json:"letterhead"`
}
