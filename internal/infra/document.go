package infra

// document.go — the frozen render payload shared by the PDF and spreadsheet
// exporters. Assembled by the export service at enqueue time and stored on
// the export record, so retries render exactly what the operator saw.

import "strconv"

type DocumentAddon struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type DocumentLine struct {
	Name      string          `json:"name"`
	Options   string          `json:"options,omitempty"`
	UnitPrice int64           `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal int64           `json:"line_total"`
	Addons    []DocumentAddon `json:"addons,omitempty"`
}

type DocumentIssuer struct {
	CompanyName    string `json:"company_name"`
	Registration   string `json:"registration,omitempty"`
	Representative string `json:"representative,omitempty"`
	Address        string `json:"address,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	BankAccount    string `json:"bank_account,omitempty"`
	SealImagePath  string `json:"seal_image_path,omitempty"`
}

// QuoteDocument carries everything a renderer needs. The VAT block switches
// on VATIncluded: inclusive documents show the supply/VAT split of the grand
// total, exclusive documents show VAT added on top of the discounted amount.
type QuoteDocument struct {
	Number   string         `json:"number"`
	Date     string         `json:"date"`
	Customer string         `json:"customer,omitempty"`
	Issuer   DocumentIssuer `json:"issuer"`

	Lines []DocumentLine `json:"lines"`

	VATIncluded      bool  `json:"vat_included"`
	DiscountRate     int   `json:"discount_rate"`
	Subtotal         int64 `json:"subtotal"`
	DiscountAmount   int64 `json:"discount_amount"`
	TruncationAmount int64 `json:"truncation_amount"`
	SupplyAmount     int64 `json:"supply_amount"`
	VAT              int64 `json:"vat"`
	GrandTotal       int64 `json:"grand_total"`
}

// FormatKRW renders an amount with thousands separators, e.g. 1234567 →
// "1,234,567".
func FormatKRW(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
