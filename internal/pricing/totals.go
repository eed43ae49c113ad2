package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Truncation deliberately rounds a discounted total down to a coarser unit
// to hit a round figure. The wire codes ("1", "10", "100") are the
// platform's legacy codes and map to units one order larger.
type Truncation int

const (
	TruncateNone      Truncation = iota // keep the won
	TruncateTens                        // code "1" — floor to 10-won units
	TruncateHundreds                    // code "10" — floor to 100-won units
	TruncateThousands                   // code "100" — floor to 1000-won units
)

// Unit returns the truncation unit in won. An out-of-range mode is a
// programming error — clamping happens at the ledger boundary, not here.
func (t Truncation) Unit() int64 {
	switch t {
	case TruncateNone:
		return 1
	case TruncateTens:
		return 10
	case TruncateHundreds:
		return 100
	case TruncateThousands:
		return 1000
	}
	panic(fmt.Sprintf("pricing: invalid truncation mode %d", int(t)))
}

// Code returns the legacy wire code.
func (t Truncation) Code() string {
	switch t {
	case TruncateTens:
		return "1"
	case TruncateHundreds:
		return "10"
	case TruncateThousands:
		return "100"
	}
	return "none"
}

// ParseTruncation accepts the legacy wire codes "none" | "1" | "10" | "100".
func ParseTruncation(code string) (Truncation, error) {
	switch code {
	case "", "none":
		return TruncateNone, nil
	case "1":
		return TruncateTens, nil
	case "10":
		return TruncateHundreds, nil
	case "100":
		return TruncateThousands, nil
	}
	return TruncateNone, fmt.Errorf("unknown truncation code %q", code)
}

// Totals is the derived monetary breakdown. Recomputed on demand, never
// mutated; holds for the invariants
//
//	TruncationAmount + GrandTotal == AfterDiscount
//	SupplyAmount + VAT == GrandTotal
type Totals struct {
	Subtotal         int64
	DiscountAmount   int64
	AfterDiscount    int64
	TruncationAmount int64
	SupplyAmount     int64
	VAT              int64
	GrandTotal       int64
	DiscountRate     int
	Truncation       Truncation
	VATIncluded      bool
	ItemCount        int
}

// Compute derives the full breakdown from the committed line items. Pure and
// deterministic; "round" is round-half-away-from-zero (all inputs are
// non-negative, so this equals round-half-up).
//
//  1. subtotal = Σ line totals
//  2. discount = round(subtotal × rate / 100)
//  3. afterDiscount = subtotal − discount
//  4. afterTruncation = floor(afterDiscount / unit) × unit
//  5. supply = round(afterTruncation / 1.1), vat = afterTruncation − supply
//
// The truncated total is always treated as VAT-inclusive here; vatIncluded
// only tags the output for renderers, which recompute an exclusive view via
// ExclusiveView when the flag is off. Those two paths are deliberately not
// reconciled.
func Compute(items []LineItem, discountRate int, truncation Truncation, vatIncluded bool) Totals {
	if discountRate < 0 {
		discountRate = 0
	}
	if discountRate > 100 {
		discountRate = 100
	}

	var subtotal int64
	for _, li := range items {
		subtotal += li.Total()
	}

	discount := decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromInt(int64(discountRate))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()

	afterDiscount := subtotal - discount

	unit := truncation.Unit()
	afterTruncation := afterDiscount / unit * unit
	truncationAmount := afterDiscount - afterTruncation

	// supply = round(total / 1.1), computed as total × 10 / 11 to stay exact
	supply := decimal.NewFromInt(afterTruncation).
		Mul(decimal.NewFromInt(10)).
		Div(decimal.NewFromInt(11)).
		Round(0).
		IntPart()

	return Totals{
		Subtotal:         subtotal,
		DiscountAmount:   discount,
		AfterDiscount:    afterDiscount,
		TruncationAmount: truncationAmount,
		SupplyAmount:     supply,
		VAT:              afterTruncation - supply,
		GrandTotal:       afterTruncation,
		DiscountRate:     discountRate,
		Truncation:       truncation,
		VATIncluded:      vatIncluded,
		ItemCount:        len(items),
	}
}

// ExclusiveTotals is the renderer-local VAT-excluded view.
type ExclusiveTotals struct {
	SupplyAmount int64
	VAT          int64
	Total        int64
}

// ExclusiveView recomputes the display breakdown renderers use when the
// quote is shown VAT-excluded: the discounted subtotal is the supply amount
// and 10% is added on top. Truncation is ignored — this is the platform's
// separate, simpler business rule for exclusive mode, kept distinct from the
// inclusive split in Compute on purpose. All three renderers (preview, PDF,
// spreadsheet) must use this one function so the view stays bit-identical.
func ExclusiveView(subtotal, discountAmount int64) ExclusiveTotals {
	supply := subtotal - discountAmount
	vat := decimal.NewFromInt(supply).
		Div(decimal.NewFromInt(10)).
		Round(0).
		IntPart()
	return ExclusiveTotals{
		SupplyAmount: supply,
		VAT:          vat,
		Total:        supply + vat,
	}
}
