// Package pricing implements the quote engine: resolving a product plus a
// set of selected options to a unit price, accumulating addon selections,
// maintaining the per-session quote ledger, and deriving the monetary
// breakdown that every preview and export renderer must reproduce to the won.
//
// All monetary values are integers denominated in won. Nothing in this
// package performs I/O; catalog data is supplied by the storefront client.
package pricing

// Product is the base catalog record as fetched from the commerce platform.
// Immutable once fetched.
type Product struct {
	ID         int64
	Code       string
	Name       string
	BasePrice  int64 // won, non-negative
	HasOptions bool
}

// OptionValue is one choice within an option axis.
type OptionValue struct {
	Text             string
	AdditionalAmount int64 // won, may be negative
}

// ProductOption is one selectable axis on a product ("Size", "Color").
type ProductOption struct {
	Name     string
	Required bool
	Values   []OptionValue
}

// Variant is one full combination of option choices carrying its own
// additional-amount override and inventory state. When a variant matches the
// selected combination it is the authoritative price source; per-value
// additional amounts are only the fallback.
type Variant struct {
	Options          map[string]string // option name → value text
	AdditionalAmount int64
	StockQuantity    int
	Selling          bool
}

// Catalog bundles everything the resolver needs for one product.
type Catalog struct {
	Product  Product
	Options  []ProductOption
	Variants []Variant
}

// AddonProduct is a secondary product offered alongside a main product,
// priced and quantified independently. Addons are themselves products on the
// platform; Options/Variants may be empty.
type AddonProduct struct {
	ID       int64
	Code     string
	Name     string
	Price    int64
	Options  []ProductOption
	Variants []Variant
}
