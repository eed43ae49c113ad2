package pricing

import "errors"

// Recoverable failure values. Callers branch with errors.Is; none of these
// ever leaves a partial line item behind — commit is all-or-nothing.
var (
	// ErrMissingRequiredOption: resolution was attempted while one or more
	// required options had no selected value. Resolution.MissingRequired
	// names them.
	ErrMissingRequiredOption = errors.New("required option not selected")

	// ErrSoldOut: the committed combination has no available inventory. The
	// resolver performs this check as the final gate before returning a
	// price, guarding against stale client state.
	ErrSoldOut = errors.New("selected option combination is sold out")

	// ErrOptionRequired: addon has options but none was chosen.
	ErrOptionRequired = errors.New("addon option must be chosen")

	// ErrNotFound: the referenced product/addon code has no catalog entry.
	ErrNotFound = errors.New("product not found in catalog")
)
