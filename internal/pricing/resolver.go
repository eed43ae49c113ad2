package pricing

// Resolution is the outcome of resolving a product + selected options.
// When MissingRequired is non-empty the resolution is incomplete and the
// caller must not commit a line item.
type Resolution struct {
	UnitPrice        int64
	MissingRequired  []string
	AdditionalByName map[string]int64 // option name → resolved additional amount (display)
}

// Resolve finds the unit price for a product with the given selected option
// values (option name → value text).
//
// Price resolution order:
//  1. the first variant whose option pairs agree with selected on every key
//     present in both — unit price = base + variant additional amount;
//  2. otherwise the sum of each selected OptionValue's own additional
//     amount — unit price = base + sum.
//
// Duplicate variants for the same combination resolve to the first one in
// catalog order; the platform de-duplicates combinations upstream.
//
// Before returning a price, every selected value passes the sold-out gate:
// if the variants referencing that value (consistent with the other selected
// values) all have zero stock or are not selling, Resolve fails with
// ErrSoldOut. Resolution never rounds.
func Resolve(c Catalog, selected map[string]string) (Resolution, error) {
	res := Resolution{AdditionalByName: make(map[string]int64, len(selected))}

	for _, opt := range c.Options {
		if !opt.Required {
			continue
		}
		if _, ok := selected[opt.Name]; !ok {
			res.MissingRequired = append(res.MissingRequired, opt.Name)
		}
	}
	if len(res.MissingRequired) > 0 {
		return res, ErrMissingRequiredOption
	}

	for name, value := range selected {
		if soldOut(c.Variants, name, value, selected) {
			return Resolution{}, ErrSoldOut
		}
	}

	if v, ok := matchVariant(c.Variants, selected); ok {
		res.UnitPrice = c.Product.BasePrice + v.AdditionalAmount
		for name := range selected {
			res.AdditionalByName[name] = 0
		}
		// The variant override is a single amount for the whole combination;
		// expose it on the first selected axis in catalog-option order so the
		// display maps stay reconcilable with the unit price.
		for _, opt := range c.Options {
			if _, ok := selected[opt.Name]; ok {
				res.AdditionalByName[opt.Name] = v.AdditionalAmount
				break
			}
		}
		return res, nil
	}

	var sum int64
	for _, opt := range c.Options {
		value, ok := selected[opt.Name]
		if !ok {
			continue
		}
		amount := valueAdditional(opt, value)
		res.AdditionalByName[opt.Name] = amount
		sum += amount
	}
	res.UnitPrice = c.Product.BasePrice + sum
	return res, nil
}

// matchVariant returns the first variant that agrees with selected on every
// option name present in both maps. A variant with no overlapping keys still
// "agrees" vacuously only when it has no option pairs at all and nothing was
// selected; otherwise at least one shared key must match.
func matchVariant(variants []Variant, selected map[string]string) (Variant, bool) {
	for _, v := range variants {
		if len(v.Options) == 0 {
			continue
		}
		agrees := true
		overlap := false
		for name, value := range v.Options {
			sv, ok := selected[name]
			if !ok {
				continue
			}
			overlap = true
			if sv != value {
				agrees = false
				break
			}
		}
		if agrees && overlap {
			return v, true
		}
	}
	return Variant{}, false
}

// soldOut reports whether the value chosen for option name is unavailable:
// at least one variant references it consistently with the other selected
// values, and every such variant has zero stock or is not selling. A value
// no variant references carries no inventory signal and is never sold out.
func soldOut(variants []Variant, name, value string, selected map[string]string) bool {
	referenced := false
	for _, v := range variants {
		if v.Options[name] != value {
			continue
		}
		if !consistentWith(v, name, selected) {
			continue
		}
		referenced = true
		if v.StockQuantity > 0 && v.Selling {
			return false
		}
	}
	return referenced
}

// consistentWith reports whether variant v agrees with every selected value
// other than the axis being checked, for keys present in both.
func consistentWith(v Variant, skip string, selected map[string]string) bool {
	for name, value := range selected {
		if name == skip {
			continue
		}
		if vv, ok := v.Options[name]; ok && vv != value {
			return false
		}
	}
	return true
}

func valueAdditional(opt ProductOption, text string) int64 {
	for _, val := range opt.Values {
		if val.Text == text {
			return val.AdditionalAmount
		}
	}
	return 0
}
