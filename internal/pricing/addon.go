package pricing

// AddonSelection is a priced, committed addon choice. Quantity on a
// committed selection is always ≥ 1; a zero "parked" quantity exists only
// while the operator is still editing, never here.
type AddonSelection struct {
	Addon            AddonProduct
	OptionText       string
	AdditionalAmount int64
	UnitPrice        int64
	Quantity         int
}

// SelectAddon prices an addon with an optionally chosen option text.
// Fails with ErrOptionRequired when the addon exposes options and none was
// chosen. The chosen option's additional amount is resolved by scanning
// variants first, then option values; no match means 0.
func SelectAddon(a AddonProduct, chosenOption string, qty int) (AddonSelection, error) {
	if len(a.Options) > 0 && chosenOption == "" {
		return AddonSelection{}, ErrOptionRequired
	}

	var additional int64
	if chosenOption != "" {
		additional = addonAdditional(a, chosenOption)
	}

	if qty < 1 {
		qty = 1
	}

	return AddonSelection{
		Addon:            a,
		OptionText:       chosenOption,
		AdditionalAmount: additional,
		UnitPrice:        a.Price + additional,
		Quantity:         qty,
	}, nil
}

// AddonTotal sums unit price × quantity over all selections.
func AddonTotal(selections []AddonSelection) int64 {
	var total int64
	for _, s := range selections {
		total += s.UnitPrice * int64(s.Quantity)
	}
	return total
}

// AddonDisplayName applies the commit-time line-name policy: when the addon
// exposes more than one value on its sole option axis the chosen option text
// is the line name; otherwise the cleaned product name is.
func AddonDisplayName(a AddonProduct, chosenOption string) string {
	if chosenOption != "" && len(a.Options) > 0 && len(a.Options[0].Values) > 1 {
		return chosenOption
	}
	return CleanProductName(a.Name)
}

// addonAdditional resolves the additional amount for a chosen option text:
// variants first (first variant carrying the text as one of its values),
// then option values.
func addonAdditional(a AddonProduct, text string) int64 {
	for _, v := range a.Variants {
		for _, value := range v.Options {
			if value == text {
				return v.AdditionalAmount
			}
		}
	}
	for _, opt := range a.Options {
		for _, val := range opt.Values {
			if val.Text == text {
				return val.AdditionalAmount
			}
		}
	}
	return 0
}
