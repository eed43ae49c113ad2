package pricing

// LineAddon is a sub-row rolled into its parent line's total.
type LineAddon struct {
	Name      string
	UnitPrice int64
	Quantity  int
}

// LineItem is a committed row in the quote ledger. Name and UnitPrice stay
// mutable post-commit for manual correction; Options/OptionAmounts are
// display-only.
type LineItem struct {
	ID            int64
	Name          string
	Options       map[string]string // option name → chosen value text
	OptionAmounts map[string]int64  // option name → resolved additional amount
	Quantity      int               // ≥ 0; zero is "parked", not deleted
	UnitPrice     int64             // base + all resolved additions
	Addons        []LineAddon
}

// Total is unitPrice*quantity plus every addon sub-row.
func (li LineItem) Total() int64 {
	total := li.UnitPrice * int64(li.Quantity)
	for _, a := range li.Addons {
		total += a.UnitPrice * int64(a.Quantity)
	}
	return total
}

// Ledger is the ordered collection of committed line items for one quoting
// session, plus the session's discount rate and truncation mode. Insertion
// order is the canonical display order. Not safe for concurrent use — each
// session serializes access to its ledger.
type Ledger struct {
	nextID       int64
	items        []LineItem
	discountRate int
	truncation   Truncation
}

func NewLedger() *Ledger {
	return &Ledger{truncation: TruncateNone}
}

// Add appends the item with a freshly generated identity and returns it.
// Identities are monotonic for the ledger's lifetime; Clear does not reset
// the sequence.
func (l *Ledger) Add(li LineItem) int64 {
	l.nextID++
	li.ID = l.nextID
	if li.Quantity < 0 {
		li.Quantity = 0
	}
	if li.UnitPrice < 0 {
		li.UnitPrice = 0
	}
	l.items = append(l.items, li)
	return li.ID
}

// Remove deletes the item by identity. Absent id is a no-op.
func (l *Ledger) Remove(id int64) {
	for i, li := range l.items {
		if li.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity clamps q to ≥ 0. Returns false when the id is unknown.
func (l *Ledger) UpdateQuantity(id int64, q int) bool {
	if q < 0 {
		q = 0
	}
	if li := l.find(id); li != nil {
		li.Quantity = q
		return true
	}
	return false
}

// UpdateUnitPrice clamps p to ≥ 0. Returns false when the id is unknown.
func (l *Ledger) UpdateUnitPrice(id int64, p int64) bool {
	if p < 0 {
		p = 0
	}
	if li := l.find(id); li != nil {
		li.UnitPrice = p
		return true
	}
	return false
}

// UpdateName replaces the display name only; price is untouched.
func (l *Ledger) UpdateName(id int64, name string) bool {
	if li := l.find(id); li != nil {
		li.Name = name
		return true
	}
	return false
}

// Clear empties the ledger AND resets the pricing modifiers: discount rate
// back to 0, truncation back to none.
func (l *Ledger) Clear() {
	l.items = nil
	l.discountRate = 0
	l.truncation = TruncateNone
}

// Items returns a copy of the committed lines in display order.
func (l *Ledger) Items() []LineItem {
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Ledger) Len() int { return len(l.items) }

// Get returns a copy of one line by identity.
func (l *Ledger) Get(id int64) (LineItem, bool) {
	if li := l.find(id); li != nil {
		return *li, true
	}
	return LineItem{}, false
}

// SetDiscountRate clamps to [0,100].
func (l *Ledger) SetDiscountRate(rate int) {
	if rate < 0 {
		rate = 0
	}
	if rate > 100 {
		rate = 100
	}
	l.discountRate = rate
}

func (l *Ledger) DiscountRate() int { return l.discountRate }

func (l *Ledger) SetTruncation(t Truncation) { l.truncation = t }

func (l *Ledger) Truncation() Truncation { return l.truncation }

// Totals recomputes the full breakdown from current state. Never cached —
// call again after every mutation.
func (l *Ledger) Totals(vatIncluded bool) Totals {
	return Compute(l.items, l.discountRate, l.truncation, vatIncluded)
}

func (l *Ledger) find(id int64) *LineItem {
	for i := range l.items {
		if l.items[i].ID == id {
			return &l.items[i]
		}
	}
	return nil
}
