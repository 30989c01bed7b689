package cart

import (
	"maps"

	"github.com/noah-isme/backend-material/internal/catalog"
)

// ViewMode is how the storefront renders the product list.
type ViewMode string

const (
	ViewTable    ViewMode = "table"
	ViewCard     ViewMode = "card"
	ViewShowcase ViewMode = "showcase"
)

// ParseViewMode reports whether raw names a known view mode.
func ParseViewMode(raw string) (ViewMode, bool) {
	switch m := ViewMode(raw); m {
	case ViewTable, ViewCard, ViewShowcase:
		return m, true
	}
	return "", false
}

// State is the client-held cart state. Quantities never holds a value <= 0.
type State struct {
	Quantities map[int64]int      `json:"quantities"`
	ViewMode   ViewMode           `json:"viewMode"`
	Sort       catalog.SortOption `json:"sort"`
}

// NewState returns an empty cart in table view with the default sort.
func NewState() State {
	return State{Quantities: map[int64]int{}, ViewMode: ViewTable, Sort: catalog.SortDefault}
}

// Event is a state transition. Implementations are the exported event types
// below.
type Event interface {
	apply(State) State
}

// Increment adds one to a product's quantity.
type Increment struct{ ProductID int64 }

// Decrement removes one from a product's quantity.
type Decrement struct{ ProductID int64 }

// SetQuantity sets a quantity directly, as typed into the quantity field.
type SetQuantity struct {
	ProductID int64
	Quantity  int
}

// SetViewMode switches the list rendering. Unknown modes are ignored.
type SetViewMode struct{ Mode ViewMode }

// SetSort changes the product order.
type SetSort struct{ Sort catalog.SortOption }

// Clear empties the cart and keeps the view settings.
type Clear struct{}

// Reduce returns the state after ev. The input state is never modified.
func Reduce(s State, ev Event) State {
	next := State{Quantities: maps.Clone(s.Quantities), ViewMode: s.ViewMode, Sort: s.Sort}
	if next.Quantities == nil {
		next.Quantities = map[int64]int{}
	}
	if ev == nil {
		return next
	}
	return ev.apply(next)
}

func (e Increment) apply(s State) State {
	return setQty(s, e.ProductID, s.Quantities[e.ProductID]+1)
}

func (e Decrement) apply(s State) State {
	return setQty(s, e.ProductID, s.Quantities[e.ProductID]-1)
}

func (e SetQuantity) apply(s State) State {
	return setQty(s, e.ProductID, e.Quantity)
}

func (e SetViewMode) apply(s State) State {
	if m, ok := ParseViewMode(string(e.Mode)); ok {
		s.ViewMode = m
	}
	return s
}

func (e SetSort) apply(s State) State {
	if opt, ok := catalog.ParseSortOption(string(e.Sort)); ok {
		s.Sort = opt
	}
	return s
}

func (Clear) apply(s State) State {
	s.Quantities = map[int64]int{}
	return s
}

func setQty(s State, id int64, qty int) State {
	if qty <= 0 {
		delete(s.Quantities, id)
		return s
	}
	s.Quantities[id] = qty
	return s
}
