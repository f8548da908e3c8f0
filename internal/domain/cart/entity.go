// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCart = errors.New("cart: invalid")
)

// Line represents one line item on a remote cart.
// VariantID is the platform's variant reference; Quantity is always >= 1
// for a line that actually exists on the cart.
type Line struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// Cart is a read-side view of the remote platform's cart.
// The platform is the source of truth; this struct never outlives a request.
type Cart struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
	Lines       []Line `json:"lines"`
}

// TotalQuantity is the sum of line quantities.
func (c *Cart) TotalQuantity() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, l := range c.Lines {
		if l.Quantity > 0 {
			total += l.Quantity
		}
	}
	return total
}

// IsEmpty reports whether the cart has no effective line items.
// An empty cart is functionally equivalent to an absent cart everywhere in
// the resolution flow.
func (c *Cart) IsEmpty() bool {
	return c.TotalQuantity() == 0
}

// LookupState tags the three possible outcomes of a fetch-by-id.
type LookupState string

const (
	// LookupFound: cart exists and has at least one line item.
	LookupFound LookupState = "found"
	// LookupEmpty: cart exists but has zero total quantity.
	LookupEmpty LookupState = "empty"
	// LookupAbsent: the platform reports the cart missing or expired.
	LookupAbsent LookupState = "absent"
)

// Lookup is the tagged result of a fetch-by-id against the remote platform.
// Callers branch on State instead of null-checking nested fields.
type Lookup struct {
	State LookupState
	Cart  *Cart
}

// NewLookup classifies a fetched cart. A nil cart or an empty id yields
// LookupAbsent; a cart with zero total quantity yields LookupEmpty.
func NewLookup(c *Cart) Lookup {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return Lookup{State: LookupAbsent}
	}
	if c.IsEmpty() {
		return Lookup{State: LookupEmpty, Cart: c}
	}
	return Lookup{State: LookupFound, Cart: c}
}

// Usable reports whether the lookup carries a cart that can serve as a
// current cart (i.e. found and non-empty).
func (l Lookup) Usable() bool {
	return l.State == LookupFound && l.Cart != nil
}
