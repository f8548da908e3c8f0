// internal/domain/cartlink/entity.go
package cartlink

import (
	"errors"
	"strings"
	"time"

	cartdom "grano/internal/domain/cart"
)

var (
	ErrInvalidLink = errors.New("cartlink: invalid")
)

// Link is the persisted association from a customer to their canonical cart,
// plus a denormalized snapshot of the cart contents for fallback display.
//
// The remote platform's cart is authoritative; this record is a cache that
// lets the system answer "what cart does this customer have" without a remote
// round trip. It is mutated only by the cart resolution flow.
type Link struct {
	// CustomerID is the document id (one link per customer).
	CustomerID string `json:"customerId"`

	CartID        string         `json:"cartId"`
	CheckoutURL   string         `json:"checkoutUrl"`
	TotalQuantity int            `json:"totalQuantity"`
	Items         []cartdom.Line `json:"items"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// NewLink builds a link snapshot from a fetched cart.
func NewLink(customerID string, c *cartdom.Cart, now time.Time) (*Link, error) {
	cid := strings.TrimSpace(customerID)
	if cid == "" || c == nil || strings.TrimSpace(c.ID) == "" {
		return nil, ErrInvalidLink
	}

	items := make([]cartdom.Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.Quantity <= 0 || strings.TrimSpace(l.VariantID) == "" {
			continue
		}
		items = append(items, l)
	}

	return &Link{
		CustomerID:    cid,
		CartID:        strings.TrimSpace(c.ID),
		CheckoutURL:   strings.TrimSpace(c.CheckoutURL),
		TotalQuantity: c.TotalQuantity(),
		Items:         items,
		UpdatedAt:     now,
	}, nil
}

// HasCartRef reports whether the link still points at a cart.
// A link whose cart ref was cleared stays around as a tombstone so the
// document id (customer) is not recreated churn-style.
func (l *Link) HasCartRef() bool {
	return l != nil && strings.TrimSpace(l.CartID) != ""
}
