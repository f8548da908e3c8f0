// internal/domain/cartlink/repository_port.go
package cartlink

import "context"

// Repository is a persistence port for Link.
//
// Storage (Firestore):
// - collection: cartLinks
// - docId: customerId
// - fields: cartId, checkoutUrl, totalQuantity, items, updatedAt
//
// Not-found policy: GetByCustomerID returns (nil, nil) when no document
// exists; the application layer treats nil as "no association".
type Repository interface {
	GetByCustomerID(ctx context.Context, customerID string) (*Link, error)

	// Upsert overwrites the full link document (create or update).
	Upsert(ctx context.Context, l *Link) error

	// ClearCartRef unsets the cart reference fields for the customer while
	// keeping the document. Clearing a non-existent link is a no-op.
	ClearCartRef(ctx context.Context, customerID string) error
}
