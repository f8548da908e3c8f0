// internal/adapters/out/firestore/cartlink_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "grano/internal/domain/cart"
	linkdom "grano/internal/domain/cartlink"
)

// CartLinkRepositoryFS implements cartlink.Repository using Firestore.
//
// Collection design:
// - collection: cartLinks
// - docId: customerId (source of truth for the key)
// - fields: cartId, checkoutUrl, totalQuantity, items, updatedAt
type CartLinkRepositoryFS struct {
	Client *firestore.Client
}

func NewCartLinkRepositoryFS(client *firestore.Client) *CartLinkRepositoryFS {
	return &CartLinkRepositoryFS{Client: client}
}

func (r *CartLinkRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("cartLinks")
}

type cartLinkItemDoc struct {
	VariantID string `firestore:"variantId"`
	Quantity  int    `firestore:"quantity"`
	Title     string `firestore:"title"`
	Price     string `firestore:"price"`
	ImageURL  string `firestore:"imageUrl"`
}

type cartLinkDoc struct {
	CartID        string            `firestore:"cartId"`
	CheckoutURL   string            `firestore:"checkoutUrl"`
	TotalQuantity int               `firestore:"totalQuantity"`
	Items         []cartLinkItemDoc `firestore:"items"`
	UpdatedAt     time.Time         `firestore:"updatedAt"`
}

func docFromDomain(l *linkdom.Link) cartLinkDoc {
	doc := cartLinkDoc{
		CartID:        strings.TrimSpace(l.CartID),
		CheckoutURL:   strings.TrimSpace(l.CheckoutURL),
		TotalQuantity: l.TotalQuantity,
		UpdatedAt:     l.UpdatedAt,
	}
	for _, it := range l.Items {
		if it.Quantity <= 0 || strings.TrimSpace(it.VariantID) == "" {
			continue
		}
		doc.Items = append(doc.Items, cartLinkItemDoc{
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			Title:     it.Title,
			Price:     it.Price,
			ImageURL:  it.ImageURL,
		})
	}
	return doc
}

func (d cartLinkDoc) toDomain(customerID string) *linkdom.Link {
	l := &linkdom.Link{
		CustomerID:    customerID,
		CartID:        strings.TrimSpace(d.CartID),
		CheckoutURL:   strings.TrimSpace(d.CheckoutURL),
		TotalQuantity: d.TotalQuantity,
		UpdatedAt:     d.UpdatedAt,
	}
	for _, it := range d.Items {
		if it.Quantity <= 0 {
			continue
		}
		l.Items = append(l.Items, cartdom.Line{
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			Title:     it.Title,
			Price:     it.Price,
			ImageURL:  it.ImageURL,
		})
	}
	return l
}

// GetByCustomerID returns (nil, nil) if not found (nil policy).
func (r *CartLinkRepositoryFS) GetByCustomerID(ctx context.Context, customerID string) (*linkdom.Link, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cartlink_repository_fs: firestore client is nil")
	}
	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return nil, errors.New("cartlink_repository_fs: customerID is empty")
	}

	snap, err := r.col().Doc(docID(cid)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc cartLinkDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain(cid), nil
}

// Upsert overwrites the full doc (simple & predictable).
func (r *CartLinkRepositoryFS) Upsert(ctx context.Context, l *linkdom.Link) error {
	if r == nil || r.Client == nil {
		return errors.New("cartlink_repository_fs: firestore client is nil")
	}
	if l == nil {
		return errors.New("cartlink_repository_fs: link is nil")
	}
	cid := strings.TrimSpace(l.CustomerID)
	if cid == "" {
		return errors.New("cartlink_repository_fs: Upsert requires link.CustomerID as docId")
	}

	_, err := r.col().Doc(docID(cid)).Set(ctx, docFromDomain(l))
	return err
}

// ClearCartRef unsets the cart reference fields while keeping the document.
// Clearing a missing doc is a no-op (idempotent).
func (r *CartLinkRepositoryFS) ClearCartRef(ctx context.Context, customerID string) error {
	if r == nil || r.Client == nil {
		return errors.New("cartlink_repository_fs: firestore client is nil")
	}
	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return errors.New("cartlink_repository_fs: customerID is empty")
	}

	_, err := r.col().Doc(docID(cid)).Update(ctx, []firestore.Update{
		{Path: "cartId", Value: ""},
		{Path: "checkoutUrl", Value: ""},
		{Path: "totalQuantity", Value: 0},
		{Path: "items", Value: []cartLinkItemDoc{}},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}

// docID flattens platform gid ids ("gid://shopify/Customer/123") into a
// Firestore-safe document id.
func docID(customerID string) string {
	return strings.ReplaceAll(strings.TrimSpace(customerID), "/", "_")
}
