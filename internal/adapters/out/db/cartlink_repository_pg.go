// internal/adapters/out/db/cartlink_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	cartdom "grano/internal/domain/cart"
	linkdom "grano/internal/domain/cartlink"
)

// CartLinkRepositoryPG implements cartlink.Repository on PostgreSQL, as an
// alternative backend to the Firestore implementation.
//
// Table:
//
//	CREATE TABLE cart_links (
//	    customer_id    TEXT PRIMARY KEY,
//	    cart_id        TEXT NOT NULL DEFAULT '',
//	    checkout_url   TEXT NOT NULL DEFAULT '',
//	    total_quantity INT  NOT NULL DEFAULT 0,
//	    items          JSONB NOT NULL DEFAULT '[]',
//	    updated_at     TIMESTAMPTZ NOT NULL
//	);
type CartLinkRepositoryPG struct {
	DB *sql.DB
}

func NewCartLinkRepositoryPG(db *sql.DB) *CartLinkRepositoryPG {
	return &CartLinkRepositoryPG{DB: db}
}

func (r *CartLinkRepositoryPG) GetByCustomerID(ctx context.Context, customerID string) (*linkdom.Link, error) {
	if r == nil || r.DB == nil {
		return nil, errors.New("cartlink_repository_pg: db is nil")
	}
	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return nil, errors.New("cartlink_repository_pg: customerID is empty")
	}

	const q = `
SELECT cart_id, checkout_url, total_quantity, items, updated_at
FROM cart_links
WHERE customer_id = $1`

	var (
		cartID    string
		coURL     string
		totalQty  int
		itemsJSON []byte
		updatedAt time.Time
	)
	err := r.DB.QueryRowContext(ctx, q, cid).Scan(&cartID, &coURL, &totalQty, &itemsJSON, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cartlink_repository_pg: select failed: %w", err)
	}

	var items []cartdom.Line
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &items); err != nil {
			return nil, fmt.Errorf("cartlink_repository_pg: items decode failed: %w", err)
		}
	}

	return &linkdom.Link{
		CustomerID:    cid,
		CartID:        cartID,
		CheckoutURL:   coURL,
		TotalQuantity: totalQty,
		Items:         items,
		UpdatedAt:     updatedAt,
	}, nil
}

func (r *CartLinkRepositoryPG) Upsert(ctx context.Context, l *linkdom.Link) error {
	if r == nil || r.DB == nil {
		return errors.New("cartlink_repository_pg: db is nil")
	}
	if l == nil {
		return errors.New("cartlink_repository_pg: link is nil")
	}
	cid := strings.TrimSpace(l.CustomerID)
	if cid == "" {
		return errors.New("cartlink_repository_pg: Upsert requires link.CustomerID")
	}

	items := l.Items
	if items == nil {
		items = []cartdom.Line{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cartlink_repository_pg: items encode failed: %w", err)
	}

	const q = `
INSERT INTO cart_links (customer_id, cart_id, checkout_url, total_quantity, items, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (customer_id) DO UPDATE SET
    cart_id        = EXCLUDED.cart_id,
    checkout_url   = EXCLUDED.checkout_url,
    total_quantity = EXCLUDED.total_quantity,
    items          = EXCLUDED.items,
    updated_at     = EXCLUDED.updated_at`

	_, err = r.DB.ExecContext(ctx, q, cid, l.CartID, l.CheckoutURL, l.TotalQuantity, itemsJSON, l.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("cartlink_repository_pg: upsert failed (%s): %w", pqErr.Code.Name(), err)
		}
		return fmt.Errorf("cartlink_repository_pg: upsert failed: %w", err)
	}
	return nil
}

// ClearCartRef unsets the cart reference; clearing an absent row is a no-op.
func (r *CartLinkRepositoryPG) ClearCartRef(ctx context.Context, customerID string) error {
	if r == nil || r.DB == nil {
		return errors.New("cartlink_repository_pg: db is nil")
	}
	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return errors.New("cartlink_repository_pg: customerID is empty")
	}

	const q = `
UPDATE cart_links
SET cart_id = '', checkout_url = '', total_quantity = 0, items = '[]', updated_at = $2
WHERE customer_id = $1`

	_, err := r.DB.ExecContext(ctx, q, cid, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cartlink_repository_pg: clear failed: %w", err)
	}
	return nil
}
