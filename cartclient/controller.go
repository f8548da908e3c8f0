// cartclient/controller.go
package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CartView is the cart snapshot returned by the server.
type CartView struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkoutUrl"`
	Lines         []LineView `json:"lines"`
	TotalQuantity int        `json:"-"`
}

type LineView struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

type cartGetRequest struct {
	CustomerShopifyID string `json:"customerShopifyId,omitempty"`
	CartID            string `json:"cartId,omitempty"`
}

type cartGetResponse struct {
	Cart          *CartView `json:"cart"`
	CartID        string    `json:"cartId"`
	CheckoutURL   string    `json:"checkoutUrl"`
	TotalQuantity int       `json:"totalQuantity"`
	Expired       bool      `json:"expired"`
	Message       string    `json:"message"`
	Merged        bool      `json:"merged"`
	MergedCartID  string    `json:"mergedCartId"`
}

// CartState is what subscribers receive after each reconciliation.
type CartState struct {
	Cart          *CartView
	CartRef       CartRef
	CheckoutURL   string
	TotalQuantity int
	Message       string
}

// Listener receives cart state updates. Replaces the ad-hoc DOM event bus:
// views subscribe explicitly instead of listening on a global channel.
type Listener func(CartState)

// Controller keeps the persisted slots and the in-memory cart view
// consistent across login/logout and cart mutation events.
type Controller struct {
	baseURL string
	client  *http.Client
	store   *SafeStore

	mu        sync.Mutex
	state     CartState
	listeners map[string]Listener
}

// NewController builds a controller against the store API at baseURL
// (e.g. "https://api.example.com"). store may wrap any Store implementation.
func NewController(baseURL string, store *SafeStore) *Controller {
	return &Controller{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:    &http.Client{Timeout: 15 * time.Second},
		store:     store,
		listeners: map[string]Listener{},
	}
}

// Subscribe registers a listener and returns its id for Unsubscribe.
// The listener immediately receives the current state.
func (c *Controller) Subscribe(fn Listener) string {
	if c == nil || fn == nil {
		return ""
	}
	id := uuid.NewString()
	c.mu.Lock()
	c.listeners[id] = fn
	cur := c.state
	c.mu.Unlock()
	fn(cur)
	return id
}

func (c *Controller) Unsubscribe(id string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.listeners, id)
	c.mu.Unlock()
}

func (c *Controller) broadcast(st CartState) {
	c.mu.Lock()
	c.state = st
	fns := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

// State returns the last reconciled cart state.
func (c *Controller) State() CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) resolve(ctx context.Context, customerID, cartID string) (*cartGetResponse, error) {
	body, err := json.Marshal(cartGetRequest{CustomerShopifyID: customerID, CartID: cartID})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/store/cart/get", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cartclient: cart/get status %d", resp.StatusCode)
	}

	var out cartGetResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh resolves the authoritative cart with whatever identity and cart id
// are currently cached, reconciles the slots and broadcasts the result.
// Call it on mount and after every cart mutation.
func (c *Controller) Refresh(ctx context.Context) (CartState, error) {
	if c == nil {
		return CartState{}, fmt.Errorf("cartclient: nil controller")
	}

	customerID := strings.TrimSpace(c.store.Get(KeyCustomerShopifyID))
	ref := LoadCartRef(c.store)

	res, err := c.resolve(ctx, customerID, ref.ID)
	if err != nil {
		return CartState{}, err
	}

	if res.Expired {
		// Stale local id; drop it so the next refresh starts clean.
		SaveCartRef(c.store, CartRef{})
	}

	next := CartRef{ID: strings.TrimSpace(res.CartID), Owned: customerID != ""}
	if !next.Empty() {
		SaveCartRef(c.store, next)
	}

	st := CartState{
		Cart:          res.Cart,
		CartRef:       next,
		CheckoutURL:   res.CheckoutURL,
		TotalQuantity: res.TotalQuantity,
		Message:       res.Message,
	}
	c.broadcast(st)
	return st, nil
}

// OnLogin records the authenticated identity and re-resolves exactly once
// with the previous guest cart id so the server can adopt or merge it.
// guestCartId is cleared only when the server reports merged=true; a merge
// that silently no-ops must not lose the guest cart reference.
func (c *Controller) OnLogin(ctx context.Context, customerID string) (CartState, error) {
	if c == nil {
		return CartState{}, fmt.Errorf("cartclient: nil controller")
	}
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return CartState{}, fmt.Errorf("cartclient: customerID is empty")
	}

	guestCartID := strings.TrimSpace(c.store.Get(KeyGuestCartID))
	c.store.Set(KeyCustomerShopifyID, customerID)

	res, err := c.resolve(ctx, customerID, guestCartID)
	if err != nil {
		return CartState{}, err
	}

	if res.Merged {
		c.store.Remove(KeyGuestCartID)
		log.Printf("[cartclient] guest cart %s merged into %s", guestCartID, res.CartID)
	}

	next := CartRef{ID: strings.TrimSpace(res.CartID), Owned: true}
	if !next.Empty() {
		c.store.Set(KeyCartID, next.ID)
	}

	st := CartState{
		Cart:          res.Cart,
		CartRef:       next,
		CheckoutURL:   res.CheckoutURL,
		TotalQuantity: res.TotalQuantity,
		Message:       res.Message,
	}
	c.broadcast(st)
	return st, nil
}

// OnLogout drops the identity and the owned cart reference. A fresh guest
// cart is created lazily on the next Refresh.
func (c *Controller) OnLogout() {
	if c == nil {
		return
	}
	c.store.Remove(KeyCustomerShopifyID)
	SaveCartRef(c.store, CartRef{})
	c.broadcast(CartState{})
}
