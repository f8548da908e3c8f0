// internal/adapters/in/http/store/handler/cart_handler_test.go
package storeHandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	usecase "grano/internal/application/usecase"
	cartdom "grano/internal/domain/cart"
	linkdom "grano/internal/domain/cartlink"
)

// stubGateway is a minimal in-memory cart platform for handler tests.
type stubGateway struct {
	carts     map[string]*cartdom.Cart
	nextID    int
	createErr error
}

func newStubGateway() *stubGateway {
	return &stubGateway{carts: map[string]*cartdom.Cart{}}
}

func (g *stubGateway) CreateCart(_ context.Context, _ usecase.CreateCartOptions) (*cartdom.Cart, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextID++
	c := &cartdom.Cart{ID: fmt.Sprintf("gid://cart/%d", g.nextID), CheckoutURL: "https://checkout.example/x"}
	g.carts[c.ID] = c
	return c, nil
}

func (g *stubGateway) GetCartByID(_ context.Context, id string) (cartdom.Lookup, error) {
	return cartdom.NewLookup(g.carts[id]), nil
}

func (g *stubGateway) AddCartLine(_ context.Context, cartID, variantID string, quantity int) error {
	c := g.carts[cartID]
	if c == nil {
		return errors.New("cart not found")
	}
	c.Lines = append(c.Lines, cartdom.Line{VariantID: variantID, Quantity: quantity})
	return nil
}

func (g *stubGateway) SaveCustomerCartID(_ context.Context, _, _ string) error { return nil }

type stubLinkRepo struct {
	links map[string]*linkdom.Link
}

func newStubLinkRepo() *stubLinkRepo { return &stubLinkRepo{links: map[string]*linkdom.Link{}} }

func (r *stubLinkRepo) GetByCustomerID(_ context.Context, id string) (*linkdom.Link, error) {
	return r.links[id], nil
}
func (r *stubLinkRepo) Upsert(_ context.Context, l *linkdom.Link) error {
	r.links[l.CustomerID] = l
	return nil
}
func (r *stubLinkRepo) ClearCartRef(_ context.Context, id string) error {
	delete(r.links, id)
	return nil
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCartHandlerCreatesGuestCart(t *testing.T) {
	gw := newStubGateway()
	h := NewCartHandler(usecase.NewCartResolutionUsecase(gw, newStubLinkRepo()))

	rec := postJSON(t, h, "/store/cart/get", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		CartID      string `json:"cartId"`
		CheckoutURL string `json:"checkoutUrl"`
		Expired     bool   `json:"expired"`
		Message     string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.CartID == "" || resp.Message != "new_guest_cart" {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.CheckoutURL == "" {
		t.Fatalf("checkoutUrl missing")
	}
}

func TestCartHandlerReportsExpiry(t *testing.T) {
	gw := newStubGateway()
	h := NewCartHandler(usecase.NewCartResolutionUsecase(gw, newStubLinkRepo()))

	rec := postJSON(t, h, "/store/cart/get", `{"cartId":"gid://cart/gone"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Expired bool   `json:"expired"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Expired || resp.Message != "guest_cart_expired" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestCartHandlerMergeResponse(t *testing.T) {
	gw := newStubGateway()
	gw.carts["gid://cart/c1"] = &cartdom.Cart{ID: "gid://cart/c1", Lines: []cartdom.Line{{VariantID: "v1", Quantity: 1}}}
	gw.carts["gid://cart/g"] = &cartdom.Cart{ID: "gid://cart/g", Lines: []cartdom.Line{{VariantID: "v2", Quantity: 2}}}
	links := newStubLinkRepo()
	links.links["cust-1"] = &linkdom.Link{CustomerID: "cust-1", CartID: "gid://cart/c1"}
	h := NewCartHandler(usecase.NewCartResolutionUsecase(gw, links))

	rec := postJSON(t, h, "/store/cart/get", `{"customerShopifyId":"cust-1","cartId":"gid://cart/g"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		CartID        string `json:"cartId"`
		TotalQuantity int    `json:"totalQuantity"`
		Merged        bool   `json:"merged"`
		MergedCartID  string `json:"mergedCartId"`
		Message       string `json:"message"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Merged || resp.CartID != "gid://cart/c1" || resp.MergedCartID != "gid://cart/c1" {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.TotalQuantity != 3 {
		t.Fatalf("totalQuantity = %d, want 3", resp.TotalQuantity)
	}
}

func TestCartHandlerErrors(t *testing.T) {
	gw := newStubGateway()
	gw.createErr = errors.New("platform down")
	h := NewCartHandler(usecase.NewCartResolutionUsecase(gw, newStubLinkRepo()))

	rec := postJSON(t, h, "/store/cart/get", `{}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "failed to load cart" || !strings.Contains(resp.Detail, "platform down") {
		t.Fatalf("resp = %+v", resp)
	}

	// wrong method
	req := httptest.NewRequest(http.MethodGet, "/store/cart/get", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d", rec.Code)
	}

	// malformed body
	rec = postJSON(t, h, "/store/cart/get", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad body status = %d", rec.Code)
	}
}
