// internal/application/usecase/cart_resolution_usecase_test.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	cartdom "grano/internal/domain/cart"
	linkdom "grano/internal/domain/cartlink"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// fakeCartGateway is an in-memory stand-in for the remote cart platform.
type fakeCartGateway struct {
	carts      map[string]*cartdom.Cart
	nextID     int
	addCalls   int
	metafields map[string]string

	failVariants map[string]bool
	createErr    error
	metafieldErr error
}

func newFakeCartGateway() *fakeCartGateway {
	return &fakeCartGateway{
		carts:        map[string]*cartdom.Cart{},
		metafields:   map[string]string{},
		failVariants: map[string]bool{},
	}
}

func (g *fakeCartGateway) CreateCart(_ context.Context, opts CreateCartOptions) (*cartdom.Cart, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextID++
	c := &cartdom.Cart{
		ID:          fmt.Sprintf("gid://cart/%d", g.nextID),
		CheckoutURL: fmt.Sprintf("https://checkout.example/%d", g.nextID),
	}
	g.carts[c.ID] = c
	_ = opts
	return c, nil
}

func (g *fakeCartGateway) GetCartByID(_ context.Context, id string) (cartdom.Lookup, error) {
	return cartdom.NewLookup(g.carts[strings.TrimSpace(id)]), nil
}

func (g *fakeCartGateway) AddCartLine(_ context.Context, cartID, variantID string, quantity int) error {
	g.addCalls++
	if g.failVariants[variantID] {
		return errors.New("variant unavailable")
	}
	c := g.carts[cartID]
	if c == nil {
		return errors.New("cart not found")
	}
	for i := range c.Lines {
		if c.Lines[i].VariantID == variantID {
			c.Lines[i].Quantity += quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, cartdom.Line{VariantID: variantID, Quantity: quantity, Title: variantID, Price: "5.00"})
	return nil
}

func (g *fakeCartGateway) SaveCustomerCartID(_ context.Context, customerID, cartID string) error {
	if g.metafieldErr != nil {
		return g.metafieldErr
	}
	g.metafields[customerID] = cartID
	return nil
}

// seed registers a cart with the given lines under a fixed id.
func (g *fakeCartGateway) seed(id string, lines ...cartdom.Line) *cartdom.Cart {
	c := &cartdom.Cart{ID: id, CheckoutURL: "https://checkout.example/" + id, Lines: lines}
	g.carts[id] = c
	return c
}

// fakeLinkRepo is an in-memory cart link store.
type fakeLinkRepo struct {
	links     map[string]*linkdom.Link
	upsertErr error
	clearErr  error
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: map[string]*linkdom.Link{}}
}

func (r *fakeLinkRepo) GetByCustomerID(_ context.Context, customerID string) (*linkdom.Link, error) {
	return r.links[customerID], nil
}

func (r *fakeLinkRepo) Upsert(_ context.Context, l *linkdom.Link) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.links[l.CustomerID] = l
	return nil
}

func (r *fakeLinkRepo) ClearCartRef(_ context.Context, customerID string) error {
	if r.clearErr != nil {
		return r.clearErr
	}
	if l := r.links[customerID]; l != nil {
		l.CartID = ""
		l.CheckoutURL = ""
		l.TotalQuantity = 0
		l.Items = nil
	}
	return nil
}

func newResolutionUC(gw *fakeCartGateway, links *fakeLinkRepo) *CartResolutionUsecase {
	return NewCartResolutionUsecaseWithClock(gw, links, fixedClock{t: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)})
}

func line(variantID string, qty int) cartdom.Line {
	return cartdom.Line{VariantID: variantID, Quantity: qty, Title: variantID, Price: "5.00"}
}

func TestResolveAnonymousCreatesFreshGuestCart(t *testing.T) {
	gw := newFakeCartGateway()
	uc := newResolutionUC(gw, newFakeLinkRepo())

	r1, err := uc.Resolve(context.Background(), ResolveInput{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r1.Message != MsgNewGuestCart {
		t.Fatalf("message = %s, want %s", r1.Message, MsgNewGuestCart)
	}
	if r1.CartID == "" || r1.Cart == nil {
		t.Fatalf("expected a fresh cart, got %+v", r1)
	}

	r2, err := uc.Resolve(context.Background(), ResolveInput{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r2.CartID == r1.CartID {
		t.Fatalf("second anonymous resolve returned the same cart id %s", r1.CartID)
	}
}

func TestResolveGuestCartExpired(t *testing.T) {
	gw := newFakeCartGateway()
	gw.seed("gid://cart/empty") // exists but has no lines
	uc := newResolutionUC(gw, newFakeLinkRepo())

	for _, id := range []string{"gid://cart/gone", "gid://cart/empty"} {
		r, err := uc.Resolve(context.Background(), ResolveInput{ClientCartID: id})
		if err != nil {
			t.Fatalf("resolve(%s): %v", id, err)
		}
		if !r.Expired {
			t.Fatalf("resolve(%s): expected expired=true", id)
		}
		if r.Message != MsgGuestCartExpired {
			t.Fatalf("resolve(%s): message = %s, want %s", id, r.Message, MsgGuestCartExpired)
		}
		if r.CartID != "" {
			t.Fatalf("resolve(%s): expected no cart id, got %s", id, r.CartID)
		}
	}
}

func TestResolveGuestCartLoaded(t *testing.T) {
	gw := newFakeCartGateway()
	gw.seed("gid://cart/g", line("v1", 2))
	uc := newResolutionUC(gw, newFakeLinkRepo())

	r, err := uc.Resolve(context.Background(), ResolveInput{ClientCartID: "gid://cart/g"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Message != MsgGuestCartLoaded || r.CartID != "gid://cart/g" {
		t.Fatalf("got message=%s cartId=%s", r.Message, r.CartID)
	}
	if r.Cart.TotalQuantity() != 2 {
		t.Fatalf("totalQuantity = %d, want 2", r.Cart.TotalQuantity())
	}
}

func TestResolveAdoptsGuestCartWhenNoAssociation(t *testing.T) {
	gw := newFakeCartGateway()
	gw.seed("gid://cart/g", line("v1", 1), line("v2", 1))
	links := newFakeLinkRepo()
	uc := newResolutionUC(gw, links)

	r, err := uc.Resolve(context.Background(), ResolveInput{CustomerID: "cust-1", ClientCartID: "gid://cart/g"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Message != MsgAssociatedGuestCart {
		t.Fatalf("message = %s, want %s", r.Message, MsgAssociatedGuestCart)
	}
	if !r.Merged || r.MergedCartID != "gid://cart/g" {
		t.Fatalf("expected merged adoption of gid://cart/g, got %+v", r)
	}
	l := links.links["cust-1"]
	if l == nil || l.CartID != "gid://cart/g" {
		t.Fatalf("association = %+v, want cartId gid://cart/g", l)
	}
	if gw.metafields["cust-1"] != "gid://cart/g" {
		t.Fatalf("metafield = %s, want gid://cart/g", gw.metafields["cust-1"])
	}
	if gw.addCalls != 0 {
		t.Fatalf("adoption must not add lines, addCalls = %d", gw.addCalls)
	}
}

func TestResolveMergePrefersCustomerCartAsDestination(t *testing.T) {
	gw := newFakeCartGateway()
	gw.seed("gid://cart/c1", line("v1", 1))
	gw.seed("gid://cart/g", line("v2", 1), line("v3", 1))
	links := newFakeLinkRepo()
	seedLink(t, links, gw, "cust-1", "gid://cart/c1")
	uc := newResolutionUC(gw, links)

	r, err := uc.Resolve(context.Background(), ResolveInput{CustomerID: "cust-1", ClientCartID: "gid://cart/g"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Message != MsgMergedIntoCustomer {
		t.Fatalf("message = %s, want %s", r.Message, MsgMergedIntoCustomer)
	}
	if r.CartID != "gid://cart/c1" {
		t.Fatalf("destination = %s, want the customer's existing cart", r.CartID)
	}
	if !r.Merged || r.MergedCartID != "gid://cart/c1" {
		t.Fatalf("merge outcome = %+v", r)
	}
	if got := r.Cart.TotalQuantity(); got != 3 {
		t.Fatalf("post-merge quantity = %d, want 3", got)
	}
	if l := links.links["cust-1"]; l == nil || l.CartID != "gid://cart/c1" || l.TotalQuantity != 3 {
		t.Fatalf("association after merge = %+v", l)
	}
}

func TestResolveMergeIdempotent(t *testing.T) {
	t.Run("association already matches guest id", func(t *testing.T) {
		gw := newFakeCartGateway()
		gw.seed("gid://cart/g", line("v1", 2))
		links := newFakeLinkRepo()
		uc := newResolutionUC(gw, links)

		in := ResolveInput{CustomerID: "cust-1", ClientCartID: "gid://cart/g"}
		r1, err := uc.Resolve(context.Background(), in)
		if err != nil {
			t.Fatalf("first resolve: %v", err)
		}
		calls := gw.addCalls

		r2, err := uc.Resolve(context.Background(), in)
		if err != nil {
			t.Fatalf("second resolve: %v", err)
		}
		if r2.CartID != r1.CartID {
			t.Fatalf("cart id changed across resolves: %s -> %s", r1.CartID, r2.CartID)
		}
		if gw.addCalls != calls {
			t.Fatalf("second resolve added lines: %d extra calls", gw.addCalls-calls)
		}
	})

	t.Run("guest cart drained after merge", func(t *testing.T) {
		gw := newFakeCartGateway()
		gw.seed("gid://cart/c1", line("v1", 1))
		gw.seed("gid://cart/g", line("v2", 1))
		links := newFakeLinkRepo()
		seedLink(t, links, gw, "cust-1", "gid://cart/c1")
		uc := newResolutionUC(gw, links)

		in := ResolveInput{CustomerID: "cust-1", ClientCartID: "gid://cart/g"}
		r1, err := uc.Resolve(context.Background(), in)
		if err != nil {
			t.Fatalf("first resolve: %v", err)
		}

		// The platform empties a guest cart once its lines have been moved.
		gw.carts["gid://cart/g"].Lines = nil
		calls := gw.addCalls

		r2, err := uc.Resolve(context.Background(), in)
		if err != nil {
			t.Fatalf("second resolve: %v", err)
		}
		if r2.CartID != r1.CartID {
			t.Fatalf("cart id changed across resolves: %s -> %s", r1.CartID, r2.CartID)
		}
		if r2.Message != MsgCustomerCartLoaded {
			t.Fatalf("message = %s, want %s", r2.Message, MsgCustomerCartLoaded)
		}
		if gw.addCalls != calls {
			t.Fatalf("second resolve added lines: %d extra calls", gw.addCalls-calls)
		}
	})
}

func TestResolvePartialMergeContinuesPastFailures(t *testing.T) {
	gw := newFakeCartGateway()
	gw.seed("gid://cart/c1", line("v0", 1))
	gw.seed("gid://cart/g", line("v1", 1), line("v2", 1), line("v3", 1))
	gw.failVariants["v2"] = true
	links := newFakeLinkRepo()
	seedLink(t, links, gw, "cust-1", "gid://cart/c1")
	uc := newResolutionUC(gw, links)

	r, err := uc.Resolve(context.Background(), ResolveInput{CustomerID: "cust-1", ClientCartID: "gid://cart/g"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !r.Merged {
		t.Fatalf("expected merged=true despite one failed line")
	}
	dest := gw.carts["gid://cart/c1"]
	has := map[string]bool{}
	for _, l := range dest.Lines {
		has[l.VariantID] = true
	}
	if !has["v1"] || !has["v3"] {
		t.Fatalf("surviving lines missing from destination: %+v", dest.Lines)
	}
	if has["v2"] {
		t.Fatalf("failed line v2 unexpectedly present on destination")
	}
}

func TestResolveEmptyAssociatedCartRoutesToCreation(t *testing.T) {
	gw := newFakeCartGateway()
	gw.seed("gid://cart/empty") // associated cart exists but reads empty
	links := newFakeLinkRepo()
	seedLink(t, links, gw, "cust-1", "gid://cart/empty")
	uc := newResolutionUC(gw, links)

	r, err := uc.Resolve(context.Background(), ResolveInput{CustomerID: "cust-1"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Message != MsgNewCustomerCart {
		t.Fatalf("message = %s, want %s", r.Message, MsgNewCustomerCart)
	}
	if r.CartID == "" || r.CartID == "gid://cart/empty" {
		t.Fatalf("expected a fresh customer cart, got %s", r.CartID)
	}
	if l := links.links["cust-1"]; l == nil || l.CartID != r.CartID {
		t.Fatalf("association not repointed: %+v", l)
	}
}

func TestResolveEmptyGuestCartFallsThroughToAssociation(t *testing.T) {
	gw := newFakeCartGateway()
	gw.seed("gid://cart/c1", line("v1", 1))
	gw.seed("gid://cart/g") // guest cart drained on the platform
	links := newFakeLinkRepo()
	seedLink(t, links, gw, "cust-1", "gid://cart/c1")
	uc := newResolutionUC(gw, links)

	r, err := uc.Resolve(context.Background(), ResolveInput{CustomerID: "cust-1", ClientCartID: "gid://cart/g"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Message != MsgCustomerCartLoaded || r.CartID != "gid://cart/c1" {
		t.Fatalf("got message=%s cartId=%s", r.Message, r.CartID)
	}
	if r.Merged {
		t.Fatalf("empty guest cart must not report merged")
	}
	if gw.addCalls != 0 {
		t.Fatalf("empty guest cart must not add lines, addCalls = %d", gw.addCalls)
	}
}

func TestResolveAdoptsGuestCartWhenDestinationVanished(t *testing.T) {
	// Destination association points at a vanished cart while the guest cart
	// is live: the guest cart is adopted and the association repointed.
	gw := newFakeCartGateway()
	gw.seed("gid://cart/g", line("v1", 1))
	links := newFakeLinkRepo()
	links.links["cust-1"] = &linkdom.Link{CustomerID: "cust-1", CartID: "gid://cart/gone"}
	uc := newResolutionUC(gw, links)

	r, err := uc.Resolve(context.Background(), ResolveInput{CustomerID: "cust-1", ClientCartID: "gid://cart/g"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Message != MsgAssociatedGuestCart || r.CartID != "gid://cart/g" {
		t.Fatalf("got message=%s cartId=%s", r.Message, r.CartID)
	}
	if l := links.links["cust-1"]; l == nil || l.CartID != "gid://cart/g" {
		t.Fatalf("association not repointed: %+v", l)
	}
}

func TestResolveSideWriteFailuresAreNotFatal(t *testing.T) {
	gw := newFakeCartGateway()
	gw.metafieldErr = errors.New("metafield write denied")
	gw.seed("gid://cart/g", line("v1", 1))
	links := newFakeLinkRepo()
	links.upsertErr = errors.New("link store down")
	uc := newResolutionUC(gw, links)

	r, err := uc.Resolve(context.Background(), ResolveInput{CustomerID: "cust-1", ClientCartID: "gid://cart/g"})
	if err != nil {
		t.Fatalf("side-write failures must not fail resolution: %v", err)
	}
	if r.CartID != "gid://cart/g" || !r.Merged {
		t.Fatalf("unexpected resolution: %+v", r)
	}
}

func TestResolvePrimaryCreateFailureIsFatal(t *testing.T) {
	gw := newFakeCartGateway()
	gw.createErr = errors.New("platform unavailable")
	uc := newResolutionUC(gw, newFakeLinkRepo())

	if _, err := uc.Resolve(context.Background(), ResolveInput{}); err == nil {
		t.Fatalf("expected create failure to propagate")
	}
}

// seedLink records an association snapshot matching a seeded gateway cart.
func seedLink(t *testing.T, links *fakeLinkRepo, gw *fakeCartGateway, customerID, cartID string) {
	t.Helper()
	l, err := linkdom.NewLink(customerID, gw.carts[cartID], time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("seedLink: %v", err)
	}
	links.links[customerID] = l
}
