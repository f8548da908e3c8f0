// internal/application/usecase/cart_resolution_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	cartdom "grano/internal/domain/cart"
	linkdom "grano/internal/domain/cartlink"
)

var (
	ErrCartResolutionGatewayMissing = errors.New("cart_resolution: cart gateway is not configured")
	ErrCartResolutionLinksMissing   = errors.New("cart_resolution: cart link repository is not configured")
)

// CreateCartOptions optionally binds a customer identity at creation time.
type CreateCartOptions struct {
	CustomerID string
}

// CartGateway is the outbound port to the remote platform's cart operations.
//
// Contract notes:
// - CreateCart succeeds or returns a transient-failure error; never nil-nil.
// - GetCartByID reports missing/expired carts through the Lookup tag, not an
//   error. An error means the call itself failed.
// - SaveCustomerCartID persists the association as platform metadata; callers
//   treat failures as non-fatal.
// - AddCartLine appends/increments one line on an existing cart.
type CartGateway interface {
	CreateCart(ctx context.Context, opts CreateCartOptions) (*cartdom.Cart, error)
	GetCartByID(ctx context.Context, id string) (cartdom.Lookup, error)
	AddCartLine(ctx context.Context, cartID, variantID string, quantity int) error
	SaveCustomerCartID(ctx context.Context, customerID, cartID string) error
}

// ResolutionMessage is the terminal state of one resolution call.
type ResolutionMessage string

const (
	MsgNewGuestCart         ResolutionMessage = "new_guest_cart"
	MsgGuestCartExpired     ResolutionMessage = "guest_cart_expired"
	MsgGuestCartLoaded      ResolutionMessage = "guest_cart_loaded"
	MsgAssociatedGuestCart  ResolutionMessage = "associated_guest_cart"
	MsgMergedIntoCustomer   ResolutionMessage = "merged_guest_into_customer_cart"
	MsgNewCustomerCart      ResolutionMessage = "new_customer_cart"
	MsgCustomerCartLoaded   ResolutionMessage = "customer_cart_loaded"
)

// ResolveInput carries the two optional identifiers a request can present.
type ResolveInput struct {
	CustomerID   string
	ClientCartID string
}

// Resolution is the authoritative outcome of one resolve call.
// Merged/MergedCartID feed the client's guest-slot cleanup: the client clears
// its guest cart reference only when Merged is true.
type Resolution struct {
	Cart         *cartdom.Cart
	CartID       string
	Expired      bool
	Message      ResolutionMessage
	Merged       bool
	MergedCartID string
}

// CartResolutionUsecase determines the single authoritative cart for a
// request, creating, adopting, or merging as needed.
//
// Failure policy:
// - primary fetch/create failures propagate to the caller
// - cart link writes and metafield writes are side-writes: logged, never fatal
// - individual merge line additions are logged and skipped
type CartResolutionUsecase struct {
	gw    CartGateway
	links linkdom.Repository
	clock Clock
}

func NewCartResolutionUsecase(gw CartGateway, links linkdom.Repository) *CartResolutionUsecase {
	return &CartResolutionUsecase{gw: gw, links: links, clock: systemClock{}}
}

// NewCartResolutionUsecaseWithClock is useful for tests.
func NewCartResolutionUsecaseWithClock(gw CartGateway, links linkdom.Repository, clock Clock) *CartResolutionUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartResolutionUsecase{gw: gw, links: links, clock: clock}
}

// Resolve runs the decision procedure. Branches are evaluated in precedence
// order and each is terminal.
func (u *CartResolutionUsecase) Resolve(ctx context.Context, in ResolveInput) (Resolution, error) {
	if u == nil || u.gw == nil {
		return Resolution{}, ErrCartResolutionGatewayMissing
	}
	if u.links == nil {
		return Resolution{}, ErrCartResolutionLinksMissing
	}

	customerID := strings.TrimSpace(in.CustomerID)
	clientCartID := strings.TrimSpace(in.ClientCartID)

	// 1) anonymous, no cached cart: fresh guest cart
	if customerID == "" && clientCartID == "" {
		c, err := u.gw.CreateCart(ctx, CreateCartOptions{})
		if err != nil {
			return Resolution{}, err
		}
		log.Printf("[cart_resolution_uc] new guest cart cartId=%s", c.ID)
		return Resolution{Cart: c, CartID: c.ID, Message: MsgNewGuestCart}, nil
	}

	// 2) anonymous with cached cart: load or report expiry
	if customerID == "" {
		lk, err := u.gw.GetCartByID(ctx, clientCartID)
		if err != nil {
			return Resolution{}, err
		}
		if !lk.Usable() {
			log.Printf("[cart_resolution_uc] guest cart expired cartId=%s state=%s", clientCartID, lk.State)
			return Resolution{Expired: true, Message: MsgGuestCartExpired}, nil
		}
		return Resolution{Cart: lk.Cart, CartID: lk.Cart.ID, Message: MsgGuestCartLoaded}, nil
	}

	// 3) authenticated
	link, err := u.links.GetByCustomerID(ctx, customerID)
	if err != nil {
		return Resolution{}, err
	}

	// 3a) a usable guest cart takes precedence as merge source
	if clientCartID != "" {
		glk, err := u.gw.GetCartByID(ctx, clientCartID)
		if err != nil {
			return Resolution{}, err
		}
		if glk.Usable() {
			return u.reconcileGuestCart(ctx, customerID, link, glk.Cart)
		}
	}

	// 3b) ordinary resolution via the association record
	if link.HasCartRef() {
		lk, err := u.gw.GetCartByID(ctx, link.CartID)
		if err != nil {
			return Resolution{}, err
		}
		if lk.Usable() {
			return Resolution{Cart: lk.Cart, CartID: lk.Cart.ID, Message: MsgCustomerCartLoaded}, nil
		}
		// stale association: clear and fall through to creation
		log.Printf("[cart_resolution_uc] stale association cleared customerId=%s cartId=%s state=%s",
			customerID, link.CartID, lk.State)
		if cErr := u.links.ClearCartRef(ctx, customerID); cErr != nil {
			log.Printf("[cart_resolution_uc] WARN: clear cart ref failed customerId=%s err=%v", customerID, cErr)
		}
	}

	// 3c) create a customer-bound cart and persist the association
	c, err := u.gw.CreateCart(ctx, CreateCartOptions{CustomerID: customerID})
	if err != nil {
		return Resolution{}, err
	}
	u.persistAssociation(ctx, customerID, c)
	log.Printf("[cart_resolution_uc] new customer cart customerId=%s cartId=%s", customerID, c.ID)
	return Resolution{Cart: c, CartID: c.ID, Message: MsgNewCustomerCart}, nil
}

// reconcileGuestCart handles a non-empty guest cart presented by an
// authenticated request: adopt it when the customer has no cart of their own,
// merge it line by line when they do.
//
// Tie-break: the guest cart is always the merge source; an existing customer
// cart always wins as the destination id.
func (u *CartResolutionUsecase) reconcileGuestCart(ctx context.Context, customerID string, link *linkdom.Link, guest *cartdom.Cart) (Resolution, error) {
	// Validate the destination before merging. An absent or empty customer
	// cart routes exactly like a missing association.
	var dest *cartdom.Cart
	if link.HasCartRef() && link.CartID != guest.ID {
		lk, err := u.gw.GetCartByID(ctx, link.CartID)
		if err != nil {
			return Resolution{}, err
		}
		if lk.Usable() {
			dest = lk.Cart
		} else {
			log.Printf("[cart_resolution_uc] merge destination unusable customerId=%s cartId=%s state=%s",
				customerID, link.CartID, lk.State)
		}
	}

	if link.HasCartRef() && link.CartID == guest.ID {
		// Guest id already is the customer's cart (e.g. second call after
		// adoption): nothing to reconcile.
		u.persistAssociation(ctx, customerID, guest)
		return Resolution{Cart: guest, CartID: guest.ID, Message: MsgCustomerCartLoaded}, nil
	}

	if dest == nil {
		// Adoption: the guest cart becomes the customer's cart.
		u.persistAssociation(ctx, customerID, guest)
		log.Printf("[cart_resolution_uc] guest cart adopted customerId=%s cartId=%s qty=%d",
			customerID, guest.ID, guest.TotalQuantity())
		return Resolution{
			Cart:         guest,
			CartID:       guest.ID,
			Message:      MsgAssociatedGuestCart,
			Merged:       true,
			MergedCartID: guest.ID,
		}, nil
	}

	// Line-item merge, sequential on purpose: concurrent writes against one
	// remote cart risk the platform's own lost-update races.
	failed := 0
	for _, l := range guest.Lines {
		if l.Quantity <= 0 || strings.TrimSpace(l.VariantID) == "" {
			continue
		}
		if err := u.gw.AddCartLine(ctx, dest.ID, l.VariantID, l.Quantity); err != nil {
			// Partial merge beats total failure: skip and continue.
			failed++
			log.Printf("[cart_resolution_uc] WARN: merge line failed customerId=%s destCartId=%s variantId=%s qty=%d err=%v",
				customerID, dest.ID, l.VariantID, l.Quantity, err)
		}
	}

	post, err := u.gw.GetCartByID(ctx, dest.ID)
	if err != nil {
		return Resolution{}, err
	}
	merged := post.Cart
	if merged == nil {
		merged = dest
	}
	u.persistAssociation(ctx, customerID, merged)

	log.Printf("[cart_resolution_uc] guest cart merged customerId=%s srcCartId=%s destCartId=%s lines=%d failed=%d qty=%d",
		customerID, guest.ID, dest.ID, len(guest.Lines), failed, merged.TotalQuantity())

	return Resolution{
		Cart:         merged,
		CartID:       dest.ID,
		Message:      MsgMergedIntoCustomer,
		Merged:       true,
		MergedCartID: dest.ID,
	}, nil
}

// persistAssociation writes the link record and the platform metafield.
// Both are side-writes: failures are logged and swallowed.
func (u *CartResolutionUsecase) persistAssociation(ctx context.Context, customerID string, c *cartdom.Cart) {
	now := u.clock.Now()

	l, err := linkdom.NewLink(customerID, c, now)
	if err != nil {
		log.Printf("[cart_resolution_uc] WARN: link snapshot invalid customerId=%s err=%v", customerID, err)
		return
	}
	if err := u.links.Upsert(ctx, l); err != nil {
		log.Printf("[cart_resolution_uc] WARN: link upsert failed customerId=%s cartId=%s err=%v",
			customerID, c.ID, err)
	}
	if err := u.gw.SaveCustomerCartID(ctx, customerID, c.ID); err != nil {
		log.Printf("[cart_resolution_uc] WARN: metafield save failed customerId=%s cartId=%s err=%v",
			customerID, c.ID, err)
	}
}
