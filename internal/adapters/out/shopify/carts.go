// internal/adapters/out/shopify/carts.go
package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	uc "grano/internal/application/usecase"
	cartdom "grano/internal/domain/cart"
)

// cartFields is shared by every query/mutation that returns a cart.
const cartFields = `
  id
  checkoutUrl
  lines(first: 100) {
    edges {
      node {
        quantity
        merchandise {
          ... on ProductVariant {
            id
            title
            price { amount }
            image { url }
          }
        }
      }
    }
  }
`

const cartCreateMutation = `
mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart {` + cartFields + `}
    userErrors { field message }
  }
}`

const cartQuery = `
query cart($id: ID!) {
  cart(id: $id) {` + cartFields + `}
}`

const cartLinesAddMutation = `
mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { id }
    userErrors { field message }
  }
}`

const metafieldsSetMutation = `
mutation metafieldsSet($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    metafields { id }
    userErrors { field message }
  }
}`

type gqlMoney struct {
	Amount string `json:"amount"`
}

type gqlImage struct {
	URL string `json:"url"`
}

type gqlMerchandise struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Price gqlMoney `json:"price"`
	Image gqlImage `json:"image"`
}

type gqlCartLine struct {
	Quantity    int            `json:"quantity"`
	Merchandise gqlMerchandise `json:"merchandise"`
}

type gqlCart struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
	Lines       struct {
		Edges []struct {
			Node gqlCartLine `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
}

type gqlUserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func (g *gqlCart) toDomain() *cartdom.Cart {
	if g == nil || strings.TrimSpace(g.ID) == "" {
		return nil
	}
	c := &cartdom.Cart{
		ID:          g.ID,
		CheckoutURL: g.CheckoutURL,
	}
	for _, e := range g.Lines.Edges {
		n := e.Node
		if n.Quantity <= 0 || strings.TrimSpace(n.Merchandise.ID) == "" {
			continue
		}
		c.Lines = append(c.Lines, cartdom.Line{
			VariantID: n.Merchandise.ID,
			Quantity:  n.Quantity,
			Title:     n.Merchandise.Title,
			Price:     n.Merchandise.Price.Amount,
			ImageURL:  n.Merchandise.Image.URL,
		})
	}
	return c
}

func userErrsToError(op string, errs []gqlUserError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("shopify: %s userErrors: %s", op, strings.Join(msgs, "; "))
}

// CreateCart creates a cart, optionally bound to a customer identity.
func (c *Client) CreateCart(ctx context.Context, opts uc.CreateCartOptions) (*cartdom.Cart, error) {
	input := map[string]any{}
	if cid := strings.TrimSpace(opts.CustomerID); cid != "" {
		input["buyerIdentity"] = map[string]any{"customerAccessToken": nil, "customerId": cid}
	}

	var out struct {
		CartCreate struct {
			Cart       *gqlCart       `json:"cart"`
			UserErrors []gqlUserError `json:"userErrors"`
		} `json:"cartCreate"`
	}
	if err := c.doStorefront(ctx, cartCreateMutation, map[string]any{"input": input}, &out); err != nil {
		return nil, err
	}
	if err := userErrsToError("cartCreate", out.CartCreate.UserErrors); err != nil {
		return nil, err
	}
	cart := out.CartCreate.Cart.toDomain()
	if cart == nil {
		return nil, errors.New("shopify: cartCreate returned no cart")
	}
	return cart, nil
}

// GetCartByID fetches a cart. Missing or expired carts come back as
// LookupAbsent, never as an error; an error means the call itself failed.
func (c *Client) GetCartByID(ctx context.Context, id string) (cartdom.Lookup, error) {
	cartID := strings.TrimSpace(id)
	if cartID == "" {
		return cartdom.NewLookup(nil), nil
	}

	var out struct {
		Cart *gqlCart `json:"cart"`
	}
	if err := c.doStorefront(ctx, cartQuery, map[string]any{"id": cartID}, &out); err != nil {
		return cartdom.Lookup{}, err
	}
	return cartdom.NewLookup(out.Cart.toDomain()), nil
}

// AddCartLine appends/increments one line on an existing cart.
func (c *Client) AddCartLine(ctx context.Context, cartID, variantID string, quantity int) error {
	if strings.TrimSpace(cartID) == "" || strings.TrimSpace(variantID) == "" {
		return errors.New("shopify: cartLinesAdd requires cartId and variantId")
	}
	if quantity <= 0 {
		return errors.New("shopify: cartLinesAdd requires quantity >= 1")
	}

	vars := map[string]any{
		"cartId": cartID,
		"lines": []map[string]any{
			{"merchandiseId": variantID, "quantity": quantity},
		},
	}
	var out struct {
		CartLinesAdd struct {
			UserErrors []gqlUserError `json:"userErrors"`
		} `json:"cartLinesAdd"`
	}
	if err := c.doStorefront(ctx, cartLinesAddMutation, vars, &out); err != nil {
		return err
	}
	return userErrsToError("cartLinesAdd", out.CartLinesAdd.UserErrors)
}

// SaveCustomerCartID persists the customer's cart id as an Admin metafield.
// Callers treat a failure here as non-fatal.
func (c *Client) SaveCustomerCartID(ctx context.Context, customerID, cartID string) error {
	cid := strings.TrimSpace(customerID)
	if cid == "" || strings.TrimSpace(cartID) == "" {
		return errors.New("shopify: metafieldsSet requires customerId and cartId")
	}

	vars := map[string]any{
		"metafields": []map[string]any{
			{
				"ownerId":   cid,
				"namespace": "storefront",
				"key":       "cart_id",
				"type":      "single_line_text_field",
				"value":     strings.TrimSpace(cartID),
			},
		},
	}
	var out struct {
		MetafieldsSet struct {
			UserErrors []gqlUserError `json:"userErrors"`
		} `json:"metafieldsSet"`
	}
	if err := c.doAdmin(ctx, metafieldsSetMutation, vars, &out); err != nil {
		return err
	}
	return userErrsToError("metafieldsSet", out.MetafieldsSet.UserErrors)
}
