// internal/adapters/out/shopify/customers.go
package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	uc "grano/internal/application/usecase"
	custdom "grano/internal/domain/customer"
)

const customerSearchQuery = `
query customerSearch($query: String!) {
  customers(first: 1, query: $query) {
    edges {
      node { id phone email }
    }
  }
}`

const customerQuery = `
query customer($id: ID!) {
  customer(id: $id) { id phone email }
}`

const customerUpdateMutation = `
mutation customerUpdate($input: CustomerInput!) {
  customerUpdate(input: $input) {
    customer { id email }
    userErrors { field message }
  }
}`

type gqlCustomer struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (g *gqlCustomer) toDomain() *custdom.Customer {
	if g == nil || strings.TrimSpace(g.ID) == "" {
		return nil
	}
	return &custdom.Customer{ID: g.ID, Phone: g.Phone, Email: g.Email}
}

// SearchCustomerByPhone returns the platform customer for a phone number, or
// (nil, nil) when none matches. The platform returns at most one.
func (c *Client) SearchCustomerByPhone(ctx context.Context, phone string) (*custdom.Customer, error) {
	p := custdom.NormalizePhone(phone)
	if p == "" {
		return nil, custdom.ErrInvalidPhone
	}

	var out struct {
		Customers struct {
			Edges []struct {
				Node gqlCustomer `json:"node"`
			} `json:"edges"`
		} `json:"customers"`
	}
	vars := map[string]any{"query": "phone:" + p}
	if err := c.doAdmin(ctx, customerSearchQuery, vars, &out); err != nil {
		return nil, err
	}
	if len(out.Customers.Edges) == 0 {
		return nil, nil
	}
	return out.Customers.Edges[0].Node.toDomain(), nil
}

// GetCustomer reads one customer by platform id; (nil, nil) when missing.
func (c *Client) GetCustomer(ctx context.Context, id string) (*custdom.Customer, error) {
	cid := strings.TrimSpace(id)
	if cid == "" {
		return nil, custdom.ErrInvalidID
	}

	var out struct {
		Customer *gqlCustomer `json:"customer"`
	}
	if err := c.doAdmin(ctx, customerQuery, map[string]any{"id": cid}, &out); err != nil {
		return nil, err
	}
	return out.Customer.toDomain(), nil
}

// UpdateCustomerEmail sets the customer's email. When the platform reports
// the email as taken by another account, the typed checkout error surfaces
// so the caller can abort order placement cleanly.
func (c *Client) UpdateCustomerEmail(ctx context.Context, id, email string) error {
	cid := strings.TrimSpace(id)
	e := strings.TrimSpace(email)
	if cid == "" {
		return custdom.ErrInvalidID
	}
	if e == "" {
		return errors.New("shopify: customerUpdate requires email")
	}

	vars := map[string]any{
		"input": map[string]any{"id": cid, "email": e},
	}
	var out struct {
		CustomerUpdate struct {
			UserErrors []gqlUserError `json:"userErrors"`
		} `json:"customerUpdate"`
	}
	if err := c.doAdmin(ctx, customerUpdateMutation, vars, &out); err != nil {
		return err
	}
	for _, ue := range out.CustomerUpdate.UserErrors {
		if strings.Contains(strings.ToLower(ue.Message), "taken") {
			return fmt.Errorf("%w: %s", uc.ErrEmailTakenByOtherAccount, ue.Message)
		}
	}
	return userErrsToError("customerUpdate", out.CustomerUpdate.UserErrors)
}
