// internal/adapters/out/shopify/checkout.go
package shopify

import (
	"context"
	"errors"
	"strings"

	uc "grano/internal/application/usecase"
)

const draftOrderCalculateMutation = `
mutation draftOrderCalculate($input: DraftOrderInput!) {
  draftOrderCalculate(input: $input) {
    calculatedDraftOrder {
      subtotalPrice
      totalTax
      totalPrice
      availableShippingRates { handle title price { amount } }
    }
    userErrors { field message }
  }
}`

const draftOrderCreateMutation = `
mutation draftOrderCreate($input: DraftOrderInput!) {
  draftOrderCreate(input: $input) {
    draftOrder { id invoiceUrl }
    userErrors { field message }
  }
}`

const draftOrderCompleteMutation = `
mutation draftOrderComplete($id: ID!) {
  draftOrderComplete(id: $id) {
    draftOrder {
      id
      order { id name totalPrice }
    }
    userErrors { field message }
  }
}`

func draftOrderInputVars(customerID, email string, items []uc.CheckoutItem, addr uc.ShippingAddress, rateHandle string) map[string]any {
	lineItems := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 || strings.TrimSpace(it.VariantID) == "" {
			continue
		}
		lineItems = append(lineItems, map[string]any{
			"variantId": it.VariantID,
			"quantity":  it.Quantity,
		})
	}

	input := map[string]any{
		"lineItems": lineItems,
		"shippingAddress": map[string]any{
			"firstName": addr.FirstName,
			"lastName":  addr.LastName,
			"address1":  addr.Address1,
			"address2":  addr.Address2,
			"city":      addr.City,
			"province":  addr.Province,
			"country":   addr.Country,
			"zip":       addr.Zip,
			"phone":     addr.Phone,
		},
	}
	if customerID != "" {
		input["customerId"] = customerID
	}
	if email != "" {
		input["email"] = email
	}
	if rateHandle != "" {
		input["shippingLine"] = map[string]any{"shippingRateHandle": rateHandle}
	}
	return map[string]any{"input": input}
}

// CalculateShipping asks the platform to price items + address. The returned
// rate order is the platform's; callers auto-select the first.
func (c *Client) CalculateShipping(ctx context.Context, items []uc.CheckoutItem, addr uc.ShippingAddress) (uc.ShippingQuote, error) {
	var out struct {
		DraftOrderCalculate struct {
			CalculatedDraftOrder *struct {
				SubtotalPrice          string `json:"subtotalPrice"`
				TotalTax               string `json:"totalTax"`
				TotalPrice             string `json:"totalPrice"`
				AvailableShippingRates []struct {
					Handle string   `json:"handle"`
					Title  string   `json:"title"`
					Price  gqlMoney `json:"price"`
				} `json:"availableShippingRates"`
			} `json:"calculatedDraftOrder"`
			UserErrors []gqlUserError `json:"userErrors"`
		} `json:"draftOrderCalculate"`
	}

	vars := draftOrderInputVars("", "", items, addr, "")
	if err := c.doAdmin(ctx, draftOrderCalculateMutation, vars, &out); err != nil {
		return uc.ShippingQuote{}, err
	}
	if err := userErrsToError("draftOrderCalculate", out.DraftOrderCalculate.UserErrors); err != nil {
		return uc.ShippingQuote{}, err
	}
	calc := out.DraftOrderCalculate.CalculatedDraftOrder
	if calc == nil {
		return uc.ShippingQuote{}, errors.New("shopify: draftOrderCalculate returned no result")
	}

	q := uc.ShippingQuote{
		Subtotal: calc.SubtotalPrice,
		Tax:      calc.TotalTax,
		Total:    calc.TotalPrice,
	}
	for _, r := range calc.AvailableShippingRates {
		q.Rates = append(q.Rates, uc.ShippingRate{
			Handle: r.Handle,
			Title:  r.Title,
			Price:  r.Price.Amount,
		})
	}
	return q, nil
}

// DraftOrderCreate is phase one of order placement. userErrors pass through
// so the usecase can treat them as domain failures.
func (c *Client) DraftOrderCreate(ctx context.Context, in uc.DraftOrderInput) (uc.DraftOrder, error) {
	var out struct {
		DraftOrderCreate struct {
			DraftOrder *struct {
				ID         string `json:"id"`
				InvoiceURL string `json:"invoiceUrl"`
			} `json:"draftOrder"`
			UserErrors []gqlUserError `json:"userErrors"`
		} `json:"draftOrderCreate"`
	}

	vars := draftOrderInputVars(in.CustomerID, in.Email, in.Items, in.Address, in.RateHandle)
	if err := c.doAdmin(ctx, draftOrderCreateMutation, vars, &out); err != nil {
		return uc.DraftOrder{}, err
	}

	d := uc.DraftOrder{}
	if out.DraftOrderCreate.DraftOrder != nil {
		d.ID = out.DraftOrderCreate.DraftOrder.ID
		d.InvoiceURL = out.DraftOrderCreate.DraftOrder.InvoiceURL
	}
	for _, ue := range out.DraftOrderCreate.UserErrors {
		d.UserErrors = append(d.UserErrors, uc.UserError{
			Field:   strings.Join(ue.Field, "."),
			Message: ue.Message,
		})
	}
	return d, nil
}

// DraftOrderComplete is phase two: the draft becomes a real order.
func (c *Client) DraftOrderComplete(ctx context.Context, draftOrderID string) (uc.CompletedOrder, error) {
	id := strings.TrimSpace(draftOrderID)
	if id == "" {
		return uc.CompletedOrder{}, errors.New("shopify: draftOrderComplete requires id")
	}

	var out struct {
		DraftOrderComplete struct {
			DraftOrder *struct {
				ID    string `json:"id"`
				Order *struct {
					ID         string `json:"id"`
					Name       string `json:"name"`
					TotalPrice string `json:"totalPrice"`
				} `json:"order"`
			} `json:"draftOrder"`
			UserErrors []gqlUserError `json:"userErrors"`
		} `json:"draftOrderComplete"`
	}

	if err := c.doAdmin(ctx, draftOrderCompleteMutation, map[string]any{"id": id}, &out); err != nil {
		return uc.CompletedOrder{}, err
	}

	o := uc.CompletedOrder{}
	if d := out.DraftOrderComplete.DraftOrder; d != nil && d.Order != nil {
		o.ID = d.Order.ID
		o.Name = d.Order.Name
		o.Total = d.Order.TotalPrice
	}
	for _, ue := range out.DraftOrderComplete.UserErrors {
		o.UserErrors = append(o.UserErrors, uc.UserError{
			Field:   strings.Join(ue.Field, "."),
			Message: ue.Message,
		})
	}
	return o, nil
}
