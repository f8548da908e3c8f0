// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	custdom "grano/internal/domain/customer"
)

var (
	ErrCheckoutGatewayMissing   = errors.New("checkout: checkout gateway is not configured")
	ErrCheckoutAccountsMissing  = errors.New("checkout: customer accounts port is not configured")
	ErrCheckoutCustomerIDEmpty  = errors.New("checkout: customerShopifyId is empty")
	ErrCheckoutEmailEmpty       = errors.New("checkout: email is empty")
	ErrCheckoutNoItems          = errors.New("checkout: no line items")
	ErrCheckoutAddressIncomplete = errors.New("checkout: shipping address is incomplete")

	// ErrInvalidCustomerEmail maps to the INVALID_CUSTOMER_EMAIL response
	// code. It fires before any draft order is created.
	ErrInvalidCustomerEmail = errors.New("checkout: email domain not allowed")

	// ErrEmailTakenByOtherAccount fires when the requested email already
	// belongs to a different platform customer.
	ErrEmailTakenByOtherAccount = errors.New("checkout: email belongs to another account")
)

// CheckoutItem is one purchasable line in a checkout request.
type CheckoutItem struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// ShippingAddress is the destination for rate calculation and order placement.
type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Country   string `json:"country"`
	Zip       string `json:"zip"`
	Phone     string `json:"phone,omitempty"`
}

func (a ShippingAddress) complete() bool {
	return strings.TrimSpace(a.Address1) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.Country) != "" &&
		strings.TrimSpace(a.Zip) != ""
}

// ShippingRate is one available rate returned by the platform.
type ShippingRate struct {
	Handle string `json:"handle"`
	Title  string `json:"title"`
	Price  string `json:"price"`
}

// ShippingQuote is the platform's calculation for items + address.
// SelectedRate is always the first returned rate; there is no rate-selection
// UI in this system.
type ShippingQuote struct {
	Rates        []ShippingRate `json:"rates"`
	SelectedRate *ShippingRate  `json:"selectedRate,omitempty"`
	Subtotal     string         `json:"subtotal"`
	Tax          string         `json:"tax"`
	Total        string         `json:"total"`
}

// UserError is a domain-level failure reported inside an otherwise successful
// platform call. A non-empty list is a failure even when transport succeeded.
type UserError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// DraftOrder is phase one of the two-phase order placement.
type DraftOrder struct {
	ID         string      `json:"id"`
	InvoiceURL string      `json:"invoiceUrl,omitempty"`
	UserErrors []UserError `json:"userErrors,omitempty"`
}

// CompletedOrder is phase two's result.
type CompletedOrder struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Total      string      `json:"total"`
	UserErrors []UserError `json:"userErrors,omitempty"`
}

// CheckoutGateway is the outbound port for shipping calculation and the
// two-phase draft-order placement.
type CheckoutGateway interface {
	CalculateShipping(ctx context.Context, items []CheckoutItem, addr ShippingAddress) (ShippingQuote, error)
	DraftOrderCreate(ctx context.Context, in DraftOrderInput) (DraftOrder, error)
	DraftOrderComplete(ctx context.Context, draftOrderID string) (CompletedOrder, error)
}

// DraftOrderInput is what phase one needs.
type DraftOrderInput struct {
	CustomerID string
	Email      string
	Items      []CheckoutItem
	Address    ShippingAddress
	// RateHandle is the auto-selected shipping rate, when one was quoted.
	RateHandle string
}

// CustomerAccounts is the outbound port for customer read/update on the
// platform. UpdateCustomerEmail must reject an email owned by a different
// account with ErrEmailTakenByOtherAccount.
type CustomerAccounts interface {
	GetCustomer(ctx context.Context, id string) (*custdom.Customer, error)
	UpdateCustomerEmail(ctx context.Context, id, email string) error
}

// EmailSender sends transactional mail (confirmation after order completion).
type EmailSender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// CheckoutUsecase brokers shipping quotes and order placement against the
// commerce platform.
type CheckoutUsecase struct {
	gw       CheckoutGateway
	accounts CustomerAccounts
	mailer   EmailSender
	mailFrom string
}

func NewCheckoutUsecase(gw CheckoutGateway, accounts CustomerAccounts, mailer EmailSender, mailFrom string) *CheckoutUsecase {
	return &CheckoutUsecase{
		gw:       gw,
		accounts: accounts,
		mailer:   mailer,
		mailFrom: strings.TrimSpace(mailFrom),
	}
}

// QuoteShipping returns the platform's rates for items + address with the
// first rate auto-selected.
func (u *CheckoutUsecase) QuoteShipping(ctx context.Context, items []CheckoutItem, addr ShippingAddress) (ShippingQuote, error) {
	if u == nil || u.gw == nil {
		return ShippingQuote{}, ErrCheckoutGatewayMissing
	}
	if len(items) == 0 {
		return ShippingQuote{}, ErrCheckoutNoItems
	}
	if !addr.complete() {
		return ShippingQuote{}, ErrCheckoutAddressIncomplete
	}

	q, err := u.gw.CalculateShipping(ctx, items, addr)
	if err != nil {
		return ShippingQuote{}, err
	}
	if len(q.Rates) > 0 {
		q.SelectedRate = &q.Rates[0]
	}
	return q, nil
}

// PlaceOrderInput carries one order placement request.
type PlaceOrderInput struct {
	CustomerID string
	Email      string
	Items      []CheckoutItem
	Address    ShippingAddress
}

// PlaceOrder validates the email gate, applies the email-update side effect,
// then runs the two-phase draft-order placement. userErrors are checked at
// both phases. The confirmation mail is best-effort.
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (CompletedOrder, error) {
	if u == nil || u.gw == nil {
		return CompletedOrder{}, ErrCheckoutGatewayMissing
	}
	if u.accounts == nil {
		return CompletedOrder{}, ErrCheckoutAccountsMissing
	}

	customerID := strings.TrimSpace(in.CustomerID)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if customerID == "" {
		return CompletedOrder{}, ErrCheckoutCustomerIDEmpty
	}
	if email == "" {
		return CompletedOrder{}, ErrCheckoutEmailEmpty
	}
	if len(in.Items) == 0 {
		return CompletedOrder{}, ErrCheckoutNoItems
	}
	if !in.Address.complete() {
		return CompletedOrder{}, ErrCheckoutAddressIncomplete
	}

	// Email gate runs before anything is created on the platform.
	if !custdom.EmailDomainAllowed(email) {
		log.Printf("[checkout_uc] email domain rejected customerId=%s email=%s", customerID, email)
		return CompletedOrder{}, ErrInvalidCustomerEmail
	}

	// Identity correction before order placement: a failed update aborts the
	// order while nothing exists yet, so there is nothing to roll back.
	cust, err := u.accounts.GetCustomer(ctx, customerID)
	if err != nil {
		return CompletedOrder{}, err
	}
	if cust == nil {
		return CompletedOrder{}, fmt.Errorf("checkout: customer %s not found", customerID)
	}
	if !strings.EqualFold(strings.TrimSpace(cust.Email), email) {
		if err := u.accounts.UpdateCustomerEmail(ctx, customerID, email); err != nil {
			return CompletedOrder{}, err
		}
		log.Printf("[checkout_uc] customer email updated customerId=%s", customerID)
	}

	// Auto-select a shipping rate for the draft order.
	rateHandle := ""
	q, err := u.gw.CalculateShipping(ctx, in.Items, in.Address)
	if err != nil {
		return CompletedOrder{}, err
	}
	if len(q.Rates) > 0 {
		rateHandle = q.Rates[0].Handle
	}

	draft, err := u.gw.DraftOrderCreate(ctx, DraftOrderInput{
		CustomerID: customerID,
		Email:      email,
		Items:      in.Items,
		Address:    in.Address,
		RateHandle: rateHandle,
	})
	if err != nil {
		return CompletedOrder{}, err
	}
	if len(draft.UserErrors) > 0 {
		return CompletedOrder{}, userErrorsToErr("draftOrderCreate", draft.UserErrors)
	}
	if strings.TrimSpace(draft.ID) == "" {
		return CompletedOrder{}, errors.New("checkout: draftOrderCreate returned no id")
	}

	order, err := u.gw.DraftOrderComplete(ctx, draft.ID)
	if err != nil {
		return CompletedOrder{}, err
	}
	if len(order.UserErrors) > 0 {
		return CompletedOrder{}, userErrorsToErr("draftOrderComplete", order.UserErrors)
	}

	log.Printf("[checkout_uc] OK: order placed customerId=%s draftId=%s orderId=%s name=%s",
		customerID, draft.ID, order.ID, order.Name)

	u.sendConfirmation(ctx, email, order)

	return order, nil
}

// sendConfirmation is best-effort; a mail failure never fails the order.
func (u *CheckoutUsecase) sendConfirmation(ctx context.Context, to string, order CompletedOrder) {
	if u.mailer == nil || u.mailFrom == "" {
		return
	}
	subject := fmt.Sprintf("Order %s confirmed", order.Name)
	body := fmt.Sprintf("Thanks for your order!\n\nOrder: %s\nTotal: %s\n", order.Name, order.Total)
	if err := u.mailer.Send(ctx, u.mailFrom, to, subject, body); err != nil {
		log.Printf("[checkout_uc] WARN: confirmation mail failed to=%s orderId=%s err=%v", to, order.ID, err)
	}
}

func userErrorsToErr(phase string, errs []UserError) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		m := strings.TrimSpace(e.Message)
		if m == "" {
			continue
		}
		if e.Field != "" {
			m = e.Field + ": " + m
		}
		msgs = append(msgs, m)
	}
	return fmt.Errorf("checkout: %s userErrors: %s", phase, strings.Join(msgs, "; "))
}
