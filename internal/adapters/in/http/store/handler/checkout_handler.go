// internal/adapters/in/http/store/handler/checkout_handler.go
package storeHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	usecase "grano/internal/application/usecase"
)

// CheckoutHandler serves shipping quotes and order placement.
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) http.Handler {
	return &CheckoutHandler{uc: uc}
}

type shippingRatesRequest struct {
	Items   []usecase.CheckoutItem  `json:"items"`
	Address usecase.ShippingAddress `json:"address"`
}

type placeOrderRequest struct {
	CustomerShopifyID string                  `json:"customerShopifyId"`
	Email             string                  `json:"email"`
	Items             []usecase.CheckoutItem  `json:"items"`
	Address           usecase.ShippingAddress `json:"address"`
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "checkout handler is not configured")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	switch {
	case strings.HasSuffix(path, "/shipping-rates"):
		h.handleShippingRates(w, r)
	case strings.HasSuffix(path, "/order"):
		h.handlePlaceOrder(w, r)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *CheckoutHandler) handleShippingRates(w http.ResponseWriter, r *http.Request) {
	var req shippingRatesRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json body")
		return
	}

	q, err := h.uc.QuoteShipping(r.Context(), req.Items, req.Address)
	if err != nil {
		if errors.Is(err, usecase.ErrCheckoutNoItems) || errors.Is(err, usecase.ErrCheckoutAddressIncomplete) {
			badRequest(w, err.Error())
			return
		}
		log.Printf("[store_checkout_handler] shipping quote failed err=%v", err)
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *CheckoutHandler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json body")
		return
	}

	order, err := h.uc.PlaceOrder(r.Context(), usecase.PlaceOrderInput{
		CustomerID: req.CustomerShopifyID,
		Email:      req.Email,
		Items:      req.Items,
		Address:    req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCustomerEmail):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error": "email domain not allowed",
				"code":  "INVALID_CUSTOMER_EMAIL",
			})
		case errors.Is(err, usecase.ErrEmailTakenByOtherAccount):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error": "email belongs to another account",
				"code":  "EMAIL_TAKEN",
			})
		case errors.Is(err, usecase.ErrCheckoutCustomerIDEmpty),
			errors.Is(err, usecase.ErrCheckoutEmailEmpty),
			errors.Is(err, usecase.ErrCheckoutNoItems),
			errors.Is(err, usecase.ErrCheckoutAddressIncomplete):
			badRequest(w, err.Error())
		default:
			log.Printf("[store_checkout_handler] place order failed customerId=%s err=%v",
				req.CustomerShopifyID, err)
			writeErr(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   order,
	})
}
