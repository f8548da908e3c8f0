// internal/adapters/in/http/store/handler/cart_handler.go
package storeHandler

import (
	"log"
	"net/http"
	"time"

	usecase "grano/internal/application/usecase"
	cartdom "grano/internal/domain/cart"
)

// CartHandler serves the cart retrieval/resolution endpoint.
type CartHandler struct {
	uc *usecase.CartResolutionUsecase
}

func NewCartHandler(uc *usecase.CartResolutionUsecase) http.Handler {
	return &CartHandler{uc: uc}
}

type cartGetRequest struct {
	CustomerShopifyID string `json:"customerShopifyId"`
	CartID            string `json:"cartId"`
}

type cartGetResponse struct {
	Cart          *cartdom.Cart `json:"cart"`
	CartID        string        `json:"cartId"`
	CheckoutURL   string        `json:"checkoutUrl"`
	TotalQuantity int           `json:"totalQuantity"`
	Expired       bool          `json:"expired"`
	Message       string        `json:"message"`
	Merged        bool          `json:"merged"`
	MergedCartID  string        `json:"mergedCartId,omitempty"`
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req cartGetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json body")
		return
	}

	res, err := h.uc.Resolve(r.Context(), usecase.ResolveInput{
		CustomerID:   req.CustomerShopifyID,
		ClientCartID: req.CartID,
	})
	if err != nil {
		log.Printf("[store_cart_handler] resolve failed customerId=%q cartId=%q err=%v elapsed=%s",
			req.CustomerShopifyID, req.CartID, err, time.Since(start))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  "failed to load cart",
			"detail": err.Error(),
		})
		return
	}

	resp := cartGetResponse{
		Cart:         res.Cart,
		CartID:       res.CartID,
		Expired:      res.Expired,
		Message:      string(res.Message),
		Merged:       res.Merged,
		MergedCartID: res.MergedCartID,
	}
	if res.Cart != nil {
		resp.CheckoutURL = res.Cart.CheckoutURL
		resp.TotalQuantity = res.Cart.TotalQuantity()
	}

	log.Printf("[store_cart_handler] ok customerId=%q cartId=%q message=%s qty=%d elapsed=%s",
		req.CustomerShopifyID, resp.CartID, resp.Message, resp.TotalQuantity, time.Since(start))
	writeJSON(w, http.StatusOK, resp)
}
