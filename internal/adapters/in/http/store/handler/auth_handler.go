// internal/adapters/in/http/store/handler/auth_handler.go
package storeHandler

import (
	"log"
	"net/http"
	"strings"

	usecase "grano/internal/application/usecase"
)

// AuthHandler serves the phone-OTP login endpoints.
type AuthHandler struct {
	uc *usecase.AuthUsecase
}

func NewAuthHandler(uc *usecase.AuthUsecase) http.Handler {
	return &AuthHandler{uc: uc}
}

type requestOTPRequest struct {
	Phone     string `json:"phone"`
	StoreName string `json:"storeName"`
}

type verifyOTPRequest struct {
	Phone       string `json:"phone"`
	StoreName   string `json:"storeName"`
	EnteredOTP  string `json:"enteredOtp"`
	GuestCartID string `json:"guestCartId"`
}

type verifyOTPUser struct {
	CustomerID   string `json:"customerId"`
	CartID       string `json:"cartId,omitempty"`
	IsNewAccount bool   `json:"isNewAccount"`
	MergeResult  struct {
		Merged       bool   `json:"merged"`
		MergedCartID string `json:"mergedCartId,omitempty"`
	} `json:"mergeResult"`
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "auth handler is not configured")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	switch {
	case strings.HasSuffix(path, "/request-otp"):
		h.handleRequestOTP(w, r)
	case strings.HasSuffix(path, "/verify-otp"):
		h.handleVerifyOTP(w, r)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *AuthHandler) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Phone) == "" {
		badRequest(w, "phone is required")
		return
	}
	if strings.TrimSpace(req.StoreName) == "" {
		badRequest(w, "storeName is required")
		return
	}

	if err := h.uc.RequestOTP(r.Context(), req.Phone, req.StoreName); err != nil {
		log.Printf("[store_auth_handler] request-otp failed phone=%s err=%v", req.Phone, err)
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *AuthHandler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Phone) == "" {
		badRequest(w, "phone is required")
		return
	}
	if strings.TrimSpace(req.StoreName) == "" {
		badRequest(w, "storeName is required")
		return
	}
	if strings.TrimSpace(req.EnteredOTP) == "" {
		badRequest(w, "enteredOtp is required")
		return
	}

	res, err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		Phone:       req.Phone,
		StoreName:   req.StoreName,
		Code:        req.EnteredOTP,
		GuestCartID: req.GuestCartID,
	})
	if err != nil {
		log.Printf("[store_auth_handler] verify-otp failed phone=%s err=%v", req.Phone, err)
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !res.Success {
		// Vendor rejection is a normal outcome: the vendor's message passes
		// through verbatim.
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": res.Message,
		})
		return
	}

	user := verifyOTPUser{
		CustomerID:   res.CustomerID,
		CartID:       res.CartID,
		IsNewAccount: res.IsNewAccount,
	}
	user.MergeResult.Merged = res.Merged
	user.MergeResult.MergedCartID = res.MergedCartID

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}
