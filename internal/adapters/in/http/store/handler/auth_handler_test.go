// internal/adapters/in/http/store/handler/auth_handler_test.go
package storeHandler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	usecase "grano/internal/application/usecase"
	cartdom "grano/internal/domain/cart"
	custdom "grano/internal/domain/customer"
)

type stubVerifier struct {
	result usecase.OTPLoginResult
}

func (v *stubVerifier) SendOTP(_ context.Context, _, _ string) error { return nil }
func (v *stubVerifier) Login(_ context.Context, _, _, _ string) (usecase.OTPLoginResult, error) {
	return v.result, nil
}

type stubDirectory struct {
	customer *custdom.Customer
}

func (d *stubDirectory) SearchCustomerByPhone(_ context.Context, _ string) (*custdom.Customer, error) {
	return d.customer, nil
}

func newAuthHandler(v *stubVerifier, d *stubDirectory, gw *stubGateway) http.Handler {
	res := usecase.NewCartResolutionUsecase(gw, newStubLinkRepo())
	return NewAuthHandler(usecase.NewAuthUsecase(v, d, res))
}

func TestAuthHandlerRequestOTPValidation(t *testing.T) {
	h := newAuthHandler(&stubVerifier{}, &stubDirectory{}, newStubGateway())

	rec := postJSON(t, h, "/store/auth/request-otp", `{"storeName":"grano"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing phone status = %d", rec.Code)
	}

	rec = postJSON(t, h, "/store/auth/request-otp", `{"phone":"+15550001111"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing storeName status = %d", rec.Code)
	}

	rec = postJSON(t, h, "/store/auth/request-otp", `{"phone":"+15550001111","storeName":"grano"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandlerVerifyOTPRejection(t *testing.T) {
	v := &stubVerifier{result: usecase.OTPLoginResult{Success: false, Message: "wrong code"}}
	h := newAuthHandler(v, &stubDirectory{}, newStubGateway())

	rec := postJSON(t, h, "/store/auth/verify-otp",
		`{"phone":"+15550001111","storeName":"grano","enteredOtp":"000000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("rejection should still be 200, got %d", rec.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Success || resp.Message != "wrong code" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestAuthHandlerVerifyOTPWithMerge(t *testing.T) {
	gw := newStubGateway()
	gw.carts["gid://cart/g"] = &cartdom.Cart{ID: "gid://cart/g", Lines: []cartdom.Line{{VariantID: "v1", Quantity: 1}}}
	v := &stubVerifier{result: usecase.OTPLoginResult{Success: true}}
	d := &stubDirectory{customer: &custdom.Customer{ID: "cust-1"}}
	h := newAuthHandler(v, d, gw)

	rec := postJSON(t, h, "/store/auth/verify-otp",
		`{"phone":"+15550001111","storeName":"grano","enteredOtp":"123456","guestCartId":"gid://cart/g"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		User    struct {
			CustomerID   string `json:"customerId"`
			CartID       string `json:"cartId"`
			IsNewAccount bool   `json:"isNewAccount"`
			MergeResult  struct {
				Merged       bool   `json:"merged"`
				MergedCartID string `json:"mergedCartId"`
			} `json:"mergeResult"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || resp.User.CustomerID != "cust-1" {
		t.Fatalf("resp = %+v", resp)
	}
	if !resp.User.MergeResult.Merged || resp.User.MergeResult.MergedCartID != "gid://cart/g" {
		t.Fatalf("merge result = %+v", resp.User.MergeResult)
	}
	if resp.User.CartID != "gid://cart/g" {
		t.Fatalf("cartId = %s", resp.User.CartID)
	}
}

func TestAuthHandlerUnknownPath(t *testing.T) {
	h := newAuthHandler(&stubVerifier{}, &stubDirectory{}, newStubGateway())
	rec := postJSON(t, h, "/store/auth/other", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
