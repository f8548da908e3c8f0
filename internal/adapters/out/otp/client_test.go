// internal/adapters/out/otp/client_test.go
package otp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func vendorServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r.Clone(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestSendOTP(t *testing.T) {
	srv, req := vendorServer(t, http.StatusOK, `{"success":true}`)
	c := NewClient(srv.URL, "vendor-key")

	if err := c.SendOTP(context.Background(), "+15550001111", "grano"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if req.URL.Path != "/send-otp" {
		t.Fatalf("path = %q", req.URL.Path)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer vendor-key" {
		t.Fatalf("auth header = %q", got)
	}
}

func TestSendOTPVendorFailure(t *testing.T) {
	srv, _ := vendorServer(t, http.StatusOK, `{"success":false,"message":"rate limited"}`)
	c := NewClient(srv.URL, "")

	if err := c.SendOTP(context.Background(), "+15550001111", "grano"); err == nil {
		t.Fatalf("unsuccessful send must be an error")
	}
}

func TestLoginSuccess(t *testing.T) {
	srv, req := vendorServer(t, http.StatusOK,
		`{"success":true,"user":{"newAccount":true,"storeEntry":{"shopifyCustomerId":"gid://customer/1"}}}`)
	c := NewClient(srv.URL, "vendor-key")

	res, err := c.Login(context.Background(), "+15550001111", "grano", "123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !res.Success || res.CustomerID != "gid://customer/1" || !res.NewAccount {
		t.Fatalf("result = %+v", res)
	}
	if req.URL.Path != "/login" {
		t.Fatalf("path = %q", req.URL.Path)
	}
}

func TestLoginRejectionIsNotAnError(t *testing.T) {
	srv, _ := vendorServer(t, http.StatusUnauthorized, `{"success":false,"message":"invalid code"}`)
	c := NewClient(srv.URL, "")

	res, err := c.Login(context.Background(), "+15550001111", "grano", "000000")
	if err != nil {
		t.Fatalf("4xx rejection must not be an error: %v", err)
	}
	if res.Success || res.Message != "invalid code" {
		t.Fatalf("result = %+v", res)
	}
}

func TestVendor5xxIsAnError(t *testing.T) {
	srv, _ := vendorServer(t, http.StatusBadGateway, `oops`)
	c := NewClient(srv.URL, "")

	if _, err := c.Login(context.Background(), "+15550001111", "grano", "123456"); err == nil {
		t.Fatalf("5xx must be an error")
	}
}

func TestLoginRequestBody(t *testing.T) {
	var body loginRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"user":{"storeEntry":{"shopifyCustomerId":"x"}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.Login(context.Background(), "+15550001111", "grano", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if body.Phone != "+15550001111" || body.StoreName != "grano" || body.OTP != "123456" {
		t.Fatalf("body = %+v", body)
	}
}
