// internal/adapters/out/otp/client.go
package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	uc "grano/internal/application/usecase"
)

// Client talks to the OTP delivery/verification vendor. The vendor is an
// opaque oracle: it sends the code, verifies it, and on first login creates
// its own store entry carrying the platform customer id.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendOTPRequest struct {
	Phone     string `json:"phone"`
	StoreName string `json:"storeName"`
}

type sendOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type loginRequest struct {
	Phone     string `json:"phone"`
	StoreName string `json:"storeName"`
	OTP       string `json:"otp"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    struct {
		NewAccount bool `json:"newAccount"`
		StoreEntry struct {
			ShopifyCustomerID string `json:"shopifyCustomerId"`
		} `json:"storeEntry"`
	} `json:"user"`
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("otp: client is not configured")
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("otp: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("otp: request failed: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode >= 500 {
		return fmt.Errorf("otp: vendor status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("otp: decode response: %w", err)
	}
	return nil
}

// SendOTP asks the vendor to deliver a code to phone.
func (c *Client) SendOTP(ctx context.Context, phone, storeName string) error {
	var out sendOTPResponse
	if err := c.post(ctx, "/send-otp", sendOTPRequest{Phone: phone, StoreName: storeName}, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("otp: send failed: %s", out.Message)
	}
	return nil
}

// Login verifies a code. Vendor rejection is reported through the result,
// not as an error; errors mean the call itself failed.
func (c *Client) Login(ctx context.Context, phone, storeName, code string) (uc.OTPLoginResult, error) {
	var out loginResponse
	if err := c.post(ctx, "/login", loginRequest{Phone: phone, StoreName: storeName, OTP: code}, &out); err != nil {
		return uc.OTPLoginResult{}, err
	}
	return uc.OTPLoginResult{
		Success:    out.Success,
		Message:    out.Message,
		CustomerID: strings.TrimSpace(out.User.StoreEntry.ShopifyCustomerID),
		NewAccount: out.User.NewAccount,
	}, nil
}
