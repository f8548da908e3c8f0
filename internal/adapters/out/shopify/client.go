// internal/adapters/out/shopify/client.go
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the commerce platform's Storefront and Admin GraphQL APIs.
//
// Cart operations go through the Storefront API (public token); customer
// search/update, metafields and draft orders go through the Admin API
// (private token). One Client serves both.
type Client struct {
	storeDomain     string
	apiVersion      string
	storefrontToken string
	adminToken      string
	client          *http.Client

	// testBaseURL overrides the https://<domain> prefix in tests.
	testBaseURL string
}

// NewClient builds a client for one store.
// storeDomain example: "grano-foods.myshopify.com".
func NewClient(storeDomain, apiVersion, storefrontToken, adminToken string) *Client {
	v := strings.TrimSpace(apiVersion)
	if v == "" {
		v = "2024-10"
	}
	return &Client{
		storeDomain:     strings.TrimSpace(storeDomain),
		apiVersion:      v,
		storefrontToken: strings.TrimSpace(storefrontToken),
		adminToken:      strings.TrimSpace(adminToken),
		client:          &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) storefrontURL() string {
	if c.testBaseURL != "" {
		return fmt.Sprintf("%s/api/%s/graphql.json", c.testBaseURL, c.apiVersion)
	}
	return fmt.Sprintf("https://%s/api/%s/graphql.json", c.storeDomain, c.apiVersion)
}

func (c *Client) adminURL() string {
	if c.testBaseURL != "" {
		return fmt.Sprintf("%s/admin/api/%s/graphql.json", c.testBaseURL, c.apiVersion)
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.storeDomain, c.apiVersion)
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// doStorefront posts a Storefront API query and decodes data into out.
func (c *Client) doStorefront(ctx context.Context, query string, variables map[string]any, out any) error {
	if c == nil {
		return errors.New("shopify: client is nil")
	}
	if c.storefrontToken == "" {
		return errors.New("shopify: storefront token is empty")
	}
	headers := map[string]string{"X-Shopify-Storefront-Access-Token": c.storefrontToken}
	return c.do(ctx, c.storefrontURL(), headers, query, variables, out)
}

// doAdmin posts an Admin API query and decodes data into out.
func (c *Client) doAdmin(ctx context.Context, query string, variables map[string]any, out any) error {
	if c == nil {
		return errors.New("shopify: client is nil")
	}
	if c.adminToken == "" {
		return errors.New("shopify: admin token is empty")
	}
	headers := map[string]string{"X-Shopify-Access-Token": c.adminToken}
	return c.do(ctx, c.adminURL(), headers, query, variables, out)
}

func (c *Client) do(ctx context.Context, url string, headers map[string]string, query string, variables map[string]any, out any) error {
	if c.storeDomain == "" {
		return errors.New("shopify: store domain is empty")
	}

	b, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("shopify: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("shopify: request failed: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("shopify: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var env gqlEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("shopify: decode envelope: %w", err)
	}
	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("shopify: graphql errors: %s", strings.Join(msgs, "; "))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("shopify: decode data: %w", err)
	}
	return nil
}

// SetBaseURLForTest points both endpoints at a test server.
// The url replaces the https://<domain> prefix; the API paths stay intact.
func (c *Client) SetBaseURLForTest(baseURL string) {
	c.testBaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
}
