// internal/adapters/in/http/store/router.go
package store

import (
	"log"
	"net/http"
)

// Deps is the buyer-facing (store) handler set.
type Deps struct {
	Cart     http.Handler
	Auth     http.Handler
	Checkout http.Handler
	Catalog  http.Handler

	// Sitemap must arrive already wrapped by the staff auth middleware.
	Sitemap http.Handler
}

// handleSafe registers pattern with h.
// If h is nil, it logs and registers NotFoundHandler instead (so the service
// won't crash on a partially wired container).
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		log.Printf("[store.router] WARN: nil handler: %s pattern=%s (registering NotFoundHandler)", name, pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers the storefront routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	// cart
	handleSafe(mux, "/store/cart/get", deps.Cart, "Cart")

	// auth
	handleSafe(mux, "/store/auth/request-otp", deps.Auth, "Auth")
	handleSafe(mux, "/store/auth/verify-otp", deps.Auth, "Auth")

	// checkout
	handleSafe(mux, "/store/checkout/shipping-rates", deps.Checkout, "Checkout")
	handleSafe(mux, "/store/checkout/order", deps.Checkout, "Checkout")

	// catalog / blog
	handleSafe(mux, "/store/catalog/products", deps.Catalog, "Catalog")
	handleSafe(mux, "/store/catalog/products/", deps.Catalog, "Catalog")
	handleSafe(mux, "/store/blog/articles", deps.Catalog, "Catalog")

	// staff ops
	handleSafe(mux, "/ops/sitemap/rebuild", deps.Sitemap, "Sitemap")

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
}
