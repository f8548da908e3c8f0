// internal/domain/catalog/entity.go
package catalog

import "time"

// Product is a storefront view of a platform product. Prices and images are
// whatever the platform returns; nothing here is recalculated locally.
type Product struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Price       string `json:"price"`
	// VariantID is the default variant used by add-to-cart.
	VariantID string `json:"variantId"`
	Available bool   `json:"available"`
}

// Article is one blog entry from the platform's blog.
type Article struct {
	ID          string    `json:"id"`
	Handle      string    `json:"handle"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}
