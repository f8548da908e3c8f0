// internal/adapters/out/shopify/catalog.go
package shopify

import (
	"context"
	"strings"
	"time"

	catdom "grano/internal/domain/catalog"
)

const productFields = `
  id
  handle
  title
  description
  availableForSale
  featuredImage { url }
  variants(first: 1) {
    edges { node { id price { amount } } }
  }
`

const productsQuery = `
query products($first: Int!) {
  products(first: $first) {
    edges { node {` + productFields + `} }
  }
}`

const productByHandleQuery = `
query productByHandle($handle: String!) {
  product(handle: $handle) {` + productFields + `}
}`

const articlesQuery = `
query articles($first: Int!) {
  articles(first: $first, sortKey: PUBLISHED_AT, reverse: true) {
    edges {
      node {
        id
        handle
        title
        excerpt
        publishedAt
        image { url }
      }
    }
  }
}`

type gqlProduct struct {
	ID               string   `json:"id"`
	Handle           string   `json:"handle"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	AvailableForSale bool     `json:"availableForSale"`
	FeaturedImage    gqlImage `json:"featuredImage"`
	Variants         struct {
		Edges []struct {
			Node struct {
				ID    string   `json:"id"`
				Price gqlMoney `json:"price"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

func (g *gqlProduct) toDomain() *catdom.Product {
	if g == nil || strings.TrimSpace(g.ID) == "" {
		return nil
	}
	p := &catdom.Product{
		ID:          g.ID,
		Handle:      g.Handle,
		Title:       g.Title,
		Description: g.Description,
		ImageURL:    g.FeaturedImage.URL,
		Available:   g.AvailableForSale,
	}
	if len(g.Variants.Edges) > 0 {
		p.VariantID = g.Variants.Edges[0].Node.ID
		p.Price = g.Variants.Edges[0].Node.Price.Amount
	}
	return p
}

type gqlArticle struct {
	ID          string   `json:"id"`
	Handle      string   `json:"handle"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	PublishedAt string   `json:"publishedAt"`
	Image       gqlImage `json:"image"`
}

func (g gqlArticle) toDomain() catdom.Article {
	a := catdom.Article{
		ID:       g.ID,
		Handle:   g.Handle,
		Title:    g.Title,
		Excerpt:  g.Excerpt,
		ImageURL: g.Image.URL,
	}
	if t, err := time.Parse(time.RFC3339, g.PublishedAt); err == nil {
		a.PublishedAt = t
	}
	return a
}

// ListProducts returns the first limit products from the Storefront API.
func (c *Client) ListProducts(ctx context.Context, limit int) ([]catdom.Product, error) {
	var out struct {
		Products struct {
			Edges []struct {
				Node gqlProduct `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := c.doStorefront(ctx, productsQuery, map[string]any{"first": limit}, &out); err != nil {
		return nil, err
	}

	products := make([]catdom.Product, 0, len(out.Products.Edges))
	for _, e := range out.Products.Edges {
		if p := e.Node.toDomain(); p != nil {
			products = append(products, *p)
		}
	}
	return products, nil
}

// GetProductByHandle returns (nil, nil) when no product matches.
func (c *Client) GetProductByHandle(ctx context.Context, handle string) (*catdom.Product, error) {
	var out struct {
		Product *gqlProduct `json:"product"`
	}
	vars := map[string]any{"handle": strings.TrimSpace(handle)}
	if err := c.doStorefront(ctx, productByHandleQuery, vars, &out); err != nil {
		return nil, err
	}
	return out.Product.toDomain(), nil
}

// ListArticles returns the newest limit blog articles.
func (c *Client) ListArticles(ctx context.Context, limit int) ([]catdom.Article, error) {
	var out struct {
		Articles struct {
			Edges []struct {
				Node gqlArticle `json:"node"`
			} `json:"edges"`
		} `json:"articles"`
	}
	if err := c.doStorefront(ctx, articlesQuery, map[string]any{"first": limit}, &out); err != nil {
		return nil, err
	}

	articles := make([]catdom.Article, 0, len(out.Articles.Edges))
	for _, e := range out.Articles.Edges {
		articles = append(articles, e.Node.toDomain())
	}
	return articles, nil
}
