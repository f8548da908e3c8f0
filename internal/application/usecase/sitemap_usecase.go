// internal/application/usecase/sitemap_usecase.go
package usecase

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	ErrSitemapCatalogMissing   = errors.New("sitemap: catalog gateway is not configured")
	ErrSitemapPublisherMissing = errors.New("sitemap: publisher is not configured")
	ErrSitemapBaseURLEmpty     = errors.New("sitemap: base url is empty")
)

const sitemapFetchLimit = 250

// SitemapPublisher stores the rendered sitemap where the web tier serves it.
type SitemapPublisher interface {
	Publish(ctx context.Context, name string, contentType string, body []byte) error
}

// SitemapUsecase renders sitemap.xml from the platform's product and article
// handles and publishes it. Triggered from the staff ops endpoint.
type SitemapUsecase struct {
	catalog   CatalogGateway
	publisher SitemapPublisher
	baseURL   string
	clock     Clock
}

func NewSitemapUsecase(catalog CatalogGateway, publisher SitemapPublisher, baseURL string) *SitemapUsecase {
	return &SitemapUsecase{
		catalog:   catalog,
		publisher: publisher,
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		clock:     systemClock{},
	}
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Rebuild fetches handles, renders the sitemap and publishes it as
// sitemap.xml. Returns the number of URLs written.
func (u *SitemapUsecase) Rebuild(ctx context.Context) (int, error) {
	if u == nil || u.catalog == nil {
		return 0, ErrSitemapCatalogMissing
	}
	if u.publisher == nil {
		return 0, ErrSitemapPublisherMissing
	}
	if u.baseURL == "" {
		return 0, ErrSitemapBaseURLEmpty
	}

	products, err := u.catalog.ListProducts(ctx, sitemapFetchLimit)
	if err != nil {
		return 0, fmt.Errorf("sitemap: list products failed: %w", err)
	}
	articles, err := u.catalog.ListArticles(ctx, sitemapFetchLimit)
	if err != nil {
		return 0, fmt.Errorf("sitemap: list articles failed: %w", err)
	}

	now := u.clock.Now().UTC().Format(time.RFC3339)

	set := sitemapURLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, sitemapURL{Loc: u.baseURL + "/", LastMod: now})
	for _, p := range products {
		h := strings.TrimSpace(p.Handle)
		if h == "" {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{Loc: u.baseURL + "/products/" + h})
	}
	for _, a := range articles {
		h := strings.TrimSpace(a.Handle)
		if h == "" {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{Loc: u.baseURL + "/blog/" + h})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("sitemap: marshal failed: %w", err)
	}
	body = append([]byte(xml.Header), body...)

	if err := u.publisher.Publish(ctx, "sitemap.xml", "application/xml", body); err != nil {
		return 0, fmt.Errorf("sitemap: publish failed: %w", err)
	}

	log.Printf("[sitemap_uc] OK: sitemap published urls=%d bytes=%d", len(set.URLs), len(body))
	return len(set.URLs), nil
}
