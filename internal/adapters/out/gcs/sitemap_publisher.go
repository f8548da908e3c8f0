// internal/adapters/out/gcs/sitemap_publisher.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/storage"
)

// SitemapPublisherGCS writes rendered sitemaps to a GCS bucket the web tier
// serves statics from.
type SitemapPublisherGCS struct {
	Client *storage.Client
	Bucket string
}

func NewSitemapPublisherGCS(client *storage.Client, bucket string) *SitemapPublisherGCS {
	return &SitemapPublisherGCS{Client: client, Bucket: strings.TrimSpace(bucket)}
}

// Publish overwrites the object; sitemaps are always full rewrites.
func (p *SitemapPublisherGCS) Publish(ctx context.Context, name string, contentType string, body []byte) error {
	if p == nil || p.Client == nil {
		return errors.New("sitemap_publisher_gcs: storage client is nil")
	}
	if p.Bucket == "" {
		return errors.New("sitemap_publisher_gcs: bucket is empty")
	}
	obj := strings.TrimSpace(name)
	if obj == "" {
		return errors.New("sitemap_publisher_gcs: object name is empty")
	}

	w := p.Client.Bucket(p.Bucket).Object(obj).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=300"

	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("sitemap_publisher_gcs: write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("sitemap_publisher_gcs: close failed: %w", err)
	}

	log.Printf("[sitemap_publisher_gcs] OK: wrote gs://%s/%s bytes=%d", p.Bucket, obj, len(body))
	return nil
}
