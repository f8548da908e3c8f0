// internal/platform/di/store/container.go
package store

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"grano/internal/adapters/in/http/middleware"
	storehttp "grano/internal/adapters/in/http/store"
	storeHandler "grano/internal/adapters/in/http/store/handler"
	outdb "grano/internal/adapters/out/db"
	outfs "grano/internal/adapters/out/firestore"
	gcso "grano/internal/adapters/out/gcs"
	"grano/internal/adapters/out/mail"
	"grano/internal/adapters/out/otp"
	"grano/internal/adapters/out/shopify"
	usecase "grano/internal/application/usecase"
	linkdom "grano/internal/domain/cartlink"
	shared "grano/internal/platform/di/shared"
)

// Container is the storefront DI container.
// Pure DI: build deps only. No routing branching, no reflection tricks.
type Container struct {
	Infra *shared.Infra

	// Usecases
	CartResolutionUC *usecase.CartResolutionUsecase
	AuthUC           *usecase.AuthUsecase
	CheckoutUC       *usecase.CheckoutUsecase
	CatalogUC        *usecase.CatalogUsecase
	SitemapUC        *usecase.SitemapUsecase

	// Outbound clients (kept for handlers that need them directly)
	Shopify  *shopify.Client
	LinkRepo linkdom.Repository
}

func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil {
		var err error
		infra, err = shared.NewInfra(ctx)
		if err != nil {
			return nil, err
		}
	}
	if infra.Config == nil {
		return nil, errors.New("di.store: shared infra config is nil")
	}
	cfg := infra.Config

	c := &Container{Infra: infra}

	// --------------------------------------------------------
	// Secrets (env value wins; Secret Manager is the fallback)
	// --------------------------------------------------------
	adminToken := strings.TrimSpace(cfg.AdminToken)
	if adminToken == "" && cfg.AdminTokenSecretName != "" {
		v, err := accessSecret(ctx, infra.SecretManager, infra.ProjectID, cfg.AdminTokenSecretName)
		if err != nil {
			log.Printf("[di.store] WARN: admin token secret resolve failed: %v (admin operations disabled)", err)
		} else {
			adminToken = v
		}
	}

	otpKey := strings.TrimSpace(cfg.OTPAPIKey)
	if otpKey == "" && cfg.OTPKeySecretName != "" {
		v, err := accessSecret(ctx, infra.SecretManager, infra.ProjectID, cfg.OTPKeySecretName)
		if err != nil {
			log.Printf("[di.store] WARN: otp key secret resolve failed: %v (otp login disabled)", err)
		} else {
			otpKey = v
		}
	}

	// --------------------------------------------------------
	// Outbound clients
	// --------------------------------------------------------
	c.Shopify = shopify.NewClient(cfg.StoreDomain, cfg.APIVersion, cfg.StorefrontToken, adminToken)
	otpClient := otp.NewClient(cfg.OTPBaseURL, otpKey)

	// Cart link repository: Firestore by default, Postgres when configured.
	switch {
	case infra.Firestore != nil:
		c.LinkRepo = outfs.NewCartLinkRepositoryFS(infra.Firestore)
	case infra.Postgres != nil:
		c.LinkRepo = outdb.NewCartLinkRepositoryPG(infra.Postgres.Client)
	default:
		return nil, errors.New("di.store: no cart link store available (firestore and postgres both nil)")
	}

	// --------------------------------------------------------
	// Usecases
	// --------------------------------------------------------
	c.CartResolutionUC = usecase.NewCartResolutionUsecase(c.Shopify, c.LinkRepo)
	c.AuthUC = usecase.NewAuthUsecase(otpClient, c.Shopify, c.CartResolutionUC)

	var mailer usecase.EmailSender
	if strings.TrimSpace(cfg.SendGridAPIKey) != "" {
		mailer = mail.NewSendGridClient(cfg.SendGridAPIKey, "")
	} else {
		log.Printf("[di.store] WARN: SENDGRID_API_KEY empty (order confirmation mail disabled)")
	}
	c.CheckoutUC = usecase.NewCheckoutUsecase(c.Shopify, c.Shopify, mailer, cfg.MailFrom)

	c.CatalogUC = usecase.NewCatalogUsecase(c.Shopify)

	if infra.GCS != nil && strings.TrimSpace(cfg.GCSBucket) != "" {
		publisher := gcso.NewSitemapPublisherGCS(infra.GCS, cfg.GCSBucket)
		c.SitemapUC = usecase.NewSitemapUsecase(c.Shopify, publisher, cfg.SiteBaseURL)
	} else {
		log.Printf("[di.store] WARN: sitemap publishing not configured (GCS client or GCS_BUCKET missing)")
	}

	return c, nil
}

// Handler assembles the full HTTP surface: routes plus the middleware chain.
func (c *Container) Handler() http.Handler {
	mux := http.NewServeMux()

	var sitemap http.Handler
	if c.SitemapUC != nil {
		sitemap = storeHandler.NewSitemapHandler(c.SitemapUC)
		staff := &middleware.StaffAuth{FirebaseAuth: c.Infra.FirebaseAuth}
		sitemap = staff.Handler(sitemap)
	}

	storehttp.Register(mux, storehttp.Deps{
		Cart:     storeHandler.NewCartHandler(c.CartResolutionUC),
		Auth:     storeHandler.NewAuthHandler(c.AuthUC),
		Checkout: storeHandler.NewCheckoutHandler(c.CheckoutUC),
		Catalog:  storeHandler.NewCatalogHandler(c.CatalogUC),
		Sitemap:  sitemap,
	})

	var origin string
	if c.Infra != nil && c.Infra.Config != nil {
		origin = c.Infra.Config.AllowedOrigin
	}

	// CORS outermost so even panic responses carry the headers.
	return middleware.CORS(origin)(middleware.Recover(mux))
}
