// internal/application/usecase/catalog_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	catdom "grano/internal/domain/catalog"
)

var (
	ErrCatalogGatewayMissing = errors.New("catalog: catalog gateway is not configured")
	ErrCatalogHandleEmpty    = errors.New("catalog: handle is empty")
	ErrCatalogNotFound       = errors.New("catalog: not found")
)

const defaultCatalogPageSize = 24

// CatalogGateway is the outbound port for catalog/blog reads on the platform.
// GetProductByHandle returns (nil, nil) when no product matches.
type CatalogGateway interface {
	ListProducts(ctx context.Context, limit int) ([]catdom.Product, error)
	GetProductByHandle(ctx context.Context, handle string) (*catdom.Product, error)
	ListArticles(ctx context.Context, limit int) ([]catdom.Article, error)
}

// CatalogUsecase is a thin pass-through over the platform's catalog; the
// storefront renders what the platform says, no local catalog state exists.
type CatalogUsecase struct {
	gw CatalogGateway
}

func NewCatalogUsecase(gw CatalogGateway) *CatalogUsecase {
	return &CatalogUsecase{gw: gw}
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, limit int) ([]catdom.Product, error) {
	if u == nil || u.gw == nil {
		return nil, ErrCatalogGatewayMissing
	}
	if limit <= 0 || limit > 250 {
		limit = defaultCatalogPageSize
	}
	return u.gw.ListProducts(ctx, limit)
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, handle string) (*catdom.Product, error) {
	if u == nil || u.gw == nil {
		return nil, ErrCatalogGatewayMissing
	}
	h := strings.TrimSpace(handle)
	if h == "" {
		return nil, ErrCatalogHandleEmpty
	}
	p, err := u.gw.GetProductByHandle(ctx, h)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrCatalogNotFound
	}
	return p, nil
}

func (u *CatalogUsecase) ListArticles(ctx context.Context, limit int) ([]catdom.Article, error) {
	if u == nil || u.gw == nil {
		return nil, ErrCatalogGatewayMissing
	}
	if limit <= 0 || limit > 250 {
		limit = defaultCatalogPageSize
	}
	return u.gw.ListArticles(ctx, limit)
}
