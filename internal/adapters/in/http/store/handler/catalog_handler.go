// internal/adapters/in/http/store/handler/catalog_handler.go
package storeHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	usecase "grano/internal/application/usecase"
)

// CatalogHandler serves product and blog reads. Everything here is a thin
// pass-through to the platform.
type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) http.Handler {
	return &CatalogHandler{uc: uc}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "catalog handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	limit := parseIntDefault(r.URL.Query().Get("limit"), 0)

	switch {
	case strings.HasSuffix(path, "/catalog/products"):
		products, err := h.uc.ListProducts(r.Context(), limit)
		if err != nil {
			log.Printf("[store_catalog_handler] list products failed err=%v", err)
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})

	case strings.Contains(path, "/catalog/products/"):
		handle := path[strings.LastIndex(path, "/")+1:]
		p, err := h.uc.GetProduct(r.Context(), handle)
		if err != nil {
			if errors.Is(err, usecase.ErrCatalogNotFound) {
				writeErr(w, http.StatusNotFound, "product not found")
				return
			}
			if errors.Is(err, usecase.ErrCatalogHandleEmpty) {
				badRequest(w, err.Error())
				return
			}
			log.Printf("[store_catalog_handler] get product failed handle=%s err=%v", handle, err)
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": p})

	case strings.HasSuffix(path, "/blog/articles"):
		articles, err := h.uc.ListArticles(r.Context(), limit)
		if err != nil {
			log.Printf("[store_catalog_handler] list articles failed err=%v", err)
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"articles": articles})

	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}
