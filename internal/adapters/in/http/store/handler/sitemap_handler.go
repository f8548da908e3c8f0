// internal/adapters/in/http/store/handler/sitemap_handler.go
package storeHandler

import (
	"log"
	"net/http"

	usecase "grano/internal/application/usecase"
)

// SitemapHandler triggers sitemap rebuilds. Staff-only; the auth middleware
// sits in front of it in the router chain.
type SitemapHandler struct {
	uc *usecase.SitemapUsecase
}

func NewSitemapHandler(uc *usecase.SitemapUsecase) http.Handler {
	return &SitemapHandler{uc: uc}
}

func (h *SitemapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "sitemap handler is not configured")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	n, err := h.uc.Rebuild(r.Context())
	if err != nil {
		log.Printf("[store_sitemap_handler] rebuild failed err=%v", err)
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "urls": n})
}
