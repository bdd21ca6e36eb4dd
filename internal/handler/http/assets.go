package http

import (
	"log/slog"
	"net/http"

	"github.com/dakoku-app/dakoku-backend-go/internal/service/assetcache"
)

type AssetHandler interface {
	Serve(w http.ResponseWriter, r *http.Request)
}

type assetHandlerImpl struct {
	manager *assetcache.Manager
}

func NewAssetHandler(manager *assetcache.Manager) AssetHandler {
	return &assetHandlerImpl{manager: manager}
}

// Serve runs every shell request through the cache manager's fetch policy.
func (h *assetHandlerImpl) Serve(w http.ResponseWriter, r *http.Request) {
	res, err := h.manager.Fetch(r.Context(), r.URL.Path)
	if err != nil {
		// Live fetch failed with no offline fallback for this resource.
		slog.Error("asset fetch failed", "path", r.URL.Path, "error", err)
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	if res.FromCache {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(res.Status)
	_, _ = w.Write(res.Body)
}
