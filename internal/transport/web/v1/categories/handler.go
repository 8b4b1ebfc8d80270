package categories

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/transport/web/logx"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	v1 "github.com/pb0420/trademonke/internal/transport/web/v1"
)

type Handler struct {
	Log        *log.Logger
	Categories domain.CategoriesRepo
	Cache      domain.Cache

	TTL time.Duration // reference data, 30m by default
}

// List serves GET /v1/categories. Reference data: cached as the full
// marshaled envelope so hits skip encoding entirely.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "categories.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	ckey := domain.CacheKeyCategories()
	if b, err := h.Cache.Get(r.Context(), ckey); err != nil {
		h.Log.Printf("cache get categories: %v", err)
	} else if b != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}

	cats, err := h.Categories.Categories(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}

	env := domain.OkData(cats)
	if buf, err := json.Marshal(env); err == nil {
		_ = h.Cache.Set(r.Context(), ckey, buf, h.TTL)
	}

	logx.Info(h.Log, reqID, op, "ok", "count", len(cats))
	v1.WriteEnvelope(w, r, http.StatusOK, env)
}
