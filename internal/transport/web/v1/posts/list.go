package posts

import (
	"encoding/json"
	"net/http"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/transport/web/logx"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	v1 "github.com/pb0420/trademonke/internal/transport/web/v1"
)

// List serves GET /v1/posts: the public feed with search, category,
// location, sort, radius and pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "posts.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	f := filterFromQuery(r)

	ckey := listCacheKey(f)
	if b, err := h.Cache.Get(r.Context(), ckey); err != nil {
		h.Log.Printf("cache get list: %v", err)
	} else if b != nil {
		w.Header().Set("Cache-Control", "private, max-age=60")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}

	page, err := h.Posts.ListPublic(r.Context(), f)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if page.Posts == nil {
		page.Posts = []domain.PostWithDetails{}
	}

	env := domain.OkData(page)
	if buf, err := json.Marshal(env); err == nil {
		_ = h.Cache.Set(r.Context(), ckey, buf, h.ListTTL)
	}

	logx.Info(h.Log, reqID, op, "ok", "total", page.Total, "page", page.Page)
	v1.WriteEnvelope(w, r, http.StatusOK, env)
}
