package posts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/transport/web/logx"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	v1 "github.com/pb0420/trademonke/internal/transport/web/v1"
)

// GetOne serves GET /v1/posts/{id}. Pending or private listings are only
// visible to their owner.
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request) {
	const op = "posts.getone"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := parsePostID(r)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	me, authed := domain.UserFromCtx(r.Context())

	ckey := domain.CacheKeyPostDetail(id)
	// only public views are ever cached, so a hit is safe for any caller
	if b, err := h.Cache.Get(r.Context(), ckey); err != nil {
		h.Log.Printf("cache get detail: %v", err)
	} else if b != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}

	d, err := h.Posts.PostByID(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}
	if err != nil {
		logx.Error(h.Log, reqID, op, "fetch failed", err, "post_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	visible := d.Status == domain.PostApproved &&
		d.Privacy == domain.PrivacyPublic && d.IsActive
	owner := authed && me.ID == d.UserID
	if !visible && !owner && !(authed && me.IsAdmin) {
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}

	env := domain.OkData(d)
	if visible {
		if buf, err := json.Marshal(env); err == nil {
			_ = h.Cache.Set(r.Context(), ckey, buf, h.DetailTTL)
		}
	}

	logx.Info(h.Log, reqID, op, "ok", "post_id", id)
	v1.WriteEnvelope(w, r, http.StatusOK, env)
}
