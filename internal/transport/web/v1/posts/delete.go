package posts

import (
	"errors"
	"net/http"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/transport/web/logx"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	v1 "github.com/pb0420/trademonke/internal/transport/web/v1"
)

type deleteResponse struct {
	Deleted string `json:"deleted"`
}

// Delete serves DELETE /v1/posts/{id}. Owner-only. Deleting frees the
// active slot immediately, but the lifetime total keeps counting removed
// listings, so the total-posts limit cannot be reset by deleting.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "posts.delete"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	id, err := parsePostID(r)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	p, err := h.Posts.DeletePost(r.Context(), id, me.ID)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
		v1.WriteDomainError(w, r, err)
		return
	}
	if err != nil {
		logx.Error(h.Log, reqID, op, "delete failed", err, "post_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	if p.IsActive {
		if err := h.Users.AdjustPostCounters(r.Context(), me.ID, 0, -1); err != nil {
			logx.Error(h.Log, reqID, op, "counter drop failed", err, "user_id", me.ID)
		}
	}

	if err := h.Cache.Clear(r.Context()); err != nil {
		h.Log.Printf("cache clear: %v", err)
	}

	logx.Info(h.Log, reqID, op, "ok", "post_id", id, "user_id", me.ID)
	v1.WriteOKResponse(w, r, deleteResponse{Deleted: id.String()})
}
