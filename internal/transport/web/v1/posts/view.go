package posts

import (
	"errors"
	"net/http"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/transport/web/logx"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	v1 "github.com/pb0420/trademonke/internal/transport/web/v1"
)

// View serves POST /v1/posts/{id}/view: a fire-and-forget view counter
// bump. The cached detail keeps its slightly stale count until TTL.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	const op = "posts.view"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := parsePostID(r)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	if err := h.Posts.IncrementViewCount(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			v1.WriteDomainError(w, r, domain.ErrNotFound)
			return
		}
		logx.Error(h.Log, reqID, op, "increment failed", err, "post_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	v1.WriteOKData(w, r, "ok")
}
