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

// Update serves PUT /v1/posts/{id}. Owner-only; status and counters are
// untouched here.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "posts.update"
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

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	if !domain.ValidPostTitle(req.Title) ||
		!domain.ValidPostDescription(req.Description) ||
		!domain.ValidPrice(req.Price) {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	existing, err := h.Posts.PostByID(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}
	if err != nil {
		logx.Error(h.Log, reqID, op, "fetch failed", err, "post_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if existing.UserID != me.ID && !me.IsAdmin {
		v1.WriteDomainError(w, r, domain.ErrForbidden)
		return
	}

	privacy := domain.Privacy(req.Privacy)
	if privacy != domain.PrivacyPrivate {
		privacy = domain.PrivacyPublic
	}

	p, err := h.Posts.UpdatePost(r.Context(), domain.Post{
		ID:               id,
		UserID:           existing.UserID,
		Title:            req.Title,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		Price:            req.Price,
		Location:         req.Location,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Privacy:          privacy,
		ShowBusinessName: req.ShowBusinessName,
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "update failed", err, "post_id", id)
		v1.WriteDomainError(w, r, err)
		return
	}

	if err := h.Cache.Clear(r.Context()); err != nil {
		h.Log.Printf("cache clear: %v", err)
	}

	logx.Info(h.Log, reqID, op, "ok", "post_id", p.ID)
	v1.WriteOKResponse(w, r, p)
}
