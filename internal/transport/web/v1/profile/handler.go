package profile

import (
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/transport/web/logx"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	v1 "github.com/pb0420/trademonke/internal/transport/web/v1"
)

type Handler struct {
	Log     *log.Logger
	Users   domain.UsersRepo
	Posts   domain.PostsRepo
	Ratings domain.ReviewsRepo
}

type profileOut struct {
	User    domain.UserSummary `json:"user"`
	Rating  float64            `json:"rating"`
	Reviews int                `json:"reviews_count"`
}

func parseUserID(r *http.Request) (domain.UserID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return domain.UserID{}, domain.ErrBadParams
	}
	return id, nil
}

// Get serves GET /v1/profile/{id}: the public summary, never the account
// record itself.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "profile.get"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := parseUserID(r)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	u, err := h.Users.UserByID(r.Context(), id)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	avg, count, err := h.Ratings.RatingSummary(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "rating summary failed", err, "user_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	name := u.Name
	if name == "" {
		name = "Anonymous"
	}
	out := profileOut{
		User: domain.UserSummary{
			ID:           u.ID,
			Name:         name,
			BusinessName: u.BusinessName,
			IsVerified:   u.IsVerified,
			AvatarURL:    u.AvatarURL,
		},
		Rating:  avg,
		Reviews: count,
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", id)
	v1.WriteOKData(w, r, out)
}

// ListPosts serves GET /v1/profile/{id}/posts: only the publicly visible
// listings of that user.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	const op = "profile.posts"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := parseUserID(r)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	all, err := h.Posts.ListByUser(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err, "user_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	visible := make([]domain.PostWithDetails, 0, len(all))
	for _, p := range all {
		if p.Status == domain.PostApproved && p.Privacy == domain.PrivacyPublic && p.IsActive {
			visible = append(visible, p)
		}
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", id, "count", len(visible))
	v1.WriteOKData(w, r, visible)
}

// Reviews serves GET /v1/profile/{id}/reviews.
func (h *Handler) Reviews(w http.ResponseWriter, r *http.Request) {
	const op = "profile.reviews"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := parseUserID(r)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	revs, err := h.Ratings.ReviewsByReviewee(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err, "user_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if revs == nil {
		revs = []domain.Review{}
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", id, "count", len(revs))
	v1.WriteOKData(w, r, revs)
}
