package posts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/quota"
	"github.com/pb0420/trademonke/internal/transport/web/logx"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	v1 "github.com/pb0420/trademonke/internal/transport/web/v1"
)

type createRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	CategoryID       string   `json:"category_id"`
	Price            float64  `json:"price"`
	Location         string   `json:"location"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	Privacy          string   `json:"privacy"`
	ShowBusinessName bool     `json:"show_business_name"`
}

type createResponse struct {
	Post domain.Post `json:"post"`
	// Pending until moderation clears it; unverified owners are flagged so
	// the client can explain the hold.
	HeldForReview bool `json:"held_for_review"`
}

// Create serves POST /v1/posts. The quota policy is consulted first; a
// denial is a 403 whose envelope carries the decision with its reason.
// Verification never blocks creation; the listing just starts pending.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "posts.create"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
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
		logx.Error(h.Log, reqID, op, "validation failed", domain.ErrBadParams, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// quota check against live counters
	var planPtr *domain.Plan
	plan, err := h.Plans.PlanByID(r.Context(), me.PlanID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// planPtr stays nil: the policy denies with plan_not_found
	case err != nil:
		logx.Error(h.Log, reqID, op, "plan lookup failed", err, "plan_id", me.PlanID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	default:
		planPtr = &plan
	}

	decision := quota.Evaluate(&me, planPtr)
	if !decision.CanCreate {
		logx.Info(h.Log, reqID, op, "quota denied",
			"user_id", me.ID, "reason", decision.Reason)
		env := domain.Fail(domain.ErrCodeQuotaExceeded, decision.Message)
		env.Data = decision
		v1.WriteEnvelope(w, r, http.StatusForbidden, env)
		return
	}

	privacy := domain.Privacy(req.Privacy)
	if privacy != domain.PrivacyPrivate {
		privacy = domain.PrivacyPublic
	}

	p, err := h.Posts.CreatePost(r.Context(), domain.Post{
		UserID:           me.ID,
		Title:            req.Title,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		Price:            req.Price,
		Location:         req.Location,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Privacy:          privacy,
		Status:           domain.PostPending,
		IsActive:         true,
		ShowBusinessName: req.ShowBusinessName,
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "create failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	if err := h.Users.AdjustPostCounters(r.Context(), me.ID, 1, 1); err != nil {
		logx.Error(h.Log, reqID, op, "counter bump failed", err, "user_id", me.ID)
	}

	// drop every cached page so the feed cannot serve stale lists
	if err := h.Cache.Clear(r.Context()); err != nil {
		h.Log.Printf("cache clear: %v", err)
	}

	logx.Info(h.Log, reqID, op, "ok", "post_id", p.ID, "user_id", me.ID)
	v1.WriteOKResponse(w, r, createResponse{
		Post:          p,
		HeldForReview: quota.HoldForReview(&me),
	})
}
