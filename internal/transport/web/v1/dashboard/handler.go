package dashboard

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/quota"
	"github.com/pb0420/trademonke/internal/transport/web/logx"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	v1 "github.com/pb0420/trademonke/internal/transport/web/v1"
)

type Handler struct {
	Log   *log.Logger
	Plans domain.PlansRepo
	Posts domain.PostsRepo
	Cache domain.Cache

	StatsTTL time.Duration // 2m
}

type stats struct {
	TotalPosts    int                 `json:"total_posts"`
	ActivePosts   int                 `json:"active_posts"`
	PendingPosts  int                 `json:"pending_posts"`
	RejectedPosts int                 `json:"rejected_posts"`
	TotalViews    int                 `json:"total_views"`
	CanCreatePost quota.Decision      `json:"canCreatePost"`
	Limits        *quota.LimitSummary `json:"limits"`
}

// Stats serves GET /v1/dashboard/stats: per-user aggregates plus the
// quota usage view.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	const op = "dashboard.stats"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	ckey := domain.CacheKeyDashboardStats(me.ID)
	if b, err := h.Cache.Get(r.Context(), ckey); err != nil {
		h.Log.Printf("cache get stats: %v", err)
	} else if b != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}

	mine, err := h.Posts.ListByUser(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	var st stats
	st.TotalPosts = len(mine)
	for _, p := range mine {
		st.TotalViews += p.ViewCount
		switch p.Status {
		case domain.PostApproved:
			if p.IsActive {
				st.ActivePosts++
			}
		case domain.PostPending:
			st.PendingPosts++
		case domain.PostRejected:
			st.RejectedPosts++
		}
	}

	var planPtr *domain.Plan
	plan, err := h.Plans.PlanByID(r.Context(), me.PlanID)
	if err == nil {
		planPtr = &plan
	} else if !errors.Is(err, domain.ErrNotFound) {
		logx.Error(h.Log, reqID, op, "plan lookup failed", err, "plan_id", me.PlanID)
	}
	st.CanCreatePost = quota.Evaluate(&me, planPtr)
	st.Limits = quota.LimitInfo(&me, planPtr)

	env := domain.OkData(st)
	if buf, err := json.Marshal(env); err == nil {
		_ = h.Cache.Set(r.Context(), ckey, buf, h.StatsTTL)
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID, "posts", st.TotalPosts)
	v1.WriteEnvelope(w, r, http.StatusOK, env)
}

// ListPosts serves GET /v1/dashboard/posts: the owner's listings in every
// status, newest first.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	const op = "dashboard.posts"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	mine, err := h.Posts.ListByUser(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if mine == nil {
		mine = []domain.PostWithDetails{}
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID, "count", len(mine))
	v1.WriteOKData(w, r, mine)
}
