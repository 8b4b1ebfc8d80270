package plans

import (
	"errors"
	"log"
	"net/http"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/quota"
	"github.com/pb0420/trademonke/internal/transport/web/logx"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	v1 "github.com/pb0420/trademonke/internal/transport/web/v1"
)

type Handler struct {
	Log   *log.Logger
	Plans domain.PlansRepo
}

// List serves GET /v1/plans: the public pricing table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "plans.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	ps, err := h.Plans.Plans(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if ps == nil {
		ps = []domain.Plan{}
	}

	logx.Info(h.Log, reqID, op, "ok", "count", len(ps))
	v1.WriteOKData(w, r, ps)
}

// Current serves GET /v1/plans/me: the caller's plan, the create-post
// verdict, and usage against the plan limits. The verdict is returned
// verbatim so the client can gate its UI on it.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	const op = "plans.current"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	// an unresolved plan is a quota denial, not a server error
	var planPtr *domain.Plan
	plan, err := h.Plans.PlanByID(r.Context(), me.PlanID)
	if err == nil {
		planPtr = &plan
	} else if !errors.Is(err, domain.ErrNotFound) {
		logx.Error(h.Log, reqID, op, "plan lookup failed", err, "plan_id", me.PlanID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	out := struct {
		Plan          *domain.Plan        `json:"plan"`
		CanCreatePost quota.Decision      `json:"canCreatePost"`
		Limits        *quota.LimitSummary `json:"limits"`
	}{
		Plan:          planPtr,
		CanCreatePost: quota.Evaluate(&me, planPtr),
		Limits:        quota.LimitInfo(&me, planPtr),
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID, "plan_id", me.PlanID)
	v1.WriteOKData(w, r, out)
}
