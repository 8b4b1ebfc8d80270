// Package quota decides whether a user may create a new listing right now,
// given their plan limits and current usage counters. Pure functions over
// already-fetched records: no I/O, no locking, safe from any number of
// concurrent requests. Denials are values with reasons, never errors.
package quota

import (
	"fmt"

	"github.com/pb0420/trademonke/internal/domain"
)

type ReasonCode string

const (
	ReasonUserNotFound          ReasonCode = "user_not_found"
	ReasonPlanNotFound          ReasonCode = "plan_not_found"
	ReasonSubscriptionExpired   ReasonCode = "subscription_expired"
	ReasonSubscriptionCancelled ReasonCode = "subscription_cancelled"
	ReasonActiveLimitReached    ReasonCode = "active_limit_reached"
	ReasonTotalLimitReached     ReasonCode = "total_limit_reached"
)

// Decision is the quota verdict for a single create attempt. Message is
// human-readable and set iff CanCreate is false.
type Decision struct {
	CanCreate bool       `json:"canCreate"`
	Reason    ReasonCode `json:"reasonCode,omitempty"`
	Message   string     `json:"reason,omitempty"`
}

func allow() Decision { return Decision{CanCreate: true} }

func deny(code ReasonCode, msg string) Decision {
	return Decision{CanCreate: false, Reason: code, Message: msg}
}

// Evaluate applies the rules in a fixed order; the first match wins.
// The ordering is a deliberate tie-break: a user who is both expired and
// over the active limit is reported as expired. nil user/plan are denials,
// not errors: permission checks degrade to "deny with reason".
func Evaluate(u *domain.User, p *domain.Plan) Decision {
	if u == nil {
		return deny(ReasonUserNotFound, "User not found")
	}
	if p == nil {
		return deny(ReasonPlanNotFound, "No plan found")
	}
	if u.SubscriptionStatus == domain.SubscriptionExpired {
		return deny(ReasonSubscriptionExpired, "Subscription expired")
	}
	if u.SubscriptionStatus == domain.SubscriptionCancelled {
		return deny(ReasonSubscriptionCancelled, "Subscription cancelled")
	}
	if p.MaxActivePosts != nil && u.ActivePostsCount >= *p.MaxActivePosts {
		return deny(ReasonActiveLimitReached,
			fmt.Sprintf("Maximum active posts reached (%d)", *p.MaxActivePosts))
	}
	if p.MaxTotalPosts != nil && u.PostsCount >= *p.MaxTotalPosts {
		return deny(ReasonTotalLimitReached,
			fmt.Sprintf("Maximum total posts reached (%d)", *p.MaxTotalPosts))
	}
	return allow()
}

// LimitSummary is the usage-vs-limits view rendered on the dashboard and
// plans pages. Nil limits mean unbounded, distinct from a limit of zero.
type LimitSummary struct {
	ActivePosts        int                       `json:"activePosts"`
	MaxActivePosts     *int                      `json:"maxActivePosts"`
	TotalPosts         int                       `json:"totalPosts"`
	MaxTotalPosts      *int                      `json:"maxTotalPosts"`
	PlanName           string                    `json:"planName"`
	SubscriptionStatus domain.SubscriptionStatus `json:"subscriptionStatus"`
}

// LimitInfo returns nil when user or plan cannot be resolved.
func LimitInfo(u *domain.User, p *domain.Plan) *LimitSummary {
	if u == nil || p == nil {
		return nil
	}
	return &LimitSummary{
		ActivePosts:        u.ActivePostsCount,
		MaxActivePosts:     p.MaxActivePosts,
		TotalPosts:         u.PostsCount,
		MaxTotalPosts:      p.MaxTotalPosts,
		PlanName:           p.Name,
		SubscriptionStatus: u.SubscriptionStatus,
	}
}

// HoldForReview is the verification gate, kept separate from the quota
// decision on purpose: a verified user can still be quota-blocked and a
// quota-allowed user can still be held for moderation. Creation itself is
// never blocked on verification; unverified users' posts stay pending
// until moderation clears them.
func HoldForReview(u *domain.User) bool {
	return u == nil || !u.IsVerified
}
