package quota_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/quota"
)

func intp(n int) *int { return &n }

func freePlan() *domain.Plan {
	return &domain.Plan{
		ID: "free", Name: "Free", Currency: "AUD",
		MaxActivePosts: intp(1), MaxTotalPosts: intp(5),
	}
}

func premiumPlan() *domain.Plan {
	return &domain.Plan{ID: "premium", Name: "Premium", Currency: "AUD"}
}

func activeUser(active, total int) *domain.User {
	return &domain.User{
		Name:               "John Smith",
		PlanID:             "free",
		SubscriptionStatus: domain.SubscriptionActive,
		ActivePostsCount:   active,
		PostsCount:         total,
	}
}

func TestEvaluate_UserNotFound(t *testing.T) {
	d := quota.Evaluate(nil, freePlan())
	require.False(t, d.CanCreate)
	assert.Equal(t, quota.ReasonUserNotFound, d.Reason)
	assert.Equal(t, "User not found", d.Message)
}

func TestEvaluate_PlanNotFound(t *testing.T) {
	d := quota.Evaluate(activeUser(0, 0), nil)
	require.False(t, d.CanCreate)
	assert.Equal(t, quota.ReasonPlanNotFound, d.Reason)
}

func TestEvaluate_SubscriptionExpired(t *testing.T) {
	u := activeUser(0, 0)
	u.SubscriptionStatus = domain.SubscriptionExpired
	d := quota.Evaluate(u, freePlan())
	require.False(t, d.CanCreate)
	assert.Equal(t, quota.ReasonSubscriptionExpired, d.Reason)
	assert.Equal(t, "Subscription expired", d.Message)
}

func TestEvaluate_SubscriptionCancelled(t *testing.T) {
	u := activeUser(0, 0)
	u.SubscriptionStatus = domain.SubscriptionCancelled
	d := quota.Evaluate(u, freePlan())
	require.False(t, d.CanCreate)
	assert.Equal(t, quota.ReasonSubscriptionCancelled, d.Reason)
}

// An expired user who is also over the active limit must report the
// subscription, not the limit: the rule order is a deliberate tie-break.
func TestEvaluate_ExpiredWinsOverLimit(t *testing.T) {
	u := activeUser(5, 5)
	u.SubscriptionStatus = domain.SubscriptionExpired
	d := quota.Evaluate(u, freePlan())
	require.False(t, d.CanCreate)
	assert.Equal(t, quota.ReasonSubscriptionExpired, d.Reason)
}

func TestEvaluate_ActiveLimit(t *testing.T) {
	d := quota.Evaluate(activeUser(1, 3), freePlan())
	require.False(t, d.CanCreate)
	assert.Equal(t, quota.ReasonActiveLimitReached, d.Reason)
	assert.Equal(t, "Maximum active posts reached (1)", d.Message)

	d = quota.Evaluate(activeUser(0, 3), freePlan())
	assert.True(t, d.CanCreate)
	assert.Empty(t, d.Message)
}

func TestEvaluate_TotalLimit(t *testing.T) {
	d := quota.Evaluate(activeUser(0, 5), freePlan())
	require.False(t, d.CanCreate)
	assert.Equal(t, quota.ReasonTotalLimitReached, d.Reason)
	assert.Equal(t, "Maximum total posts reached (5)", d.Message)
}

// Active limit is checked before total limit.
func TestEvaluate_ActiveLimitWinsOverTotal(t *testing.T) {
	d := quota.Evaluate(activeUser(1, 5), freePlan())
	require.False(t, d.CanCreate)
	assert.Equal(t, quota.ReasonActiveLimitReached, d.Reason)
}

// Unbounded limits never block, whatever the counters say.
func TestEvaluate_UnboundedPlan(t *testing.T) {
	u := activeUser(1_000_000, 2_000_000)
	u.PlanID = "premium"
	d := quota.Evaluate(u, premiumPlan())
	assert.True(t, d.CanCreate)
}

// A limit of zero is not unbounded: zero allowed means always blocked.
func TestEvaluate_ZeroLimitIsNotUnbounded(t *testing.T) {
	p := freePlan()
	p.MaxActivePosts = intp(0)
	d := quota.Evaluate(activeUser(0, 0), p)
	require.False(t, d.CanCreate)
	assert.Equal(t, quota.ReasonActiveLimitReached, d.Reason)
}

func TestLimitInfo(t *testing.T) {
	s := quota.LimitInfo(activeUser(1, 3), freePlan())
	require.NotNil(t, s)
	assert.Equal(t, 1, s.ActivePosts)
	require.NotNil(t, s.MaxActivePosts)
	assert.Equal(t, 1, *s.MaxActivePosts)
	assert.Equal(t, 3, s.TotalPosts)
	assert.Equal(t, "Free", s.PlanName)
	assert.Equal(t, domain.SubscriptionActive, s.SubscriptionStatus)

	u := activeUser(2, 4)
	s = quota.LimitInfo(u, premiumPlan())
	require.NotNil(t, s)
	assert.Nil(t, s.MaxActivePosts) // unbounded, not zero
	assert.Nil(t, s.MaxTotalPosts)
}

func TestLimitInfo_Unresolved(t *testing.T) {
	assert.Nil(t, quota.LimitInfo(nil, freePlan()))
	assert.Nil(t, quota.LimitInfo(activeUser(0, 0), nil))
}

// Verification is orthogonal to quota: a quota-allowed unverified user is
// held for review, a verified user can still be quota-blocked.
func TestHoldForReview(t *testing.T) {
	u := activeUser(0, 0)
	assert.True(t, quota.HoldForReview(u))
	assert.True(t, quota.Evaluate(u, freePlan()).CanCreate)

	u.IsVerified = true
	u.ActivePostsCount = 1
	assert.False(t, quota.HoldForReview(u))
	assert.False(t, quota.Evaluate(u, freePlan()).CanCreate)

	assert.True(t, quota.HoldForReview(nil))
}
