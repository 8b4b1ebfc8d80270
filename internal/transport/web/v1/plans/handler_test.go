package plans

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/infra/database/memdb"
	"github.com/pb0420/trademonke/internal/quota"
)

func newTestHandler(t *testing.T) (*Handler, *memdb.Repo) {
	t.Helper()
	discard := log.New(io.Discard, "", 0)
	repo := memdb.NewSeeded(discard)
	return &Handler{Log: discard, Plans: repo}, repo
}

func asUser(t *testing.T, repo *memdb.Repo, id domain.UserID, r *http.Request) *http.Request {
	t.Helper()
	u, err := repo.UserByID(r.Context(), id)
	require.NoError(t, err)
	return r.WithContext(domain.WithUser(r.Context(), u))
}

type currentOut struct {
	Plan          *domain.Plan        `json:"plan"`
	CanCreatePost quota.Decision      `json:"canCreatePost"`
	Limits        *quota.LimitSummary `json:"limits"`
}

func decodeCurrent(t *testing.T, body []byte) currentOut {
	t.Helper()
	var env struct {
		Data currentOut `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	return env.Data
}

func TestList(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/v1/plans", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []domain.Plan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, domain.PlanID("free"), env.Data[0].ID)
}

func TestCurrentCarriesQuotaVerdict(t *testing.T) {
	h, repo := newTestHandler(t)

	// John sits at his free plan's active limit
	req := httptest.NewRequest(http.MethodGet, "/v1/plans/me", nil)
	req = asUser(t, repo, memdb.SeedJohnID, req)
	rec := httptest.NewRecorder()
	h.Current(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeCurrent(t, rec.Body.Bytes())
	require.NotNil(t, out.Plan)
	assert.Equal(t, domain.PlanID("free"), out.Plan.ID)
	assert.False(t, out.CanCreatePost.CanCreate)
	assert.Equal(t, quota.ReasonActiveLimitReached, out.CanCreatePost.Reason)
	assert.Equal(t, "Maximum active posts reached (1)", out.CanCreatePost.Message)
	require.NotNil(t, out.Limits)
	assert.Equal(t, 1, out.Limits.ActivePosts)

	// Sarah's premium plan is unbounded
	req = httptest.NewRequest(http.MethodGet, "/v1/plans/me", nil)
	req = asUser(t, repo, memdb.SeedSarahID, req)
	rec = httptest.NewRecorder()
	h.Current(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	out = decodeCurrent(t, rec.Body.Bytes())
	assert.True(t, out.CanCreatePost.CanCreate)
}

func TestCurrentUnknownPlanDeniesNotCrashes(t *testing.T) {
	h, repo := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/plans/me", nil)
	u, err := repo.UserByID(req.Context(), memdb.SeedJohnID)
	require.NoError(t, err)
	u.PlanID = "retired-plan"
	req = req.WithContext(domain.WithUser(req.Context(), u))
	rec := httptest.NewRecorder()
	h.Current(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeCurrent(t, rec.Body.Bytes())
	assert.Nil(t, out.Plan)
	assert.Nil(t, out.Limits)
	assert.False(t, out.CanCreatePost.CanCreate)
	assert.Equal(t, quota.ReasonPlanNotFound, out.CanCreatePost.Reason)
}
