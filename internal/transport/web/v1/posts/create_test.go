package posts

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pb0420/trademonke/internal/cache/memory"
	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/infra/database/memdb"
	"github.com/pb0420/trademonke/internal/quota"
)

func newTestHandler(t *testing.T) (*Handler, *memdb.Repo, *memory.Cache) {
	t.Helper()
	discard := log.New(io.Discard, "", 0)
	repo := memdb.NewSeeded(discard)
	cache := memory.New(discard)
	h := &Handler{
		Log: discard, Users: repo, Plans: repo, Posts: repo, Cache: cache,
		ListTTL: 2 * time.Minute, DetailTTL: 5 * time.Minute,
	}
	return h, repo, cache
}

func asUser(t *testing.T, repo *memdb.Repo, id domain.UserID, r *http.Request) *http.Request {
	t.Helper()
	u, err := repo.UserByID(r.Context(), id)
	require.NoError(t, err)
	return r.WithContext(domain.WithUser(r.Context(), u))
}

const validBody = `{"title":"Old surfboard","description":"7ft board, a few dings but watertight.","price":90,"category_id":"7","location":"Bondi, NSW"}`

func TestCreateQuotaDenied(t *testing.T) {
	h, repo, _ := newTestHandler(t)

	// John is on free (1 active max) and already has an active listing.
	req := httptest.NewRequest(http.MethodPost, "/v1/posts", strings.NewReader(validBody))
	req = asUser(t, repo, memdb.SeedJohnID, req)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var env struct {
		Error *domain.APIError `json:"error"`
		Data  quota.Decision   `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, domain.ErrCodeQuotaExceeded, env.Error.Code)
	assert.False(t, env.Data.CanCreate)
	assert.Equal(t, quota.ReasonActiveLimitReached, env.Data.Reason)
	assert.Equal(t, "Maximum active posts reached (1)", env.Data.Message)

	// nothing was written
	u, err := repo.UserByID(context.Background(), memdb.SeedJohnID)
	require.NoError(t, err)
	assert.Equal(t, 3, u.PostsCount)
}

func TestCreateAllowedStartsPending(t *testing.T) {
	h, repo, _ := newTestHandler(t)

	// Sarah is premium (unbounded) and verified.
	req := httptest.NewRequest(http.MethodPost, "/v1/posts", strings.NewReader(validBody))
	req = asUser(t, repo, memdb.SeedSarahID, req)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Response createResponse `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, domain.PostPending, env.Response.Post.Status)
	assert.False(t, env.Response.HeldForReview)

	u, err := repo.UserByID(context.Background(), memdb.SeedSarahID)
	require.NoError(t, err)
	assert.Equal(t, 9, u.PostsCount)
	assert.Equal(t, 4, u.ActivePostsCount)
}

func TestCreateUnverifiedHeldForReview(t *testing.T) {
	h, repo, _ := newTestHandler(t)

	// free up Mike's quota first: he is 1/1 on free
	require.NoError(t, repo.AdjustPostCounters(context.Background(), memdb.SeedMikeID, -1, -1))

	req := httptest.NewRequest(http.MethodPost, "/v1/posts", strings.NewReader(validBody))
	req = asUser(t, repo, memdb.SeedMikeID, req)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Response createResponse `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	// creation is never blocked on verification, only flagged
	assert.Equal(t, domain.PostPending, env.Response.Post.Status)
	assert.True(t, env.Response.HeldForReview)
}

func TestCreateClearsCache(t *testing.T) {
	h, repo, cache := newTestHandler(t)

	require.NoError(t, cache.Set(context.Background(),
		domain.CacheKeyCategories(), []byte("x"), time.Minute))

	req := httptest.NewRequest(http.MethodPost, "/v1/posts", strings.NewReader(validBody))
	req = asUser(t, repo, memdb.SeedSarahID, req)
	rec := httptest.NewRecorder()

	h.Create(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	b, err := cache.Get(context.Background(), domain.CacheKeyCategories())
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestCreateValidation(t *testing.T) {
	h, repo, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/posts",
		strings.NewReader(`{"title":"ab","description":"too short","price":10}`))
	req = asUser(t, repo, memdb.SeedSarahID, req)
	rec := httptest.NewRecorder()

	h.Create(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUnauthenticated(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/posts", strings.NewReader(validBody))
	rec := httptest.NewRecorder()

	h.Create(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
