package posts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/infra/database/memdb"
)

func decodePage(t *testing.T, body []byte) domain.PostPage {
	t.Helper()
	var env struct {
		Data domain.PostPage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	return env.Data
}

func TestListServesFromCache(t *testing.T) {
	h, repo, cache := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/posts", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decodePage(t, rec.Body.Bytes())
	assert.Equal(t, 4, first.Total)

	// the page landed in the cache under the normalized key
	b, err := cache.Get(context.Background(), listCacheKey(filterFromQuery(req)))
	require.NoError(t, err)
	require.NotNil(t, b)

	// mutate the store; the cached page keeps serving until TTL
	_, err = repo.DeletePost(context.Background(), memdb.SeedCamryPostID, memdb.SeedJohnID)
	require.NoError(t, err)

	rec2 := httptest.NewRecorder()
	h.List(rec2, httptest.NewRequest(http.MethodGet, "/v1/posts", nil))
	second := decodePage(t, rec2.Body.Bytes())
	assert.Equal(t, 4, second.Total)

	// a different query is a different slot and sees fresh data
	rec3 := httptest.NewRecorder()
	h.List(rec3, httptest.NewRequest(http.MethodGet, "/v1/posts?sort=price-low", nil))
	third := decodePage(t, rec3.Body.Bytes())
	assert.Equal(t, 3, third.Total)
}

func TestListQueryParams(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/posts?search=iphone&sort=price-high&page=1&limit=10", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	page := decodePage(t, rec.Body.Bytes())
	require.Len(t, page.Posts, 1)
	assert.Equal(t, memdb.SeedIPhonePostID, page.Posts[0].ID)
	assert.Equal(t, 10, page.Limit)
}

func TestListCacheKeyDistinguishesQueries(t *testing.T) {
	a := filterFromQuery(httptest.NewRequest(http.MethodGet, "/v1/posts?search=a", nil))
	b := filterFromQuery(httptest.NewRequest(http.MethodGet, "/v1/posts?search=b", nil))
	c := filterFromQuery(httptest.NewRequest(http.MethodGet, "/v1/posts?search=a&page=2", nil))

	assert.NotEqual(t, listCacheKey(a), listCacheKey(b))
	assert.NotEqual(t, listCacheKey(a), listCacheKey(c))

	// stable for the same query
	a2 := filterFromQuery(httptest.NewRequest(http.MethodGet, "/v1/posts?search=a", nil))
	assert.Equal(t, listCacheKey(a), listCacheKey(a2))
}

func TestGetOneVisibility(t *testing.T) {
	h, repo, _ := newTestHandler(t)

	// public approved listing: anonymous read OK
	req := httptest.NewRequest(http.MethodGet, "/v1/posts/"+memdb.SeedCamryPostID.String(), nil)
	req.SetPathValue("id", memdb.SeedCamryPostID.String())
	rec := httptest.NewRecorder()
	h.GetOne(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// a pending listing 404s for strangers but not for its owner
	pending, err := repo.CreatePost(context.Background(), domain.Post{
		UserID:      memdb.SeedMikeID,
		Title:       "Hidden pending listing",
		Description: "Should only be visible to its owner until approved.",
		Price:       10,
	})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/v1/posts/"+pending.ID.String(), nil)
	req.SetPathValue("id", pending.ID.String())
	rec = httptest.NewRecorder()
	h.GetOne(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/posts/"+pending.ID.String(), nil)
	req.SetPathValue("id", pending.ID.String())
	req = asUser(t, repo, memdb.SeedMikeID, req)
	rec = httptest.NewRecorder()
	h.GetOne(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOneBadID(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/posts/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.GetOne(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
