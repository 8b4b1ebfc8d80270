package profile

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
)

func newTestHandler(t *testing.T) (*Handler, *memdb.Repo) {
	t.Helper()
	discard := log.New(io.Discard, "", 0)
	repo := memdb.NewSeeded(discard)
	return &Handler{Log: discard, Users: repo, Posts: repo, Ratings: repo}, repo
}

func TestGetPublicProfile(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/profile/"+memdb.SeedJohnID.String(), nil)
	req.SetPathValue("id", memdb.SeedJohnID.String())
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data struct {
			User    domain.UserSummary `json:"user"`
			Rating  float64            `json:"rating"`
			Reviews int                `json:"reviews_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "John Smith", env.Data.User.Name)
	assert.Equal(t, 5.0, env.Data.Rating)
	assert.Equal(t, 1, env.Data.Reviews)
}

func TestListPostsOnlyPubliclyVisible(t *testing.T) {
	h, _ := newTestHandler(t)

	// John owns 3 listings but only the active approved one is public
	req := httptest.NewRequest(http.MethodGet, "/v1/profile/"+memdb.SeedJohnID.String()+"/posts", nil)
	req.SetPathValue("id", memdb.SeedJohnID.String())
	rec := httptest.NewRecorder()
	h.ListPosts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []domain.PostWithDetails `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, memdb.SeedCamryPostID, env.Data[0].ID)
}

func TestGetBadID(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/profile/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
