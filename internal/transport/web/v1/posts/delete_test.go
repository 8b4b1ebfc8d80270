package posts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pb0420/trademonke/internal/infra/database/memdb"
)

func TestDeleteFreesActiveSlotOnly(t *testing.T) {
	h, repo, _ := newTestHandler(t)

	// John: lifetime 3, active 1 (the Camry)
	req := httptest.NewRequest(http.MethodDelete, "/v1/posts/"+memdb.SeedCamryPostID.String(), nil)
	req.SetPathValue("id", memdb.SeedCamryPostID.String())
	req = asUser(t, repo, memdb.SeedJohnID, req)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	u, err := repo.UserByID(context.Background(), memdb.SeedJohnID)
	require.NoError(t, err)
	// the active slot is freed; the lifetime total still counts the
	// deleted listing, so maxTotalPosts cannot be reset by deleting
	assert.Equal(t, 0, u.ActivePostsCount)
	assert.Equal(t, 3, u.PostsCount)
}

func TestDeleteInactiveKeepsCounters(t *testing.T) {
	h, repo, _ := newTestHandler(t)

	// pick one of John's inactive listings
	mine, err := repo.ListByUser(context.Background(), memdb.SeedJohnID)
	require.NoError(t, err)
	var inactiveID string
	for _, p := range mine {
		if !p.IsActive {
			inactiveID = p.ID.String()
			break
		}
	}
	require.NotEmpty(t, inactiveID)

	req := httptest.NewRequest(http.MethodDelete, "/v1/posts/"+inactiveID, nil)
	req.SetPathValue("id", inactiveID)
	req = asUser(t, repo, memdb.SeedJohnID, req)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	u, err := repo.UserByID(context.Background(), memdb.SeedJohnID)
	require.NoError(t, err)
	assert.Equal(t, 1, u.ActivePostsCount)
	assert.Equal(t, 3, u.PostsCount)
}
