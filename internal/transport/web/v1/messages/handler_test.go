package messages

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pb0420/trademonke/internal/cache/memory"
	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/infra/database/memdb"
)

func newTestHandler(t *testing.T) (*Handler, *memdb.Repo) {
	t.Helper()
	discard := log.New(io.Discard, "", 0)
	repo := memdb.NewSeeded(discard)
	return &Handler{
		Log: discard, Conversations: repo, Posts: repo,
		Notifications: repo, Cache: memory.New(discard),
	}, repo
}

func asUser(t *testing.T, repo *memdb.Repo, id domain.UserID, r *http.Request) *http.Request {
	t.Helper()
	u, err := repo.UserByID(r.Context(), id)
	require.NoError(t, err)
	return r.WithContext(domain.WithUser(r.Context(), u))
}

func TestInboxRequiresVerification(t *testing.T) {
	h, repo := newTestHandler(t)

	// John is unverified: messaging is hard-gated, unlike posting
	req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
	req = asUser(t, repo, memdb.SeedJohnID, req)
	rec := httptest.NewRecorder()
	h.Inbox(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "verification required")
}

func TestInboxListsThreads(t *testing.T) {
	h, repo := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
	req = asUser(t, repo, memdb.SeedSarahID, req)
	rec := httptest.NewRecorder()
	h.Inbox(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []domain.ConversationWithDetails `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, memdb.SeedCamryPostID, env.Data[0].PostID)
	assert.Equal(t, "Is this item still available?", env.Data[0].LastMessage)
	// Sarah sent the only message herself, so nothing is unread for her
	assert.Equal(t, 0, env.Data[0].UnreadCount)
	assert.Equal(t, "John Smith", env.Data[0].OtherUser.Name)
}

func TestSendOpensThreadAndNotifies(t *testing.T) {
	h, repo := newTestHandler(t)

	body := `{"post_id":"` + memdb.SeedIPhonePostID.String() + `","content":"Would you take 1100?"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	// admin is verified and does not own the iPhone listing
	req = asUser(t, repo, memdb.SeedAdminID, req)
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Response struct {
			Conversation domain.Conversation `json:"conversation"`
			Message      domain.Message      `json:"message"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, memdb.SeedIPhonePostID, env.Response.Conversation.PostID)
	assert.Equal(t, memdb.SeedAdminID, env.Response.Conversation.BuyerID)
	assert.Equal(t, memdb.SeedSarahID, env.Response.Conversation.SellerID)
	assert.Equal(t, "Would you take 1100?", env.Response.Message.Content)

	// the seller got a notification about the new message
	ns, err := repo.NotificationsByUser(context.Background(), memdb.SeedSarahID, 0)
	require.NoError(t, err)
	found := false
	for _, n := range ns {
		if n.Type == "message" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSendToOwnPostRejected(t *testing.T) {
	h, repo := newTestHandler(t)

	body := `{"post_id":"` + memdb.SeedIPhonePostID.String() + `","content":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	req = asUser(t, repo, memdb.SeedSarahID, req)
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThreadParticipantsOnly(t *testing.T) {
	h, repo := newTestHandler(t)

	// find the seeded thread id via Sarah's inbox
	req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
	req = asUser(t, repo, memdb.SeedSarahID, req)
	rec := httptest.NewRecorder()
	h.Inbox(rec, req)
	var env struct {
		Data []domain.ConversationWithDetails `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	convID := env.Data[0].ID.String()

	// admin is verified but not a participant
	req = httptest.NewRequest(http.MethodGet, "/v1/conversations/"+convID, nil)
	req.SetPathValue("id", convID)
	req = asUser(t, repo, memdb.SeedAdminID, req)
	rec = httptest.NewRecorder()
	h.Thread(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// participant sees the history
	req = httptest.NewRequest(http.MethodGet, "/v1/conversations/"+convID, nil)
	req.SetPathValue("id", convID)
	req = asUser(t, repo, memdb.SeedSarahID, req)
	rec = httptest.NewRecorder()
	h.Thread(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMarkReadClearsUnread(t *testing.T) {
	h, repo := newTestHandler(t)

	// the seeded thread has one unread message from Sarah to John;
	// John acts through a verified copy, as if moderation cleared him
	req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
	req = asVerified(t, repo, memdb.SeedJohnID, req)
	rec := httptest.NewRecorder()
	h.Inbox(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []domain.ConversationWithDetails `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	require.Equal(t, 1, env.Data[0].UnreadCount)
	convID := env.Data[0].ID.String()

	req = httptest.NewRequest(http.MethodPost, "/v1/conversations/"+convID+"/read", nil)
	req.SetPathValue("id", convID)
	req = asVerified(t, repo, memdb.SeedJohnID, req)
	rec = httptest.NewRecorder()
	h.MarkRead(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
	req = asVerified(t, repo, memdb.SeedJohnID, req)
	rec = httptest.NewRecorder()
	h.Inbox(rec, req)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, 0, env.Data[0].UnreadCount)
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	// 2-byte runes; a cut at 121 would land mid-rune
	s := strings.Repeat("ая", 100)
	got := truncate(s, 121)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 121+len("…"))

	assert.Equal(t, "short", truncate("short", 120))
	assert.Equal(t, "abc", truncate("abc", 3))
}

// asVerified wraps a verified copy of the account into the request context,
// as if moderation had already cleared it.
func asVerified(t *testing.T, repo *memdb.Repo, id domain.UserID, r *http.Request) *http.Request {
	t.Helper()
	u, err := repo.UserByID(r.Context(), id)
	require.NoError(t, err)
	u.IsVerified = true
	u.VerificationStatus = domain.VerificationApproved
	return r.WithContext(domain.WithUser(r.Context(), u))
}
