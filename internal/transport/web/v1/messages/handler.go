package messages

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/transport/web/logx"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	v1 "github.com/pb0420/trademonke/internal/transport/web/v1"
)

// Messaging is the one surface hard-gated on verification: unverified
// users cannot open threads or send, unlike post creation which is only
// held for review.
type Handler struct {
	Log           *log.Logger
	Conversations domain.ConversationsRepo
	Posts         domain.PostsRepo
	Notifications domain.NotificationsRepo
	Cache         domain.Cache
}

func parseConversationID(r *http.Request) (domain.ConversationID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return domain.ConversationID{}, domain.ErrBadParams
	}
	return id, nil
}

func requireVerified(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return domain.User{}, false
	}
	if !me.IsVerified {
		v1.WriteFailText(w, r, http.StatusForbidden, domain.ErrCodeForbidden,
			"Account verification required to send messages")
		return domain.User{}, false
	}
	return me, true
}

// Inbox serves GET /v1/conversations.
func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	const op = "messages.inbox"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := requireVerified(w, r)
	if !ok {
		return
	}

	convs, err := h.Conversations.ConversationsByUser(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if convs == nil {
		convs = []domain.ConversationWithDetails{}
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID, "count", len(convs))
	v1.WriteOKData(w, r, convs)
}

// Thread serves GET /v1/conversations/{id}: the full message history,
// participants only.
func (h *Handler) Thread(w http.ResponseWriter, r *http.Request) {
	const op = "messages.thread"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := requireVerified(w, r)
	if !ok {
		return
	}

	id, err := parseConversationID(r)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	conv, err := h.Conversations.ConversationByID(r.Context(), id)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	if conv.BuyerID != me.ID && conv.SellerID != me.ID {
		v1.WriteDomainError(w, r, domain.ErrForbidden)
		return
	}

	msgs, err := h.Conversations.MessagesByConversation(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "messages failed", err, "conversation_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}

	out := struct {
		Conversation domain.Conversation `json:"conversation"`
		Messages     []domain.Message    `json:"messages"`
	}{Conversation: conv, Messages: msgs}

	logx.Info(h.Log, reqID, op, "ok", "conversation_id", id, "count", len(msgs))
	v1.WriteOKData(w, r, out)
}

type sendRequest struct {
	// either an existing thread...
	ConversationID string `json:"conversation_id"`
	// ...or a post to open one against
	PostID  string `json:"post_id"`
	Content string `json:"content"`
}

// Send serves POST /v1/messages: appends to a thread, opening it first
// when only a post id is given. The recipient gets a notification.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	const op = "messages.send"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, ok := requireVerified(w, r)
	if !ok {
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.Content == "" || len(req.Content) > 2000 {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	conv, err := h.resolveConversation(r, me, req)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	if conv.BuyerID != me.ID && conv.SellerID != me.ID {
		v1.WriteDomainError(w, r, domain.ErrForbidden)
		return
	}

	msg, err := h.Conversations.AddMessage(r.Context(), domain.Message{
		ConversationID: conv.ID,
		SenderID:       me.ID,
		Content:        req.Content,
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "add message failed", err, "conversation_id", conv.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	recipient := conv.BuyerID
	if me.ID == conv.BuyerID {
		recipient = conv.SellerID
	}
	if _, err := h.Notifications.CreateNotification(r.Context(), domain.Notification{
		UserID:  recipient,
		Type:    "message",
		Title:   "New message",
		Content: truncate(req.Content, 120),
		Metadata: map[string]any{
			"conversation_id": conv.ID.String(),
		},
	}); err != nil {
		logx.Error(h.Log, reqID, op, "notify failed", err, "user_id", recipient)
	}
	_ = h.Cache.Del(r.Context(), domain.CacheKeyNotifications(recipient))

	logx.Info(h.Log, reqID, op, "ok", "conversation_id", conv.ID, "message_id", msg.ID)
	v1.WriteOKResponse(w, r, struct {
		Conversation domain.Conversation `json:"conversation"`
		Message      domain.Message      `json:"message"`
	}{Conversation: conv, Message: msg})
}

func (h *Handler) resolveConversation(r *http.Request, me domain.User, req sendRequest) (domain.Conversation, error) {
	if req.ConversationID != "" {
		id, err := uuid.Parse(req.ConversationID)
		if err != nil {
			return domain.Conversation{}, domain.ErrBadParams
		}
		return h.Conversations.ConversationByID(r.Context(), id)
	}

	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		return domain.Conversation{}, domain.ErrBadParams
	}
	post, err := h.Posts.PostByID(r.Context(), postID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if post.UserID == me.ID {
		// no threads with yourself
		return domain.Conversation{}, domain.ErrBadParams
	}
	return h.Conversations.CreateConversation(r.Context(), domain.Conversation{
		PostID:   postID,
		BuyerID:  me.ID,
		SellerID: post.UserID,
	})
}

// MarkRead serves POST /v1/conversations/{id}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	const op = "messages.read"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := requireVerified(w, r)
	if !ok {
		return
	}

	id, err := parseConversationID(r)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	conv, err := h.Conversations.ConversationByID(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if conv.BuyerID != me.ID && conv.SellerID != me.ID {
		v1.WriteDomainError(w, r, domain.ErrForbidden)
		return
	}

	if err := h.Conversations.MarkConversationRead(r.Context(), id, me.ID); err != nil {
		logx.Error(h.Log, reqID, op, "mark read failed", err, "conversation_id", id)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "conversation_id", id)
	v1.WriteOKData(w, r, "ok")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// back up to a rune boundary so the cut never leaves invalid UTF-8
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
