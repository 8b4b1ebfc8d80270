package notifications

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/transport/web/logx"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	v1 "github.com/pb0420/trademonke/internal/transport/web/v1"
)

type Handler struct {
	Log           *log.Logger
	Notifications domain.NotificationsRepo
	Cache         domain.Cache

	TTL time.Duration // 1m: short, read flips often
}

// List serves GET /v1/notifications for the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "notifications.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	ckey := domain.CacheKeyNotifications(me.ID)
	if b, err := h.Cache.Get(r.Context(), ckey); err != nil {
		h.Log.Printf("cache get notifications: %v", err)
	} else if b != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}

	ns, err := h.Notifications.NotificationsByUser(r.Context(), me.ID, 50)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if ns == nil {
		ns = []domain.Notification{}
	}

	unread := 0
	for _, n := range ns {
		if !n.IsRead {
			unread++
		}
	}
	out := struct {
		Notifications []domain.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unread_count"`
	}{Notifications: ns, UnreadCount: unread}

	env := domain.OkData(out)
	if buf, err := json.Marshal(env); err == nil {
		_ = h.Cache.Set(r.Context(), ckey, buf, h.TTL)
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID, "count", len(ns))
	v1.WriteEnvelope(w, r, http.StatusOK, env)
}

type markReadRequest struct {
	// empty means "mark everything read"
	IDs []string `json:"ids"`
}

// MarkRead serves POST /v1/notifications/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	const op = "notifications.read"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	var req markReadRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // empty body = mark all
	}

	if err := h.Notifications.MarkNotificationsRead(r.Context(), me.ID, req.IDs); err != nil {
		logx.Error(h.Log, reqID, op, "mark read failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	_ = h.Cache.Del(r.Context(), domain.CacheKeyNotifications(me.ID))

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID, "ids", len(req.IDs))
	v1.WriteOKData(w, r, "ok")
}
