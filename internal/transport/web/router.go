package web

import (
	"log"
	"net/http"
	"time"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	"github.com/pb0420/trademonke/internal/transport/web/v1/auth"
	"github.com/pb0420/trademonke/internal/transport/web/v1/categories"
	"github.com/pb0420/trademonke/internal/transport/web/v1/dashboard"
	"github.com/pb0420/trademonke/internal/transport/web/v1/health"
	"github.com/pb0420/trademonke/internal/transport/web/v1/media"
	"github.com/pb0420/trademonke/internal/transport/web/v1/messages"
	"github.com/pb0420/trademonke/internal/transport/web/v1/notifications"
	"github.com/pb0420/trademonke/internal/transport/web/v1/plans"
	"github.com/pb0420/trademonke/internal/transport/web/v1/posts"
	"github.com/pb0420/trademonke/internal/transport/web/v1/profile"
)

func newRouter(logger *log.Logger, repos Repos, ad AuthDeps,
	cache domain.Cache, storage domain.MediaStorage) http.Handler {

	sub := func(name string) *log.Logger {
		return log.New(logger.Writer(), logger.Prefix()+"["+name+"] ", logger.Flags())
	}

	var storagePinger health.Pinger
	if storage != nil {
		storagePinger = storage
	}
	healthHandler := &health.Handler{
		Log: sub("health"), DB: repos.Users, Cache: cache, Storage: storagePinger,
	}
	registerHandler := &auth.HandlerRegister{
		Log: sub("auth"), Users: repos.Users, Hasher: ad.Hasher, Tokens: ad.Tokens,
	}
	loginHandler := &auth.HandlerLogin{
		Log: sub("auth"), Users: repos.Users, Hasher: ad.Hasher, Tokens: ad.Tokens,
	}
	logoutHandler := &auth.HandlerLogout{
		Log: sub("auth"), Tokens: ad.Tokens, Blacklist: ad.Blacklist,
	}
	categoriesHandler := &categories.Handler{
		Log: sub("categories"), Categories: repos.Categories, Cache: cache,
		TTL: 30 * time.Minute,
	}
	plansHandler := &plans.Handler{Log: sub("plans"), Plans: repos.Plans}
	postsHandler := &posts.Handler{
		Log: sub("posts"), Users: repos.Users, Plans: repos.Plans,
		Posts: repos.Posts, Cache: cache,
		ListTTL: 2 * time.Minute, DetailTTL: 5 * time.Minute,
	}
	dashboardHandler := &dashboard.Handler{
		Log: sub("dashboard"), Plans: repos.Plans, Posts: repos.Posts, Cache: cache,
		StatsTTL: 2 * time.Minute,
	}
	profileHandler := &profile.Handler{
		Log: sub("profile"), Users: repos.Users, Posts: repos.Posts, Ratings: repos.Reviews,
	}
	notificationsHandler := &notifications.Handler{
		Log: sub("notifications"), Notifications: repos.Notifications, Cache: cache,
		TTL: time.Minute,
	}
	messagesHandler := &messages.Handler{
		Log: sub("messages"), Conversations: repos.Conversations,
		Posts: repos.Posts, Notifications: repos.Notifications, Cache: cache,
	}
	mediaHandler := &media.Handler{
		Log: sub("media"), Media: repos.Media, Posts: repos.Posts, Storage: storage,
	}

	authMW := mw.AuthDeps{Tokens: ad.Tokens, Blacklist: ad.Blacklist, Users: repos.Users}
	authed := func(h http.HandlerFunc) http.Handler {
		return mw.RequireAuth(authMW, h)
	}
	maybeAuthed := func(h http.HandlerFunc) http.Handler {
		return mw.OptionalAuth(authMW, h)
	}

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /v1/healthz", healthHandler.Liveness)
	mux.HandleFunc("GET /v1/readyz", healthHandler.Readiness)

	// auth
	mux.HandleFunc("POST /v1/auth/register", registerHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", loginHandler.Login)
	mux.HandleFunc("POST /v1/auth/logout", logoutHandler.Logout)

	// reference data
	mux.HandleFunc("GET /v1/categories", categoriesHandler.List)
	mux.HandleFunc("GET /v1/plans", plansHandler.List)
	mux.Handle("GET /v1/plans/me", authed(plansHandler.Current))

	// listings
	mux.HandleFunc("GET /v1/posts", postsHandler.List)
	mux.Handle("GET /v1/posts/{id}", maybeAuthed(postsHandler.GetOne))
	mux.Handle("POST /v1/posts", authed(postsHandler.Create))
	mux.Handle("PUT /v1/posts/{id}", authed(postsHandler.Update))
	mux.Handle("DELETE /v1/posts/{id}", authed(postsHandler.Delete))
	mux.HandleFunc("POST /v1/posts/{id}/view", postsHandler.View)

	// dashboard
	mux.Handle("GET /v1/dashboard/stats", authed(dashboardHandler.Stats))
	mux.Handle("GET /v1/dashboard/posts", authed(dashboardHandler.ListPosts))

	// public profiles
	mux.HandleFunc("GET /v1/profile/{id}", profileHandler.Get)
	mux.HandleFunc("GET /v1/profile/{id}/posts", profileHandler.ListPosts)
	mux.HandleFunc("GET /v1/profile/{id}/reviews", profileHandler.Reviews)

	// notifications
	mux.Handle("GET /v1/notifications", authed(notificationsHandler.List))
	mux.Handle("POST /v1/notifications/read", authed(notificationsHandler.MarkRead))

	// messaging (verified users only, enforced per-handler)
	mux.Handle("GET /v1/conversations", authed(messagesHandler.Inbox))
	mux.Handle("GET /v1/conversations/{id}", authed(messagesHandler.Thread))
	mux.Handle("POST /v1/conversations/{id}/read", authed(messagesHandler.MarkRead))
	mux.Handle("POST /v1/messages", authed(messagesHandler.Send))

	// media
	mux.Handle("POST /v1/media", authed(limitBody(64<<20, mediaHandler.Upload))) // 64MB limit
	mux.HandleFunc("GET /v1/media/{key...}", mediaHandler.Serve)

	return mw.WithRequestID(mw.Logging(logger)(mux))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
