package domain

import (
	"context"
	"time"
)

// Cache keys live in one place so they do not drift across handlers.
// List keys embed a hash of the full normalized parameter set: two
// different queries must never collide on the same slot.
func CacheKeyCategories() string                { return "categories" }
func CacheKeyPostDetail(id PostID) string       { return "post_detail:" + id.String() }
func CacheKeyPostsList(params string) string    { return "posts_list:" + params }
func CacheKeyUserProfile(id UserID) string      { return "user_profile:" + id.String() }
func CacheKeyUserPosts(id UserID) string        { return "user_posts:" + id.String() }
func CacheKeyDashboardStats(id UserID) string   { return "dashboard_stats:" + id.String() }
func CacheKeyNotifications(id UserID) string    { return "notifications:" + id.String() }
func CacheKeyTokenJTI(jti string) string        { return "jti:" + jti }

// Best-effort k/v layer with per-entry TTL. Implementations: in-process
// (cache/memory) and Redis (infra/cache/redis). Never the source of truth:
// every caller must fall through to the repo on a miss. A ttl <= 0 asks for
// the implementation default (5 minutes).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// Clear drops everything; write-path handlers call it after mutations
	// so list reads cannot serve stale pages.
	Clear(ctx context.Context) error
	// SetNX/Exists back the token blacklist.
	SetNX(ctx context.Context, key string, val []byte, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Ping(context.Context) error
	Close()
}
