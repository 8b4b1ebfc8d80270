package mw

import (
	"net/http"
	"strings"

	"github.com/pb0420/trademonke/internal/domain"
)

type AuthDeps struct {
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
	Users     domain.UsersRepo
}

// OptionalAuth resolves a Bearer token when present; an invalid or revoked
// token just means the request proceeds anonymous.
func OptionalAuth(deps AuthDeps, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := resolveUser(deps, r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithUser(r.Context(), u)))
	})
}

func RequireAuth(deps AuthDeps, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := resolveUser(deps, r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":{"code":1001,"text":"unauthorized"}}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithUser(r.Context(), u)))
	})
}

// resolveUser loads the account fresh on every request: the quota policy
// reads live counters, not claims minted at login time.
func resolveUser(deps AuthDeps, r *http.Request) (domain.User, bool) {
	raw := extractBearer(r.Header.Get("Authorization"))
	if raw == "" {
		return domain.User{}, false
	}
	claims, err := deps.Tokens.Parse(r.Context(), raw)
	if err != nil {
		return domain.User{}, false
	}
	if revoked, _ := deps.Blacklist.IsRevoked(r.Context(), claims.JTI); revoked {
		return domain.User{}, false
	}
	u, err := deps.Users.UserByID(r.Context(), claims.UserID)
	if err != nil {
		return domain.User{}, false
	}
	return u, true
}

func extractBearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
