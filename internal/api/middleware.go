// Package api implements the LinkHub REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/starford/linkhub/internal/authn"
	"github.com/starford/linkhub/internal/models"
)

type contextKey int

const (
	identityKey contextKey = iota
	profileKey
)

// AuthMiddleware returns middleware that resolves a Bearer session token
// into the caller's Identity and stores it on the request context.
// Requests without a valid token are rejected with 401.
func AuthMiddleware(auth *authn.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			ident, profile, err := auth.Resolve(r.Context(), token)
			if err != nil {
				writeError(w, "resolve session", err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)
			ctx = context.WithValue(ctx, profileKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityFrom returns the Identity stored by AuthMiddleware. The zero
// Identity (Viewer with no department) is returned on unauthenticated
// routes.
func identityFrom(r *http.Request) models.Identity {
	if ident, ok := r.Context().Value(identityKey).(models.Identity); ok {
		return ident
	}
	return models.Identity{Role: models.RoleViewer}
}

// profileFrom returns the Profile stored by AuthMiddleware, or nil.
func profileFrom(r *http.Request) *models.Profile {
	if p, ok := r.Context().Value(profileKey).(*models.Profile); ok {
		return p
	}
	return nil
}

// RequireRole returns middleware that rejects callers below the given
// roles with 403. It must run after AuthMiddleware.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := identityFrom(r)
			if _, ok := allowed[ident.Role]; !ok {
				writeJSON(w, http.StatusForbidden, errorBody("forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
