package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cancer-not-cancer/api/internal/app/service"
	"github.com/cancer-not-cancer/api/internal/common"
	"github.com/cancer-not-cancer/api/internal/common/security"
	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
	"github.com/cancer-not-cancer/api/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const userCtxKey contextKey = "user"

// Authenticator resolves the requesting user from either the session
// cookie or a bearer token (jwtauth.Verifier must run earlier in the
// chain). Unauthenticated browser navigation is redirected to /auth
// with the original URL preserved; everything else gets 401.
func Authenticator(authService *service.AuthService, userRepo repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(config.AppConfig.SessionCookie); err == nil && cookie.Value != "" {
				user, err := authService.UserFromSession(r.Context(), cookie.Value)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
					return
				}
			}

			if token, claims, err := jwtauth.FromContext(r.Context()); err == nil && token != nil {
				userID, err := security.GetUserIDFromClaims(claims)
				if err == nil {
					user, err := userRepo.FindByID(r.Context(), userID)
					if err == nil {
						next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
						return
					}
				}
			}

			if isBrowserNavigation(r) {
				http.Redirect(w, r, "/auth?origin="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
				return
			}
			common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		})
	}
}

// RequireCapability gates a route on the authorization predicate.
// Denial is 401, matching the legacy service.
func RequireCapability(cap model.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r.Context())
			if !ok || !model.Allowed(user.Permissions, cap) {
				common.RespondWithError(w, http.StatusUnauthorized, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isBrowserNavigation(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
}

func withUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// GetUserFromContext returns the authenticated user placed by
// Authenticator.
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userCtxKey).(*model.User)
	return user, ok
}

// WithUser is exposed for handler tests that bypass Authenticator.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return withUser(ctx, user)
}
