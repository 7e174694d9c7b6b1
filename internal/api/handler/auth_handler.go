package handler

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/cancer-not-cancer/api/internal/api/middleware"
	"github.com/cancer-not-cancer/api/internal/app/service"
	"github.com/cancer-not-cancer/api/internal/common"
	"github.com/cancer-not-cancer/api/internal/platform/config"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes mounts the public part of the login flow.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/auth", h.loginPage)
	r.Get("/auth/google", h.googleRedirect)
	r.Get("/auth/google/callback", h.googleCallback)
	r.Get("/auth/success", h.success)
	r.Get("/auth/failure", h.failure)
	r.Get("/logout", h.logout)
}

// RegisterProtectedRoutes mounts routes that need an authenticated
// session.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/token", h.issueToken)
}

func (h *AuthHandler) loginPage(w http.ResponseWriter, r *http.Request) {
	link := "/auth/google"
	if origin := r.URL.Query().Get("origin"); origin != "" {
		link += "?origin=" + url.QueryEscape(origin)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<a href="%s">Authenticate with Google</a>`, html.EscapeString(link))
}

func (h *AuthHandler) googleRedirect(w http.ResponseWriter, r *http.Request) {
	loginURL, err := h.authService.LoginURL(r.URL.Query().Get("origin"))
	if err != nil {
		common.RespondWithError(w, http.StatusInternalServerError, "Failed to start login flow")
		return
	}
	http.Redirect(w, r, loginURL, http.StatusFound)
}

func (h *AuthHandler) googleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	sessionID, origin, err := h.authService.HandleCallback(r.Context(), code, state)
	if err != nil {
		http.Redirect(w, r, "/auth/failure", http.StatusFound)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.AppConfig.SessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(config.AppConfig.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, safeOrigin(origin), http.StatusFound)
}

// safeOrigin only resumes same-site relative paths after login. A
// scheme-relative "//host" or absolute URL smuggled through the state
// parameter would otherwise become an open redirect.
func safeOrigin(origin string) string {
	if strings.HasPrefix(origin, "/") && !strings.HasPrefix(origin, "//") {
		return origin
	}
	return "/auth/success"
}

func (h *AuthHandler) success(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Logged in."))
}

func (h *AuthHandler) failure(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Something went wrong..."))
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(config.AppConfig.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			common.RespondWithError(w, http.StatusInternalServerError, "Failed to end session")
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     config.AppConfig.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.Write([]byte("Goodbye!"))
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	token, err := h.authService.IssueAPIToken(user)
	if err != nil {
		common.RespondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}
