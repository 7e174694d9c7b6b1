package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cancer-not-cancer/api/internal/common"
	"github.com/cancer-not-cancer/api/internal/common/security"
	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
	"github.com/cancer-not-cancer/api/internal/platform/config"
	"github.com/cancer-not-cancer/api/internal/platform/session"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthService runs the Google OAuth flow and the sessions behind it.
// Identity lives with Google; the users table only decides whether a
// given email is known here and what it may do.
type AuthService struct {
	userRepo repository.UserRepository
	sessions *session.Store
	oauthCfg *oauth2.Config
}

func NewAuthService(userRepo repository.UserRepository, sessions *session.Store) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		oauthCfg: &oauth2.Config{
			ClientID:     config.AppConfig.GoogleClientID,
			ClientSecret: config.AppConfig.GoogleClientSecret,
			RedirectURL:  config.AppConfig.GoogleRedirectURL,
			Scopes:       []string{"email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// LoginURL builds the Google consent URL. The origin URL of the request
// that triggered login is signed into the state parameter so the
// callback can resume it.
func (s *AuthService) LoginURL(origin string) (string, error) {
	state, err := security.GenerateStateToken(origin)
	if err != nil {
		return "", fmt.Errorf("failed to sign state token: %w", err)
	}
	return s.oauthCfg.AuthCodeURL(state), nil
}

// HandleCallback completes the flow: verify state, exchange the code,
// read the Google profile, and match its email against the users table.
// An unknown email is ErrUnauthorized, not a new account.
func (s *AuthService) HandleCallback(ctx context.Context, code, state string) (sessionID, origin string, err error) {
	origin, err = security.VerifyStateToken(state)
	if err != nil {
		return "", "", fmt.Errorf("invalid state token: %w", common.ErrUnauthorized)
	}

	token, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return "", "", fmt.Errorf("code exchange failed: %w", common.ErrUnauthorized)
	}

	email, err := s.fetchEmail(ctx, token)
	if err != nil {
		return "", "", err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", "", fmt.Errorf("no account for %s: %w", email, common.ErrUnauthorized)
		}
		return "", "", fmt.Errorf("failed to look up user: %w", err)
	}

	sessionID, err = s.sessions.Create(ctx, session.Session{UserID: user.ID})
	if err != nil {
		return "", "", err
	}
	return sessionID, origin, nil
}

func (s *AuthService) fetchEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	resp, err := s.oauthCfg.Client(ctx, token).Get(googleUserinfoURL)
	if err != nil {
		return "", fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo request returned %d: %w", resp.StatusCode, common.ErrUnauthorized)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Email == "" {
		return "", fmt.Errorf("userinfo carried no email: %w", common.ErrUnauthorized)
	}
	return info.Email, nil
}

// UserFromSession resolves a session cookie to a user. Permissions are
// re-read from the database so admin edits apply to live sessions.
func (s *AuthService) UserFromSession(ctx context.Context, sessionID string) (*model.User, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, common.ErrUnauthorized
		}
		return nil, err
	}
	return s.userRepo.FindByID(ctx, sess.UserID)
}

// Logout invalidates the session. Unknown session ids succeed quietly.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Destroy(ctx, sessionID)
}

// IssueAPIToken mints a bearer token for scripted clients tied to the
// session's user.
func (s *AuthService) IssueAPIToken(user *model.User) (string, error) {
	return security.GenerateAPIToken(user.ID, user.Permissions.Bitmask())
}
