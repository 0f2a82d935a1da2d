// Package oauth implements Google sign-in.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	appConfig "github.com/hacktopia/platform/internal/config"
	userModel "github.com/hacktopia/platform/internal/user/model"
)

const (
	userInfoURL  = "https://www.googleapis.com/oauth2/v3/userinfo"
	callbackPath = "/auth/callback"
)

var scopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

var (
	// ErrInvalidState indicates an unknown, reused or expired state.
	ErrInvalidState = errors.New("invalid oauth state")
	// ErrMissingEmail indicates that Google returned no verified email.
	ErrMissingEmail = errors.New("google account has no email")
)

// UserLogin signs in or provisions the account behind a Google identity.
type UserLogin interface {
	LoginWithOAuth(ctx context.Context, email, displayName string) (*userModel.Session, error)
}

type googleUser struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Service drives the authorization code flow.
type Service struct {
	config      oauth2.Config
	userInfoURL string
	frontendURL string
	stateTTL    time.Duration
	states      StateStore
	users       UserLogin
	logger      *zap.SugaredLogger
}

// New creates a Google sign-in service.
func New(cfg appConfig.OAuthConfig, states StateStore, users UserLogin, logger *zap.SugaredLogger) *Service {
	return &Service{
		config: oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
		userInfoURL: userInfoURL,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		stateTTL:    cfg.StateTTL,
		states:      states,
		users:       users,
		logger:      logger,
	}
}

// LoginURL issues a state and returns Google's consent page URL.
func (s *Service) LoginURL(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := s.states.Save(ctx, state, s.stateTTL); err != nil {
		return "", fmt.Errorf("save oauth state: %w", err)
	}
	return s.config.AuthCodeURL(state), nil
}

// Callback consumes the state, exchanges the code and signs the user in.
// It returns the frontend URL carrying the session token.
func (s *Service) Callback(ctx context.Context, state, code string) (string, error) {
	if state == "" || code == "" {
		return "", ErrInvalidState
	}

	valid, err := s.states.Consume(ctx, state)
	if err != nil {
		return "", fmt.Errorf("consume oauth state: %w", err)
	}
	if !valid {
		return "", ErrInvalidState
	}

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	gUser, err := s.fetchUser(ctx, token)
	if err != nil {
		return "", err
	}
	if gUser.Email == "" {
		return "", ErrMissingEmail
	}

	session, err := s.users.LoginWithOAuth(ctx, strings.ToLower(gUser.Email), gUser.Name)
	if err != nil {
		return "", fmt.Errorf("sign in %s: %w", gUser.Email, err)
	}

	s.logger.Infow("google sign-in completed", "user_id", session.UserID)
	return s.frontendURL + callbackPath + "?token=" + url.QueryEscape(session.Token), nil
}

func (s *Service) fetchUser(ctx context.Context, token *oauth2.Token) (*googleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}

	var user googleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &user, nil
}
