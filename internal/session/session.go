// internal/session/session.go
//
// Operator login against the order service's token endpoint. The bearer token
// is cached on disk so a restart inside the token's lifetime skips the login
// screen. Tokens are parsed without verification: the client only needs the
// expiry and subject claims, the server is the one doing the verifying.

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTimeout = 15 * time.Second

// ErrNotAuthenticated marks an operation that needs a live session.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// Settings captures runtime configuration for the session client.
type Settings struct {
	BaseURL   string
	TokenPath string
	Timeout   time.Duration
}

func (s *Settings) normalize() {
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.Timeout <= 0 {
		s.Timeout = defaultTimeout
	}
}

// Session holds the operator's authentication state.
type Session struct {
	settings Settings
	http     *http.Client
	clock    func() time.Time

	// Login and Logout run inside command goroutines while the gateway
	// reads the token from others.
	mu    sync.RWMutex
	token string
}

// Option customizes session construction.
type Option func(*Session)

// WithHTTPClient overrides the underlying HTTP client (primarily for tests).
func WithHTTPClient(h *http.Client) Option {
	return func(s *Session) {
		if h != nil {
			s.http = h
		}
	}
}

// WithClock allows tests to control expiry checks.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New prepares a session client and loads any token cached on disk.
func New(settings Settings, opts ...Option) (*Session, error) {
	settings.normalize()
	if settings.BaseURL == "" {
		return nil, fmt.Errorf("session: base URL is required")
	}
	if settings.TokenPath == "" {
		return nil, fmt.Errorf("session: token path is required")
	}
	s := &Session{
		settings: settings,
		http:     &http.Client{Timeout: settings.Timeout},
		clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.loadToken(); err != nil {
		return nil, err
	}
	return s, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token and caches it on disk.
func (s *Session) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.settings.BaseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("session: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("session: login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("session: login rejected (%d): %s", resp.StatusCode,
			strings.TrimSpace(string(detail)))
	}
	var parsed tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return fmt.Errorf("session: decode token response: %w", err)
	}
	if strings.TrimSpace(parsed.AccessToken) == "" {
		return fmt.Errorf("session: token response missing access_token")
	}
	s.mu.Lock()
	s.token = parsed.AccessToken
	s.mu.Unlock()
	if err := os.WriteFile(s.settings.TokenPath, []byte(parsed.AccessToken), 0o600); err != nil {
		return fmt.Errorf("session: cache token: %w", err)
	}
	return nil
}

// Logout drops the in-memory token and removes the cached copy.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if err := os.Remove(s.settings.TokenPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: remove cached token: %w", err)
	}
	return nil
}

// Token returns the current bearer token, empty when not logged in. It
// satisfies the gateway's TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Valid reports whether the session holds a token that has not expired.
// Tokens without an expiry claim count as valid; the server will say no.
func (s *Session) Valid() bool {
	claims, err := s.claims()
	if err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return err == nil
	}
	return exp.After(s.clock())
}

// Username returns the subject claim of the current token.
func (s *Session) Username() string {
	claims, err := s.claims()
	if err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}

func (s *Session) claims() (jwt.MapClaims, error) {
	token := s.Token()
	if strings.TrimSpace(token) == "" {
		return nil, ErrNotAuthenticated
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("session: parse token: %w", err)
	}
	return claims, nil
}

func (s *Session) loadToken() error {
	data, err := os.ReadFile(s.settings.TokenPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("session: read cached token: %w", err)
	}
	s.token = strings.TrimSpace(string(data))
	return nil
}
