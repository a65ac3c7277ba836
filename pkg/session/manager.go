// Package session manages the authenticated Space-Track session: the
// cookie jar, the login call and the expiry clock. It is the only
// component that authenticates.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dronir/ILRS-TLE/pkg/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tle_logins_total",
	Help: "Login attempts by result",
}, []string{"result"})

// Defaults for the Space-Track login endpoint.
const (
	DefaultLoginURL = "https://www.space-track.org/ajaxauth/login"

	// DefaultFailureMarker is the substring the login endpoint returns
	// in a 2xx body when the credentials are rejected.
	DefaultFailureMarker = "Failed"

	// DefaultFreshness is how long a login is trusted. Sessions expire
	// after about two hours.
	DefaultFreshness = 90 * time.Minute
)

// ErrAuthFailure is returned when no valid session could be established.
var ErrAuthFailure = errors.New("authentication failed")

// Credentials identify the Space-Track account.
type Credentials struct {
	Identity string
	Password string
}

// Config holds the session manager configuration.
type Config struct {
	Credentials Credentials

	// LoginURL is the form-login endpoint.
	LoginURL string

	// FailureMarker marks a rejected login in a successful response body.
	FailureMarker string

	// Freshness is the maximum age of a login before it is renewed.
	Freshness time.Duration

	// UserAgent and Timeout configure the underlying HTTP client.
	UserAgent string
	Timeout   time.Duration

	// Now is the clock (time.Now when nil).
	Now func() time.Time
}

// DefaultConfig returns the configuration for the public Space-Track service.
func DefaultConfig(creds Credentials, userAgent string) Config {
	return Config{
		Credentials:   creds,
		LoginURL:      DefaultLoginURL,
		FailureMarker: DefaultFailureMarker,
		Freshness:     DefaultFreshness,
		UserAgent:     userAgent,
		Timeout:       client.DefaultTimeout,
	}
}

// Manager exclusively owns the cookie-bearing client and the time of
// the last confirmed login. It is not safe for concurrent use.
type Manager struct {
	creds     Credentials
	loginURL  string
	marker    string
	freshness time.Duration
	now       func() time.Time
	client    *client.Client
	lastLogin time.Time
	logger    zerolog.Logger
}

// New creates a session manager with an empty cookie jar. No request is
// made until Login or EnsureAuthenticated is called.
func New(cfg Config) (*Manager, error) {
	if cfg.Credentials.Identity == "" || cfg.Credentials.Password == "" {
		return nil, fmt.Errorf("credentials are required")
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = DefaultLoginURL
	}
	if cfg.FailureMarker == "" {
		cfg.FailureMarker = DefaultFailureMarker
	}
	if cfg.Freshness <= 0 {
		cfg.Freshness = DefaultFreshness
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	httpClient, err := client.New(client.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Jar:       jar,
	})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	return &Manager{
		creds:     cfg.Credentials,
		loginURL:  cfg.LoginURL,
		marker:    cfg.FailureMarker,
		freshness: cfg.Freshness,
		now:       cfg.Now,
		client:    httpClient,
		logger:    log.With().Str("component", "session").Logger(),
	}, nil
}

// Login posts the credentials to the login endpoint. The last-login time
// is only updated when the response carries no failure marker.
func (m *Manager) Login(ctx context.Context) error {
	m.logger.Debug().Str("url", m.loginURL).Msg("Logging in")

	form := url.Values{
		"identity": {m.creds.Identity},
		"password": {m.creds.Password},
	}

	body, err := m.client.PostForm(ctx, m.loginURL, form)
	if err != nil {
		loginsTotal.WithLabelValues("error").Inc()
		m.logger.Error().Err(err).Msg("Login request failed")
		return fmt.Errorf("%w: %w", ErrAuthFailure, err)
	}

	if strings.Contains(string(body), m.marker) {
		loginsTotal.WithLabelValues("rejected").Inc()
		m.logger.Error().Msg("Login failed")
		return fmt.Errorf("%w: credentials rejected", ErrAuthFailure)
	}

	m.lastLogin = m.now()
	loginsTotal.WithLabelValues("success").Inc()
	m.logger.Debug().Time("last_login", m.lastLogin).Msg("Logged in")

	return nil
}

// EnsureAuthenticated logs in again when the last login is older than the
// freshness threshold. It returns nil only if a valid session exists.
func (m *Manager) EnsureAuthenticated(ctx context.Context) error {
	if m.IsFresh() {
		return nil
	}

	m.logger.Debug().
		Time("last_login", m.lastLogin).
		Dur("freshness", m.freshness).
		Msg("Log-in expired, retrying")

	if err := m.Login(ctx); err != nil {
		m.logger.Error().Err(err).Msg("Log-in failed")
		return err
	}
	return nil
}

// IsFresh reports whether the last login is within the freshness window.
// A manager that never logged in is never fresh.
func (m *Manager) IsFresh() bool {
	if m.lastLogin.IsZero() {
		return false
	}
	return m.now().Sub(m.lastLogin) <= m.freshness
}

// LastLogin returns the time of the last confirmed login.
func (m *Manager) LastLogin() time.Time {
	return m.lastLogin
}

// Get performs a GET with the session cookies.
func (m *Manager) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return m.client.Get(ctx, rawURL)
}
