// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api talks to the library backend: credential checks and the
// weather lookup shown after sign-in.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidCredentials means the server rejected the username or
	// password (HTTP 401).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrServer is a 500 response. Other statuses are ErrUnexpected.
	ErrServer = errors.New("server error")

	// ErrNetwork is a transport failure: no response was received.
	ErrNetwork = errors.New("network error")

	// ErrUnexpected is any other response.
	ErrUnexpected = errors.New("unexpected response")

	// ErrThrottled means too many login attempts were made recently.
	ErrThrottled = errors.New("too many login attempts")
)

// UserMessage maps an authentication error to the text shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, ErrServer):
		return "Server error. Please try again later."
	case errors.Is(err, ErrNetwork):
		return "Network error. Please check your connection."
	case errors.Is(err, ErrThrottled):
		return "Too many login attempts. Please wait a moment."
	default:
		return "Login failed. Please try again."
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// DefaultTimeout bounds each request.
const DefaultTimeout = 10 * time.Second

// DefaultLoginsPerMinute is the default authentication rate.
const DefaultLoginsPerMinute = 5

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Client is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLoginRate allows perMinute authentication attempts per minute, with
// bursts of the same size. Zero or less disables throttling.
func WithLoginRate(perMinute int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		base: u,
		http: &http.Client{Timeout: DefaultTimeout},
		log:  zerolog.Nop(),
	}
	WithLoginRate(DefaultLoginsPerMinute)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.base.ResolveReference(&url.URL{Path: path})
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

type loginResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// Authenticate submits the credentials and returns the principal the
// server accepted.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return "", ErrThrottled
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("login/", nil), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Msg("login request failed")
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	if err := statusError(resp.StatusCode); err != nil {
		c.log.Debug().Int("status", resp.StatusCode).Msg("login rejected")
		return "", err
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return "", fmt.Errorf("%w: decode login response: %v", ErrUnexpected, err)
	}
	if lr.Username == "" {
		return "", fmt.Errorf("%w: login response has no username", ErrUnexpected)
	}
	return lr.Username, nil
}

func statusError(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized:
		return ErrInvalidCredentials
	case code == http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrServer, code)
	default:
		return fmt.Errorf("%w: status %d", ErrUnexpected, code)
	}
}

// =============================================================================
// WEATHER
// =============================================================================

// WeatherByCity fetches the weather document for a city name.
func (c *Client) WeatherByCity(ctx context.Context, city string) (json.RawMessage, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, errors.New("city is required")
	}
	return c.weather(ctx, url.Values{"city": {city}})
}

// WeatherByCoords fetches the weather document for a position.
func (c *Client) WeatherByCoords(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("coordinates out of range: %v, %v", lat, lon)
	}
	return c.weather(ctx, url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	})
}

func (c *Client) weather(ctx context.Context, query url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("weather/", query), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("weather: %w: status %d", ErrServer, resp.StatusCode)
		}
		return nil, fmt.Errorf("weather: %w: status %d", ErrUnexpected, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("weather: %w: body is not JSON", ErrUnexpected)
	}
	return json.RawMessage(body), nil
}
