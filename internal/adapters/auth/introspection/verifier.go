package introspection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"manage-breast-screening/internal/ports/auth"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotConfigured = errors.New("introspection client not configured")
	ErrUpstream      = errors.New("introspection upstream error")
)

const (
	introspectPath = "/v1/tokens/introspect"
	defaultTimeout = 10 * time.Second
)

type Config struct {
	BaseURL string
	APIKey  string

	// Header carrying the API key. Defaults to "X-Api-Key".
	APIKeyHeader string
	Timeout      time.Duration
	Retries      int
}

// Verifier implements auth.AuthVerifier by asking the identity service
// whether a token is active.
type Verifier struct {
	client *resty.Client
}

func New(cfg Config) (*Verifier, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	apiKey := strings.TrimSpace(cfg.APIKey)
	if baseURL == "" || apiKey == "" {
		return nil, ErrNotConfigured
	}
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader(h, apiKey)

	return &Verifier{client: client}, nil
}

type introspectResponse struct {
	Active bool     `json:"active"`
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	var out introspectResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"token": token}).
		SetResult(&out).
		Post(introspectPath)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized, resp.StatusCode() == http.StatusForbidden:
		return auth.Claims{}, auth.ErrInvalidToken
	case resp.IsError():
		return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrUpstream, resp.StatusCode())
	}

	if !out.Active || strings.TrimSpace(out.UserID) == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	return auth.Claims{
		UserID: strings.TrimSpace(out.UserID),
		Email:  strings.TrimSpace(out.Email),
		Roles:  out.Roles,
	}, nil
}
