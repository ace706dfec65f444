package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"unalone/internal/domain"
)

// TokenSource provides the stored bearer token. ClearToken is invoked when
// the backend rejects the token so the next request starts unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
}

// Client is the HTTP client for the backend REST API. It injects the bearer
// token, unwraps response envelopes, and maps error responses onto
// domain.APIError.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	logger  *slog.Logger

	// reverseGeocodeURL is the Nominatim endpoint used by ReverseGeocode.
	// Overridable in tests.
	reverseGeocodeURL string
}

// NewClient returns a Client for the given API base URL.
func NewClient(baseURL string, client *http.Client, tokens TokenSource, logger *slog.Logger) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		client:            client,
		tokens:            tokens,
		logger:            logger,
		reverseGeocodeURL: "https://nominatim.openstreetmap.org/reverse",
	}
}

// do performs one API request and returns the raw response body. Error
// responses become *domain.APIError; a 401 on a non-auth endpoint with a
// stored token additionally clears the token so the application can force
// re-authentication.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token := ""
	if c.tokens != nil {
		if t, err := c.tokens.Token(ctx); err == nil {
			token = t
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &domain.APIError{Status: resp.StatusCode}
		apiErr.Code, apiErr.Message = extractErrorMessage(raw)
		// Expired or invalid session: drop the stored token so the app
		// resets to unauthenticated. Failed login/register attempts keep
		// surfacing a credential error instead.
		if resp.StatusCode == http.StatusUnauthorized && token != "" && !isAuthEndpoint(path) {
			if c.tokens != nil {
				if err := c.tokens.ClearToken(ctx); err != nil {
					c.logger.Warn("failed to clear rejected token", "err", err)
				}
			}
			c.logger.Info("token rejected by backend, session reset", "path", path)
		}
		return nil, apiErr
	}

	return raw, nil
}

func isAuthEndpoint(path string) bool {
	return strings.HasPrefix(path, "/auth/login") || strings.HasPrefix(path, "/auth/register")
}

// extractErrorMessage pulls a best-effort human-readable message from an
// error body. Backends answer either {"message": ...} or the
// {"error": {"code", "message"}} envelope.
func extractErrorMessage(raw []byte) (code, message string) {
	var env struct {
		Message string `json:"message"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", ""
	}
	if env.Error != nil && env.Error.Message != "" {
		return env.Error.Code, env.Error.Message
	}
	return "", env.Message
}
