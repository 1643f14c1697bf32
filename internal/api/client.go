package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pulseinbox/inbox-cli/internal/config"
	"github.com/pulseinbox/inbox-cli/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer credential attached to authenticated
// calls. An empty string means unauthenticated.
type TokenSource interface {
	Credential() string
}

// Client talks to the inbox backend. All request/response bodies are JSON.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

type ClientParams struct {
	fx.In

	Config *config.APIConfig
	Tokens TokenSource
}

// NewClient creates a Client for the configured backend.
func NewClient(params ClientParams) *Client {
	timeout := 30 * time.Second
	if params.Config.Timeout != "" {
		if d, err := time.ParseDuration(params.Config.Timeout); err == nil {
			timeout = d
		}
	}
	return &Client{
		baseURL: params.Config.BaseURL,
		client:  &http.Client{Timeout: timeout},
		tokens:  params.Tokens,
	}
}

// GoogleAuthURL is where the browser is sent to start the external
// identity flow; the backend redirects back with ?token=.
func (c *Client) GoogleAuthURL() string {
	return c.baseURL + "/auth/google"
}

// do executes one JSON request. When authed is true the current credential
// is attached as a bearer header. A non-2xx status decodes into *Error with
// the server's message when the body carries one; out may be nil.
func (c *Client) do(ctx context.Context, method, path string, authed bool, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		if token := c.tokens.Credential(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error("request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(bodyBytes, &envelope) == nil {
			apiErr.Message = envelope.Message
		}
		logger.Debug("request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Module provides the API client dependencies
var Module = fx.Module("api",
	fx.Provide(
		NewClient,
	),
)
