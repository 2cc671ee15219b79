// Package api talks to the remote blog service over JSON and bearer tokens.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/debemdeboas/blogctl/internal/config"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var apiLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

// TokenSource yields the bearer token, or "" when logged out.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	userAgent  string

	// OnUnauthorized runs after a 401 to a request that carried a token.
	OnUnauthorized func()
}

type Option func(*Client)

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithUnauthorizedHandler(f func()) Option {
	return func(c *Client) { c.OnUnauthorized = f }
}

// WithTimeout bounds every request. Zero keeps the transport defaults.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		userAgent:  "blogctl/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

type authMode int

const (
	authOptional authMode = iota
	authRequired
	authNone
)

// do sends body as JSON and decodes a 2xx answer into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, auth authMode, body, out any) error {
	token := ""
	if auth != authNone {
		token = c.token()
	}
	if auth == authRequired && token == "" {
		return ErrAuthRequired
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(config.HAccept, config.CTypeJSON)
	req.Header.Set(config.HUserAgent, c.userAgent)
	req.Header.Set(config.HRequestID, requestID)
	if body != nil {
		req.Header.Set(config.HCType, config.CTypeJSON)
	}
	if token != "" {
		req.Header.Set(config.HAuthorization, config.BearerPrefix+token)
	}

	log := apiLogger.With().Str("method", method).Str("path", path).Str("request_id", requestID).Logger()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	log.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("Response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{
			Status:    resp.StatusCode,
			Message:   errorMessage(resp.StatusCode, data),
			withToken: token != "",
		}
		if apiErr.Is(ErrUnauthorized) && c.OnUnauthorized != nil {
			log.Warn().Msg("Token rejected")
			c.OnUnauthorized()
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage reads {"error": ...}, {"msg": ...} or {"message": ...} payloads.
func errorMessage(status int, data []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return serverError(status)
	}
	switch {
	case payload.Error != "":
		return payload.Error
	case payload.Msg != "":
		return payload.Msg
	case payload.Message != "":
		return payload.Message
	}
	return serverError(status)
}
