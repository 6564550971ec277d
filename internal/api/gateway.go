// Package api implements the authenticated request gateway: every backend
// call goes through it. It attaches bearer credentials when present,
// transparently refreshes an expired access token once per request, and
// falls back to the anonymous session-cookie identity when no valid token
// exists.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/mvaldeb/tienda/internal/auth"
	"github.com/mvaldeb/tienda/internal/common"
	"github.com/mvaldeb/tienda/internal/logging"
)

// Options control per-request gateway behavior.
type Options struct {
	// RequireAuth makes a valid bearer token mandatory. Without it the
	// request proceeds anonymously when no token can be obtained.
	RequireAuth bool
}

// Response is a fully-read backend response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Gateway issues HTTP calls against the REST backend. The underlying client
// carries a cookie jar so anonymous carts keep their session identity
// between calls.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	tokens     *auth.TokenStore
	log        logging.Logger
}

func NewGateway(baseURL string, timeout time.Duration, tokens *auth.TokenStore, log logging.Logger) (*Gateway, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar, Timeout: timeout},
		tokens:     tokens,
		log:        log,
	}, nil
}

// Do performs one backend call. body, when non-nil, is JSON-encoded.
//
// With Options.RequireAuth the call fails with common.ErrAuthentication
// when no valid token can be obtained, including after one refresh attempt.
// A 401 from the resource itself triggers exactly one refresh-and-retry;
// a second 401 is terminal. Non-401 failures never retry.
func (g *Gateway) Do(ctx context.Context, method, path string, body any, opts Options) (*Response, error) {
	token, err := g.bearer(ctx, opts.RequireAuth)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	resp, err := g.send(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && opts.RequireAuth {
		refreshed, err := g.tokens.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		resp, err = g.send(ctx, method, path, payload, refreshed)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("request to %s unauthorized after refresh: %w", path, common.ErrAuthentication)
		}
	}

	if resp.StatusCode >= 400 {
		return nil, serverError(path, resp)
	}

	return resp, nil
}

// bearer resolves the token to attach. Present-but-expired pairs get one
// refresh attempt; without require the request continues anonymously when
// that fails.
func (g *Gateway) bearer(ctx context.Context, require bool) (string, error) {
	token, err := g.tokens.GetValid(ctx)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}

	access, err := g.tokens.Access(ctx)
	if err != nil {
		return "", err
	}
	if access != "" {
		refreshed, err := g.tokens.Refresh(ctx)
		if err == nil {
			return refreshed, nil
		}
		if require {
			return "", err
		}
		g.log.Warn(ctx, "token refresh failed, continuing anonymously", "error", err)
		return "", nil
	}

	if require {
		return "", fmt.Errorf("no credentials stored: %w", common.ErrAuthentication)
	}
	return "", nil
}

func (g *Gateway) send(ctx context.Context, method, path string, payload []byte, token string) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, common.ErrNetwork)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s failed: %w", path, common.ErrNetwork)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// serverError maps a non-2xx response to common.ErrServer, keeping the
// server-provided message when one can be decoded.
func serverError(path string, resp *Response) error {
	var eb errorBody
	_ = json.Unmarshal(resp.Body, &eb)
	msg := eb.Error
	if msg == "" {
		msg = eb.Detail
	}
	if msg == "" {
		msg = fmt.Sprintf("http status %d", resp.StatusCode)
	}
	return fmt.Errorf("%s: %s: %w", path, msg, common.ErrServer)
}
