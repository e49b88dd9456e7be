// Package client talks to a baias server over HTTP. It keeps the session
// cookie in a jar so Login, Update and Logout share one server-side session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"baias/internal/catalog/gateway"
	"baias/internal/catalog/models"
	dErrors "baias/pkg/domain-errors"
	"baias/pkg/platform/httputil"
	"baias/pkg/platform/sentinel"
	"baias/pkg/requestcontext"
)

// DefaultTimeout bounds each call.
const DefaultTimeout = 10 * time.Second

// Client is a remote catalog session.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. A jar is added when hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", baseURL)
	}
	c := &Client{base: u, http: &http.Client{}, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		hc := *c.http
		hc.Jar = jar
		c.http = &hc
	}
	return c, nil
}

// GetData fetches the whole catalog.
func (c *Client) GetData(ctx context.Context) (*models.Catalog, error) {
	raw, err := c.do(ctx, http.MethodGet, "/data", nil)
	if err != nil {
		return nil, err
	}
	doc, err := gateway.Decode(raw)
	if err != nil {
		return nil, dErrors.Wrap(errors.Join(sentinel.ErrCorrupt, err), dErrors.CodeCorruptDocument, "server sent a malformed catalog")
	}
	return doc, nil
}

// Status reports whether the session is admin.
func (c *Client) Status(ctx context.Context) (bool, error) {
	raw, err := c.do(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return false, err
	}
	var st struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "unexpected status response")
	}
	return st.IsAdmin, nil
}

// Login asks the server to make this session admin.
func (c *Client) Login(ctx context.Context, password string) error {
	body, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, "/login", body)
	return err
}

// Logout ends the admin session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/logout", nil)
	return err
}

// Update replaces the server's catalog with doc.
func (c *Client) Update(ctx context.Context, doc *models.Catalog) error {
	body, err := gateway.Encode(doc)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode catalog")
	}
	_, err = c.do(ctx, http.MethodPost, "/update", body)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := requestcontext.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, fmt.Sprintf("%s %s timed out", method, path))
		}
		return nil, dErrors.Wrap(errors.Join(sentinel.ErrUnavailable, err), dErrors.CodeStorageUnavailable, "server unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, httputil.MaxBodyBytes))
	if err != nil {
		return nil, dErrors.Wrap(errors.Join(sentinel.ErrUnavailable, err), dErrors.CodeStorageUnavailable, "failed to read response")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, remoteError(resp.StatusCode, raw)
	}
	return raw, nil
}

// remoteError rebuilds the server's coded error from its envelope.
func remoteError(status int, raw []byte) error {
	var env httputil.ErrorResponse
	if err := json.Unmarshal(raw, &env); err != nil || env.Error == "" {
		return dErrors.New(codeForStatus(status), fmt.Sprintf("server returned %d", status))
	}
	msg := env.ErrorDescription
	if msg == "" {
		msg = env.Error
	}
	return dErrors.New(dErrors.Code(env.Error), msg)
}

func codeForStatus(status int) dErrors.Code {
	switch status {
	case http.StatusBadRequest:
		return dErrors.CodeBadRequest
	case http.StatusUnauthorized:
		return dErrors.CodeUnauthorized
	case http.StatusNotFound:
		return dErrors.CodeNotFound
	case http.StatusConflict:
		return dErrors.CodeConflict
	case http.StatusServiceUnavailable:
		return dErrors.CodeStorageUnavailable
	case http.StatusGatewayTimeout:
		return dErrors.CodeTimeout
	default:
		return dErrors.CodeInternal
	}
}
