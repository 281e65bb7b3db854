// Package api is the HTTP transport shared by the forum service clients.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

const (
	dialTimeout     = 10 * time.Second
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 10 << 20
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// HTTPError is a failed request. Status is 0 when no response was received.
// Detail is the message the server put in the error body, if any; Text is
// the fallback description (status text, raw body or transport error).
type HTTPError struct {
	Status int
	Detail string
	Text   string
	Err    error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Describe())
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Describe returns Detail, or Text when the server gave no detail.
func (e *HTTPError) Describe() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Text
}

// Request describes a single API call.
type Request struct {
	Method string
	Path   string
	// Route is the path template used for span names and metric labels.
	Route string
	Query url.Values
	Body  any
	// Token, when set, is sent as a bearer Authorization header.
	Token string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport.underlyingTransport = rt }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client sends JSON requests to the forum API. Every request carries the
// client cookie jar, a request id and the current trace context.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	transport *authenticatedTransport
	logger    *slog.Logger
}

// NewClient returns a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	netDialer := &net.Dialer{Timeout: dialTimeout}
	transport := &authenticatedTransport{
		underlyingTransport: &http.Transport{
			Proxy:       http.ProxyFromEnvironment,
			DialContext: netDialer.DialContext,
		},
	}

	c := &Client{
		baseURL:   u,
		transport: transport,
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = observability.Or(c.logger).With(slog.String("component", "api"))
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do sends req and decodes a successful JSON response into out, which may be
// nil. Any failure is returned as *HTTPError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	start := time.Now()
	route := req.Route
	if route == "" {
		route = req.Path
	}

	requestID := observability.ExtractRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = observability.WithRequestID(ctx, requestID)
	}

	span, ctx := observability.NewClientSpan(ctx, req.Method, route)
	defer span.End()
	span.AddAttributes(attribute.String("request.id", requestID))

	status, err := c.do(ctx, req, requestID, out)
	span.AddAttributes(attribute.Int("http.status_code", status))
	observability.RecordAPIRequest(req.Method, route, status, start)

	if err != nil {
		span.SetError(err)
		c.logger.DebugContext(ctx, "api request failed",
			slog.String("method", req.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.logger.DebugContext(ctx, "api request processed",
		slog.String("method", req.Method),
		slog.String("route", route),
		slog.Int("status", status),
		slog.Duration("latency", time.Since(start)),
	)
	return nil
}

func (c *Client) do(ctx context.Context, req Request, requestID string, out any) (int, error) {
	var body io.Reader
	if req.Body != nil {
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return 0, &HTTPError{Text: "failed to encode request body", Err: err}
		}
		body = bytes.NewReader(buf)
	}

	target := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(withBearer(ctx, req.Token), req.Method, target.String(), body)
	if err != nil {
		return 0, &HTTPError{Text: err.Error(), Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(HeaderRequestID, requestID)
	observability.InjectHeaders(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, &HTTPError{Text: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, &HTTPError{Status: resp.StatusCode, Text: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, decodeError(resp, data)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, &HTTPError{
				Status: resp.StatusCode,
				Text:   "invalid response body",
				Err:    err,
			}
		}
	}
	return resp.StatusCode, nil
}

func decodeError(resp *http.Response, data []byte) *HTTPError {
	httpErr := &HTTPError{
		Status: resp.StatusCode,
		Text:   http.StatusText(resp.StatusCode),
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var body models.ErrorResponse
		if err := json.Unmarshal(data, &body); err == nil {
			httpErr.Detail = body.Detail()
			return httpErr
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		httpErr.Text = text
	}
	return httpErr
}
