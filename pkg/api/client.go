// Package api is the dashboard's HTTP client for the backend. Every call goes
// through one retry.Executor, so a 429 from any resource is handled the same
// way.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jzx17/backoffice/pkg/model"
	"github.com/jzx17/backoffice/pkg/permission"
	"github.com/jzx17/backoffice/pkg/retry"
	"github.com/jzx17/backoffice/pkg/types"
)

// RequestIDHeader carries a fresh id on every attempt
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout bounds a single attempt when no http.Client is supplied
const DefaultTimeout = 30 * time.Second

// Client talks to the backend
type Client struct {
	base       *url.URL
	httpClient *http.Client
	executor   *retry.Executor
	limiter    *rate.Limiter
	logger     *slog.Logger
	userAgent  string
	session    *permission.Session

	mu    sync.RWMutex
	token string

	clients    *Resource[model.Client]
	invoices   *Resource[model.Invoice]
	jobFiles   *Resource[model.JobFile]
	modules    *Resource[model.Module]
	products   *Resource[model.Product]
	quotations *Resource[model.Quotation]
	roles      *Resource[model.Role]
	taxes      *Resource[model.Tax]
	users      *Resource[model.User]
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithExecutor replaces the default retry executor
func WithExecutor(e *retry.Executor) ClientOption {
	return func(c *Client) {
		c.executor = e
	}
}

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit paces outgoing attempts on this client. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithToken sets the bearer token up front
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithSession sets the permission session Login fills and Logout clears
func WithSession(s *permission.Session) ClientOption {
	return func(c *Client) {
		c.session = s
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: base url %q must be http or https", types.ErrInvalidInput, baseURL)
	}

	c := &Client{
		base:       base,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
		userAgent:  "backoffice",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.executor == nil {
		c.executor = retry.NewExecutor(retry.DefaultPolicy(), retry.WithEventHandler(retry.NewLogEventHandler(c.logger)))
	}
	if c.session == nil {
		c.session = permission.NewSession()
	}

	c.clients = NewResource[model.Client](c, "clients", "clients")
	c.invoices = NewResource[model.Invoice](c, "invoices", "invoices")
	c.jobFiles = NewResource[model.JobFile](c, "job_files", "job-files")
	c.modules = NewResource[model.Module](c, "modules", "modules")
	c.products = NewResource[model.Product](c, "products", "products")
	c.quotations = NewResource[model.Quotation](c, "quotations", "quotations")
	c.roles = NewResource[model.Role](c, "roles", "roles")
	c.taxes = NewResource[model.Tax](c, "taxes", "taxes")
	c.users = NewResource[model.User](c, "users", "users")

	return c, nil
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Session returns the permission session of this client
func (c *Client) Session() *permission.Session {
	return c.session
}

// envelope is the backend's response wrapper
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Status     *bool           `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// call runs one logical request under the retry executor and decodes the
// envelope data into out (when out is non-nil).
func (c *Client) call(ctx context.Context, op, method string, query url.Values, body any, out any, path ...string) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
	}

	data, err := retry.ExecuteWithName(c.executor, ctx, op, func(ctx context.Context) (json.RawMessage, error) {
		return c.attempt(ctx, method, query, payload, path...)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if out == nil || len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w: decode data: %v", op, types.ErrUnexpectedResponse, err)
	}
	return nil
}

// attempt performs exactly one HTTP round trip
func (c *Client) attempt(ctx context.Context, method string, query url.Values, payload []byte, path ...string) (json.RawMessage, error) {
	requestID := uuid.NewString()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(err, requestID)
		}
	}

	u := c.base.JoinPath(path...)
	u.RawQuery = query.Encode()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err, requestID)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err, requestID)
	}

	c.logger.DebugContext(ctx, "api request",
		"method", method,
		"path", u.Path,
		"request_id", requestID,
		"status", resp.StatusCode,
	)

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &types.APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Message,
			RetryAfter: resp.Header.Get("Retry-After"),
			RequestID:  requestID,
			Body:       raw,
		}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnexpectedResponse, decodeErr)
	}
	if env.Status != nil && !*env.Status {
		status := env.StatusCode
		if status == 0 {
			status = resp.StatusCode
		}
		return nil, &types.APIError{
			StatusCode: status,
			Message:    env.Message,
			RetryAfter: resp.Header.Get("Retry-After"),
			RequestID:  requestID,
			Body:       raw,
		}
	}
	return env.Data, nil
}

func transportError(err error, requestID string) error {
	return &types.APIError{
		Message:   "transport error",
		RequestID: requestID,
		Cancelled: errors.Is(err, context.Canceled),
		Err:       err,
	}
}
