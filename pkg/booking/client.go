// Package booking is the request client for the scheduling service. It owns the
// default identity header and exposes one typed method per backend endpoint.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cargoreligion/booking-client/internal/models"
	"github.com/cargoreligion/booking-client/pkg/errors"
	"github.com/cargoreligion/booking-client/pkg/httpclient"
	"github.com/cargoreligion/booking-client/pkg/logger"
	"github.com/cargoreligion/booking-client/pkg/metrics"
	"github.com/cargoreligion/booking-client/pkg/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is used when no base URL is configured
	DefaultBaseURL = "http://localhost:8080/api"

	// HeaderUserID carries the acting user's identity on every request
	HeaderUserID = "X-User-Id"

	// HeaderRequestID correlates a single call across client and backend logs
	HeaderRequestID = "X-Request-Id"

	// DirectoryUserID is the fixed identity the backend expects for the user listing
	DirectoryUserID = "989f159e-4ad7-4589-8a1c-1276078022ec"

	serviceName = "scheduling_api"

	// Bodies of failed responses are kept for diagnostics up to this size
	maxErrorBody = 64 * 1024
)

type userIDKey struct{}

// ContextWithUserID overrides the default identity for calls made with ctx
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok
}

// Client issues requests against the scheduling service
type Client struct {
	baseURL    string
	httpClient httpclient.Client
	limiter    *rate.Limiter
	userID     atomic.Value // string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the transport
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserID seeds the default identity header
func WithUserID(id string) Option {
	return func(c *Client) {
		c.userID.Store(id)
	}
}

// WithRateLimit paces outbound calls to rps requests per second. A non-positive
// rps leaves calls unpaced.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a client rooted at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpclient.NewStandardClient(),
	}
	c.userID.Store("")
	for _, opt := range opts {
		opt(c)
	}

	logger.Debug("Scheduling client initialized",
		zap.String("base_url", c.baseURL),
		zap.Bool("rate_limited", c.limiter != nil),
	)
	return c
}

// BaseURL returns the root every path is resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetUserID replaces the default identity header for requests built from now on.
// An empty id removes the header.
func (c *Client) SetUserID(id string) {
	c.userID.Store(id)
}

// UserID returns the current default identity
func (c *Client) UserID() string {
	return c.userID.Load().(string)
}

// call describes one request
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	// userID, when set, wins over both the context and the default identity
	userID string
}

// do performs req and decodes a 2xx body into out. An empty 2xx body leaves out untouched.
func (c *Client) do(ctx context.Context, req call, out any) error {
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "booking."+req.op)
	defer span.End()

	err := c.roundTrip(ctx, req, out)
	duration := metrics.MeasureDuration(start)

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.APIClientRequestDuration.WithLabelValues(req.op, status).Observe(duration)
	metrics.APIClientRequestTotal.WithLabelValues(req.op, status).Inc()

	fields := []zap.Field{
		zap.String("method", req.method),
		zap.String("path", req.path),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
		if code := errors.StatusCode(err); code != 0 {
			fields = append(fields, zap.Int("status_code", code))
		}
	}
	logger.LogAPICall(serviceName, req.op, status, duration, fields...)

	return err
}

func (c *Client) roundTrip(ctx context.Context, req call, out any) error {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &errors.TransportError{Op: req.op, URL: endpoint, Err: err}
		}
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return &errors.TransportError{Op: req.op, URL: endpoint, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return &errors.TransportError{Op: req.op, URL: endpoint, Err: err}
	}
	c.setHeaders(ctx, httpReq, req)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &errors.TransportError{Op: req.op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &errors.HTTPStatusError{Op: req.op, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.TransportError{Op: req.op, URL: endpoint, Err: err}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &errors.TransportError{
			Op:  req.op,
			URL: endpoint,
			Err: &errors.DecodeError{Source: "response", Err: err},
		}
	}
	return nil
}

// setHeaders applies the defaults. The identity is read here, so requests already
// built keep the header they were created with.
func (c *Client) setHeaders(ctx context.Context, httpReq *http.Request, req call) {
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	httpReq.Header.Set(HeaderRequestID, requestID)

	userID := req.userID
	if userID == "" {
		if id, ok := userIDFromContext(ctx); ok {
			userID = id
		} else {
			userID = c.UserID()
		}
	}
	if userID != "" {
		httpReq.Header.Set(HeaderUserID, userID)
	}

	if span := tracing.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("http.method", req.method),
			attribute.String("http.path", req.path),
			attribute.String("request.id", requestID),
		)
	}
	tracing.InjectHeaders(ctx, httpReq.Header)
}

func pageQuery(p models.PageRequest) url.Values {
	p = p.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("pageSize", strconv.Itoa(p.PageSize))
	return q
}
