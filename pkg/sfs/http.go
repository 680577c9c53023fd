package sfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 27772
	DefaultTimeout = 10 * time.Second

	instrumentationName = "github.com/SFSPlayer-sys/gosfs/pkg/sfs"

	// maxErrorBody caps how much of a failed response is kept in StatusError.
	maxErrorBody = 512
)

// Object is a decoded JSON object as returned by the server.
type Object = map[string]any

// Option configures an HTTPClient or a Client.
type Option func(*settings)

type settings struct {
	host    string
	port    int
	timeout time.Duration
	session *http.Client
	logger  *slog.Logger
	warmup  bool
}

func defaultSettings() settings {
	return settings{
		host:    DefaultHost,
		port:    DefaultPort,
		timeout: DefaultTimeout,
		warmup:  true,
	}
}

// WithHost sets the server host.
func WithHost(host string) Option {
	return func(s *settings) { s.host = host }
}

// WithPort sets the server port.
func WithPort(port int) Option {
	return func(s *settings) { s.port = port }
}

// WithTimeout sets the per-request timeout. Non-positive disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithSession reuses an existing *http.Client for all requests.
func WithSession(c *http.Client) Option {
	return func(s *settings) { s.session = c }
}

// WithLogger logs every request at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithoutWarmup skips the /version request New makes on construction.
func WithoutWarmup() Option {
	return func(s *settings) { s.warmup = false }
}

// HTTPClient is the shared transport for every API group. Host, Port and Timeout may be
// changed between requests.
type HTTPClient struct {
	Host    string
	Port    int
	Timeout time.Duration

	session *http.Client
	logger  *slog.Logger

	requests metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// NewHTTPClient creates a transport for host:port. An empty host or zero port falls back
// to the option value or the default.
func NewHTTPClient(host string, port int, opts ...Option) *HTTPClient {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if host != "" {
		s.host = host
	}
	if port != 0 {
		s.port = port
	}
	return newHTTPClient(s)
}

func newHTTPClient(s settings) *HTTPClient {
	c := &HTTPClient{
		Host:    s.host,
		Port:    s.port,
		Timeout: s.timeout,
		session: s.session,
		logger:  s.logger,
	}
	if c.session == nil {
		c.session = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	c.initMetrics()
	return c
}

// Uses the global OTel meter (no-op if not configured).
func (c *HTTPClient) initMetrics() {
	m := otel.Meter(instrumentationName)
	fallback := noop.NewMeterProvider().Meter(instrumentationName)

	var err error
	if c.requests, err = m.Int64Counter("sfs.http.requests",
		metric.WithDescription("Requests sent to the SFSControl server")); err != nil {
		c.requests, _ = fallback.Int64Counter("sfs.http.requests")
	}
	if c.failures, err = m.Int64Counter("sfs.http.failures",
		metric.WithDescription("Requests that failed in transport or returned non-2xx")); err != nil {
		c.failures, _ = fallback.Int64Counter("sfs.http.failures")
	}
	if c.duration, err = m.Float64Histogram("sfs.http.duration",
		metric.WithDescription("Request round-trip time"),
		metric.WithUnit("ms")); err != nil {
		c.duration, _ = fallback.Float64Histogram("sfs.http.duration")
	}
}

// BaseURL returns http://host:port.
func (c *HTTPClient) BaseURL() string {
	return "http://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GetJSON sends GET path with query params and decodes the JSON body.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, params url.Values) (any, error) {
	target := c.BaseURL() + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	body, _, err := c.do(ctx, http.MethodGet, path, target, nil)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return out, nil
}

// PostJSON sends payload as a JSON body to path. JSON responses are decoded; a text
// body is decoded if it parses as JSON and otherwise returned as Object{"result": text}.
func (c *HTTPClient) PostJSON(ctx context.Context, path string, payload any) (any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", path, err)
	}
	body, header, err := c.do(ctx, http.MethodPost, path, c.BaseURL()+path, data)
	if err != nil {
		return nil, err
	}

	var out any
	if strings.HasPrefix(header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decoding %s response: %w", path, err)
		}
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err == nil {
		return out, nil
	}
	return Object{"result": string(body)}, nil
}

// Screenshot returns the raw bytes of GET /screenshot.
func (c *HTTPClient) Screenshot(ctx context.Context) ([]byte, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/screenshot", c.BaseURL()+"/screenshot", nil)
	return body, err
}

func (c *HTTPClient) do(ctx context.Context, method, path, target string, payload []byte) ([]byte, http.Header, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
	)
	start := time.Now()
	c.requests.Add(ctx, 1, attrs)
	defer func() {
		c.duration.Record(context.Background(), float64(time.Since(start).Microseconds())/1000, attrs)
	}()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		c.failures.Add(ctx, 1, attrs)
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("sfs request", "method", method, "url", target)
	resp, err := c.session.Do(req)
	if err != nil {
		c.failures.Add(context.Background(), 1, attrs)
		return nil, nil, fmt.Errorf("%s %s request failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.failures.Add(context.Background(), 1, attrs)
		return nil, nil, fmt.Errorf("reading %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.failures.Add(context.Background(), 1, attrs)
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, nil, &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(msg)}
	}
	c.logger.Debug("sfs response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(body))
	return body, resp.Header, nil
}
