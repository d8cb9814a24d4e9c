// Package transport provides the JSON request helpers every service call goes
// through. Reads degrade to absence; writes fail loudly.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/r14dd/matchsentinel/internal/common"
)

const instrumentationName = "github.com/r14dd/matchsentinel/internal/transport"

// RequestIDHeader is echoed by the services into their logs.
const RequestIDHeader = "X-Request-Id"

// maxErrorBody caps how much of a failed response is kept in an error message.
const maxErrorBody = 4096

// Options configures a Client.
type Options struct {
	// Base is the underlying round tripper; http.DefaultTransport when nil.
	Base           http.RoundTripper
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Token          string
	Timeout        time.Duration
}

// Client issues JSON requests against the backend services.
type Client struct {
	httpClient *http.Client
	tracer     trace.Tracer
	requests   metric.Int64Counter
	duration   metric.Float64Histogram
}

// New creates a Client. A non-empty token is sent as a bearer credential.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if opts.Token != "" {
		base = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"}),
			Base:   base,
		}
	}

	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	requests, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Total service requests issued by the console"))
	if err != nil {
		slog.Debug("request counter unavailable", "error", err)
	}
	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Service request duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		slog.Debug("request histogram unavailable", "error", err)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: base,
		},
		tracer:   tp.Tracer(instrumentationName),
		requests: requests,
		duration: duration,
	}
}

// response is the raw outcome of one request.
type response struct {
	body   []byte
	status int
}

// do sends one JSON request and reads the whole response body.
func (c *Client) do(ctx context.Context, method, url string, body any) (response, error) {
	ctx, span := c.tracer.Start(ctx, method+" "+url,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", url),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.send(ctx, method, url, body)
	c.record(ctx, method, resp.status, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return resp, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.status))
	if resp.status >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(resp.status))
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, url string, body any) (response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return response{}, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{status: resp.StatusCode}, fmt.Errorf("failed to read response: %w", err)
	}

	return response{status: resp.StatusCode, body: data}, nil
}

func (c *Client) record(ctx context.Context, method string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.Int("http.status_code", status),
	)
	if c.requests != nil {
		c.requests.Add(ctx, 1, attrs)
	}
	if c.duration != nil {
		c.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

// Get fetches url and decodes the JSON body. Any failure, including a non-2xx
// status, yields absence rather than an error so that callers can treat
// "not there yet" and "not reachable" alike.
func Get[T any](ctx context.Context, c *Client, url string) (*T, bool) {
	resp, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Debug("GET failed", "url", url, "error", err)
		return nil, false
	}
	if !isSuccess(resp.status) {
		slog.Debug("GET returned no data", "url", url, "status", resp.status)
		return nil, false
	}

	var out T
	if err := json.Unmarshal(resp.body, &out); err != nil {
		slog.Debug("GET returned undecodable body", "url", url, "error", err)
		return nil, false
	}
	return &out, true
}

// Post sends body to url and decodes the response.
func Post[T any](ctx context.Context, c *Client, url string, body any) (*T, error) {
	return mutate[T](ctx, c, http.MethodPost, url, body)
}

// Patch sends body to url and decodes the response.
func Patch[T any](ctx context.Context, c *Client, url string, body any) (*T, error) {
	return mutate[T](ctx, c, http.MethodPatch, url, body)
}

func mutate[T any](ctx context.Context, c *Client, method, url string, body any) (*T, error) {
	resp, err := c.do(ctx, method, url, body)
	if err != nil {
		return nil, &common.MutationError{Method: method, Endpoint: url, Status: resp.status, Err: err}
	}
	if !isSuccess(resp.status) {
		return nil, &common.MutationError{
			Method:   method,
			Endpoint: url,
			Status:   resp.status,
			Body:     truncate(resp.body),
		}
	}

	var out T
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, &common.MutationError{
			Method:   method,
			Endpoint: url,
			Status:   resp.status,
			Err:      fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return &out, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "…"
	}
	return string(body)
}
