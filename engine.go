package floodr

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/cemoody/floodr/internal/telemetry"
)

// Transport tuning defaults, grounded on the pool-sizing knobs a connection-
// pooling HTTP client needs: enough idle connections per host that a batch
// doesn't pay repeated handshake cost, bounded so one engine can't exhaust
// file descriptors.
const (
	defaultMaxIdleConns        = 200
	defaultMaxIdleConnsPerHost = 100
	defaultIdleConnTimeout     = 90 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
	defaultDialTimeout         = 10 * time.Second
	defaultKeepAlive           = 30 * time.Second
)

// engine owns a single pooled *http.Client and is the only component that
// performs I/O. Connections are reused across execute calls for the
// engine's lifetime.
type engine struct {
	client   *http.Client
	logger   telemetry.Logger
	provider telemetry.Provider
}

func newEngine(cfg *clientConfig) *engine {
	maxConnsPerHost := defaultMaxIdleConnsPerHost
	if cfg.maxConnections != nil {
		maxConnsPerHost = *cfg.maxConnections
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultDialTimeout,
			KeepAlive: defaultKeepAlive,
		}).DialContext,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   maxConnsPerHost,
		MaxConnsPerHost:       maxConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		DisableCompression:    !cfg.enableCompression,
		ForceAttemptHTTP2:     true,
	}

	logger := cfg.logger
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}

	return &engine{
		client: &http.Client{
			Transport: transport,
			// Per-request deadlines are applied via context in execute;
			// the client itself carries no blanket timeout so a long
			// per-request override isn't clipped early.
		},
		logger:   logger,
		provider: telemetry.NewDisabled(),
	}
}

// execute performs one fully normalized HTTP request and produces exactly
// one Response. It never returns a Go error: any transport, DNS, TLS,
// connect, read, write, or timeout failure is captured into
// Response.Error.
func (e *engine) execute(ctx context.Context, req normalizedRequest) Response {
	start := time.Now()

	ctx, span := e.provider.Tracer().Start(ctx, "floodr.execute")
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, bytes.NewReader(req.body))
	if err != nil {
		return e.failure(ctx, req, start, "invalid request: "+err.Error())
	}
	httpReq.Header = req.header
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", userAgent)
	}

	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return e.failure(ctx, req, start, classifyTransportError(ctx, err))
	}
	defer httpResp.Body.Close()

	content, err := io.ReadAll(httpResp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return e.failure(ctx, req, start, "reading response body: "+err.Error())
	}
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))

	resp := Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Content:    content,
		URL:        req.url,
		Elapsed:    elapsed,
		RequestID:  req.requestID,
	}
	e.provider.Instruments().RecordRequest(ctx, resp.Elapsed.Seconds(), resp.StatusCode, resp.Ok())
	return resp
}

func (e *engine) failure(ctx context.Context, req normalizedRequest, start time.Time, msg string) Response {
	resp := Response{
		StatusCode: 0,
		URL:        req.url,
		Elapsed:    time.Since(start),
		Error:      msg,
		RequestID:  req.requestID,
	}
	e.provider.Instruments().RecordRequest(ctx, resp.Elapsed.Seconds(), resp.StatusCode, resp.Ok())
	return resp
}

// classifyTransportError turns a net/http client error into a concise,
// descriptive message. When the context was cancelled or deadline-exceeded
// the message names which one, per the timeout-vs-longtail race resolution
// recorded in DESIGN.md.
func classifyTransportError(ctx context.Context, err error) string {
	if ctx.Err() == context.DeadlineExceeded {
		return "request timeout: " + err.Error()
	}
	if ctx.Err() == context.Canceled {
		return "request cancelled: " + err.Error()
	}

	var netErr net.Error
	if asNetError(err, &netErr) && netErr.Timeout() {
		return "request timeout: " + err.Error()
	}

	return "transport error: " + err.Error()
}

func asNetError(err error, target *net.Error) bool {
	for err != nil {
		if ne, ok := err.(net.Error); ok {
			*target = ne
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// newTelemetryProvider builds an internal/telemetry.Provider from cfg,
// standing up the otlptracegrpc/otlpmetricgrpc exporters when tracing or
// metrics is enabled.
func newTelemetryProvider(cfg *clientConfig) (telemetry.Provider, error) {
	return telemetry.New(context.Background(), telemetry.Config{
		CollectorEndpoint: cfg.collectorEndpoint,
		EnableTracing:     cfg.tracingEnabled,
		EnableMetrics:     cfg.metricsEnabled,
		ServiceName:       "floodr",
	})
}

// warmupProbe issues a lightweight probe against url to populate the pool
// with a live connection. Any failure is captured in the returned status/
// elapsed/error triple rather than surfaced as a Go error, matching
// execute's own failure contract.
func (e *engine) warmupProbe(ctx context.Context, method, url string) (status int, elapsed time.Duration, errMsg string) {
	start := time.Now()

	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, time.Since(start), "invalid request: " + err.Error()
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return 0, time.Since(start), classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if method == http.MethodHead && resp.StatusCode == http.StatusMethodNotAllowed {
		return e.warmupProbe(ctx, http.MethodGet, url)
	}

	return resp.StatusCode, time.Since(start), ""
}
