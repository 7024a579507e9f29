package floodr

import (
	"io"
	"time"

	"github.com/cemoody/floodr/internal/telemetry"
)

// ClientOption configures a Client at construction time. Each option is
// validated eagerly so NewClient fails fast on the first bad value.
type ClientOption func(*clientConfig) error

// WithMaxConnections sets an explicit pool/concurrency ceiling. When unset,
// the governor falls back to an adaptive default.
func WithMaxConnections(n int) ClientOption {
	return func(c *clientConfig) error {
		if n <= 0 {
			return newConstructionError("max_connections", "max_connections must be a positive integer")
		}
		c.maxConnections = &n
		return nil
	}
}

// WithTimeout sets the default per-request timeout. Requests may still
// override it individually via Request.Timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) error {
		if d <= 0 {
			return newConstructionError("timeout", "timeout must be positive")
		}
		c.timeout = d
		return nil
	}
}

// WithCompression controls Accept-Encoding negotiation and automatic
// response decompression.
func WithCompression(enabled bool) ClientOption {
	return func(c *clientConfig) error {
		c.enableCompression = enabled
		return nil
	}
}

// WithLongtail arms the longtail cancellation controller. percentile must
// lie in (0.0, 1.0]; wait must be positive. A non-positive wait counts as
// unset, so NewClient rejects it as an incomplete longtail pair.
func WithLongtail(percentile float64, wait time.Duration) ClientOption {
	return func(c *clientConfig) error {
		c.longtailPercentile = &percentile
		if wait > 0 {
			c.longtailWait = &wait
		}
		return nil
	}
}

// WithLogOutput sets where the client's internal debug/warn logging is
// written. Defaults to discarding everything.
func WithLogOutput(level telemetry.Level, w io.Writer) ClientOption {
	return func(c *clientConfig) error {
		c.logger = telemetry.NewLogger(level, w)
		return nil
	}
}

// WithObservability enables OpenTelemetry tracing and/or metrics. Either
// requires WithCollectorEndpoint to also be set.
func WithObservability(tracing, metrics bool) ClientOption {
	return func(c *clientConfig) error {
		c.tracingEnabled = tracing
		c.metricsEnabled = metrics
		return nil
	}
}

// WithCollectorEndpoint sets the OTLP gRPC collector endpoint used when
// tracing or metrics is enabled.
func WithCollectorEndpoint(endpoint string) ClientOption {
	return func(c *clientConfig) error {
		if endpoint == "" {
			return newConstructionError("collector_endpoint", "collector endpoint must not be empty")
		}
		c.collectorEndpoint = endpoint
		return nil
	}
}

// WithHighThroughput is a preset bundle favoring large batches over low
// per-batch latency: a high connection ceiling and a generous timeout.
func WithHighThroughput() ClientOption {
	return func(c *clientConfig) error {
		n := 200
		c.maxConnections = &n
		c.timeout = 120 * time.Second
		return nil
	}
}

// WithLowLatency is a preset bundle favoring predictable tail latency over
// raw throughput: a modest concurrency ceiling, a short timeout, and an
// aggressive longtail cut-off.
func WithLowLatency() ClientOption {
	return func(c *clientConfig) error {
		n := 20
		c.maxConnections = &n
		c.timeout = 10 * time.Second
		percentile := 0.9
		wait := 500 * time.Millisecond
		c.longtailPercentile = &percentile
		c.longtailWait = &wait
		return nil
	}
}

// BatchOption configures a single Do call.
type BatchOption func(*batchConfig)

type batchConfig struct {
	maxConcurrent   int
	useGlobalClient bool
	clientOpts      []ClientOption
}

func defaultBatchConfig() *batchConfig {
	return &batchConfig{useGlobalClient: true}
}

// WithMaxConcurrent overrides the concurrency governor for one batch,
// taking precedence over both the client's MaxConnections and the
// adaptive default.
func WithMaxConcurrent(n int) BatchOption {
	return func(b *batchConfig) {
		if n > 0 {
			b.maxConcurrent = n
		}
	}
}

// WithAdHocClient routes the package-level Do call through a freshly
// constructed Client built from opts instead of the process-wide global
// singleton. This is the only way to arm per-call longtail cancellation
// (WithLongtail) or other client-level settings from the package-level
// entry point, since the global singleton's configuration is fixed at its
// first construction.
func WithAdHocClient(opts ...ClientOption) BatchOption {
	return func(b *batchConfig) {
		b.useGlobalClient = false
		b.clientOpts = opts
	}
}
