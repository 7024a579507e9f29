package floodr

import (
	"context"
	"fmt"
)

// Client is a configured batch HTTP client: one pooled HTTP engine plus an
// optional longtail cancellation policy. A Client is safe for concurrent
// use by multiple goroutines; its pool is shared across every Do call.
type Client struct {
	cfg      *clientConfig
	engine   *engine
	longtail *longtailController
}

// NewClient builds a Client from opts. Construction validates the
// longtail invariant and every other option eagerly; the only error
// NewClient returns is *ConstructionError.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if (cfg.tracingEnabled || cfg.metricsEnabled) && cfg.collectorEndpoint == "" {
		return nil, newConstructionError("collector_endpoint", "collector endpoint required when tracing or metrics is enabled")
	}

	eng := newEngine(cfg)

	if cfg.tracingEnabled || cfg.metricsEnabled {
		provider, err := newTelemetryProvider(cfg)
		if err != nil {
			return nil, newConstructionError("observability", "%v", err)
		}
		eng.provider = provider
	}

	return &Client{
		cfg:      cfg,
		engine:   eng,
		longtail: newLongtailController(cfg),
	}, nil
}

// Do executes requests concurrently through this client's engine and
// returns a positionally matched slice of responses. The only non-nil
// error Do returns comes from the caller's own context already being done
// before dispatch begins; every per-request failure is captured in its
// Response instead.
func (c *Client) Do(ctx context.Context, requests []Request, opts ...BatchOption) ([]Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("floodr: context done before dispatch: %w", err)
	}
	if len(requests) == 0 {
		return nil, nil
	}

	bc := defaultBatchConfig()
	for _, opt := range opts {
		opt(bc)
	}

	concurrency := effectiveConcurrency(len(requests), bc.maxConcurrent, c.cfg.maxConnections)
	c.engine.logger.Debugf("dispatching batch of %d requests with concurrency %d", len(requests), concurrency)

	return dispatchBatch(ctx, c.engine, requests, concurrency, c.longtail, c.cfg.timeout), nil
}

// Warmup pre-establishes numConnections connections to url so a subsequent
// real batch pays no handshake cost.
func (c *Client) Warmup(ctx context.Context, url string, numConnections int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	warmupSimple(ctx, c.engine, url, numConnections)
	return nil
}

// WarmupAdvanced pre-establishes numConnections connections round-robined
// across paths under baseURL and returns one diagnostic record per probe.
func (c *Client) WarmupAdvanced(ctx context.Context, baseURL string, paths []string, numConnections int, method string) ([]WarmupProbe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return warmupAdvanced(ctx, c.engine, baseURL, paths, numConnections, method)
}

// Shutdown releases resources held by the client's observability provider,
// if one was configured. Safe to call even when observability is disabled.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.engine.provider.Shutdown(ctx)
}
