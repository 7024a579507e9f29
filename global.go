package floodr

import (
	"context"
	"sync"
)

var (
	globalOnce   sync.Once
	globalClient *Client
)

// global returns the process-wide default Client, building it lazily on
// first use with default configuration. The singleton is never torn down
// during normal operation; its lifetime equals the process's, and its
// pool is the only piece of mutable global state this package carries.
func global() *Client {
	globalOnce.Do(func() {
		c, err := NewClient()
		if err != nil {
			// Default configuration is always valid; NewClient can only
			// fail on caller-supplied options, none of which are in play
			// here.
			panic("floodr: default client construction failed: " + err.Error())
		}
		globalClient = c
	})
	return globalClient
}

// Do executes requests through the process-wide global Client by default.
// Passing WithAdHocClient(clientOpts...) among opts builds a fresh Client
// from those options instead, scoped to this one call. That is the only
// way to arm per-call settings like longtail cancellation, since the
// global singleton's configuration is fixed at its first construction.
func Do(ctx context.Context, requests []Request, opts ...BatchOption) ([]Response, error) {
	bc := defaultBatchConfig()
	for _, opt := range opts {
		opt(bc)
	}

	if bc.useGlobalClient {
		return global().Do(ctx, requests, opts...)
	}

	c, err := NewClient(bc.clientOpts...)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, requests, opts...)
}

// Warmup pre-establishes connections on the global Client.
func Warmup(ctx context.Context, url string, numConnections int) error {
	return global().Warmup(ctx, url, numConnections)
}

// WarmupAdvanced pre-establishes connections round-robined across paths,
// on the global Client.
func WarmupAdvanced(ctx context.Context, baseURL string, paths []string, numConnections int, method string) ([]WarmupProbe, error) {
	return global().WarmupAdvanced(ctx, baseURL, paths, numConnections, method)
}
