package floodr

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// WarmupProbe is one diagnostic record produced by WarmupAdvanced.
type WarmupProbe struct {
	// URL is the fully resolved URL the probe fetched.
	URL string
	// Status is the HTTP status code, or 0 on failure.
	Status int
	// Elapsed is the wall-clock duration of the probe.
	Elapsed time.Duration
}

// warmupSimple issues numConnections independent GET probes against url in
// parallel through eng, discarding successes and swallowing failures. It
// flows through the same engine (and therefore the same connection pool)
// as real traffic, so the pool it warms is the one later requests reuse.
func warmupSimple(ctx context.Context, eng *engine, url string, numConnections int) {
	if numConnections < 1 {
		numConnections = 1
	}

	var wg sync.WaitGroup
	wg.Add(numConnections)
	for i := 0; i < numConnections; i++ {
		go func() {
			defer wg.Done()
			_, _, errMsg := eng.warmupProbe(ctx, "", url)
			if errMsg != "" {
				eng.logger.Debugf("warmup probe failed for %s: %s", url, errMsg)
			}
		}()
	}
	wg.Wait()
}

// warmupAdvanced issues numConnections probes round-robined across paths
// under baseURL and returns one WarmupProbe per probe, in probe order.
func warmupAdvanced(ctx context.Context, eng *engine, baseURL string, paths []string, numConnections int, method string) ([]WarmupProbe, error) {
	if len(paths) == 0 {
		return nil, newConstructionError("paths", "warmup_advanced requires at least one path")
	}
	if numConnections < 1 {
		numConnections = 1
	}

	probes := make([]WarmupProbe, numConnections)
	var wg sync.WaitGroup
	wg.Add(numConnections)
	for i := 0; i < numConnections; i++ {
		go func(i int) {
			defer wg.Done()
			path := paths[i%len(paths)]
			url := fmt.Sprintf("%s%s", baseURL, path)
			status, elapsed, errMsg := eng.warmupProbe(ctx, method, url)
			probes[i] = WarmupProbe{URL: url, Status: status, Elapsed: elapsed}
			if errMsg != "" {
				eng.logger.Debugf("warmup_advanced probe failed for %s: %s", url, errMsg)
			}
		}(i)
	}
	wg.Wait()

	return probes, nil
}
