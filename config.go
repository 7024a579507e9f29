package floodr

import (
	"time"

	"github.com/cemoody/floodr/internal/telemetry"
)

// DefaultTimeout is the default per-request timeout used when no
// WithTimeout option is given.
const DefaultTimeout = 60 * time.Second

// clientConfig holds validated client construction parameters. It is built
// up by ClientOptions and never mutated after NewClient returns.
type clientConfig struct {
	maxConnections *int
	timeout        time.Duration
	enableCompression bool

	longtailPercentile *float64
	longtailWait       *time.Duration

	tracingEnabled bool
	metricsEnabled bool
	collectorEndpoint string

	logger telemetry.Logger
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		timeout: DefaultTimeout,
		logger:  telemetry.NewNoopLogger(),
	}
}

// validate enforces configuration invariants: longtail_percentile and
// longtail_wait are either both set or both unset, and the percentile must
// lie in (0.0, 1.0].
func (c *clientConfig) validate() error {
	hasPercentile := c.longtailPercentile != nil
	hasWait := c.longtailWait != nil

	if hasPercentile != hasWait {
		return newConstructionError("longtail", "both longtail_percentile and longtail_wait must be set together")
	}

	if hasPercentile {
		p := *c.longtailPercentile
		if p <= 0.0 || p > 1.0 {
			return newConstructionError("longtail_percentile", "longtail_percentile must be between 0.0 and 1.0")
		}
	}

	if c.timeout < 0 {
		return newConstructionError("timeout", "timeout must be non-negative")
	}

	if c.maxConnections != nil && *c.maxConnections <= 0 {
		return newConstructionError("max_connections", "max_connections must be a positive integer")
	}

	return nil
}

func (c *clientConfig) longtailEnabled() bool {
	return c.longtailPercentile != nil && c.longtailWait != nil
}
