package floodr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientConfig_Validate(t *testing.T) {
	percentile := 0.8
	wait := time.Second
	badPercentile := 1.5
	negativeConnections := -1

	tests := []struct {
		name    string
		cfg     *clientConfig
		wantErr bool
	}{
		{"defaults valid", defaultClientConfig(), false},
		{
			"both longtail fields set",
			&clientConfig{timeout: time.Second, longtailPercentile: &percentile, longtailWait: &wait},
			false,
		},
		{
			"only percentile set",
			&clientConfig{timeout: time.Second, longtailPercentile: &percentile},
			true,
		},
		{
			"only wait set",
			&clientConfig{timeout: time.Second, longtailWait: &wait},
			true,
		},
		{
			"percentile out of range",
			&clientConfig{timeout: time.Second, longtailPercentile: &badPercentile, longtailWait: &wait},
			true,
		},
		{
			"negative max connections",
			&clientConfig{timeout: time.Second, maxConnections: &negativeConnections},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestOptions_HighThroughputAndLowLatencyPresets(t *testing.T) {
	cfg := defaultClientConfig()
	require.NoError(t, WithHighThroughput()(cfg))
	assert.Equal(t, 200, *cfg.maxConnections)

	cfg = defaultClientConfig()
	require.NoError(t, WithLowLatency()(cfg))
	assert.Equal(t, 20, *cfg.maxConnections)
	assert.NotNil(t, cfg.longtailPercentile)
	assert.NotNil(t, cfg.longtailWait)
}
