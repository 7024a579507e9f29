package floodr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarmupAdvanced_RequiresPaths(t *testing.T) {
	c, err := NewClient()
	require.NoError(t, err)

	_, err = c.WarmupAdvanced(context.Background(), "https://example.com", nil, 3, "")
	require.Error(t, err)
	var ce *ConstructionError
	require.ErrorAs(t, err, &ce)
}

func TestWarmupAdvanced_RoundRobinsPaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient()
	require.NoError(t, err)

	paths := []string{"/x", "/y"}
	probes, err := c.WarmupAdvanced(context.Background(), srv.URL, paths, 4, http.MethodGet)
	require.NoError(t, err)
	require.Len(t, probes, 4)

	assert.Equal(t, srv.URL+"/x", probes[0].URL)
	assert.Equal(t, srv.URL+"/y", probes[1].URL)
	assert.Equal(t, srv.URL+"/x", probes[2].URL)
	assert.Equal(t, srv.URL+"/y", probes[3].URL)
}

func TestWarmup_SwallowsFailures(t *testing.T) {
	c, err := NewClient()
	require.NoError(t, err)

	err = c.Warmup(context.Background(), "http://floodr-nonexistent-host.invalid", 2)
	require.NoError(t, err)
}
