package floodr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDispatch_ConcurrencyCap verifies that with max_concurrent=M the
// number of simultaneously in-flight engine calls never exceeds M, using a
// slow test server and a shared atomic counter as the reentrancy double.
func TestDispatch_ConcurrencyCap(t *testing.T) {
	const capLimit = 3
	var inflight int32
	var maxSeen int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt32(&inflight, 1)
		for {
			seen := atomic.LoadInt32(&maxSeen)
			if cur <= seen || atomic.CompareAndSwapInt32(&maxSeen, seen, cur) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&inflight, -1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient()
	require.NoError(t, err)

	requests := make([]Request, 12)
	for i := range requests {
		requests[i] = NewRequest(http.MethodGet, srv.URL)
	}

	responses, err := c.Do(context.Background(), requests, WithMaxConcurrent(capLimit))
	require.NoError(t, err)
	require.Len(t, responses, 12)
	for _, r := range responses {
		assert.True(t, r.Ok())
	}

	assert.LessOrEqual(t, atomic.LoadInt32(&maxSeen), int32(capLimit))
}

// TestDispatch_ClientDefaultTimeoutApplies verifies that a request with no
// per-request Timeout set is still bounded by the client's configured
// default timeout, not left to run forever.
func TestDispatch_ClientDefaultTimeoutApplies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(WithTimeout(20 * time.Millisecond))
	require.NoError(t, err)

	req := NewRequest(http.MethodGet, srv.URL)
	require.Zero(t, req.Timeout)

	start := time.Now()
	responses, err := c.Do(context.Background(), []Request{req})
	require.NoError(t, err)
	require.Len(t, responses, 1)

	assert.Less(t, time.Since(start), 150*time.Millisecond)
	assert.False(t, responses[0].Ok())
	assert.Contains(t, responses[0].Error, "timeout")
}

func TestDispatch_MalformedRequestFillsOwnSlot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient()
	require.NoError(t, err)

	bad := Request{URL: srv.URL, JSON: map[string]string{"a": "b"}, Body: []byte("x")}
	good := NewRequest(http.MethodGet, srv.URL)

	responses, err := c.Do(context.Background(), []Request{bad, good})
	require.NoError(t, err)
	require.Len(t, responses, 2)

	assert.False(t, responses[0].Ok())
	assert.NotEmpty(t, responses[0].Error)
	assert.True(t, responses[1].Ok())
}
