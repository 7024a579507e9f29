package floodr

import (
	"context"
	"sync"
	"time"
)

// responseSlot is one positional slot in a batch's result vector. The
// first writer wins: either the per-item goroutine completing its
// engine.execute call, or the longtail controller synthesizing a
// cancellation record. Guarded by its own mutex rather than a package-wide
// lock so K slots never contend with each other.
type responseSlot struct {
	mu        sync.Mutex
	filled    bool
	response  Response
	cancel    context.CancelFunc
	requestID string
	url       string
}

// fill writes resp into the slot iff nothing has been written yet. It
// reports whether this call was the one that filled it.
func (s *responseSlot) fill(resp Response) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filled {
		return false
	}
	s.filled = true
	s.response = resp
	return true
}

func (s *responseSlot) get() Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.response
}

// dispatchBatch is the Batch Dispatcher: one goroutine per request index,
// each gated by gov, writing into a positionally indexed result vector.
// When lt is non-nil it runs alongside, observing completions and
// possibly cancelling still-inflight slots. Requests are normalized inside
// each goroutine so a single malformed request fills its own slot with a
// descriptive error instead of failing the whole batch.
func dispatchBatch(ctx context.Context, eng *engine, requests []Request, concurrency int, lt *longtailController, defaultTimeout time.Duration) []Response {
	k := len(requests)
	if k == 0 {
		return nil
	}

	requests = ensureRequestIDs(requests)

	gov := newGovernor(concurrency)
	start := time.Now()
	slots := make([]*responseSlot, k)
	completions := make(chan int, k)

	var wg sync.WaitGroup
	wg.Add(k)

	for i, r := range requests {
		timeout := r.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		reqCtx, cancel := requestContext(ctx, timeout)
		slots[i] = &responseSlot{cancel: cancel, requestID: r.RequestID, url: r.URL}

		go func(i int, r Request, reqCtx context.Context, cancel context.CancelFunc) {
			defer wg.Done()
			defer cancel()

			nr, err := r.normalize()
			if err != nil {
				slots[i].fill(Response{StatusCode: 0, URL: r.URL, Elapsed: time.Since(start), Error: err.Error(), RequestID: r.RequestID})
				completions <- i
				return
			}

			if !gov.acquire(reqCtx.Done()) {
				slots[i].fill(cancelledResponse(nr, start, reqCtx))
				completions <- i
				return
			}

			resp := eng.execute(reqCtx, nr)
			slots[i].fill(resp)
			gov.release()
			completions <- i
		}(i, r, reqCtx, cancel)
	}

	if lt != nil {
		go lt.run(k, completions, slots, start, eng.provider.Instruments())
	}

	wg.Wait()

	results := make([]Response, k)
	for i, s := range slots {
		results[i] = s.get()
	}
	return results
}

func requestContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// cancelledResponse builds the response written into a slot whose task
// never got to call engine.execute because its context was already done
// by the time it tried to acquire a governor permit.
func cancelledResponse(req normalizedRequest, start time.Time, ctx context.Context) Response {
	msg := "request cancelled: context done before dispatch"
	if ctx.Err() == context.DeadlineExceeded {
		msg = "request timeout: deadline exceeded before dispatch"
	}
	return Response{
		StatusCode: 0,
		URL:        req.url,
		Elapsed:    time.Since(start),
		Error:      msg,
		RequestID:  req.requestID,
	}
}
