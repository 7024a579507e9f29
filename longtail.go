package floodr

import (
	"context"
	"math"
	"time"

	"github.com/cemoody/floodr/internal/telemetry"
)

// longtailController is the Longtail Cancellation Controller: a wrapper
// observing the dispatcher's completions, armed once a configurable
// fraction of the batch finishes, firing a bounded time later to cancel
// whatever is left. Its state machine mirrors a circuit breaker's
// closed/open transition bookkeeping: armed is "closed" (watching),
// triggered starts the timer ("half-open" probation), firing is "open"
// (cutting off remaining work).
type longtailController struct {
	percentile float64
	wait       time.Duration
}

// newLongtailController returns nil when longtail is not configured, so
// callers can pass the result straight to dispatchBatch without a
// separate enabled check.
func newLongtailController(cfg *clientConfig) *longtailController {
	if !cfg.longtailEnabled() {
		return nil
	}
	return &longtailController{
		percentile: *cfg.longtailPercentile,
		wait:       *cfg.longtailWait,
	}
}

// run watches completions until total have arrived, arms a timer once the
// percentile threshold is reached, and on expiry cancels and synthesizes
// responses for every slot still unfilled. It always returns once all
// total completions have been observed, whether or not it ever fired.
func (lt *longtailController) run(total int, completions <-chan int, slots []*responseSlot, start time.Time, instruments *telemetry.Instruments) {
	threshold := int(math.Ceil(float64(total) * lt.percentile))

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	completed := 0
	for completed < total {
		select {
		case _, ok := <-completions:
			if !ok {
				return
			}
			completed++
			if completed >= threshold && timer == nil {
				timer = time.NewTimer(lt.wait)
				timerC = timer.C
			}

		case <-timerC:
			lt.fire(slots, start, instruments)
			timerC = nil
		}
	}
}

// fire cancels every still-unfilled slot's context and writes a
// synthesized cancellation response into it. A slot already filled by a
// real completion (the race between the timer and the in-flight task) is
// left untouched: responseSlot.fill is first-writer-wins, and only slots
// this call actually wins count toward the cancelled-total metric.
func (lt *longtailController) fire(slots []*responseSlot, start time.Time, instruments *telemetry.Instruments) {
	elapsed := time.Since(start)
	var cancelled int64
	for _, s := range slots {
		if s.cancel != nil {
			s.cancel()
		}
		won := s.fill(Response{
			StatusCode: 0,
			URL:        s.url,
			Elapsed:    elapsed,
			Error:      "request cancelled: longtail deadline exceeded",
			RequestID:  s.requestID,
		})
		if won {
			cancelled++
		}
	}
	instruments.RecordCancelled(context.Background(), cancelled)
}
