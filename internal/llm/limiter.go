package llm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrSaturated is returned when no model-call slot frees up within the queue wait.
var ErrSaturated = errors.New("llm: too many calls in flight")

// Limiter bounds concurrent model calls. Callers queue for at most Wait before
// giving up with ErrSaturated. A nil *Limiter admits every call.
type Limiter struct {
	sem      *semaphore.Weighted
	wait     time.Duration
	inFlight atomic.Int64
}

// NewLimiter returns a limiter admitting maxInFlight concurrent calls, or nil when maxInFlight <= 0.
func NewLimiter(maxInFlight int64, wait time.Duration) *Limiter {
	if maxInFlight <= 0 {
		return nil
	}
	return &Limiter{sem: semaphore.NewWeighted(maxInFlight), wait: wait}
}

// Acquire reserves a slot. The returned release func is safe to call more than once.
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.sem.TryAcquire(1) {
		if l.wait <= 0 {
			return nil, ErrSaturated
		}
		waitCtx, cancel := context.WithTimeout(ctx, l.wait)
		err := l.sem.Acquire(waitCtx, 1)
		cancel()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, ErrSaturated
		}
	}
	l.inFlight.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			l.inFlight.Add(-1)
			l.sem.Release(1)
		})
	}, nil
}

// InFlight reports the number of calls currently holding a slot.
func (l *Limiter) InFlight() int64 {
	if l == nil {
		return 0
	}
	return l.inFlight.Load()
}
