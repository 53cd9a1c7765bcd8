package similarity

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Lazy holds a heavyweight handle that is built on first use. Concurrent
// first callers wait on one initialization; the result, success or failure,
// is kept for the life of the process.
type Lazy[T any] struct {
	init    func(ctx context.Context) (T, error)
	timeout time.Duration

	done atomic.Bool
	mu   sync.Mutex
	val  T
	err  error
}

// NewLazy wraps init. timeout <= 0 leaves the caller's context unbounded.
func NewLazy[T any](init func(ctx context.Context) (T, error), timeout time.Duration) *Lazy[T] {
	return &Lazy[T]{init: init, timeout: timeout}
}

// Get returns the handle, initializing it on the first call.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if l.done.Load() {
		return l.val, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done.Load() {
		return l.val, l.err
	}
	// initialization must not inherit the caller's cancellation: a canceled
	// request would otherwise poison the handle for every later caller
	initCtx := context.WithoutCancel(ctx)
	if l.timeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(initCtx, l.timeout)
		defer cancel()
	}
	l.val, l.err = l.safeInit(initCtx)
	l.done.Store(true)
	return l.val, l.err
}

// Ready reports whether initialization has finished successfully. It never
// triggers initialization.
func (l *Lazy[T]) Ready() bool {
	return l.done.Load() && l.err == nil
}

func (l *Lazy[T]) safeInit(ctx context.Context) (val T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("initialization panicked: %v", r)
		}
	}()
	val, err = l.init(ctx)
	if err == nil && ctx.Err() != nil {
		err = fmt.Errorf("initialization exceeded timeout: %w", ctx.Err())
	}
	return val, err
}
