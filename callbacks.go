package lactoserv

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// CallbackListTimeout bounds the aggregate time a CallbackList.RunAll call
// is allowed to take.
const CallbackListTimeout = 10 * time.Second

// ErrCallbackListTimeout is returned by CallbackList.RunAll when the
// aggregate CallbackListTimeout elapses before every registered callback
// has returned.
var ErrCallbackListTimeout = errors.New("lactoserv: callback list timed out")

// CallbackList is a set of callbacks, run concurrently with a bounded
// aggregate timeout. It is the generalization of the shutdown-job queue
// pattern. No other part of this package creates one: Root.Reload and
// Component.Stop do not run a CallbackList.
type CallbackList struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(context.Context)
}

// NewCallbackList returns an empty CallbackList.
func NewCallbackList() *CallbackList {
	return &CallbackList{fns: map[int]func(context.Context){}}
}

// Add registers fn and returns an id that can later be passed to Remove.
func (cl *CallbackList) Add(fn func(context.Context)) int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	id := cl.next
	cl.next++
	cl.fns[id] = fn

	return id
}

// Remove unregisters the callback previously returned by Add. It is a
// no-op if id is unknown.
func (cl *CallbackList) Remove(id int) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	delete(cl.fns, id)
}

// RunAll runs every registered callback concurrently, passing each a
// context derived from parent and bounded by CallbackListTimeout. It
// returns ErrCallbackListTimeout if the bound elapses before all callbacks
// return; otherwise nil. Callbacks that panic are not recovered -- they are
// expected to be well-behaved hooks.
func (cl *CallbackList) RunAll(parent context.Context) error {
	cl.mu.Lock()
	fns := make([]func(context.Context), 0, len(cl.fns))
	for _, fn := range cl.fns {
		fns = append(fns, fn)
	}
	cl.mu.Unlock()

	if len(fns) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(parent, CallbackListTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		g.Go(func() error {
			fn(gctx)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrCallbackListTimeout
	}
}
