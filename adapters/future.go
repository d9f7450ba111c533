package adapters

import (
	"context"
	"sync"
)

// FutureState is the settlement state of a Future
type FutureState int

const (
	FuturePending FutureState = iota
	FutureResolved
	FutureFailed
	FutureCancelled
)

// String returns the state name
func (s FutureState) String() string {
	switch s {
	case FuturePending:
		return "pending"
	case FutureResolved:
		return "resolved"
	case FutureFailed:
		return "failed"
	case FutureCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Future is the eventual result of an async HandleData call.
// It settles exactly once: resolved with a result, failed with an error, or cancelled.
type Future struct {
	id string

	mu     sync.Mutex
	state  FutureState
	result *Result
	err    error
	done   chan struct{}
	cancel context.CancelFunc
}

// NewFuture creates a pending future. cancel, if not nil, is invoked when the
// future is cancelled so the producer can release its resources.
func NewFuture(id string, cancel context.CancelFunc) *Future {
	return &Future{
		id:     id,
		state:  FuturePending,
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// ID returns the identifier assigned by the producer
func (f *Future) ID() string {
	return f.id
}

// State returns the current settlement state
func (f *Future) State() FutureState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Done returns a channel closed when the future settles
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Resolve settles the future with a result. It reports false if the future
// had already settled.
func (f *Future) Resolve(result *Result) bool {
	return f.settle(FutureResolved, result, nil)
}

// Fail settles the future with an error. It reports false if the future
// had already settled.
func (f *Future) Fail(err error) bool {
	return f.settle(FutureFailed, nil, err)
}

// Cancel settles a pending future with ErrCancelled and signals the producer.
// It reports false if the future had already settled.
func (f *Future) Cancel() bool {
	settled := f.settle(FutureCancelled, nil, ErrCancelled)
	if settled && f.cancel != nil {
		f.cancel()
	}
	return settled
}

// Await blocks until the future settles or ctx is done. Ending ctx stops the
// wait but does not cancel the underlying operation; use Cancel for that.
func (f *Future) Await(ctx context.Context) (*Result, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

func (f *Future) settle(state FutureState, result *Result, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != FuturePending {
		return false
	}
	f.state = state
	f.result = result
	f.err = err
	close(f.done)
	return true
}
