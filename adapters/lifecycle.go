package adapters

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Lifecycle implements the Uninitialized -> Initialized -> Closed state machine.
// Providers embed it and route Initialize, HandleData and Close through it.
type Lifecycle struct {
	category Category
	provider ProviderName

	mu    sync.RWMutex
	state State
}

// NewLifecycle creates a lifecycle bound to a category and provider
func NewLifecycle(category Category, provider ProviderName) *Lifecycle {
	return &Lifecycle{
		category: category,
		provider: provider,
		state:    StateUninitialized,
	}
}

// Category returns the bound category
func (l *Lifecycle) Category() Category {
	return l.category
}

// Provider returns the bound provider name
func (l *Lifecycle) Provider() ProviderName {
	return l.provider
}

// State returns the current state
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Initialize rejects unknown option keys, runs setup and moves to Initialized
// on success. A failed setup leaves the state unchanged.
func (l *Lifecycle) Initialize(opts Options, known []string, setup func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateInitialized:
		return newKindError(KindAlreadyInitialized, l.category, l.provider, "adapter already initialized")
	case StateClosed:
		return newKindError(KindClosed, l.category, l.provider, "adapter closed")
	}

	if unknown := opts.Unknown(known...); len(unknown) > 0 {
		return NewInitializationError(l.category, l.provider,
			fmt.Sprintf("unrecognized options: %s", strings.Join(unknown, ", ")), nil)
	}

	if setup != nil {
		if err := setup(); err != nil {
			var adapterErr *Error
			if errors.As(err, &adapterErr) && adapterErr.Kind == KindInitialization {
				return err
			}
			return NewInitializationError(l.category, l.provider, "initialization failed", err)
		}
	}

	l.state = StateInitialized
	return nil
}

// Use runs fn while holding the read side of the lifecycle lock, provided the
// adapter is initialized
func (l *Lifecycle) Use(fn func() error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	switch l.state {
	case StateUninitialized:
		return newKindError(KindNotInitialized, l.category, l.provider, "adapter not initialized")
	case StateClosed:
		return newKindError(KindClosed, l.category, l.provider, "adapter closed")
	}
	return fn()
}

// Close moves to Closed and runs release if resources were acquired.
// Subsequent calls return nil.
func (l *Lifecycle) Close(release func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.state
	if prev == StateClosed {
		return nil
	}
	l.state = StateClosed

	if prev == StateInitialized && release != nil {
		return release()
	}
	return nil
}
