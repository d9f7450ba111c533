package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/upb/employee-management/utils"
)

// State is the lifecycle state of an adapter instance
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateClosed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Adapter is the lifecycle contract shared by every provider
type Adapter interface {
	// Category returns the category the adapter was created for
	Category() Category

	// Provider returns the canonical provider name
	Provider() ProviderName

	// State returns the current lifecycle state
	State() State

	// Initialize acquires provider resources. It must succeed exactly once
	// before HandleData may be called.
	Initialize(ctx context.Context, opts Options) error

	// Close releases provider resources. Calling it more than once is a no-op.
	Close() error
}

// SyncAdapter is implemented by adapters whose HandleData returns its result directly
// (web, database, ml)
type SyncAdapter interface {
	Adapter
	HandleData(ctx context.Context, payload Payload) (*Result, error)
}

// AsyncAdapter is implemented by adapters whose HandleData defers completion
type AsyncAdapter interface {
	Adapter
	HandleData(ctx context.Context, payload Payload) (*Future, error)
}

// Constructor builds a fresh, uninitialized adapter. It must not perform I/O.
type Constructor func() Adapter

// Payload is the category-specific input to HandleData
type Payload map[string]any

// Decode converts the payload into v (a pointer to a struct with json tags)
// and validates it with its `validate` tags
func (p Payload) Decode(v interface{}) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return utils.ValidateStruct(v)
}

// Result is the outcome of a HandleData call
type Result struct {
	Category Category       `json:"category"`
	Provider ProviderName   `json:"provider"`
	Data     map[string]any `json:"data"`
}

// NewResult creates a result for the given adapter
func NewResult(a Adapter, data map[string]any) *Result {
	if data == nil {
		data = make(map[string]any)
	}
	return &Result{
		Category: a.Category(),
		Provider: a.Provider(),
		Data:     data,
	}
}

// Get returns a value from the result data
func (r *Result) Get(key string) (any, bool) {
	if r == nil || r.Data == nil {
		return nil, false
	}
	v, ok := r.Data[key]
	return v, ok
}

// String renders the result for human-readable output
func (r *Result) String() string {
	if r == nil {
		return "<nil>"
	}
	raw, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Sprintf("%s/%s: %v", r.Category, r.Provider, r.Data)
	}
	return fmt.Sprintf("%s/%s: %s", r.Category, r.Provider, raw)
}

// Invoke drives any adapter through HandleData and returns its result.
// For async adapters it waits for the future to settle.
func Invoke(ctx context.Context, a Adapter, payload Payload) (*Result, error) {
	switch ad := a.(type) {
	case SyncAdapter:
		return ad.HandleData(ctx, payload)
	case AsyncAdapter:
		future, err := ad.HandleData(ctx, payload)
		if err != nil {
			return nil, err
		}
		return future.Await(ctx)
	default:
		return nil, newKindError(KindOperation, a.Category(), a.Provider(), "adapter does not implement HandleData")
	}
}
