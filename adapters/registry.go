package adapters

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// registration is one provider entry within a category
type registration struct {
	provider    ProviderName
	constructor Constructor
}

// Registry maps (category, provider) pairs to adapter constructors.
// Registration may happen at runtime and is safe for concurrent use with Create.
type Registry struct {
	mu        sync.RWMutex
	providers map[Category]map[ProviderName]*registration
	aliases   map[Category]map[ProviderName]ProviderName // alias -> canonical
	logger    *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		providers: make(map[Category]map[ProviderName]*registration),
		aliases:   make(map[Category]map[ProviderName]ProviderName),
		logger:    logger,
	}
	for _, c := range AllCategories {
		r.providers[c] = make(map[ProviderName]*registration)
		r.aliases[c] = make(map[ProviderName]ProviderName)
	}
	return r
}

// Register adds a provider constructor under a category, optionally reachable
// through additional alias names
func (r *Registry) Register(category Category, provider ProviderName, constructor Constructor, aliases ...ProviderName) error {
	if !category.Valid() {
		return newKindError(KindUnsupportedCategory, category, provider, "unsupported adapter category")
	}
	if constructor == nil {
		return errors.New("constructor cannot be nil")
	}
	provider = normalizeProvider(provider)
	if provider == "" {
		return errors.New("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]ProviderName{provider}, aliases...)
	for _, name := range names {
		name = normalizeProvider(name)
		if r.resolveLocked(category, name) != nil {
			return newKindError(KindAlreadyRegistered, category, name, "provider already registered")
		}
	}

	r.providers[category][provider] = &registration{
		provider:    provider,
		constructor: constructor,
	}
	for _, alias := range aliases {
		alias = normalizeProvider(alias)
		if alias != "" && alias != provider {
			r.aliases[category][alias] = provider
		}
	}

	r.logger.Debug("adapter provider registered",
		zap.String("category", string(category)),
		zap.String("provider", string(provider)),
		zap.Int("aliases", len(aliases)))
	return nil
}

// Unregister removes a provider and its aliases
func (r *Registry) Unregister(category Category, provider ProviderName) error {
	if !category.Valid() {
		return newKindError(KindUnsupportedCategory, category, provider, "unsupported adapter category")
	}
	provider = normalizeProvider(provider)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[category][provider]; !exists {
		return newKindError(KindUnsupportedProvider, category, provider, "unsupported adapter provider")
	}
	delete(r.providers[category], provider)
	for alias, canonical := range r.aliases[category] {
		if canonical == provider {
			delete(r.aliases[category], alias)
		}
	}
	return nil
}

// Create builds a new uninitialized adapter for the pair. No I/O is performed.
func (r *Registry) Create(category Category, provider ProviderName) (Adapter, error) {
	if !category.Valid() {
		return nil, newKindError(KindUnsupportedCategory, "", "",
			fmt.Sprintf("unsupported adapter category: %q", category))
	}
	name := normalizeProvider(provider)

	r.mu.RLock()
	reg := r.resolveLocked(category, name)
	r.mu.RUnlock()

	if reg == nil {
		return nil, newKindError(KindUnsupportedProvider, category, "",
			fmt.Sprintf("unsupported adapter provider: %q", provider))
	}

	adapter := reg.constructor()
	if adapter == nil {
		return nil, newKindError(KindUnsupportedProvider, category, reg.provider, "constructor returned nil adapter")
	}

	r.logger.Debug("adapter created",
		zap.String("category", string(category)),
		zap.String("provider", string(reg.provider)),
		zap.String("requested", string(provider)))
	return adapter, nil
}

// CreateFromStrings parses the category and delegates to Create
func (r *Registry) CreateFromStrings(category, provider string) (Adapter, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	return r.Create(c, ProviderName(provider))
}

// CreateSync creates an adapter and asserts it returns results synchronously
func (r *Registry) CreateSync(category Category, provider ProviderName) (SyncAdapter, error) {
	a, err := r.Create(category, provider)
	if err != nil {
		return nil, err
	}
	sa, ok := a.(SyncAdapter)
	if !ok {
		return nil, newKindError(KindUnsupportedProvider, category, a.Provider(), "provider is not synchronous")
	}
	return sa, nil
}

// CreateAsync creates an adapter and asserts it returns futures
func (r *Registry) CreateAsync(category Category, provider ProviderName) (AsyncAdapter, error) {
	a, err := r.Create(category, provider)
	if err != nil {
		return nil, err
	}
	aa, ok := a.(AsyncAdapter)
	if !ok {
		return nil, newKindError(KindUnsupportedProvider, category, a.Provider(), "provider is not asynchronous")
	}
	return aa, nil
}

// Supports reports whether the pair resolves to a registered provider
func (r *Registry) Supports(category Category, provider ProviderName) bool {
	if !category.Valid() {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(category, normalizeProvider(provider)) != nil
}

// Providers returns the canonical provider names of a category, sorted
func (r *Registry) Providers(category Category) []ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]ProviderName, 0, len(r.providers[category]))
	for name := range r.providers[category] {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Categories returns the categories that have at least one provider
func (r *Registry) Categories() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Category
	for _, c := range AllCategories {
		if len(r.providers[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Aliases returns the alias -> canonical mapping of a category
func (r *Registry) Aliases(category Category) map[ProviderName]ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[ProviderName]ProviderName, len(r.aliases[category]))
	for alias, canonical := range r.aliases[category] {
		out[alias] = canonical
	}
	return out
}

// Count returns the number of canonical providers across all categories
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, byName := range r.providers {
		n += len(byName)
	}
	return n
}

func (r *Registry) resolveLocked(category Category, name ProviderName) *registration {
	if reg, ok := r.providers[category][name]; ok {
		return reg
	}
	if canonical, ok := r.aliases[category][name]; ok {
		return r.providers[category][canonical]
	}
	return nil
}
