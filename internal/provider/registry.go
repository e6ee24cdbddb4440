package provider

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// Registry holds the registered providers. Registration order matters:
// detection queries providers in order and the generic provider, which
// matches everything, must come last. Writes happen at configuration
// time; steady-state extraction only reads.
type Registry struct {
	mu        sync.RWMutex
	order     []model.SupplierKey
	providers map[model.SupplierKey]Provider
	fallback  model.SupplierKey
	logger    *slog.Logger
}

// NewRegistry creates an empty registry with GENERIC as the fallback key.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		providers: make(map[model.SupplierKey]Provider),
		fallback:  model.SupplierGeneric,
		logger:    logger,
	}
}

// Register upserts a provider under an uppercase key. Re-registering an
// existing key replaces the provider but keeps its detection position.
func (r *Registry) Register(key string, p Provider) {
	k := model.SupplierKey(strings.ToUpper(key))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[k]; !exists {
		r.order = append(r.order, k)
	}
	r.providers[k] = p
	r.logger.Info("provider registered", "key", k)
}

// Get resolves a provider by key, case-insensitively. An unregistered key
// resolves to the fallback provider with a warning, never an error.
func (r *Registry) Get(key string) Provider {
	k := model.SupplierKey(strings.ToUpper(key))

	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[k]; ok {
		return p
	}
	r.logger.Warn("provider not found, using fallback", "key", key, "fallback", r.fallback)
	return r.providers[r.fallback]
}

// Detect returns the key of the first registered provider whose CanHandle
// accepts the text, else the fallback key.
func (r *Registry) Detect(text string) model.SupplierKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, key := range r.order {
		if r.providers[key].CanHandle(text) {
			return key
		}
	}
	return r.fallback
}

// Keys returns the registered supplier keys in registration order.
func (r *Registry) Keys() []model.SupplierKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]model.SupplierKey, len(r.order))
	copy(keys, r.order)
	return keys
}

// Fallback returns the fallback supplier key.
func (r *Registry) Fallback() model.SupplierKey {
	return r.fallback
}
