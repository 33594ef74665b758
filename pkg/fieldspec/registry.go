package fieldspec

import (
	"fmt"
	"sync"
)

// Registry holds the entity descriptors known to the server. Entities are
// registered at startup; lookups are concurrent-safe.
type Registry struct {
	entities map[string]*Entity
	order    []string
	mutex    sync.RWMutex
}

// Global default registry instance.
var defaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]*Entity)}
}

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register normalizes and stores an entity descriptor.
func (r *Registry) Register(entity *Entity) error {
	if entity == nil {
		return fmt.Errorf("entity cannot be nil")
	}
	if err := entity.Normalize(); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.entities[entity.Name]; exists {
		return fmt.Errorf("entity %s already registered", entity.Name)
	}
	r.entities[entity.Name] = entity
	r.order = append(r.order, entity.Name)
	return nil
}

// Get returns the entity registered under name.
func (r *Registry) Get(name string) (*Entity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	entity, ok := r.entities[name]
	if !ok {
		return nil, fmt.Errorf("entity %s not registered", name)
	}
	return entity, nil
}

// All returns every registered entity in registration order.
func (r *Registry) All() []*Entity {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	entities := make([]*Entity, 0, len(r.order))
	for _, name := range r.order {
		entities = append(entities, r.entities[name])
	}
	return entities
}

// Register adds an entity to the default registry.
func Register(entity *Entity) error {
	return defaultRegistry.Register(entity)
}

// Get looks up an entity in the default registry.
func Get(name string) (*Entity, error) {
	return defaultRegistry.Get(name)
}
