package identity

import (
    "context"
    "sync"
)

type memoryRepository struct {
    mu     sync.RWMutex
    owners map[string]Person
    order  []string
}

// NewMemoryRepository builds the in-process owner registry.
func NewMemoryRepository() Repository {
    return &memoryRepository{owners: make(map[string]Person)}
}

func (r *memoryRepository) Create(_ context.Context, person Person) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    if _, exists := r.owners[person.TaxID]; exists {
        return ErrDuplicateOwner
    }
    r.owners[person.TaxID] = person
    r.order = append(r.order, person.TaxID)
    return nil
}

func (r *memoryRepository) FindByTaxID(_ context.Context, taxID string) (Person, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    person, ok := r.owners[taxID]
    if !ok {
        return Person{}, ErrOwnerNotFound
    }
    return person, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Person, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    out := make([]Person, 0, len(r.order))
    for _, taxID := range r.order {
        out = append(out, r.owners[taxID])
    }
    return out, nil
}
