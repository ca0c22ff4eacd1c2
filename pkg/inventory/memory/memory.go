// Package memory implements in-memory supplier and fruit repositories that
// enforce the same constraints as the SQL stores.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"fruitstock/pkg/inventory"
)

// Store holds suppliers and fruits behind a single lock so that the
// fruit-to-supplier reference can be checked atomically.
type Store struct {
	mu        sync.RWMutex
	suppliers map[int64]inventory.Supplier
	fruits    map[int64]inventory.Fruit
	nextSup   int64
	nextFruit int64
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		suppliers: make(map[int64]inventory.Supplier),
		fruits:    make(map[int64]inventory.Fruit),
	}
}

// Suppliers returns the supplier repository view of the store.
func (s *Store) Suppliers() *SupplierRepository {
	return &SupplierRepository{s: s}
}

// Fruits returns the fruit repository view of the store.
func (s *Store) Fruits() *FruitRepository {
	return &FruitRepository{s: s}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// nameTaken reports whether a supplier other than exceptID uses name.
// Callers hold the lock.
func (s *Store) nameTaken(name string, exceptID int64) bool {
	for id, sup := range s.suppliers {
		if id != exceptID && strings.EqualFold(sup.Name, name) {
			return true
		}
	}
	return false
}

func (s *Store) hydrate(f inventory.Fruit) inventory.Fruit {
	f.Supplier = s.suppliers[f.SupplierID]
	return f
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SupplierRepository provides an in-memory implementation of
// inventory.SupplierRepository.
type SupplierRepository struct {
	s *Store
}

// Create stores the supplier and assigns its ID.
func (r *SupplierRepository) Create(ctx context.Context, sup *inventory.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.nameTaken(sup.Name, 0) {
		return inventory.ErrDuplicateName
	}
	r.s.nextSup++
	sup.ID = r.s.nextSup
	r.s.suppliers[sup.ID] = *sup
	return nil
}

// Get retrieves a supplier by ID.
func (r *SupplierRepository) Get(ctx context.Context, id int64) (inventory.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return inventory.Supplier{}, inventory.ErrSupplierNotFound
	}
	return sup, nil
}

// List returns all suppliers ordered by ID.
func (r *SupplierRepository) List(ctx context.Context) ([]inventory.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]inventory.Supplier, 0, len(r.s.suppliers))
	for _, id := range sortedKeys(r.s.suppliers) {
		out = append(out, r.s.suppliers[id])
	}
	return out, nil
}

// ExistsByName reports whether any supplier uses name, ignoring case.
func (r *SupplierRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.nameTaken(name, 0), nil
}

// FindByName returns the supplier using name, ignoring case.
func (r *SupplierRepository) FindByName(ctx context.Context, name string) (inventory.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sup := range r.s.suppliers {
		if strings.EqualFold(sup.Name, name) {
			return sup, nil
		}
	}
	return inventory.Supplier{}, inventory.ErrSupplierNotFound
}

// Update replaces an existing supplier.
func (r *SupplierRepository) Update(ctx context.Context, sup inventory.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[sup.ID]; !ok {
		return inventory.ErrSupplierNotFound
	}
	if r.s.nameTaken(sup.Name, sup.ID) {
		return inventory.ErrDuplicateName
	}
	r.s.suppliers[sup.ID] = sup
	return nil
}

// Delete removes a supplier that no fruit references.
func (r *SupplierRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[id]; !ok {
		return inventory.ErrSupplierNotFound
	}
	for _, f := range r.s.fruits {
		if f.SupplierID == id {
			return inventory.ErrHasDependents
		}
	}
	delete(r.s.suppliers, id)
	return nil
}

// FruitRepository provides an in-memory implementation of
// inventory.FruitRepository.
type FruitRepository struct {
	s *Store
}

// Create stores the fruit, assigns its ID and fills in its supplier.
func (r *FruitRepository) Create(ctx context.Context, f *inventory.Fruit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[f.SupplierID]; !ok {
		return inventory.ErrSupplierNotFound
	}
	if f.WeightInKilos <= 0 {
		return inventory.ErrInvalidInput
	}
	r.s.nextFruit++
	f.ID = r.s.nextFruit
	stored := *f
	stored.Supplier = inventory.Supplier{}
	r.s.fruits[f.ID] = stored
	*f = r.s.hydrate(stored)
	return nil
}

// Get retrieves a fruit by ID.
func (r *FruitRepository) Get(ctx context.Context, id int64) (inventory.Fruit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.fruits[id]
	if !ok {
		return inventory.Fruit{}, inventory.ErrFruitNotFound
	}
	return r.s.hydrate(f), nil
}

// List returns all fruits ordered by ID.
func (r *FruitRepository) List(ctx context.Context) ([]inventory.Fruit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]inventory.Fruit, 0, len(r.s.fruits))
	for _, id := range sortedKeys(r.s.fruits) {
		out = append(out, r.s.hydrate(r.s.fruits[id]))
	}
	return out, nil
}

// ListBySupplier returns the fruits of one supplier ordered by ID.
func (r *FruitRepository) ListBySupplier(ctx context.Context, supplierID int64) ([]inventory.Fruit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]inventory.Fruit, 0)
	for _, id := range sortedKeys(r.s.fruits) {
		if f := r.s.fruits[id]; f.SupplierID == supplierID {
			out = append(out, r.s.hydrate(f))
		}
	}
	return out, nil
}

// Update replaces an existing fruit.
func (r *FruitRepository) Update(ctx context.Context, f inventory.Fruit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.fruits[f.ID]; !ok {
		return inventory.ErrFruitNotFound
	}
	if _, ok := r.s.suppliers[f.SupplierID]; !ok {
		return inventory.ErrSupplierNotFound
	}
	if f.WeightInKilos <= 0 {
		return inventory.ErrInvalidInput
	}
	f.Supplier = inventory.Supplier{}
	r.s.fruits[f.ID] = f
	return nil
}

// Delete removes a fruit by ID.
func (r *FruitRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.fruits[id]; !ok {
		return inventory.ErrFruitNotFound
	}
	delete(r.s.fruits, id)
	return nil
}
