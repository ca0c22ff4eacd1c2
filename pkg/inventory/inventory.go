// Package inventory holds the supplier and fruit domain: entities, the
// persistence contracts, the wire DTOs and the services that enforce the
// business rules.
package inventory

import (
	"context"
	"errors"
)

// Supplier is a fruit provider. Names are unique case-insensitively.
type Supplier struct {
	ID      int64
	Name    string
	Country string
}

// Fruit is a stocked fruit batch owned by exactly one supplier. Repositories
// return fruits with Supplier populated.
type Fruit struct {
	ID            int64
	Name          string
	WeightInKilos int
	SupplierID    int64
	Supplier      Supplier
}

// SupplierRepository defines behavior for persisting suppliers.
type SupplierRepository interface {
	Create(ctx context.Context, s *Supplier) error
	Get(ctx context.Context, id int64) (Supplier, error)
	List(ctx context.Context) ([]Supplier, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindByName(ctx context.Context, name string) (Supplier, error)
	Update(ctx context.Context, s Supplier) error
	Delete(ctx context.Context, id int64) error
}

// FruitRepository defines behavior for persisting fruits.
type FruitRepository interface {
	Create(ctx context.Context, f *Fruit) error
	Get(ctx context.Context, id int64) (Fruit, error)
	List(ctx context.Context) ([]Fruit, error)
	ListBySupplier(ctx context.Context, supplierID int64) ([]Fruit, error)
	Update(ctx context.Context, f Fruit) error
	Delete(ctx context.Context, id int64) error
}

var (
	// ErrInvalidInput indicates a malformed or out-of-range field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateName indicates another supplier already uses the name.
	ErrDuplicateName = errors.New("supplier name already exists")

	// ErrHasDependents indicates a supplier still has fruits referencing it.
	ErrHasDependents = errors.New("cannot delete supplier with associated fruits")

	// ErrSupplierNotFound indicates the requested supplier does not exist.
	ErrSupplierNotFound = errors.New("supplier not found")

	// ErrFruitNotFound indicates the requested fruit does not exist.
	ErrFruitNotFound = errors.New("fruit not found")
)
