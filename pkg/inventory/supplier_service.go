package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"fruitstock/pkg/logger"
	"fruitstock/pkg/otel"
)

// SupplierService exposes the supplier use cases.
type SupplierService interface {
	AddSupplier(ctx context.Context, req SupplierRequest) (SupplierResponse, error)
	GetAllSuppliers(ctx context.Context) ([]SupplierResponse, error)
	GetSupplierByID(ctx context.Context, id int64) (SupplierResponse, error)
	UpdateSupplier(ctx context.Context, id int64, req SupplierRequest) (SupplierResponse, error)
	DeleteSupplier(ctx context.Context, id int64) error
}

type supplierService struct {
	suppliers SupplierRepository
	fruits    FruitRepository
	log       *logger.Logger
}

// NewSupplierService constructs a SupplierService. The fruit repository is
// consulted before deleting a supplier.
func NewSupplierService(suppliers SupplierRepository, fruits FruitRepository, log *logger.Logger) SupplierService {
	return &supplierService{
		suppliers: suppliers,
		fruits:    fruits,
		log:       log,
	}
}

func (s *supplierService) AddSupplier(ctx context.Context, req SupplierRequest) (SupplierResponse, error) {
	ctx, span := otel.AddSpan(ctx, "inventory.AddSupplier")
	defer span.End()

	req = req.Normalize()

	exists, err := s.suppliers.ExistsByName(ctx, req.Name)
	if err != nil {
		return SupplierResponse{}, fmt.Errorf("checking supplier name: %w", err)
	}
	if exists {
		return SupplierResponse{}, duplicateName(req.Name)
	}

	sup := Supplier{Name: req.Name, Country: req.Country}
	if err := s.suppliers.Create(ctx, &sup); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			return SupplierResponse{}, duplicateName(req.Name)
		}
		return SupplierResponse{}, fmt.Errorf("creating supplier: %w", err)
	}

	span.SetAttributes(attribute.Int64("supplier.id", sup.ID))
	s.log.Info(ctx, "supplier created", "supplier_id", sup.ID, "name", sup.Name)

	return NewSupplierResponse(sup), nil
}

func (s *supplierService) GetAllSuppliers(ctx context.Context) ([]SupplierResponse, error) {
	ctx, span := otel.AddSpan(ctx, "inventory.GetAllSuppliers")
	defer span.End()

	suppliers, err := s.suppliers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}
	return newSupplierResponses(suppliers), nil
}

func (s *supplierService) GetSupplierByID(ctx context.Context, id int64) (SupplierResponse, error) {
	ctx, span := otel.AddSpan(ctx, "inventory.GetSupplierByID", attribute.Int64("supplier.id", id))
	defer span.End()

	sup, err := loadSupplier(ctx, s.suppliers, id)
	if err != nil {
		return SupplierResponse{}, err
	}
	return NewSupplierResponse(sup), nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id int64, req SupplierRequest) (SupplierResponse, error) {
	ctx, span := otel.AddSpan(ctx, "inventory.UpdateSupplier", attribute.Int64("supplier.id", id))
	defer span.End()

	req = req.Normalize()

	sup, err := loadSupplier(ctx, s.suppliers, id)
	if err != nil {
		return SupplierResponse{}, err
	}

	// Renaming to the current name, in any case, is not a conflict.
	owner, err := s.suppliers.FindByName(ctx, req.Name)
	switch {
	case err == nil && owner.ID != id:
		return SupplierResponse{}, duplicateName(req.Name)
	case err != nil && !errors.Is(err, ErrSupplierNotFound):
		return SupplierResponse{}, fmt.Errorf("checking supplier name: %w", err)
	}

	sup.Name = req.Name
	sup.Country = req.Country
	if err := s.suppliers.Update(ctx, sup); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateName):
			return SupplierResponse{}, duplicateName(req.Name)
		case errors.Is(err, ErrSupplierNotFound):
			return SupplierResponse{}, supplierNotFound(id)
		}
		return SupplierResponse{}, fmt.Errorf("updating supplier: %w", err)
	}

	s.log.Info(ctx, "supplier updated", "supplier_id", id, "name", sup.Name)

	return NewSupplierResponse(sup), nil
}

func (s *supplierService) DeleteSupplier(ctx context.Context, id int64) error {
	ctx, span := otel.AddSpan(ctx, "inventory.DeleteSupplier", attribute.Int64("supplier.id", id))
	defer span.End()

	// Existence is decided by the store's delete, never by a cached read.
	fruits, err := s.fruits.ListBySupplier(ctx, id)
	if err != nil {
		return fmt.Errorf("listing supplier fruits: %w", err)
	}
	if len(fruits) > 0 {
		return hasDependents(id, len(fruits))
	}

	if err := s.suppliers.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, ErrHasDependents):
			return fmt.Errorf("%w: supplier %d", ErrHasDependents, id)
		case errors.Is(err, ErrSupplierNotFound):
			return supplierNotFound(id)
		}
		return fmt.Errorf("deleting supplier: %w", err)
	}

	s.log.Info(ctx, "supplier deleted", "supplier_id", id)

	return nil
}

// loadSupplier fetches a supplier and normalizes the not-found error.
func loadSupplier(ctx context.Context, repo SupplierRepository, id int64) (Supplier, error) {
	sup, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSupplierNotFound) {
			return Supplier{}, supplierNotFound(id)
		}
		return Supplier{}, fmt.Errorf("getting supplier %d: %w", id, err)
	}
	return sup, nil
}

func supplierNotFound(id int64) error {
	return fmt.Errorf("%w: id %d", ErrSupplierNotFound, id)
}

func duplicateName(name string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateName, name)
}

func hasDependents(id int64, n int) error {
	return fmt.Errorf("%w: supplier %d has %d fruit(s)", ErrHasDependents, id, n)
}
