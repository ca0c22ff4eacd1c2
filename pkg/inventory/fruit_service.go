package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"fruitstock/pkg/logger"
	"fruitstock/pkg/otel"
)

// FruitService exposes the fruit use cases.
type FruitService interface {
	AddFruit(ctx context.Context, req FruitRequest) (FruitResponse, error)
	GetAllFruits(ctx context.Context) ([]FruitResponse, error)
	GetFruitByID(ctx context.Context, id int64) (FruitResponse, error)
	GetFruitsBySupplierID(ctx context.Context, supplierID int64) ([]FruitResponse, error)
	UpdateFruit(ctx context.Context, id int64, req FruitUpdateRequest) (FruitResponse, error)
	DeleteFruit(ctx context.Context, id int64) error
}

type fruitService struct {
	fruits    FruitRepository
	suppliers SupplierRepository
	log       *logger.Logger
}

// NewFruitService constructs a FruitService.
func NewFruitService(fruits FruitRepository, suppliers SupplierRepository, log *logger.Logger) FruitService {
	return &fruitService{
		fruits:    fruits,
		suppliers: suppliers,
		log:       log,
	}
}

func (s *fruitService) AddFruit(ctx context.Context, req FruitRequest) (FruitResponse, error) {
	ctx, span := otel.AddSpan(ctx, "inventory.AddFruit")
	defer span.End()

	req = req.Normalize()
	if req.SupplierID == nil {
		return FruitResponse{}, fmt.Errorf("%w: supplierId is required", ErrInvalidInput)
	}

	sup, err := loadSupplier(ctx, s.suppliers, *req.SupplierID)
	if err != nil {
		return FruitResponse{}, err
	}

	f := Fruit{
		Name:          req.Name,
		WeightInKilos: req.WeightInKilos,
		SupplierID:    sup.ID,
		Supplier:      sup,
	}
	if err := s.fruits.Create(ctx, &f); err != nil {
		if errors.Is(err, ErrSupplierNotFound) {
			return FruitResponse{}, supplierNotFound(sup.ID)
		}
		return FruitResponse{}, fmt.Errorf("creating fruit: %w", err)
	}

	span.SetAttributes(attribute.Int64("fruit.id", f.ID))
	s.log.Info(ctx, "fruit created", "fruit_id", f.ID, "supplier_id", sup.ID)

	return NewFruitResponse(f), nil
}

func (s *fruitService) GetAllFruits(ctx context.Context) ([]FruitResponse, error) {
	ctx, span := otel.AddSpan(ctx, "inventory.GetAllFruits")
	defer span.End()

	fruits, err := s.fruits.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing fruits: %w", err)
	}
	return newFruitResponses(fruits), nil
}

func (s *fruitService) GetFruitByID(ctx context.Context, id int64) (FruitResponse, error) {
	ctx, span := otel.AddSpan(ctx, "inventory.GetFruitByID", attribute.Int64("fruit.id", id))
	defer span.End()

	f, err := s.load(ctx, id)
	if err != nil {
		return FruitResponse{}, err
	}
	return NewFruitResponse(f), nil
}

func (s *fruitService) GetFruitsBySupplierID(ctx context.Context, supplierID int64) ([]FruitResponse, error) {
	ctx, span := otel.AddSpan(ctx, "inventory.GetFruitsBySupplierID", attribute.Int64("supplier.id", supplierID))
	defer span.End()

	if _, err := loadSupplier(ctx, s.suppliers, supplierID); err != nil {
		return nil, err
	}

	fruits, err := s.fruits.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("listing supplier fruits: %w", err)
	}
	return newFruitResponses(fruits), nil
}

func (s *fruitService) UpdateFruit(ctx context.Context, id int64, req FruitUpdateRequest) (FruitResponse, error) {
	ctx, span := otel.AddSpan(ctx, "inventory.UpdateFruit", attribute.Int64("fruit.id", id))
	defer span.End()

	req = req.Normalize()

	f, err := s.load(ctx, id)
	if err != nil {
		return FruitResponse{}, err
	}

	if req.SupplierID != nil {
		sup, err := loadSupplier(ctx, s.suppliers, *req.SupplierID)
		if err != nil {
			return FruitResponse{}, err
		}
		f.SupplierID = sup.ID
		f.Supplier = sup
	}
	f.Name = req.Name
	f.WeightInKilos = req.WeightInKilos

	if err := s.fruits.Update(ctx, f); err != nil {
		switch {
		case errors.Is(err, ErrFruitNotFound):
			return FruitResponse{}, fruitNotFound(id)
		case errors.Is(err, ErrSupplierNotFound):
			return FruitResponse{}, supplierNotFound(f.SupplierID)
		}
		return FruitResponse{}, fmt.Errorf("updating fruit: %w", err)
	}

	s.log.Info(ctx, "fruit updated", "fruit_id", id, "supplier_id", f.SupplierID)

	return NewFruitResponse(f), nil
}

func (s *fruitService) DeleteFruit(ctx context.Context, id int64) error {
	ctx, span := otel.AddSpan(ctx, "inventory.DeleteFruit", attribute.Int64("fruit.id", id))
	defer span.End()

	if err := s.fruits.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrFruitNotFound) {
			return fruitNotFound(id)
		}
		return fmt.Errorf("deleting fruit: %w", err)
	}

	s.log.Info(ctx, "fruit deleted", "fruit_id", id)

	return nil
}

func (s *fruitService) load(ctx context.Context, id int64) (Fruit, error) {
	f, err := s.fruits.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrFruitNotFound) {
			return Fruit{}, fruitNotFound(id)
		}
		return Fruit{}, fmt.Errorf("getting fruit %d: %w", id, err)
	}
	return f, nil
}

func fruitNotFound(id int64) error {
	return fmt.Errorf("%w: id %d", ErrFruitNotFound, id)
}
