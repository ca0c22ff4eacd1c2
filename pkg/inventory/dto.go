package inventory

import "strings"

// SupplierRequest is the payload for creating or updating a supplier.
type SupplierRequest struct {
	Name    string `json:"name" validate:"notblank" example:"FreshFarm"`
	Country string `json:"country" validate:"notblank" example:"Spain"`
}

// SupplierResponse is the wire representation of a supplier.
type SupplierResponse struct {
	ID      int64  `json:"id" example:"1"`
	Name    string `json:"name" example:"FreshFarm"`
	Country string `json:"country" example:"Spain"`
}

// FruitRequest is the payload for creating a fruit.
type FruitRequest struct {
	Name          string `json:"name" validate:"notblank" example:"Banana"`
	WeightInKilos int    `json:"weightInKilos" validate:"gt=0" example:"5"`
	SupplierID    *int64 `json:"supplierId" validate:"required,gt=0" example:"1"`
}

// FruitUpdateRequest is the payload for updating a fruit. A nil SupplierID
// keeps the current supplier.
type FruitUpdateRequest struct {
	Name          string `json:"name" validate:"notblank" example:"Banana"`
	WeightInKilos int    `json:"weightInKilos" validate:"gt=0" example:"7"`
	SupplierID    *int64 `json:"supplierId,omitempty" validate:"omitempty,gt=0" example:"2"`
}

// FruitResponse is the wire representation of a fruit.
type FruitResponse struct {
	ID            int64            `json:"id" example:"1"`
	Name          string           `json:"name" example:"Banana"`
	WeightInKilos int              `json:"weightInKilos" example:"5"`
	Supplier      SupplierResponse `json:"supplier"`
}

// Normalize trims surrounding whitespace from the text fields.
func (r SupplierRequest) Normalize() SupplierRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Country = strings.TrimSpace(r.Country)
	return r
}

// Normalize trims surrounding whitespace from the name.
func (r FruitRequest) Normalize() FruitRequest {
	r.Name = strings.TrimSpace(r.Name)
	return r
}

// Normalize trims surrounding whitespace from the name.
func (r FruitUpdateRequest) Normalize() FruitUpdateRequest {
	r.Name = strings.TrimSpace(r.Name)
	return r
}

// NewSupplierResponse maps a supplier to its wire form.
func NewSupplierResponse(s Supplier) SupplierResponse {
	return SupplierResponse{
		ID:      s.ID,
		Name:    s.Name,
		Country: s.Country,
	}
}

// NewFruitResponse maps a fruit and its supplier to the wire form.
func NewFruitResponse(f Fruit) FruitResponse {
	return FruitResponse{
		ID:            f.ID,
		Name:          f.Name,
		WeightInKilos: f.WeightInKilos,
		Supplier:      NewSupplierResponse(f.Supplier),
	}
}

func newSupplierResponses(suppliers []Supplier) []SupplierResponse {
	out := make([]SupplierResponse, 0, len(suppliers))
	for _, s := range suppliers {
		out = append(out, NewSupplierResponse(s))
	}
	return out
}

func newFruitResponses(fruits []Fruit) []FruitResponse {
	out := make([]FruitResponse, 0, len(fruits))
	for _, f := range fruits {
		out = append(out, NewFruitResponse(f))
	}
	return out
}
