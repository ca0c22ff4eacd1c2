package api

import (
	"net/http"

	"fruitstock/pkg/inventory"
	"fruitstock/pkg/otel"
)

// createFruit creates a new fruit for an existing supplier.
// @Summary Create fruit
// @Tags fruits
// @Accept json
// @Produce json
// @Param fruit body inventory.FruitRequest true "Fruit"
// @Success 201 {object} inventory.FruitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /fruits [post]
func (h *Handler) createFruit(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createFruit")
	defer span.End()
	r = r.WithContext(ctx)

	var req inventory.FruitRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "create fruit", err)
		return
	}
	f, err := h.fruits.AddFruit(ctx, req)
	if err != nil {
		h.fail(w, r, "create fruit", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// listFruits lists fruits, optionally only those of one supplier.
// @Summary List fruits
// @Tags fruits
// @Produce json
// @Param supplierId query int false "Supplier ID"
// @Success 200 {array} inventory.FruitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /fruits [get]
func (h *Handler) listFruits(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listFruits")
	defer span.End()
	r = r.WithContext(ctx)

	var (
		fruits []inventory.FruitResponse
		err    error
	)
	if raw, ok := r.URL.Query()["supplierId"]; ok {
		var supplierID int64
		if supplierID, err = parseID("supplierId", raw[0]); err == nil {
			fruits, err = h.fruits.GetFruitsBySupplierID(ctx, supplierID)
		}
	} else {
		fruits, err = h.fruits.GetAllFruits(ctx)
	}
	if err != nil {
		h.fail(w, r, "list fruits", err)
		return
	}
	writeJSON(w, http.StatusOK, fruits)
}

// getFruit retrieves a fruit by ID.
// @Summary Get fruit
// @Tags fruits
// @Produce json
// @Param id path int true "Fruit ID"
// @Success 200 {object} inventory.FruitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /fruits/{id} [get]
func (h *Handler) getFruit(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getFruit")
	defer span.End()
	r = r.WithContext(ctx)

	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "get fruit", err)
		return
	}
	f, err := h.fruits.GetFruitByID(ctx, id)
	if err != nil {
		h.fail(w, r, "get fruit", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// updateFruit updates an existing fruit.
// @Summary Update fruit
// @Description Name and weight are always overwritten; the supplier changes only when supplierId is given.
// @Tags fruits
// @Accept json
// @Produce json
// @Param id path int true "Fruit ID"
// @Param fruit body inventory.FruitUpdateRequest true "Fruit"
// @Success 200 {object} inventory.FruitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /fruits/{id} [put]
func (h *Handler) updateFruit(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateFruit")
	defer span.End()
	r = r.WithContext(ctx)

	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "update fruit", err)
		return
	}
	var req inventory.FruitUpdateRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "update fruit", err)
		return
	}
	f, err := h.fruits.UpdateFruit(ctx, id, req)
	if err != nil {
		h.fail(w, r, "update fruit", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// deleteFruit removes a fruit.
// @Summary Delete fruit
// @Tags fruits
// @Param id path int true "Fruit ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /fruits/{id} [delete]
func (h *Handler) deleteFruit(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteFruit")
	defer span.End()
	r = r.WithContext(ctx)

	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "delete fruit", err)
		return
	}
	if err := h.fruits.DeleteFruit(ctx, id); err != nil {
		h.fail(w, r, "delete fruit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
