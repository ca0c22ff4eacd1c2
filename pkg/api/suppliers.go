package api

import (
	"net/http"

	"fruitstock/pkg/inventory"
	"fruitstock/pkg/otel"
)

// createSupplier creates a new supplier.
// @Summary Create supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Param supplier body inventory.SupplierRequest true "Supplier"
// @Success 201 {object} inventory.SupplierResponse
// @Failure 400 {object} ErrorResponse
// @Router /suppliers [post]
func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createSupplier")
	defer span.End()
	r = r.WithContext(ctx)

	var req inventory.SupplierRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "create supplier", err)
		return
	}
	s, err := h.suppliers.AddSupplier(ctx, req)
	if err != nil {
		h.fail(w, r, "create supplier", err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// listSuppliers lists suppliers.
// @Summary List suppliers
// @Tags suppliers
// @Produce json
// @Success 200 {array} inventory.SupplierResponse
// @Router /suppliers [get]
func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listSuppliers")
	defer span.End()
	r = r.WithContext(ctx)

	suppliers, err := h.suppliers.GetAllSuppliers(ctx)
	if err != nil {
		h.fail(w, r, "list suppliers", err)
		return
	}
	writeJSON(w, http.StatusOK, suppliers)
}

// getSupplier retrieves a supplier by ID.
// @Summary Get supplier
// @Tags suppliers
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} inventory.SupplierResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /suppliers/{id} [get]
func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getSupplier")
	defer span.End()
	r = r.WithContext(ctx)

	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "get supplier", err)
		return
	}
	s, err := h.suppliers.GetSupplierByID(ctx, id)
	if err != nil {
		h.fail(w, r, "get supplier", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// updateSupplier updates an existing supplier.
// @Summary Update supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param supplier body inventory.SupplierRequest true "Supplier"
// @Success 200 {object} inventory.SupplierResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /suppliers/{id} [put]
func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateSupplier")
	defer span.End()
	r = r.WithContext(ctx)

	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "update supplier", err)
		return
	}
	var req inventory.SupplierRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "update supplier", err)
		return
	}
	s, err := h.suppliers.UpdateSupplier(ctx, id, req)
	if err != nil {
		h.fail(w, r, "update supplier", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// deleteSupplier removes a supplier that has no fruits.
// @Summary Delete supplier
// @Tags suppliers
// @Param id path int true "Supplier ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /suppliers/{id} [delete]
func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteSupplier")
	defer span.End()
	r = r.WithContext(ctx)

	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "delete supplier", err)
		return
	}
	if err := h.suppliers.DeleteSupplier(ctx, id); err != nil {
		h.fail(w, r, "delete supplier", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
