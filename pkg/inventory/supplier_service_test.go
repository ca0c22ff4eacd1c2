package inventory_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fruitstock/pkg/inventory"
	"fruitstock/pkg/inventory/memory"
	"fruitstock/pkg/logger"
)

func newServices(t *testing.T) (inventory.SupplierService, inventory.FruitService) {
	t.Helper()
	store := memory.New()
	log := logger.New(io.Discard, logger.LevelDebug, "test", nil)
	suppliers, fruits := store.Suppliers(), store.Fruits()
	return inventory.NewSupplierService(suppliers, fruits, log), inventory.NewFruitService(fruits, suppliers, log)
}

func int64Ptr(v int64) *int64 { return &v }

func TestAddSupplier(t *testing.T) {
	suppliers, _ := newServices(t)
	ctx := context.Background()

	got, err := suppliers.AddSupplier(ctx, inventory.SupplierRequest{Name: "  FreshFarm ", Country: "Spain"})
	require.NoError(t, err)
	assert.Equal(t, inventory.SupplierResponse{ID: 1, Name: "FreshFarm", Country: "Spain"}, got)

	_, err = suppliers.AddSupplier(ctx, inventory.SupplierRequest{Name: "FreshFarm", Country: "France"})
	assert.ErrorIs(t, err, inventory.ErrDuplicateName)

	_, err = suppliers.AddSupplier(ctx, inventory.SupplierRequest{Name: "freshfarm", Country: "France"})
	assert.ErrorIs(t, err, inventory.ErrDuplicateName)

	all, err := suppliers.GetAllSuppliers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetAllSuppliersKeepsInsertionOrder(t *testing.T) {
	suppliers, _ := newServices(t)
	ctx := context.Background()

	all, err := suppliers.GetAllSuppliers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	for _, name := range []string{"FreshFarm", "GreenWorld", "Alpha"} {
		_, err := suppliers.AddSupplier(ctx, inventory.SupplierRequest{Name: name, Country: "Spain"})
		require.NoError(t, err)
	}
	all, err = suppliers.GetAllSuppliers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "FreshFarm", all[0].Name)
	assert.Equal(t, "GreenWorld", all[1].Name)
	assert.Equal(t, "Alpha", all[2].Name)
}

func TestGetSupplierByID(t *testing.T) {
	suppliers, _ := newServices(t)
	ctx := context.Background()

	created, err := suppliers.AddSupplier(ctx, inventory.SupplierRequest{Name: "FreshFarm", Country: "Spain"})
	require.NoError(t, err)

	got, err := suppliers.GetSupplierByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = suppliers.GetSupplierByID(ctx, 99)
	assert.ErrorIs(t, err, inventory.ErrSupplierNotFound)
	assert.EqualError(t, err, "supplier not found: id 99")
}

func TestUpdateSupplier(t *testing.T) {
	suppliers, _ := newServices(t)
	ctx := context.Background()

	fresh, err := suppliers.AddSupplier(ctx, inventory.SupplierRequest{Name: "FreshFarm", Country: "Spain"})
	require.NoError(t, err)
	green, err := suppliers.AddSupplier(ctx, inventory.SupplierRequest{Name: "GreenGrow", Country: "Italy"})
	require.NoError(t, err)

	updated, err := suppliers.UpdateSupplier(ctx, fresh.ID, inventory.SupplierRequest{Name: "FRESHFARM", Country: "Portugal"})
	require.NoError(t, err)
	assert.Equal(t, inventory.SupplierResponse{ID: fresh.ID, Name: "FRESHFARM", Country: "Portugal"}, updated)

	_, err = suppliers.UpdateSupplier(ctx, green.ID, inventory.SupplierRequest{Name: "freshfarm", Country: "Italy"})
	assert.ErrorIs(t, err, inventory.ErrDuplicateName)

	_, err = suppliers.UpdateSupplier(ctx, 42, inventory.SupplierRequest{Name: "Nobody", Country: "Nowhere"})
	assert.ErrorIs(t, err, inventory.ErrSupplierNotFound)

	got, err := suppliers.GetSupplierByID(ctx, green.ID)
	require.NoError(t, err)
	assert.Equal(t, "GreenGrow", got.Name)
}

func TestDeleteSupplier(t *testing.T) {
	suppliers, fruits := newServices(t)
	ctx := context.Background()

	sup, err := suppliers.AddSupplier(ctx, inventory.SupplierRequest{Name: "FreshFarm", Country: "Spain"})
	require.NoError(t, err)
	fruit, err := fruits.AddFruit(ctx, inventory.FruitRequest{Name: "Banana", WeightInKilos: 5, SupplierID: int64Ptr(sup.ID)})
	require.NoError(t, err)

	err = suppliers.DeleteSupplier(ctx, sup.ID)
	assert.ErrorIs(t, err, inventory.ErrHasDependents)

	all, err := suppliers.GetAllSuppliers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, fruits.DeleteFruit(ctx, fruit.ID))
	require.NoError(t, suppliers.DeleteSupplier(ctx, sup.ID))

	err = suppliers.DeleteSupplier(ctx, sup.ID)
	assert.ErrorIs(t, err, inventory.ErrSupplierNotFound)
}

// staleSuppliers answers Get with a supplier the store no longer holds, the
// way an outdated cache entry would.
type staleSuppliers struct {
	*memory.SupplierRepository
}

func (staleSuppliers) Get(context.Context, int64) (inventory.Supplier, error) {
	return inventory.Supplier{ID: 1, Name: "FreshFarm", Country: "Spain"}, nil
}

func TestDeleteSupplierIgnoresStaleReads(t *testing.T) {
	store := memory.New()
	log := logger.New(io.Discard, logger.LevelDebug, "test", nil)
	suppliers := inventory.NewSupplierService(staleSuppliers{store.Suppliers()}, store.Fruits(), log)

	err := suppliers.DeleteSupplier(context.Background(), 1)
	assert.ErrorIs(t, err, inventory.ErrSupplierNotFound)
	assert.EqualError(t, err, "supplier not found: id 1")
}
