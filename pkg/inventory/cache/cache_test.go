package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fruitstock/pkg/inventory"
	"fruitstock/pkg/inventory/memory"
	"fruitstock/pkg/logger"
)

// countingRepo records how often Get reaches the backing store.
type countingRepo struct {
	*memory.SupplierRepository
	gets int
}

func (c *countingRepo) Get(ctx context.Context, id int64) (inventory.Supplier, error) {
	c.gets++
	return c.SupplierRepository.Get(ctx, id)
}

const payload = `{"id":1,"name":"FreshFarm","country":"Spain"}`

func setup(t *testing.T) (*SupplierRepository, *countingRepo, redismock.ClientMock) {
	t.Helper()
	backing := &countingRepo{SupplierRepository: memory.New().Suppliers()}
	s := inventory.Supplier{Name: "FreshFarm", Country: "Spain"}
	require.NoError(t, backing.Create(context.Background(), &s))

	rdb, mock := redismock.NewClientMock()
	log := logger.New(io.Discard, logger.LevelDebug, "test", nil)
	return New(backing, rdb, time.Minute, log), backing, mock
}

func TestGetReadThrough(t *testing.T) {
	repo, backing, mock := setup(t)
	ctx := context.Background()

	mock.ExpectGet("supplier:1").RedisNil()
	mock.ExpectSet("supplier:1", payload, time.Minute).SetVal("OK")
	mock.ExpectGet("supplier:1").SetVal(payload)

	first, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	second, err := repo.Get(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "FreshFarm", second.Name)
	assert.Equal(t, 1, backing.gets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFallsBackWhenRedisFails(t *testing.T) {
	repo, backing, mock := setup(t)

	mock.ExpectGet("supplier:1").SetErr(errors.New("connection refused"))
	mock.ExpectSet("supplier:1", payload, time.Minute).SetErr(errors.New("connection refused"))

	s, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Spain", s.Country)
	assert.Equal(t, 1, backing.gets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissingSupplierIsNotCached(t *testing.T) {
	repo, _, mock := setup(t)

	mock.ExpectGet("supplier:42").RedisNil()

	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, inventory.ErrSupplierNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDeleteInvalidate(t *testing.T) {
	repo, _, mock := setup(t)
	ctx := context.Background()

	mock.ExpectDel("supplier:1").SetVal(1)
	mock.ExpectDel("supplier:1").SetVal(0)
	mock.ExpectDel("supplier:1").SetVal(0)
	mock.ExpectDel("supplier:1").SetVal(0)
	mock.ExpectDel("supplier:1").SetVal(0)

	require.NoError(t, repo.Update(ctx, inventory.Supplier{ID: 1, Name: "FreshFarm", Country: "Portugal"}))
	require.NoError(t, repo.Delete(ctx, 1))

	// A failed write still drops the entry first but skips the second drop.
	assert.ErrorIs(t, repo.Delete(ctx, 1), inventory.ErrSupplierNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteFailsWhenInvalidationFails(t *testing.T) {
	repo, backing, mock := setup(t)
	ctx := context.Background()

	mock.ExpectGet("supplier:1").RedisNil()
	mock.ExpectSet("supplier:1", payload, time.Minute).SetVal("OK")
	mock.ExpectDel("supplier:1").SetErr(errors.New("i/o timeout"))
	mock.ExpectDel("supplier:1").SetErr(errors.New("i/o timeout"))

	_, err := repo.Get(ctx, 1)
	require.NoError(t, err)

	err = repo.Delete(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalidating supplier:1")

	_, err = backing.SupplierRepository.Get(ctx, 1)
	assert.ErrorIs(t, err, inventory.ErrSupplierNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFailsWhenInvalidationFails(t *testing.T) {
	repo, _, mock := setup(t)

	mock.ExpectDel("supplier:1").SetVal(0)
	mock.ExpectDel("supplier:1").SetErr(errors.New("i/o timeout"))

	err := repo.Update(context.Background(), inventory.Supplier{ID: 1, Name: "FreshFarm", Country: "Portugal"})
	assert.ErrorContains(t, err, "i/o timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}
