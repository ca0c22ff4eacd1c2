// Package cache provides a Redis read-through cache in front of a supplier
// repository. Reads by id are served from Redis when possible. Updates and
// deletes drop the cached entry before and after the write; a failure to drop
// it afterwards fails the write so a stale supplier is never served silently.
// Read failures are logged and the wrapped repository answers instead.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fruitstock/pkg/inventory"
	"fruitstock/pkg/logger"
)

type entry struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// SupplierRepository decorates an inventory.SupplierRepository with Redis.
type SupplierRepository struct {
	next inventory.SupplierRepository
	rdb  redis.Cmdable
	ttl  time.Duration
	log  *logger.Logger
}

// New wraps next. Entries expire after ttl.
func New(next inventory.SupplierRepository, rdb redis.Cmdable, ttl time.Duration, log *logger.Logger) *SupplierRepository {
	return &SupplierRepository{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log,
	}
}

// Key returns the Redis key holding the supplier with the given id.
func Key(id int64) string {
	return fmt.Sprintf("supplier:%d", id)
}

// Create passes through to the wrapped repository.
func (r *SupplierRepository) Create(ctx context.Context, s *inventory.Supplier) error {
	return r.next.Create(ctx, s)
}

// Get serves the supplier from Redis, falling back to the wrapped repository
// and populating the cache on a miss.
func (r *SupplierRepository) Get(ctx context.Context, id int64) (inventory.Supplier, error) {
	key := Key(id)

	raw, err := r.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var e entry
		if err := json.Unmarshal([]byte(raw), &e); err == nil {
			return inventory.Supplier{ID: e.ID, Name: e.Name, Country: e.Country}, nil
		}
		r.log.Warn(ctx, "discarding corrupt cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		r.log.Warn(ctx, "cache get", "key", key, "error", err)
	}

	s, err := r.next.Get(ctx, id)
	if err != nil {
		return inventory.Supplier{}, err
	}

	b, _ := json.Marshal(entry{ID: s.ID, Name: s.Name, Country: s.Country})
	if err := r.rdb.Set(ctx, key, string(b), r.ttl).Err(); err != nil {
		r.log.Warn(ctx, "cache set", "key", key, "error", err)
	}
	return s, nil
}

// List passes through to the wrapped repository.
func (r *SupplierRepository) List(ctx context.Context) ([]inventory.Supplier, error) {
	return r.next.List(ctx)
}

// ExistsByName passes through to the wrapped repository.
func (r *SupplierRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return r.next.ExistsByName(ctx, name)
}

// FindByName passes through to the wrapped repository.
func (r *SupplierRepository) FindByName(ctx context.Context, name string) (inventory.Supplier, error) {
	return r.next.FindByName(ctx, name)
}

// Update writes through and invalidates the cached entry.
func (r *SupplierRepository) Update(ctx context.Context, s inventory.Supplier) error {
	return r.write(ctx, s.ID, func() error { return r.next.Update(ctx, s) })
}

// Delete removes the supplier and invalidates the cached entry.
func (r *SupplierRepository) Delete(ctx context.Context, id int64) error {
	return r.write(ctx, id, func() error { return r.next.Delete(ctx, id) })
}

// write runs fn between two invalidations of id. The second one narrows the
// window in which a concurrent miss repopulates the key with the old row.
func (r *SupplierRepository) write(ctx context.Context, id int64, fn func() error) error {
	key := Key(id)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		r.log.Warn(ctx, "cache invalidate", "key", key, "error", err)
	}
	if err := fn(); err != nil {
		return err
	}
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		r.log.Error(ctx, "cache invalidate", "key", key, "error", err)
		return fmt.Errorf("invalidating %s: %w", key, err)
	}
	return nil
}
