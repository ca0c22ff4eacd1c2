// Package sqlite persists suppliers and fruits in an embedded SQLite database
// through gorm. The schema carries the same constraints as the PostgreSQL
// store: a case-insensitive unique index on supplier names, a restricting
// foreign key from fruits to suppliers and a positive weight check.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"fruitstock/pkg/inventory"
)

// Open connects to the SQLite database at dsn and migrates the schema.
// Writer receives gorm's slow query and error logs; it may be nil.
func Open(dsn string, writer gormlogger.Writer) (*gorm.DB, error) {
	cfg := &gorm.Config{
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		Logger: gormlogger.Discard,
	}
	if writer != nil {
		cfg.Logger = gormlogger.New(writer, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(gormsqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// An in-memory database lives and dies with its connection.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables and indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&supplierRecord{}, &fruitRecord{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS suppliers_name_lower_key ON suppliers (lower(name))").Error
	if err != nil {
		return fmt.Errorf("creating name index: %w", err)
	}
	return nil
}

// translate maps SQLite constraint violations onto inventory errors. fkErr
// is reported for foreign key violations. SQLite raises an ON DELETE RESTRICT
// violation as a trigger constraint rather than a foreign key one.
func translate(err error, fkErr error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique:
		return inventory.ErrDuplicateName
	case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintTrigger:
		return fkErr
	case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
		return inventory.ErrInvalidInput
	}
	return err
}

// SupplierRepository persists suppliers through gorm.
type SupplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository creates a gorm supplier repository.
func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create inserts a new supplier and sets its ID.
func (r *SupplierRepository) Create(ctx context.Context, s *inventory.Supplier) error {
	rec := supplierRecord{}.From(*s)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return translate(err, inventory.ErrSupplierNotFound)
	}
	s.ID = rec.ID
	return nil
}

// Get retrieves a supplier by ID.
func (r *SupplierRepository) Get(ctx context.Context, id int64) (inventory.Supplier, error) {
	var rec supplierRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inventory.Supplier{}, inventory.ErrSupplierNotFound
		}
		return inventory.Supplier{}, err
	}
	return rec.To(), nil
}

// List fetches all suppliers in insertion order.
func (r *SupplierRepository) List(ctx context.Context) ([]inventory.Supplier, error) {
	var recs []supplierRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.Supplier, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.To())
	}
	return out, nil
}

// ExistsByName reports whether a supplier uses name, ignoring case.
func (r *SupplierRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&supplierRecord{}).Where("lower(name) = lower(?)", name).Count(&n).Error
	return n > 0, err
}

// FindByName retrieves the supplier using name, ignoring case.
func (r *SupplierRepository) FindByName(ctx context.Context, name string) (inventory.Supplier, error) {
	var rec supplierRecord
	if err := r.db.WithContext(ctx).First(&rec, "lower(name) = lower(?)", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inventory.Supplier{}, inventory.ErrSupplierNotFound
		}
		return inventory.Supplier{}, err
	}
	return rec.To(), nil
}

// Update overwrites the name and country of an existing supplier.
func (r *SupplierRepository) Update(ctx context.Context, s inventory.Supplier) error {
	res := r.db.WithContext(ctx).Model(&supplierRecord{}).Where("id = ?", s.ID).
		Updates(map[string]any{"name": s.Name, "country": s.Country})
	if res.Error != nil {
		return translate(res.Error, inventory.ErrSupplierNotFound)
	}
	if res.RowsAffected == 0 {
		return inventory.ErrSupplierNotFound
	}
	return nil
}

// Delete removes a supplier by ID.
func (r *SupplierRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&supplierRecord{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, inventory.ErrHasDependents)
	}
	if res.RowsAffected == 0 {
		return inventory.ErrSupplierNotFound
	}
	return nil
}

// FruitRepository persists fruits through gorm.
type FruitRepository struct {
	db *gorm.DB
}

// NewFruitRepository creates a gorm fruit repository.
func NewFruitRepository(db *gorm.DB) *FruitRepository {
	return &FruitRepository{db: db}
}

// Create inserts a new fruit, setting its ID and supplier.
func (r *FruitRepository) Create(ctx context.Context, f *inventory.Fruit) error {
	rec := fruitRecord{}.From(*f)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return translate(err, inventory.ErrSupplierNotFound)
	}
	created, err := r.Get(ctx, rec.ID)
	if err != nil {
		return err
	}
	*f = created
	return nil
}

// Get retrieves a fruit by ID.
func (r *FruitRepository) Get(ctx context.Context, id int64) (inventory.Fruit, error) {
	var rec fruitRecord
	if err := r.db.WithContext(ctx).Preload("Supplier").First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inventory.Fruit{}, inventory.ErrFruitNotFound
		}
		return inventory.Fruit{}, err
	}
	return rec.To(), nil
}

// List fetches all fruits in insertion order.
func (r *FruitRepository) List(ctx context.Context) ([]inventory.Fruit, error) {
	return r.find(r.db.WithContext(ctx))
}

// ListBySupplier fetches the fruits referencing supplierID.
func (r *FruitRepository) ListBySupplier(ctx context.Context, supplierID int64) ([]inventory.Fruit, error) {
	return r.find(r.db.WithContext(ctx).Where("supplier_id = ?", supplierID))
}

// Update overwrites an existing fruit.
func (r *FruitRepository) Update(ctx context.Context, f inventory.Fruit) error {
	res := r.db.WithContext(ctx).Model(&fruitRecord{}).Where("id = ?", f.ID).Updates(map[string]any{
		"name":            f.Name,
		"weight_in_kilos": f.WeightInKilos,
		"supplier_id":     f.SupplierID,
	})
	if res.Error != nil {
		return translate(res.Error, inventory.ErrSupplierNotFound)
	}
	if res.RowsAffected == 0 {
		return inventory.ErrFruitNotFound
	}
	return nil
}

// Delete removes a fruit by ID.
func (r *FruitRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&fruitRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return inventory.ErrFruitNotFound
	}
	return nil
}

func (r *FruitRepository) find(db *gorm.DB) ([]inventory.Fruit, error) {
	var recs []fruitRecord
	if err := db.Preload("Supplier").Order("id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.Fruit, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.To())
	}
	return out, nil
}
