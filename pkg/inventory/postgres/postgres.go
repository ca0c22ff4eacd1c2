// Package postgres persists suppliers and fruits in PostgreSQL. Name
// uniqueness, the fruit-to-supplier reference and positive weights are
// enforced by the schema; constraint violations are translated into the
// inventory sentinel errors.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"fruitstock/pkg/inventory"
)

// Schema creates the tables and constraints the repositories rely on.
const Schema = `
CREATE TABLE IF NOT EXISTS suppliers (
	id      BIGSERIAL PRIMARY KEY,
	name    TEXT NOT NULL,
	country TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS suppliers_name_lower_key ON suppliers (lower(name));
CREATE TABLE IF NOT EXISTS fruits (
	id              BIGSERIAL PRIMARY KEY,
	name            TEXT NOT NULL,
	weight_in_kilos INT NOT NULL CHECK (weight_in_kilos > 0),
	supplier_id     BIGINT NOT NULL REFERENCES suppliers (id) ON DELETE RESTRICT
);
CREATE INDEX IF NOT EXISTS fruits_supplier_id_idx ON fruits (supplier_id);
`

// PostgreSQL error codes the repositories translate.
const (
	codeUniqueViolation     pq.ErrorCode = "23505"
	codeForeignKeyViolation pq.ErrorCode = "23503"
	codeCheckViolation      pq.ErrorCode = "23514"
	codeNotNullViolation    pq.ErrorCode = "23502"
)

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

// translate maps constraint violations onto inventory errors. fkErr is the
// error to report for a foreign key violation, which depends on the side of
// the relation the statement touched.
func translate(err error, fkErr error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeUniqueViolation:
		return inventory.ErrDuplicateName
	case codeForeignKeyViolation:
		return fkErr
	case codeCheckViolation, codeNotNullViolation:
		return inventory.ErrInvalidInput
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

// SupplierRepository persists suppliers in PostgreSQL.
type SupplierRepository struct {
	db *sql.DB
}

// NewSupplierRepository creates a PostgreSQL supplier repository.
func NewSupplierRepository(db *sql.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create inserts a new supplier and sets its ID.
func (r *SupplierRepository) Create(ctx context.Context, s *inventory.Supplier) error {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO suppliers (name,country) VALUES ($1,$2) RETURNING id",
		s.Name, s.Country,
	).Scan(&s.ID)
	return translate(err, inventory.ErrSupplierNotFound)
}

// Get retrieves a supplier by ID.
func (r *SupplierRepository) Get(ctx context.Context, id int64) (inventory.Supplier, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id,name,country FROM suppliers WHERE id=$1", id)
	return scanSupplier(row)
}

// List fetches all suppliers in insertion order.
func (r *SupplierRepository) List(ctx context.Context) ([]inventory.Supplier, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id,name,country FROM suppliers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	suppliers := make([]inventory.Supplier, 0)
	for rows.Next() {
		var s inventory.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Country); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

// ExistsByName reports whether a supplier uses name, ignoring case.
func (r *SupplierRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM suppliers WHERE lower(name)=lower($1))", name,
	).Scan(&exists)
	return exists, err
}

// FindByName retrieves the supplier using name, ignoring case.
func (r *SupplierRepository) FindByName(ctx context.Context, name string) (inventory.Supplier, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id,name,country FROM suppliers WHERE lower(name)=lower($1)", name)
	return scanSupplier(row)
}

// Update overwrites the name and country of an existing supplier.
func (r *SupplierRepository) Update(ctx context.Context, s inventory.Supplier) error {
	res, err := r.db.ExecContext(ctx, "UPDATE suppliers SET name=$2, country=$3 WHERE id=$1", s.ID, s.Name, s.Country)
	if err != nil {
		return translate(err, inventory.ErrSupplierNotFound)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return inventory.ErrSupplierNotFound
	}
	return nil
}

// Delete removes a supplier by ID. The foreign key rejects suppliers that
// still have fruits.
func (r *SupplierRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM suppliers WHERE id=$1", id)
	if err != nil {
		return translate(err, inventory.ErrHasDependents)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return inventory.ErrSupplierNotFound
	}
	return nil
}

func scanSupplier(row scanner) (inventory.Supplier, error) {
	var s inventory.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.Country)
	if err == sql.ErrNoRows {
		return inventory.Supplier{}, inventory.ErrSupplierNotFound
	}
	return s, err
}

const selectFruits = `
SELECT f.id, f.name, f.weight_in_kilos, f.supplier_id, s.id, s.name, s.country
FROM fruits f JOIN suppliers s ON s.id = f.supplier_id`

// FruitRepository persists fruits in PostgreSQL.
type FruitRepository struct {
	db *sql.DB
}

// NewFruitRepository creates a PostgreSQL fruit repository.
func NewFruitRepository(db *sql.DB) *FruitRepository {
	return &FruitRepository{db: db}
}

// Create inserts a new fruit, setting its ID and supplier.
func (r *FruitRepository) Create(ctx context.Context, f *inventory.Fruit) error {
	err := r.db.QueryRowContext(ctx, `
WITH ins AS (
	INSERT INTO fruits (name,weight_in_kilos,supplier_id) VALUES ($1,$2,$3)
	RETURNING id, supplier_id
)
SELECT ins.id, s.id, s.name, s.country FROM ins JOIN suppliers s ON s.id = ins.supplier_id`,
		f.Name, f.WeightInKilos, f.SupplierID,
	).Scan(&f.ID, &f.Supplier.ID, &f.Supplier.Name, &f.Supplier.Country)
	return translate(err, inventory.ErrSupplierNotFound)
}

// Get retrieves a fruit by ID.
func (r *FruitRepository) Get(ctx context.Context, id int64) (inventory.Fruit, error) {
	f, err := scanFruit(r.db.QueryRowContext(ctx, selectFruits+" WHERE f.id=$1", id))
	if err == sql.ErrNoRows {
		return inventory.Fruit{}, inventory.ErrFruitNotFound
	}
	return f, err
}

// List fetches all fruits in insertion order.
func (r *FruitRepository) List(ctx context.Context) ([]inventory.Fruit, error) {
	return r.query(ctx, selectFruits+" ORDER BY f.id")
}

// ListBySupplier fetches the fruits referencing supplierID.
func (r *FruitRepository) ListBySupplier(ctx context.Context, supplierID int64) ([]inventory.Fruit, error) {
	return r.query(ctx, selectFruits+" WHERE f.supplier_id=$1 ORDER BY f.id", supplierID)
}

// Update overwrites an existing fruit.
func (r *FruitRepository) Update(ctx context.Context, f inventory.Fruit) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE fruits SET name=$2, weight_in_kilos=$3, supplier_id=$4 WHERE id=$1",
		f.ID, f.Name, f.WeightInKilos, f.SupplierID,
	)
	if err != nil {
		return translate(err, inventory.ErrSupplierNotFound)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return inventory.ErrFruitNotFound
	}
	return nil
}

// Delete removes a fruit by ID.
func (r *FruitRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM fruits WHERE id=$1", id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return inventory.ErrFruitNotFound
	}
	return nil
}

func (r *FruitRepository) query(ctx context.Context, q string, args ...any) ([]inventory.Fruit, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	fruits := make([]inventory.Fruit, 0)
	for rows.Next() {
		f, err := scanFruit(rows)
		if err != nil {
			return nil, err
		}
		fruits = append(fruits, f)
	}
	return fruits, rows.Err()
}

func scanFruit(row scanner) (inventory.Fruit, error) {
	var f inventory.Fruit
	err := row.Scan(&f.ID, &f.Name, &f.WeightInKilos, &f.SupplierID, &f.Supplier.ID, &f.Supplier.Name, &f.Supplier.Country)
	return f, err
}
