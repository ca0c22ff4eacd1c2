package sqlite

import "fruitstock/pkg/inventory"

type supplierRecord struct {
	ID      int64  `gorm:"primaryKey;column:id"`
	Name    string `gorm:"column:name;not null"`
	Country string `gorm:"column:country;not null"`
}

func (supplierRecord) TableName() string {
	return "suppliers"
}

func (s supplierRecord) To() inventory.Supplier {
	return inventory.Supplier{
		ID:      s.ID,
		Name:    s.Name,
		Country: s.Country,
	}
}

func (s supplierRecord) From(m inventory.Supplier) supplierRecord {
	s.ID = m.ID
	s.Name = m.Name
	s.Country = m.Country
	return s
}

type fruitRecord struct {
	ID            int64          `gorm:"primaryKey;column:id"`
	Name          string         `gorm:"column:name;not null"`
	WeightInKilos int            `gorm:"column:weight_in_kilos;not null;check:weight_in_kilos > 0"`
	SupplierID    int64          `gorm:"column:supplier_id;not null;index"`
	Supplier      supplierRecord `gorm:"constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT;"`
}

func (fruitRecord) TableName() string {
	return "fruits"
}

func (f fruitRecord) To() inventory.Fruit {
	return inventory.Fruit{
		ID:            f.ID,
		Name:          f.Name,
		WeightInKilos: f.WeightInKilos,
		SupplierID:    f.SupplierID,
		Supplier:      f.Supplier.To(),
	}
}

func (f fruitRecord) From(m inventory.Fruit) fruitRecord {
	f.ID = m.ID
	f.Name = m.Name
	f.WeightInKilos = m.WeightInKilos
	f.SupplierID = m.SupplierID
	return f
}
