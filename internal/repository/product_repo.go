package repository

import (
	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll(activeOnly bool) ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByIDForUpdate(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	FindLowStock() ([]model.Product, error)
	Search(query string) ([]model.Product, error)
	Update(product *model.Product) error
	UpdateStock(id uuid.UUID, newStock int) error
	DecrementStock(id uuid.UUID, quantity int) (*model.Product, bool, error)
	CountActive() (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll(activeOnly bool) ([]model.Product, error) {
	var products []model.Product
	q := r.db.Order("name ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	return &product, err
}

// FindByIDForUpdate locks the product row for the duration of the enclosing
// transaction. Must be called on a repo bound to a transaction.
func (r *productRepo) FindByIDForUpdate(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "sku = ?", sku).Error
	return &product, err
}

func (r *productRepo) FindLowStock() ([]model.Product, error) {
	var products []model.Product
	err := r.db.
		Where("active = ? AND stock_quantity <= min_stock_level", true).
		Order("stock_quantity ASC").
		Find(&products).Error
	return products, err
}

// Search matches name, SKU, or barcode case-insensitively.
func (r *productRepo) Search(query string) ([]model.Product, error) {
	var products []model.Product
	pattern := "%" + query + "%"
	err := r.db.
		Where("name ILIKE ? OR sku ILIKE ? OR barcode ILIKE ?", pattern, pattern, pattern).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) UpdateStock(id uuid.UUID, newStock int) error {
	return r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", newStock).Error
}

// DecrementStock is a single conditional read-modify-write: the row is only
// updated when it still holds enough stock, so two concurrent sales can never
// drive the counter negative. Returns ok=false when the condition failed.
func (r *productRepo) DecrementStock(id uuid.UUID, quantity int) (*model.Product, bool, error) {
	var product model.Product
	res := r.db.Model(&product).
		Clauses(clause.Returning{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return &product, true, nil
}

func (r *productRepo) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Where("active = ?", true).Count(&count).Error
	return count, err
}
