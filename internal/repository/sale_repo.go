package repository

import (
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleRepository interface {
	Create(sale *model.Sale) error
	FindAll() ([]model.Sale, error)
	FindByID(id uuid.UUID) (*model.Sale, error)
	FindByIDForUpdate(id uuid.UUID) (*model.Sale, error)
	LastNumberForDay(dayCode string) (string, error)
	UpdatePaymentStatus(id uuid.UUID, status model.PaymentStatus, reason string) error
	SumCompletedTotals(start, end *time.Time) (decimal.Decimal, error)
	PaymentMethodTotals() ([]PaymentMethodTotal, error)
	DailySummary(start, end time.Time) ([]DailySalesData, error)
	DailyCost(start, end time.Time) ([]DailyCostData, error)
	FindCompletedByCashier(cashierID uuid.UUID, since time.Time) ([]model.Sale, error)
	FindRecentByCashier(cashierID uuid.UUID, limit int) ([]model.Sale, error)
	SalesByCashier(start, end time.Time) ([]CashierSalesData, error)
}

// CashierSalesData aggregates completed sales per cashier over a range.
type CashierSalesData struct {
	CashierID  uuid.UUID       `json:"cashier_id"`
	Name       string          `json:"name"`
	Username   string          `json:"username"`
	TotalSales decimal.Decimal `json:"total_sales"`
	SalesCount int64           `json:"sales_count"`
	TotalItems int64           `json:"total_items"`
}

// PaymentMethodTotal is the completed-sales revenue for one payment method.
type PaymentMethodTotal struct {
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
}

// DailySalesData aggregates completed sales for one calendar day.
type DailySalesData struct {
	Date         string          `json:"date"`
	SalesCount   int64           `json:"sales_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// DailyCostData is the cost of goods sold per calendar day, derived from
// line-item quantities and the current product cost.
type DailyCostData struct {
	Date string          `json:"date"`
	Cost decimal.Decimal `json:"cost"`
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(sale *model.Sale) error {
	return r.db.Create(sale).Error
}

func (r *saleRepo) FindAll() ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.
		Preload("Cashier").
		Preload("Items.Product").
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.
		Preload("Cashier").
		Preload("Items.Product").
		First(&sale, "id = ?", id).Error
	return &sale, err
}

func (r *saleRepo) FindByIDForUpdate(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&sale, "id = ?", id).Error
	return &sale, err
}

// LastNumberForDay returns the highest sale number starting with dayCode
// (YYMMDD), or "" when the day has no sales yet.
func (r *saleRepo) LastNumberForDay(dayCode string) (string, error) {
	var number string
	err := r.db.Model(&model.Sale{}).
		Where("sale_number LIKE ?", dayCode+"%").
		Order("sale_number DESC").
		Limit(1).
		Pluck("sale_number", &number).Error
	if err != nil {
		return "", err
	}
	return number, nil
}

func (r *saleRepo) UpdatePaymentStatus(id uuid.UUID, status model.PaymentStatus, reason string) error {
	return r.db.Model(&model.Sale{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status": status,
			"refund_reason":  reason,
		}).Error
}

// SumCompletedTotals sums the total of completed sales, optionally bounded.
func (r *saleRepo) SumCompletedTotals(start, end *time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	q := r.db.Model(&model.Sale{}).Where("payment_status = ?", model.PaymentCompleted)
	if start != nil {
		q = q.Where("created_at >= ?", *start)
	}
	if end != nil {
		q = q.Where("created_at <= ?", *end)
	}
	err := q.Select("COALESCE(SUM(total), 0)").Scan(&total).Error
	return total, err
}

func (r *saleRepo) PaymentMethodTotals() ([]PaymentMethodTotal, error) {
	var results []PaymentMethodTotal
	err := r.db.Model(&model.Sale{}).
		Select("payment_method, COALESCE(SUM(total), 0) as total").
		Where("payment_status = ?", model.PaymentCompleted).
		Group("payment_method").
		Scan(&results).Error
	return results, err
}

func (r *saleRepo) DailySummary(start, end time.Time) ([]DailySalesData, error) {
	var results []DailySalesData
	err := r.db.Model(&model.Sale{}).
		Select(`
			TO_CHAR(created_at, 'YYYY-MM-DD') as date,
			COUNT(*) as sales_count,
			COALESCE(SUM(total), 0) as total_revenue
		`).
		Where("payment_status = ? AND created_at BETWEEN ? AND ?", model.PaymentCompleted, start, end).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date ASC").
		Scan(&results).Error
	return results, err
}

func (r *saleRepo) DailyCost(start, end time.Time) ([]DailyCostData, error) {
	var results []DailyCostData
	err := r.db.Model(&model.Sale{}).
		Select(`
			TO_CHAR(sales.created_at, 'YYYY-MM-DD') as date,
			COALESCE(SUM(products.cost * sale_items.quantity), 0) as cost
		`).
		Joins("JOIN sale_items ON sale_items.sale_id = sales.id").
		Joins("JOIN products ON products.id = sale_items.product_id").
		Where("sales.payment_status = ? AND sales.created_at BETWEEN ? AND ?", model.PaymentCompleted, start, end).
		Group("TO_CHAR(sales.created_at, 'YYYY-MM-DD')").
		Order("date ASC").
		Scan(&results).Error
	return results, err
}

// SalesByCashier totals completed sales per cashier in the range. Only users
// holding the cashier role are reported. Item counts come from a subquery so
// the join does not multiply the sale totals.
func (r *saleRepo) SalesByCashier(start, end time.Time) ([]CashierSalesData, error) {
	var results []CashierSalesData
	err := r.db.Model(&model.Sale{}).
		Select(`
			sales.cashier_id as cashier_id,
			users.name as name,
			users.username as username,
			COALESCE(SUM(sales.total), 0) as total_sales,
			COUNT(*) as sales_count,
			COALESCE(SUM((SELECT COUNT(*) FROM sale_items WHERE sale_items.sale_id = sales.id)), 0) as total_items
		`).
		Joins("JOIN users ON users.id = sales.cashier_id").
		Where("sales.payment_status = ? AND users.role = ? AND sales.created_at BETWEEN ? AND ?",
			model.PaymentCompleted, model.RoleCashier, start, end).
		Group("sales.cashier_id, users.name, users.username").
		Order("total_sales DESC").
		Scan(&results).Error
	return results, err
}

func (r *saleRepo) FindCompletedByCashier(cashierID uuid.UUID, since time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.
		Preload("Items.Product").
		Where("cashier_id = ? AND payment_status = ? AND created_at >= ?", cashierID, model.PaymentCompleted, since).
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindRecentByCashier(cashierID uuid.UUID, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.
		Preload("Items.Product").
		Where("cashier_id = ? AND payment_status = ?", cashierID, model.PaymentCompleted).
		Order("created_at DESC").
		Limit(limit).
		Find(&sales).Error
	return sales, err
}
