package service

import (
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/clock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdminDashboard is the storewide overview for the admin landing page.
type AdminDashboard struct {
	Stats struct {
		TotalSales    decimal.Decimal `json:"total_sales"`
		TodaySales    decimal.Decimal `json:"today_sales"`
		LowStock      int             `json:"low_stock"`
		TotalProducts int64           `json:"total_products"`
	} `json:"stats"`
	PaymentStats map[string]decimal.Decimal `json:"payment_stats"`
}

// CashierDashboard summarizes one cashier's day.
type CashierDashboard struct {
	TodayStats struct {
		TotalSales         decimal.Decimal `json:"total_sales"`
		TotalTransactions  int             `json:"total_transactions"`
		AverageTransaction decimal.Decimal `json:"average_transaction"`
	} `json:"today_stats"`
	RecentSales []model.Sale `json:"recent_sales"`
}

// DailyReportRow is one day of the sales report.
type DailyReportRow struct {
	Date         string          `json:"date"`
	SalesCount   int64           `json:"sales_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AverageSale  decimal.Decimal `json:"average_sale"`
}

// ProfitExpenseReport is revenue vs cost of goods over a date range.
type ProfitExpenseReport struct {
	Summary struct {
		TotalRevenue decimal.Decimal `json:"total_revenue"`
		TotalCost    decimal.Decimal `json:"total_cost"`
		TotalProfit  decimal.Decimal `json:"total_profit"`
		ProfitMargin decimal.Decimal `json:"profit_margin"` // percent
	} `json:"summary"`
	Daily []DailyProfitRow `json:"daily"`
}

// InventoryMovementReport lists ledger entries over a range with the moved
// quantity (absolute) totaled per movement type.
type InventoryMovementReport struct {
	Movements []model.InventoryLogEntry `json:"movements"`
	Summary   map[string]int            `json:"summary"`
}

// CashierSalesRow is one cashier's performance over the reporting range.
type CashierSalesRow struct {
	CashierID   uuid.UUID       `json:"cashier_id"`
	Name        string          `json:"name"`
	Username    string          `json:"username"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	SalesCount  int64           `json:"sales_count"`
	TotalItems  int64           `json:"total_items"`
	AverageSale decimal.Decimal `json:"average_sale"`
}

type DailyProfitRow struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
	Margin  decimal.Decimal `json:"margin"` // percent
}

type ReportService interface {
	GetAdminDashboard() (*AdminDashboard, error)
	GetCashierDashboard(cashierID uuid.UUID) (*CashierDashboard, error)
	GetSalesReport(start, end time.Time) ([]DailyReportRow, error)
	GetProfitExpenseReport(start, end time.Time) (*ProfitExpenseReport, error)
	GetInventoryMovementReport(start, end time.Time, productID *uuid.UUID) (*InventoryMovementReport, error)
	GetSalesByUser(start, end time.Time) ([]CashierSalesRow, error)
}

type reportService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	logRepo     repository.InventoryLogRepository
	clock       clock.Clock
}

func NewReportService(saleRepo repository.SaleRepository, productRepo repository.ProductRepository, logRepo repository.InventoryLogRepository, clk clock.Clock) ReportService {
	return &reportService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		logRepo:     logRepo,
		clock:       clk,
	}
}

func (s *reportService) startOfToday() time.Time {
	now := s.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *reportService) GetAdminDashboard() (*AdminDashboard, error) {
	today := s.startOfToday()

	totalSales, err := s.saleRepo.SumCompletedTotals(nil, nil)
	if err != nil {
		return nil, err
	}
	todaySales, err := s.saleRepo.SumCompletedTotals(&today, nil)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.productRepo.FindLowStock()
	if err != nil {
		return nil, err
	}
	totalProducts, err := s.productRepo.CountActive()
	if err != nil {
		return nil, err
	}
	paymentTotals, err := s.saleRepo.PaymentMethodTotals()
	if err != nil {
		return nil, err
	}

	dash := &AdminDashboard{
		PaymentStats: map[string]decimal.Decimal{
			string(model.PaymentCash):  decimal.Zero,
			string(model.PaymentCard):  decimal.Zero,
			string(model.PaymentOther): decimal.Zero,
		},
	}
	dash.Stats.TotalSales = totalSales
	dash.Stats.TodaySales = todaySales
	dash.Stats.LowStock = len(lowStock)
	dash.Stats.TotalProducts = totalProducts
	for _, pt := range paymentTotals {
		dash.PaymentStats[pt.PaymentMethod] = pt.Total
	}
	return dash, nil
}

func (s *reportService) GetCashierDashboard(cashierID uuid.UUID) (*CashierDashboard, error) {
	today := s.startOfToday()

	todaySales, err := s.saleRepo.FindCompletedByCashier(cashierID, today)
	if err != nil {
		return nil, err
	}
	recent, err := s.saleRepo.FindRecentByCashier(cashierID, 5)
	if err != nil {
		return nil, err
	}

	dash := &CashierDashboard{RecentSales: recent}
	total := decimal.Zero
	for _, sale := range todaySales {
		total = total.Add(sale.Total)
	}
	dash.TodayStats.TotalSales = total
	dash.TodayStats.TotalTransactions = len(todaySales)
	if len(todaySales) > 0 {
		dash.TodayStats.AverageTransaction = total.DivRound(decimal.NewFromInt(int64(len(todaySales))), 2)
	} else {
		dash.TodayStats.AverageTransaction = decimal.Zero
	}
	return dash, nil
}

func (s *reportService) GetSalesReport(start, end time.Time) ([]DailyReportRow, error) {
	summary, err := s.saleRepo.DailySummary(start, end)
	if err != nil {
		return nil, err
	}

	rows := make([]DailyReportRow, 0, len(summary))
	for _, day := range summary {
		row := DailyReportRow{
			Date:         day.Date,
			SalesCount:   day.SalesCount,
			TotalRevenue: day.TotalRevenue,
		}
		if day.SalesCount > 0 {
			row.AverageSale = day.TotalRevenue.DivRound(decimal.NewFromInt(day.SalesCount), 2)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *reportService) GetInventoryMovementReport(start, end time.Time, productID *uuid.UUID) (*InventoryMovementReport, error) {
	entries, err := s.logRepo.FindBetween(start, end, productID)
	if err != nil {
		return nil, err
	}

	report := &InventoryMovementReport{
		Movements: entries,
		Summary: map[string]int{
			string(model.MovementPurchase):   0,
			string(model.MovementSale):       0,
			string(model.MovementAdjustment): 0,
			string(model.MovementReturn):     0,
		},
	}
	for _, e := range entries {
		qty := e.Quantity
		if qty < 0 {
			qty = -qty
		}
		report.Summary[string(e.Type)] += qty
	}
	return report, nil
}

func (s *reportService) GetSalesByUser(start, end time.Time) ([]CashierSalesRow, error) {
	data, err := s.saleRepo.SalesByCashier(start, end)
	if err != nil {
		return nil, err
	}

	rows := make([]CashierSalesRow, 0, len(data))
	for _, d := range data {
		row := CashierSalesRow{
			CashierID:  d.CashierID,
			Name:       d.Name,
			Username:   d.Username,
			TotalSales: d.TotalSales,
			SalesCount: d.SalesCount,
			TotalItems: d.TotalItems,
		}
		if d.SalesCount > 0 {
			row.AverageSale = d.TotalSales.DivRound(decimal.NewFromInt(d.SalesCount), 2)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *reportService) GetProfitExpenseReport(start, end time.Time) (*ProfitExpenseReport, error) {
	revenue, err := s.saleRepo.DailySummary(start, end)
	if err != nil {
		return nil, err
	}
	costs, err := s.saleRepo.DailyCost(start, end)
	if err != nil {
		return nil, err
	}

	costByDate := make(map[string]decimal.Decimal, len(costs))
	for _, c := range costs {
		costByDate[c.Date] = c.Cost
	}

	report := &ProfitExpenseReport{Daily: make([]DailyProfitRow, 0, len(revenue))}
	totalRevenue := decimal.Zero
	totalCost := decimal.Zero
	hundred := decimal.NewFromInt(100)

	for _, day := range revenue {
		cost := costByDate[day.Date]
		profit := day.TotalRevenue.Sub(cost)
		row := DailyProfitRow{
			Date:    day.Date,
			Revenue: day.TotalRevenue,
			Cost:    cost,
			Profit:  profit,
		}
		if day.TotalRevenue.IsPositive() {
			row.Margin = profit.Div(day.TotalRevenue).Mul(hundred).Round(2)
		}
		report.Daily = append(report.Daily, row)
		totalRevenue = totalRevenue.Add(day.TotalRevenue)
		totalCost = totalCost.Add(cost)
	}

	totalProfit := totalRevenue.Sub(totalCost)
	report.Summary.TotalRevenue = totalRevenue
	report.Summary.TotalCost = totalCost
	report.Summary.TotalProfit = totalProfit
	if totalRevenue.IsPositive() {
		report.Summary.ProfitMargin = totalProfit.Div(totalRevenue).Mul(hundred).Round(2)
	}
	return report, nil
}
