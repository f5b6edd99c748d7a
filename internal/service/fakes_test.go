package service

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memoryStore is a shared in-memory backing store for the fake repositories.
// The fake TxRunner snapshots it before each transaction and restores it on
// error, mimicking the rollback the real database gives us.
type memoryStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
	sales    map[uuid.UUID]*model.Sale
	users    map[uuid.UUID]*model.User
	entries  []model.InventoryLogEntry

	failSaleNumberLookup bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products: make(map[uuid.UUID]*model.Product),
		sales:    make(map[uuid.UUID]*model.Sale),
		users:    make(map[uuid.UUID]*model.User),
	}
}

func (s *memoryStore) addUser(u model.User) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = &u
	return u.ID
}

func (s *memoryStore) addProduct(p model.Product) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.MinStockLevel == 0 {
		p.MinStockLevel = model.DefaultMinStockLevel
	}
	s.products[p.ID] = &p
	return p.ID
}

func (s *memoryStore) productStock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].StockQuantity
}

func (s *memoryStore) entriesFor(id uuid.UUID) []model.InventoryLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.InventoryLogEntry
	for _, e := range s.entries {
		if e.ProductID == id {
			out = append(out, e)
		}
	}
	return out
}

func (s *memoryStore) saleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

type storeSnapshot struct {
	products map[uuid.UUID]*model.Product
	sales    map[uuid.UUID]*model.Sale
	entries  []model.InventoryLogEntry
}

func (s *memoryStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storeSnapshot{
		products: make(map[uuid.UUID]*model.Product, len(s.products)),
		sales:    make(map[uuid.UUID]*model.Sale, len(s.sales)),
		entries:  make([]model.InventoryLogEntry, len(s.entries)),
	}
	for id, p := range s.products {
		cp := *p
		snap.products[id] = &cp
	}
	for id, sale := range s.sales {
		cp := *sale
		cp.Items = append([]model.SaleItem(nil), sale.Items...)
		snap.sales[id] = &cp
	}
	copy(snap.entries, s.entries)
	return snap
}

func (s *memoryStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.sales = snap.sales
	s.entries = snap.entries
}

// fakeTxRunner serializes transactions and rolls the store back when the
// callback fails, so all-or-nothing behavior is observable in tests.
type fakeTxRunner struct {
	store *memoryStore
	txMu  sync.Mutex
}

func (t *fakeTxRunner) Run(fn func(r repository.Repos) error) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()

	snap := t.store.snapshot()
	err := fn(repository.Repos{
		Products:      &fakeProductRepo{store: t.store},
		Sales:         &fakeSaleRepo{store: t.store},
		InventoryLogs: &fakeInventoryLogRepo{store: t.store},
	})
	if err != nil {
		t.store.restore(snap)
	}
	return err
}

type fakeProductRepo struct {
	store *memoryStore
}

func (r *fakeProductRepo) Create(product *model.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	cp := *product
	r.store.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindAll(activeOnly bool) ([]model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Product
	for _, p := range r.store.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindByIDForUpdate(id uuid.UUID) (*model.Product, error) {
	return r.FindByID(id)
}

func (r *fakeProductRepo) FindBySKU(sku string) (*model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) FindLowStock() ([]model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Product
	for _, p := range r.store.products {
		if p.Active && p.StockQuantity <= p.MinStockLevel {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Search(query string) ([]model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	q := strings.ToLower(query)
	var out []model.Product
	for _, p := range r.store.products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.SKU), q) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Update(product *model.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[product.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *product
	r.store.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateStock(id uuid.UUID, newStock int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockQuantity = newStock
	return nil
}

func (r *fakeProductRepo) DecrementStock(id uuid.UUID, quantity int) (*model.Product, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, false, nil
	}
	if p.StockQuantity < quantity {
		return nil, false, nil
	}
	p.StockQuantity -= quantity
	cp := *p
	return &cp, true, nil
}

func (r *fakeProductRepo) CountActive() (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, p := range r.store.products {
		if p.Active {
			count++
		}
	}
	return count, nil
}

type fakeSaleRepo struct {
	store *memoryStore
}

func (r *fakeSaleRepo) Create(sale *model.Sale) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	for i := range sale.Items {
		if sale.Items[i].ID == uuid.Nil {
			sale.Items[i].ID = uuid.New()
		}
		sale.Items[i].SaleID = sale.ID
	}
	cp := *sale
	cp.Items = append([]model.SaleItem(nil), sale.Items...)
	r.store.sales[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) FindAll() ([]model.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Sale
	for _, s := range r.store.sales {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeSaleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	cp.Items = append([]model.SaleItem(nil), s.Items...)
	return &cp, nil
}

func (r *fakeSaleRepo) FindByIDForUpdate(id uuid.UUID) (*model.Sale, error) {
	return r.FindByID(id)
}

func (r *fakeSaleRepo) LastNumberForDay(dayCode string) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failSaleNumberLookup {
		return "", errors.New("store unavailable")
	}
	last := ""
	for _, s := range r.store.sales {
		if strings.HasPrefix(s.SaleNumber, dayCode) && s.SaleNumber > last {
			last = s.SaleNumber
		}
	}
	return last, nil
}

func (r *fakeSaleRepo) UpdatePaymentStatus(id uuid.UUID, status model.PaymentStatus, reason string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.PaymentStatus = status
	s.RefundReason = reason
	return nil
}

func (r *fakeSaleRepo) SumCompletedTotals(start, end *time.Time) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	total := decimal.Zero
	for _, s := range r.store.sales {
		if s.PaymentStatus != model.PaymentCompleted {
			continue
		}
		if start != nil && s.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && s.CreatedAt.After(*end) {
			continue
		}
		total = total.Add(s.Total)
	}
	return total, nil
}

func (r *fakeSaleRepo) PaymentMethodTotals() ([]repository.PaymentMethodTotal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	byMethod := make(map[string]decimal.Decimal)
	for _, s := range r.store.sales {
		if s.PaymentStatus != model.PaymentCompleted {
			continue
		}
		m := string(s.PaymentMethod)
		byMethod[m] = byMethod[m].Add(s.Total)
	}
	var out []repository.PaymentMethodTotal
	for m, t := range byMethod {
		out = append(out, repository.PaymentMethodTotal{PaymentMethod: m, Total: t})
	}
	return out, nil
}

func (r *fakeSaleRepo) DailySummary(start, end time.Time) ([]repository.DailySalesData, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	byDate := make(map[string]*repository.DailySalesData)
	for _, s := range r.store.sales {
		if s.PaymentStatus != model.PaymentCompleted || s.CreatedAt.Before(start) || s.CreatedAt.After(end) {
			continue
		}
		date := s.CreatedAt.Format("2006-01-02")
		row, ok := byDate[date]
		if !ok {
			row = &repository.DailySalesData{Date: date}
			byDate[date] = row
		}
		row.SalesCount++
		row.TotalRevenue = row.TotalRevenue.Add(s.Total)
	}
	var out []repository.DailySalesData
	for _, row := range byDate {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *fakeSaleRepo) DailyCost(start, end time.Time) ([]repository.DailyCostData, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	byDate := make(map[string]decimal.Decimal)
	for _, s := range r.store.sales {
		if s.PaymentStatus != model.PaymentCompleted || s.CreatedAt.Before(start) || s.CreatedAt.After(end) {
			continue
		}
		date := s.CreatedAt.Format("2006-01-02")
		for _, item := range s.Items {
			if p, ok := r.store.products[item.ProductID]; ok {
				byDate[date] = byDate[date].Add(p.Cost.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
		}
	}
	var out []repository.DailyCostData
	for date, cost := range byDate {
		out = append(out, repository.DailyCostData{Date: date, Cost: cost})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *fakeSaleRepo) FindCompletedByCashier(cashierID uuid.UUID, since time.Time) ([]model.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Sale
	for _, s := range r.store.sales {
		if s.CashierID == cashierID && s.PaymentStatus == model.PaymentCompleted && !s.CreatedAt.Before(since) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) FindRecentByCashier(cashierID uuid.UUID, limit int) ([]model.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Sale
	for _, s := range r.store.sales {
		if s.CashierID == cashierID && s.PaymentStatus == model.PaymentCompleted {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSaleRepo) SalesByCashier(start, end time.Time) ([]repository.CashierSalesData, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	byCashier := make(map[uuid.UUID]*repository.CashierSalesData)
	for _, s := range r.store.sales {
		if s.PaymentStatus != model.PaymentCompleted || s.CreatedAt.Before(start) || s.CreatedAt.After(end) {
			continue
		}
		u, ok := r.store.users[s.CashierID]
		if !ok || u.Role != model.RoleCashier {
			continue
		}
		row, ok := byCashier[s.CashierID]
		if !ok {
			row = &repository.CashierSalesData{
				CashierID:  s.CashierID,
				Name:       u.Name,
				Username:   u.Username,
				TotalSales: decimal.Zero,
			}
			byCashier[s.CashierID] = row
		}
		row.TotalSales = row.TotalSales.Add(s.Total)
		row.SalesCount++
		row.TotalItems += int64(len(s.Items))
	}
	out := make([]repository.CashierSalesData, 0, len(byCashier))
	for _, row := range byCashier {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalSales.GreaterThan(out[j].TotalSales) })
	return out, nil
}

type fakeInventoryLogRepo struct {
	store *memoryStore
}

func (r *fakeInventoryLogRepo) Append(entry *model.InventoryLogEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.store.entries = append(r.store.entries, *entry)
	return nil
}

func (r *fakeInventoryLogRepo) FindByProduct(productID uuid.UUID) ([]model.InventoryLogEntry, error) {
	return r.store.entriesFor(productID), nil
}

func (r *fakeInventoryLogRepo) FindBetween(start, end time.Time, productID *uuid.UUID) ([]model.InventoryLogEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.InventoryLogEntry
	for _, e := range r.store.entries {
		if productID != nil && e.ProductID != *productID {
			continue
		}
		if !e.CreatedAt.Before(start) && !e.CreatedAt.After(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) add(u model.User) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = &u
	return u.ID
}

func (r *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindAll() ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *fakeUserRepo) UpdateLastLogin(userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	return nil
}

type fakeActivityLogRepo struct {
	mu   sync.Mutex
	logs []model.ActivityLog
}

func (r *fakeActivityLogRepo) Create(entry *model.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *fakeActivityLogRepo) Find(filter repository.ActivityLogFilter) ([]model.ActivityLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ActivityLog
	for _, l := range r.logs {
		if filter.Action != "" && string(l.Action) != filter.Action {
			continue
		}
		if filter.UserID != nil && l.UserID != *filter.UserID {
			continue
		}
		if filter.Start != nil && l.CreatedAt.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && l.CreatedAt.After(*filter.End) {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

func (r *fakeActivityLogRepo) FindByUser(userID uuid.UUID, limit int) ([]model.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ActivityLog
	for _, l := range r.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeActivityLogRepo) CountSince(t time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, l := range r.logs {
		if !l.CreatedAt.Before(t) {
			count++
		}
	}
	return count, nil
}

func (r *fakeActivityLogRepo) CountByAction(since time.Time) ([]repository.ActionCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byAction := make(map[string]int64)
	for _, l := range r.logs {
		if !l.CreatedAt.Before(since) {
			byAction[string(l.Action)]++
		}
	}
	var out []repository.ActionCount
	for a, c := range byAction {
		out = append(out, repository.ActionCount{Action: a, Count: c})
	}
	return out, nil
}
