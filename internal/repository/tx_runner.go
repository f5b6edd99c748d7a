package repository

import "gorm.io/gorm"

// Repos bundles the repositories bound to one database transaction.
type Repos struct {
	Products      ProductRepository
	Sales         SaleRepository
	InventoryLogs InventoryLogRepository
}

// TxRunner executes fn inside a single database transaction, handing it
// repositories attached to that transaction. A non-nil error from fn rolls
// everything back; this is what makes the sale workflow all-or-nothing.
type TxRunner interface {
	Run(fn func(r Repos) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db}
}

func (t *gormTxRunner) Run(fn func(r Repos) error) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		return fn(Repos{
			Products:      NewProductRepo(tx),
			Sales:         NewSaleRepo(tx),
			InventoryLogs: NewInventoryLogRepo(tx),
		})
	})
}
