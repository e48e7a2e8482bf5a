package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type contextKey string

const txKey contextKey = "gorm_tx"

// TransactionManager manages database transactions via context injection.
// Every state-changing operation in this system runs inside exactly one
// transaction spanning all the reads and writes it depends on; a validation
// failure anywhere rolls the whole operation back.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey, tx)
		return fn(txCtx)
	})
}

// GetDB extracts the transaction DB from context if present, otherwise returns root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}

// GetDBForUpdate is GetDB with a row-level lock. Reads through it block
// concurrent writers, so re-validation inside the transaction (credit note
// remaining balance, payable pending amount) holds until commit.
func GetDBForUpdate(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	db := GetDB(ctx, rootDB)
	// SQLite has no SELECT ... FOR UPDATE; its single-writer lock already
	// covers the transaction.
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
