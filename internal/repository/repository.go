package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs fn inside one database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

// conn prefers the caller's transaction and falls back to the pool.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
