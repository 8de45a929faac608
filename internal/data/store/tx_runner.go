package store

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/yungbote/megamarket-backend/internal/domain"
)

// TxContext is what a transactional body sees: the caller's context and the
// open transaction every repository call inside the body must use.
type TxContext struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// TxRunner runs fn inside one database transaction. An error from fn, or a
// failed commit, rolls every write of fn back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tc TxContext) error) error
}

type gormTxRunner struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

// NewGormTxRunner opens every transaction SERIALIZABLE on PostgreSQL.
// SQLite transactions are serializable already and its driver ignores the
// isolation option.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	r := &gormTxRunner{db: db}
	if db != nil && db.Dialector != nil {
		r.opts = TxOptionsFor(db.Dialector.Name())
	}
	return r
}

// TxOptionsFor returns the transaction options used for a gorm dialector.
func TxOptionsFor(dialect string) *sql.TxOptions {
	if dialect == "postgres" {
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return nil
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(tc TxContext) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domain.NewError(domain.CodeInternal, "store.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxContext{Ctx: ctx, Tx: tx})
	}, r.optsSlice()...)
}

func (r *gormTxRunner) optsSlice() []*sql.TxOptions {
	if r.opts == nil {
		return nil
	}
	return []*sql.TxOptions{r.opts}
}
