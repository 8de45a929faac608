package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/megamarket-backend/internal/data/store"
)

// InjectedTxRunner wraps an optional real database and lets tests fail a
// transaction at begin or right before commit. With a DB the failure
// triggers a real rollback, so tests can assert nothing was persisted.
type InjectedTxRunner struct {
	DB *gorm.DB

	FailBegin  error
	FailCommit error

	mu            sync.Mutex
	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ store.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(tc store.TxContext) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin, failCommit := r.FailBegin, r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}

	body := func(tx *gorm.DB) error {
		if fn != nil {
			if err := fn(store.TxContext{Ctx: ctx, Tx: tx}); err != nil {
				return err
			}
		}
		return failCommit
	}

	var err error
	if r.DB != nil {
		err = r.DB.WithContext(ctx).Transaction(body)
	} else {
		err = body(nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.RollbackCalls++
		return err
	}
	r.CommitCalls++
	return nil
}

// Counts returns begin, commit and rollback totals.
func (r *InjectedTxRunner) Counts() (begin, commit, rollback int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.BeginCalls, r.CommitCalls, r.RollbackCalls
}
