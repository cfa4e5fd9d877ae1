package authkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Transaction executes a function within a database transaction with
// automatic commit/rollback. The function receives the transaction handle
// and must use it for every statement that should be part of the unit.
//
// Example:
//
//	err := service.Transaction(ctx, func(ctx context.Context, tx *dbkit.Tx) error {
//	    if _, err := tx.NewInsert().Model(&profile).Exec(ctx); err != nil {
//	        return err // rollback
//	    }
//	    return nil // commit
//	})
func (s *Service) Transaction(ctx context.Context, fn func(ctx context.Context, tx *dbkit.Tx) error) error {
	switch db := s.db.(type) {
	case *dbkit.Tx:
		// Already transactional, nest via savepoint.
		return db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(ctx, tx)
		})
	case *dbkit.DBKit:
		return db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(ctx, tx)
		})
	default:
		return NewError(ErrUnexpected, "transaction support requires a dbkit.DBKit or dbkit.Tx instance")
	}
}

// ReadOnlyTransaction executes a function within a read-only transaction,
// for multi-query reads that need a consistent view.
func (s *Service) ReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx *dbkit.Tx) error) error {
	db, ok := s.db.(*dbkit.DBKit)
	if !ok {
		return s.Transaction(ctx, fn)
	}
	return db.TransactionWithOptions(ctx, dbkit.ReadOnlyTxOptions(), func(tx *dbkit.Tx) error {
		return fn(ctx, tx)
	})
}
