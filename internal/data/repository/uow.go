package repository

import (
	"context"
	"fmt"

	"screenbook/pkg/database"

	"go.uber.org/zap"
)

// UnitOfWork is the only place top-level transactions are opened. The
// closure receives repositories bound to the transaction; any error rolls
// everything back and is returned to the caller unchanged, so typed domain
// errors survive the rollback.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(repos *Repository) error) error
}

type pgxUnitOfWork struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUnitOfWork(db database.PgxIface, log *zap.Logger) UnitOfWork {
	return &pgxUnitOfWork{
		db:  db,
		log: log.With(zap.String("component", "unit_of_work")),
	}
}

func (u *pgxUnitOfWork) WithinTx(ctx context.Context, fn func(repos *Repository) error) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		u.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				u.log.Warn("Transaction rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if err := fn(NewRepository(tx, u.log)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		u.log.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	return nil
}
