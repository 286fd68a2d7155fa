package database

import (
	"context"
	"errors"

	sharedApplication "github.com/felixgeelhaar/jobflow/internal/shared/application"
)

var _ sharedApplication.UnitOfWork = (*GenericUnitOfWork)(nil)

// ErrNoTransaction is returned by Commit/Rollback without a prior Begin.
var ErrNoTransaction = errors.New("no transaction in context")

type txKey struct{}

// txScope is what Begin stores in the context. Only the scope that opened
// the transaction may end it.
type txScope struct {
	tx    Transaction
	owner bool
}

func scopeFrom(ctx context.Context) (txScope, bool) {
	scope, ok := ctx.Value(txKey{}).(txScope)
	if !ok || scope.tx == nil {
		return txScope{}, false
	}
	return scope, true
}

// CurrentTx returns the transaction opened by an enclosing unit of work.
func CurrentTx(ctx context.Context) (Transaction, bool) {
	scope, ok := scopeFrom(ctx)
	return scope.tx, ok
}

// ExecutorFromContext lets a repository join the caller's unit of work
// when there is one and fall back to the pool otherwise.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if tx, ok := CurrentTx(ctx); ok {
		return tx
	}
	return conn
}

// GenericUnitOfWork implements application.UnitOfWork over any Connection.
// Nested Begin calls join the outer transaction; only the owner commits.
type GenericUnitOfWork struct {
	conn Connection
}

func NewUnitOfWork(conn Connection) *GenericUnitOfWork {
	return &GenericUnitOfWork{conn: conn}
}

func (u *GenericUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if scope, ok := scopeFrom(ctx); ok {
		return context.WithValue(ctx, txKey{}, txScope{tx: scope.tx}), nil
	}

	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, txKey{}, txScope{tx: tx, owner: true}), nil
}

func (u *GenericUnitOfWork) Commit(ctx context.Context) error {
	scope, ok := scopeFrom(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !scope.owner {
		return nil
	}
	return scope.tx.Commit(ctx)
}

func (u *GenericUnitOfWork) Rollback(ctx context.Context) error {
	scope, ok := scopeFrom(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !scope.owner {
		return nil
	}
	return scope.tx.Rollback(ctx)
}
