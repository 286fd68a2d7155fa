package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	Executor
	commits, rollbacks int
}

func (t *fakeTx) Commit(context.Context) error   { t.commits++; return nil }
func (t *fakeTx) Rollback(context.Context) error { t.rollbacks++; return nil }

type fakeConn struct {
	Connection
	begun []*fakeTx
}

func (c *fakeConn) BeginTx(context.Context) (Transaction, error) {
	tx := &fakeTx{}
	c.begun = append(c.begun, tx)
	return tx, nil
}

func TestGenericUnitOfWork_NestedBeginJoinsOuter(t *testing.T) {
	conn := &fakeConn{}
	uow := NewUnitOfWork(conn)

	outer, err := uow.Begin(context.Background())
	require.NoError(t, err)
	inner, err := uow.Begin(outer)
	require.NoError(t, err)
	require.Len(t, conn.begun, 1)

	innerTx, ok := CurrentTx(inner)
	require.True(t, ok)
	assert.Same(t, conn.begun[0], innerTx)
	assert.Same(t, conn.begun[0], ExecutorFromContext(inner, conn))

	require.NoError(t, uow.Commit(inner))
	require.NoError(t, uow.Rollback(inner))
	assert.Zero(t, conn.begun[0].commits)
	assert.Zero(t, conn.begun[0].rollbacks)

	require.NoError(t, uow.Commit(outer))
	assert.Equal(t, 1, conn.begun[0].commits)
}

func TestGenericUnitOfWork_WithoutBegin(t *testing.T) {
	conn := &fakeConn{}
	uow := NewUnitOfWork(conn)
	ctx := context.Background()

	_, ok := CurrentTx(ctx)
	assert.False(t, ok)
	assert.Same(t, conn, ExecutorFromContext(ctx, conn))
	assert.ErrorIs(t, uow.Commit(ctx), ErrNoTransaction)
	assert.ErrorIs(t, uow.Rollback(ctx), ErrNoTransaction)
}
