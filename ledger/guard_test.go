package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanCloseEmptyAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	assert.NoError(t, f.l.CanClose(context.Background(), f.alice.ID, pendingCount(0)))
	assert.NoError(t, f.l.CanClose(context.Background(), f.alice.ID, nil))
}

func TestCanCloseWithBond(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.issue(t, KindBond, f.alice, 1)

	err := f.l.CanClose(context.Background(), f.alice.ID, pendingCount(0))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHasBonds)
	assert.NotErrorIs(t, err, ErrHasSwaps)
	assert.Contains(t, err.Error(), "bonds")

	var ce *ClosureError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"account has bonds"}, ce.Reasons())
}

func TestCanCloseReportsEveryReason(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.issue(t, KindBond, f.alice, 1)
	f.issue(t, KindSwap, f.alice, 1)

	err := f.l.CanClose(context.Background(), f.alice.ID, pendingCount(2))
	var ce *ClosureError
	require.True(t, errors.As(err, &ce))
	assert.Len(t, ce.Reasons(), 3)
	assert.ErrorIs(t, err, ErrHasBonds)
	assert.ErrorIs(t, err, ErrHasSwaps)
	assert.ErrorIs(t, err, ErrHasPendingOrders)
}

func TestTreasuryWithOutstandingBondsCannotClose(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.issue(t, KindBond, f.alice, 1)

	err := f.l.CanClose(context.Background(), f.treasury.ID, nil)
	assert.ErrorIs(t, err, ErrHasSwaps)
}

func TestCloseAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.l.CloseAccount(ctx, f.bob.ID, pendingCount(0)))
	_, err := f.l.Account(ctx, f.bob.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	err = f.l.CloseAccount(ctx, f.bob.ID, nil)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCloseAccountBlocked(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	err := f.l.CloseAccount(ctx, f.alice.ID, pendingCount(1))
	assert.ErrorIs(t, err, ErrHasPendingOrders)

	_, err = f.l.Account(ctx, f.alice.ID)
	assert.NoError(t, err)
}
