package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestOpenAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	got, err := f.l.AccountFor(ctx, "alice", testGoal)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, got.ID)
	assert.Equal(t, Cash(0), got.Balance)
	assert.False(t, got.IsTreasury())

	_, err = f.l.OpenAccount(ctx, "alice", testGoal)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)

	other, err := f.l.OpenAccount(ctx, "alice", "goal-2")
	require.NoError(t, err)
	assert.NotEqual(t, f.alice.ID, other.ID)
}

func TestOpenTreasury(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	got, err := f.l.Treasury(ctx, testGoal)
	require.NoError(t, err)
	assert.Equal(t, f.treasury.ID, got.ID)
	assert.True(t, got.IsTreasury())

	_, err = f.l.OpenTreasury(ctx, testGoal)
	assert.ErrorIs(t, err, ErrTreasuryExists)

	_, err = f.l.Treasury(ctx, "goal-2")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	all, err := f.l.Accounts(ctx, testGoal)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCreditDebit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	bal, err := f.l.Credit(ctx, f.alice.ID, 1000)
	require.NoError(t, err)
	assert.Equal(t, Cash(1000), bal)

	bal, err = f.l.Debit(ctx, f.alice.ID, 300)
	require.NoError(t, err)
	assert.Equal(t, Cash(700), bal)
	assert.Equal(t, Cash(700), f.balance(t, f.alice))
}

func TestCreditDebitErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.l.Credit(ctx, "missing", 10)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = f.l.Debit(ctx, "missing", 10)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = f.l.Credit(ctx, f.alice.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = f.l.Debit(ctx, f.alice.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDebitMayOverdraw(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	bal, err := f.l.Debit(context.Background(), f.alice.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, Cash(-500), bal)
}

func TestDebitWithoutOverdraft(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithOverdraft(false))
	ctx := context.Background()

	_, err := f.l.Credit(ctx, f.alice.ID, 100)
	require.NoError(t, err)

	_, err = f.l.Debit(ctx, f.alice.ID, 101)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, Cash(100), f.balance(t, f.alice))

	bal, err := f.l.Debit(ctx, f.alice.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, Cash(0), bal)
}

func TestConcurrentCreditsAndDebits(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 40; i++ {
		g.Go(func() error {
			_, err := f.l.Credit(ctx, f.alice.ID, 25)
			return err
		})
	}
	for i := 0; i < 30; i++ {
		g.Go(func() error {
			_, err := f.l.Debit(ctx, f.alice.ID, 7)
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, Cash(40*25-30*7), f.balance(t, f.alice))
}

func TestTransferFunds(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.l.Credit(ctx, f.alice.ID, 1000)
	require.NoError(t, err)

	require.NoError(t, f.l.TransferFunds(ctx, f.alice.ID, f.bob.ID, 400))
	assert.Equal(t, Cash(600), f.balance(t, f.alice))
	assert.Equal(t, Cash(400), f.balance(t, f.bob))

	err = f.l.TransferFunds(ctx, f.alice.ID, f.alice.ID, 1)
	assert.ErrorIs(t, err, ErrSameAccount)
}

func TestTransferFundsIsAtomic(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.l.Credit(ctx, f.alice.ID, 1000)
	require.NoError(t, err)

	// The debit leg succeeds before the credit leg fails.
	err = f.l.TransferFunds(ctx, f.alice.ID, "missing", 400)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Equal(t, Cash(1000), f.balance(t, f.alice))
}
