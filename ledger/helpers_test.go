package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testGoal = "goal-1"

type fixture struct {
	l        *Ledger
	db       *SQLite
	treasury Account
	alice    Account
	bob      Account
}

func newTestLedger(t *testing.T, opts ...Option) (*Ledger, *SQLite) {
	t.Helper()

	db, err := NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(db, opts...), db
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	ctx := context.Background()

	l, db := newTestLedger(t, opts...)
	treasury, err := l.OpenTreasury(ctx, testGoal)
	require.NoError(t, err)
	alice, err := l.OpenAccount(ctx, "alice", testGoal)
	require.NoError(t, err)
	bob, err := l.OpenAccount(ctx, "bob", testGoal)
	require.NoError(t, err)

	return fixture{l: l, db: db, treasury: treasury, alice: alice, bob: bob}
}

func (f fixture) issue(t *testing.T, kind Kind, buyer Account, qty int64) {
	t.Helper()
	_, err := f.l.Issue(context.Background(), IssueRequest{
		Kind:       kind,
		TreasuryID: f.treasury.ID,
		BuyerID:    buyer.ID,
		Qty:        qty,
	})
	require.NoError(t, err)
}

func (f fixture) balance(t *testing.T, a Account) Cash {
	t.Helper()
	got, err := f.l.Account(context.Background(), a.ID)
	require.NoError(t, err)
	return got.Balance
}

func (f fixture) bonds(t *testing.T, a Account) int64 {
	t.Helper()
	q, err := f.l.BondQty(context.Background(), a.ID)
	require.NoError(t, err)
	return q
}

func (f fixture) swaps(t *testing.T, a Account) int64 {
	t.Helper()
	q, err := f.l.SwapQty(context.Background(), a.ID)
	require.NoError(t, err)
	return q
}

func (f fixture) outstanding(t *testing.T) int64 {
	t.Helper()
	q, err := f.l.OutstandingQty(context.Background(), testGoal)
	require.NoError(t, err)
	return q
}

type pendingCount int

func (p pendingCount) PendingCount(context.Context, string) (int, error) {
	return int(p), nil
}
