package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestIssueBond(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.issue(t, KindBond, f.bob, 1)
	before := f.outstanding(t)
	aliceBefore := f.bonds(t, f.alice)
	bobBefore := f.bonds(t, f.bob)

	link, err := f.l.Issue(context.Background(), IssueRequest{
		Kind:       KindBond,
		TreasuryID: f.treasury.ID,
		BuyerID:    f.alice.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, KindBond, link.Kind)
	assert.Equal(t, f.alice.ID, link.CreditorID)
	assert.Equal(t, f.treasury.ID, link.DebtorID)
	assert.Equal(t, int64(1), link.Qty)

	assert.Equal(t, aliceBefore+1, f.bonds(t, f.alice))
	assert.Equal(t, bobBefore, f.bonds(t, f.bob))
	assert.Equal(t, before+1, f.outstanding(t))
	assert.Equal(t, int64(0), f.swaps(t, f.alice))
}

func TestIssueIncrementsExistingLink(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.issue(t, KindBond, f.alice, 1)
	f.issue(t, KindBond, f.alice, 2)

	bonds, err := f.l.Bonds(context.Background(), f.alice.ID)
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	assert.Equal(t, int64(3), bonds[0].Qty)
}

func TestIssueSwap(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	link, err := f.l.Issue(context.Background(), IssueRequest{
		Kind:       KindSwap,
		TreasuryID: f.treasury.ID,
		BuyerID:    f.alice.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, KindSwap, link.Kind)
	assert.Equal(t, f.treasury.ID, link.CreditorID)
	assert.Equal(t, f.alice.ID, link.DebtorID)
	assert.Equal(t, int64(1), f.swaps(t, f.alice))
	assert.Equal(t, int64(0), f.bonds(t, f.alice))
	assert.Equal(t, int64(1), f.outstanding(t))
}

func TestIssueRejections(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	stranger, err := f.l.OpenAccount(ctx, "carol", "goal-2")
	require.NoError(t, err)

	tests := []struct {
		name string
		req  IssueRequest
		want error
	}{
		{"member cannot issue", IssueRequest{Kind: KindBond, TreasuryID: f.bob.ID, BuyerID: f.alice.ID}, ErrNotTreasury},
		{"other goal", IssueRequest{Kind: KindBond, TreasuryID: f.treasury.ID, BuyerID: stranger.ID}, ErrGoalMismatch},
		{"treasury buying from itself", IssueRequest{Kind: KindSwap, TreasuryID: f.treasury.ID, BuyerID: f.treasury.ID}, ErrSelfObligation},
		{"unknown buyer", IssueRequest{Kind: KindBond, TreasuryID: f.treasury.ID, BuyerID: "missing"}, ErrAccountNotFound},
		{"negative qty", IssueRequest{Kind: KindBond, TreasuryID: f.treasury.ID, BuyerID: f.alice.ID, Qty: -1}, ErrInvalidQty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.l.Issue(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, int64(0), f.outstanding(t))
}

func TestConcurrentIssueSharesOneLink(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 25; i++ {
		g.Go(func() error {
			_, err := f.l.Issue(ctx, IssueRequest{Kind: KindBond, TreasuryID: f.treasury.ID, BuyerID: f.alice.ID})
			return err
		})
	}
	require.NoError(t, g.Wait())

	bonds, err := f.l.Bonds(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	assert.Equal(t, int64(25), bonds[0].Qty)
}

func TestTransferBondKeepsRemainder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.issue(t, KindBond, f.alice, 2)
	before := f.outstanding(t)

	res, err := f.l.Transfer(context.Background(), TransferRequest{
		Kind:           KindBond,
		SellerID:       f.alice.ID,
		BuyerID:        f.bob.ID,
		CounterpartyID: f.treasury.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Seller.Qty)
	assert.Equal(t, int64(1), res.Buyer.Qty)
	assert.Equal(t, f.bob.ID, res.Buyer.CreditorID)
	assert.Equal(t, f.treasury.ID, res.Buyer.DebtorID)

	assert.Equal(t, int64(1), f.bonds(t, f.alice))
	assert.Equal(t, int64(1), f.bonds(t, f.bob))
	assert.Equal(t, before, f.outstanding(t))
}

func TestTransferLastUnitDeletesLink(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, KindBond, f.alice, 1)
	f.issue(t, KindBond, f.bob, 1)

	res, err := f.l.Transfer(ctx, TransferRequest{
		Kind:           KindBond,
		SellerID:       f.alice.ID,
		BuyerID:        f.bob.ID,
		CounterpartyID: f.treasury.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Seller.Qty)
	assert.Equal(t, int64(2), res.Buyer.Qty)

	bonds, err := f.l.Bonds(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, bonds)

	var rows int
	require.NoError(t, f.db.DB().QueryRow(
		`SELECT COUNT(*) FROM links WHERE creditor_id = ?`, f.alice.ID).Scan(&rows))
	assert.Zero(t, rows)
}

func TestTransferSwap(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.issue(t, KindSwap, f.alice, 1)

	res, err := f.l.Transfer(context.Background(), TransferRequest{
		Kind:           KindSwap,
		SellerID:       f.alice.ID,
		BuyerID:        f.bob.ID,
		CounterpartyID: f.treasury.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, KindSwap, res.Buyer.Kind)
	assert.Equal(t, f.treasury.ID, res.Buyer.CreditorID)
	assert.Equal(t, f.bob.ID, res.Buyer.DebtorID)
	assert.Equal(t, int64(0), f.swaps(t, f.alice))
	assert.Equal(t, int64(1), f.swaps(t, f.bob))
	assert.Equal(t, int64(1), f.outstanding(t))
}

func TestTransferRejections(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, KindBond, f.alice, 1)

	tests := []struct {
		name string
		req  TransferRequest
		want error
	}{
		{"treasury sells", TransferRequest{Kind: KindBond, SellerID: f.treasury.ID, BuyerID: f.bob.ID, CounterpartyID: f.alice.ID}, ErrTreasuryTransfer},
		{"same account", TransferRequest{Kind: KindBond, SellerID: f.alice.ID, BuyerID: f.alice.ID, CounterpartyID: f.treasury.ID}, ErrSameAccount},
		{"no such link", TransferRequest{Kind: KindBond, SellerID: f.bob.ID, BuyerID: f.alice.ID, CounterpartyID: f.treasury.ID}, ErrLinkNotFound},
		{"wrong side", TransferRequest{Kind: KindSwap, SellerID: f.alice.ID, BuyerID: f.bob.ID, CounterpartyID: f.treasury.ID}, ErrLinkNotFound},
		{"too many", TransferRequest{Kind: KindBond, SellerID: f.alice.ID, BuyerID: f.bob.ID, CounterpartyID: f.treasury.ID, Qty: 2}, ErrInsufficientQty},
		{"buyer is debtor", TransferRequest{Kind: KindBond, SellerID: f.alice.ID, BuyerID: f.treasury.ID, CounterpartyID: f.treasury.ID}, ErrSelfObligation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.l.Transfer(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, int64(1), f.bonds(t, f.alice))
	assert.Equal(t, int64(0), f.bonds(t, f.bob))
}

func TestSettleIssuance(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	_, err := f.l.Credit(ctx, f.alice.ID, 5000)
	require.NoError(t, err)

	err = f.l.Settle(ctx, Execution{
		Kind:     KindBond,
		SellerID: f.treasury.ID,
		BuyerID:  f.alice.ID,
		Qty:      2,
		Price:    900,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), f.bonds(t, f.alice))
	assert.Equal(t, Cash(3200), f.balance(t, f.alice))
	assert.Equal(t, Cash(1800), f.balance(t, f.treasury))
}

func TestSettleTransfer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, KindBond, f.alice, 3)
	_, err := f.l.Credit(ctx, f.bob.ID, 1000)
	require.NoError(t, err)

	err = f.l.Settle(ctx, Execution{
		Kind:           KindBond,
		SellerID:       f.alice.ID,
		BuyerID:        f.bob.ID,
		CounterpartyID: f.treasury.ID,
		Qty:            1,
		Price:          950,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), f.bonds(t, f.alice))
	assert.Equal(t, int64(1), f.bonds(t, f.bob))
	assert.Equal(t, Cash(950), f.balance(t, f.alice))
	assert.Equal(t, Cash(50), f.balance(t, f.bob))
}

func TestSettleRollsBackOnFailedPayment(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithOverdraft(false))
	ctx := context.Background()
	f.issue(t, KindBond, f.alice, 1)

	err := f.l.Settle(ctx, Execution{
		Kind:           KindBond,
		SellerID:       f.alice.ID,
		BuyerID:        f.bob.ID,
		CounterpartyID: f.treasury.ID,
		Qty:            1,
		Price:          950,
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Equal(t, int64(1), f.bonds(t, f.alice))
	assert.Equal(t, int64(0), f.bonds(t, f.bob))
	assert.Equal(t, Cash(0), f.balance(t, f.alice))
	assert.Equal(t, Cash(0), f.balance(t, f.bob))
}

func TestSettleRejectsOverflowingTotal(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithOverdraft(false))
	ctx := context.Background()
	_, err := f.l.Credit(ctx, f.alice.ID, 100)
	require.NoError(t, err)

	// 4 x (2^62 - 25) wraps to -100 in int64
	err = f.l.Settle(ctx, Execution{
		Kind:     KindBond,
		SellerID: f.treasury.ID,
		BuyerID:  f.alice.ID,
		Qty:      4,
		Price:    1<<62 - 25,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, Cash(100), f.balance(t, f.alice))
	assert.Equal(t, Cash(0), f.balance(t, f.treasury))
	assert.Equal(t, int64(0), f.bonds(t, f.alice))
	assert.Equal(t, int64(0), f.outstanding(t))
}

func TestSettleRejectsNegativePrice(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	err := f.l.Settle(context.Background(), Execution{
		Kind:     KindBond,
		SellerID: f.treasury.ID,
		BuyerID:  f.alice.ID,
		Qty:      1,
		Price:    -1,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, int64(0), f.bonds(t, f.alice))
}

func TestLinksFromBothSides(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	f.issue(t, KindBond, f.alice, 2)
	f.issue(t, KindSwap, f.alice, 1)
	f.issue(t, KindSwap, f.bob, 3)

	links, err := f.l.Links(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	for _, l := range links {
		assert.Equal(t, f.treasury.ID, l.Counterparty(f.alice.ID))
	}

	swaps, err := f.l.Swaps(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, swaps, 1)
	assert.Equal(t, KindSwap, swaps[0].Kind)
	assert.Equal(t, f.treasury.ID, swaps[0].CreditorID)

	// the treasury is debtor on every bond and creditor on every swap
	treasuryBonds, err := f.l.Bonds(ctx, f.treasury.ID)
	require.NoError(t, err)
	assert.Len(t, treasuryBonds, 2)
	assert.Equal(t, int64(2), f.swaps(t, f.treasury))
	assert.Equal(t, int64(4), f.bonds(t, f.treasury))
}
