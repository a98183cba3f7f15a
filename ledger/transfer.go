package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/dunkbonds/pkg/id"
)

// IssueRequest asks the treasury to create new units for a buyer.
type IssueRequest struct {
	Kind       Kind
	TreasuryID string
	BuyerID    string
	Qty        int64 // defaults to 1
}

// TransferRequest moves units of an existing link between two members.
//
// CounterpartyID selects which of the seller's links is sold: the debtor
// of a bond, or the creditor of a swap.
type TransferRequest struct {
	Kind           Kind
	SellerID       string
	BuyerID        string
	CounterpartyID string
	Qty            int64 // defaults to 1
}

// TransferResult reports both ends after a transfer. Seller.Qty is zero
// when the seller's link was deleted.
type TransferResult struct {
	Seller Link
	Buyer  Link
}

// Execution is an executed trade handed over by the order workflow. When
// the seller is the treasury the units are issued, otherwise transferred.
// The buyer pays Price per unit to the seller.
type Execution struct {
	Kind           Kind
	SellerID       string
	BuyerID        string
	CounterpartyID string // ignored for issuance
	Qty            int64
	Price          Cash
}

func normQty(q int64) (int64, error) {
	if q == 0 {
		return 1, nil
	}
	if q < 0 {
		return 0, ErrInvalidQty
	}
	return q, nil
}

// Issue creates Qty units from the treasury for the buyer. A bond makes
// the buyer creditor of the treasury; a swap makes the buyer debtor to it.
// Only a treasury account issues: any other TreasuryID returns
// ErrNotTreasury and leaves the ledger unchanged.
func (l *Ledger) Issue(ctx context.Context, req IssueRequest) (Link, error) {
	qty, err := normQty(req.Qty)
	if err != nil {
		return Link{}, fmt.Errorf("issue %s: %w", req.Kind, err)
	}
	req.Qty = qty

	var link Link
	err = l.db.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		link, err = issue(ctx, tx, req, l.now().UTC())
		return err
	})
	if err != nil {
		return Link{}, fmt.Errorf("issue %s: %w", req.Kind, err)
	}
	l.log.Debug("issued", zap.Stringer("kind", req.Kind), zap.String("treasury", req.TreasuryID),
		zap.String("buyer", req.BuyerID), zap.Int64("qty", req.Qty), zap.Int64("held", link.Qty))
	return link, nil
}

// Transfer moves Qty units of the seller's link to the buyer. The seller's
// link is deleted when it reaches zero.
func (l *Ledger) Transfer(ctx context.Context, req TransferRequest) (TransferResult, error) {
	qty, err := normQty(req.Qty)
	if err != nil {
		return TransferResult{}, fmt.Errorf("transfer %s: %w", req.Kind, err)
	}
	req.Qty = qty

	var res TransferResult
	err = l.db.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = transfer(ctx, tx, req, l.now().UTC())
		return err
	})
	if err != nil {
		return TransferResult{}, fmt.Errorf("transfer %s: %w", req.Kind, err)
	}
	l.log.Debug("transferred", zap.Stringer("kind", req.Kind), zap.String("seller", req.SellerID),
		zap.String("buyer", req.BuyerID), zap.String("counterparty", req.CounterpartyID),
		zap.Int64("qty", req.Qty), zap.Int64("seller_left", res.Seller.Qty))
	return res, nil
}

// Settle applies an execution: the instrument moves and the buyer pays
// the seller, in one transaction.
func (l *Ledger) Settle(ctx context.Context, ex Execution) error {
	if ex.Qty <= 0 {
		return fmt.Errorf("settle: %w", ErrInvalidQty)
	}
	total, err := ex.Price.Total(ex.Qty)
	if err != nil {
		return fmt.Errorf("settle: %w", err)
	}
	now := l.now().UTC()
	issued := false

	err = l.db.InTx(ctx, func(tx *sql.Tx) error {
		seller, err := getAccount(ctx, tx, ex.SellerID)
		if err != nil {
			return err
		}
		issued = seller.IsTreasury()
		if issued {
			_, err = issue(ctx, tx, IssueRequest{
				Kind:       ex.Kind,
				TreasuryID: ex.SellerID,
				BuyerID:    ex.BuyerID,
				Qty:        ex.Qty,
			}, now)
		} else {
			_, err = transfer(ctx, tx, TransferRequest{
				Kind:           ex.Kind,
				SellerID:       ex.SellerID,
				BuyerID:        ex.BuyerID,
				CounterpartyID: ex.CounterpartyID,
				Qty:            ex.Qty,
			}, now)
		}
		if err != nil {
			return err
		}
		return transferFunds(ctx, tx, ex.BuyerID, ex.SellerID, total, l.allowOverdraft)
	})
	if err != nil {
		return fmt.Errorf("settle %s: %w", ex.Kind, err)
	}
	l.log.Debug("settled", zap.Stringer("kind", ex.Kind), zap.Bool("issued", issued),
		zap.String("seller", ex.SellerID), zap.String("buyer", ex.BuyerID),
		zap.Int64("qty", ex.Qty), zap.Int64("price", int64(ex.Price)))
	return nil
}

func issue(ctx context.Context, q querier, req IssueRequest, now time.Time) (Link, error) {
	treasury, err := getAccount(ctx, q, req.TreasuryID)
	if err != nil {
		return Link{}, err
	}
	if !treasury.IsTreasury() {
		return Link{}, fmt.Errorf("%w: %q is a %s account", ErrNotTreasury, treasury.ID, treasury.Role)
	}
	buyer, err := getAccount(ctx, q, req.BuyerID)
	if err != nil {
		return Link{}, err
	}
	if buyer.ID == treasury.ID {
		return Link{}, ErrSelfObligation
	}
	if buyer.GoalID != treasury.GoalID {
		return Link{}, ErrGoalMismatch
	}

	creditor, debtor := sides(req.Kind, buyer.ID, treasury.ID)
	return addLink(ctx, q, req.Kind, creditor, debtor, treasury.GoalID, req.Qty, now)
}

func transfer(ctx context.Context, q querier, req TransferRequest, now time.Time) (TransferResult, error) {
	if req.SellerID == req.BuyerID {
		return TransferResult{}, ErrSameAccount
	}
	if req.CounterpartyID == req.BuyerID {
		return TransferResult{}, ErrSelfObligation
	}
	seller, err := getAccount(ctx, q, req.SellerID)
	if err != nil {
		return TransferResult{}, err
	}
	if seller.IsTreasury() {
		return TransferResult{}, ErrTreasuryTransfer
	}
	buyer, err := getAccount(ctx, q, req.BuyerID)
	if err != nil {
		return TransferResult{}, err
	}
	if buyer.GoalID != seller.GoalID {
		return TransferResult{}, ErrGoalMismatch
	}

	sc, sd := sides(req.Kind, seller.ID, req.CounterpartyID)
	left, err := removeLink(ctx, q, sc, sd, seller.GoalID, req.Qty, now)
	if err != nil {
		return TransferResult{}, err
	}

	bc, bd := sides(req.Kind, buyer.ID, req.CounterpartyID)
	got, err := addLink(ctx, q, left.Kind, bc, bd, seller.GoalID, req.Qty, now)
	if err != nil {
		return TransferResult{}, err
	}
	return TransferResult{Seller: left, Buyer: got}, nil
}

// addLink finds or creates the (creditor, debtor, goal) link and adds qty
// in one statement, so concurrent callers never create duplicates.
func addLink(ctx context.Context, q querier, kind Kind, creditor, debtor, goalID string, qty int64, now time.Time) (Link, error) {
	l, err := scanLink(q.QueryRowContext(ctx, `
		INSERT INTO links (id, kind, creditor_id, debtor_id, goal_id, qty, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (creditor_id, debtor_id, goal_id)
		DO UPDATE SET qty = qty + excluded.qty, updated_at = excluded.updated_at
		RETURNING `+linkColumns,
		id.NewAt(now), kind.String(), creditor, debtor, goalID, qty, now, now))
	if err != nil {
		return Link{}, fmt.Errorf("add link: %w", err)
	}
	return l, nil
}

// removeLink takes qty off a link, deleting the row when nothing is left.
// The returned link carries the remaining quantity.
func removeLink(ctx context.Context, q querier, creditor, debtor, goalID string, qty int64, now time.Time) (Link, error) {
	l, err := scanLink(q.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE creditor_id = ? AND debtor_id = ? AND goal_id = ?`,
		creditor, debtor, goalID))
	if errors.Is(err, sql.ErrNoRows) {
		return Link{}, fmt.Errorf("%w: creditor %q debtor %q", ErrLinkNotFound, creditor, debtor)
	}
	if err != nil {
		return Link{}, err
	}
	if l.Qty < qty {
		return Link{}, fmt.Errorf("%w: holds %d, needs %d", ErrInsufficientQty, l.Qty, qty)
	}

	l.Qty -= qty
	l.UpdatedAt = now
	if l.Qty == 0 {
		_, err = q.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, l.ID)
	} else {
		_, err = q.ExecContext(ctx, `UPDATE links SET qty = ?, updated_at = ? WHERE id = ?`, l.Qty, now, l.ID)
	}
	if err != nil {
		return Link{}, fmt.Errorf("remove link: %w", err)
	}
	return l, nil
}
