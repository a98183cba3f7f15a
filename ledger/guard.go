package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// PendingCounter reports how many pending line items an account has in
// the order book.
type PendingCounter interface {
	PendingCount(ctx context.Context, accountID string) (int, error)
}

// CanClose returns nil when the account holds no bonds, owes no swaps and
// has no pending orders. Otherwise it returns a *ClosureError naming every
// violated rule. A nil counter counts as no pending orders.
func (l *Ledger) CanClose(ctx context.Context, accountID string, pending PendingCounter) error {
	err := closable(ctx, l.db.DB(), accountID, pending)
	l.logClosure(accountID, err)
	return err
}

// CloseAccount deletes the account if CanClose allows it. A blocked
// closure leaves the account untouched.
func (l *Ledger) CloseAccount(ctx context.Context, accountID string, pending PendingCounter) error {
	var guard error
	err := l.db.InTx(ctx, func(tx *sql.Tx) error {
		guard = closable(ctx, tx, accountID, pending)
		if guard != nil {
			return guard
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, accountID)
		return err
	})
	l.logClosure(accountID, guard)
	if err != nil {
		return fmt.Errorf("close account: %w", err)
	}
	l.log.Debug("account closed", zap.String("account", accountID))
	return nil
}

func (l *Ledger) logClosure(accountID string, err error) {
	if ce, ok := err.(*ClosureError); ok {
		l.log.Info("closure blocked", zap.String("account", accountID), zap.Strings("reasons", ce.Reasons()))
	}
}

func closable(ctx context.Context, q querier, accountID string, pending PendingCounter) error {
	if _, err := getAccount(ctx, q, accountID); err != nil {
		return err
	}

	bonds, err := bondQty(ctx, q, accountID)
	if err != nil {
		return err
	}
	swaps, err := swapQty(ctx, q, accountID)
	if err != nil {
		return err
	}
	open := 0
	if pending != nil {
		if open, err = pending.PendingCount(ctx, accountID); err != nil {
			return fmt.Errorf("count pending orders: %w", err)
		}
	}

	var errs error
	if bonds > 0 {
		errs = multierr.Append(errs, ErrHasBonds)
	}
	if swaps > 0 {
		errs = multierr.Append(errs, ErrHasSwaps)
	}
	if open > 0 {
		errs = multierr.Append(errs, ErrHasPendingOrders)
	}
	if errs != nil {
		return &ClosureError{AccountID: accountID, err: errs}
	}
	return nil
}
