// Package ledger keeps cash balances and bond/swap obligation links for
// goal accounts, and settles primary issuance and secondary transfers.
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

// Ledger applies balance and link mutations atomically on top of a store.
type Ledger struct {
	db             *SQLite
	log            *zap.Logger
	allowOverdraft bool
	now            func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithOverdraft controls whether debits may take a balance below zero.
func WithOverdraft(allow bool) Option {
	return func(l *Ledger) { l.allowOverdraft = allow }
}

// WithClock overrides the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New returns a Ledger over db. Overdrafts are allowed unless disabled.
func New(db *SQLite, opts ...Option) *Ledger {
	l := &Ledger{
		db:             db,
		log:            zap.NewNop(),
		allowOverdraft: true,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.Named("ledger")
	return l
}

// OpenAccount creates a zero-balance member account for a user in a goal.
func (l *Ledger) OpenAccount(ctx context.Context, userID, goalID string) (Account, error) {
	if userID == "" || goalID == "" {
		return Account{}, errors.New("open account: user and goal are required")
	}
	a, err := l.insertAccount(ctx, userID, goalID, RoleMember)
	if isUniqueViolation(err) {
		return Account{}, fmt.Errorf("open account: %w", ErrAlreadyFollowing)
	}
	if err != nil {
		return Account{}, fmt.Errorf("open account: %w", err)
	}
	l.log.Debug("account opened", zap.String("account", a.ID), zap.String("goal", goalID))
	return a, nil
}

// OpenTreasury creates the goal's treasury. A goal has at most one.
func (l *Ledger) OpenTreasury(ctx context.Context, goalID string) (Account, error) {
	if goalID == "" {
		return Account{}, errors.New("open treasury: goal is required")
	}
	a, err := l.insertAccount(ctx, "", goalID, RoleTreasury)
	if isUniqueViolation(err) {
		return Account{}, fmt.Errorf("open treasury: %w", ErrTreasuryExists)
	}
	if err != nil {
		return Account{}, fmt.Errorf("open treasury: %w", err)
	}
	l.log.Debug("treasury opened", zap.String("account", a.ID), zap.String("goal", goalID))
	return a, nil
}

func (l *Ledger) insertAccount(ctx context.Context, userID, goalID string, role Role) (Account, error) {
	now := l.now().UTC()
	a := Account{
		ID:        id.NewAt(now),
		UserID:    userID,
		GoalID:    goalID,
		Role:      role,
		CreatedAt: now,
	}
	err := l.db.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (id, user_id, goal_id, role, balance, created_at)
			VALUES (?, ?, ?, ?, 0, ?)`,
			a.ID, a.UserID, a.GoalID, a.Role.String(), a.CreatedAt)
		return err
	})
	return a, err
}

// Credit adds amount to the account and returns the new balance.
func (l *Ledger) Credit(ctx context.Context, accountID string, amount Cash) (Cash, error) {
	if amount < 0 {
		return 0, fmt.Errorf("credit: %w", ErrInvalidAmount)
	}
	var bal Cash
	err := l.db.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		bal, err = credit(ctx, tx, accountID, amount)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	l.log.Debug("credit", zap.String("account", accountID),
		zap.Int64("amount", int64(amount)), zap.Int64("balance", int64(bal)))
	return bal, nil
}

// Debit subtracts amount from the account and returns the new balance.
func (l *Ledger) Debit(ctx context.Context, accountID string, amount Cash) (Cash, error) {
	if amount < 0 {
		return 0, fmt.Errorf("debit: %w", ErrInvalidAmount)
	}
	var bal Cash
	err := l.db.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		bal, err = debit(ctx, tx, accountID, amount, l.allowOverdraft)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}
	l.log.Debug("debit", zap.String("account", accountID),
		zap.Int64("amount", int64(amount)), zap.Int64("balance", int64(bal)))
	return bal, nil
}

// TransferFunds moves amount between two accounts. Both legs commit
// together or not at all.
func (l *Ledger) TransferFunds(ctx context.Context, fromID, toID string, amount Cash) error {
	if amount < 0 {
		return fmt.Errorf("transfer funds: %w", ErrInvalidAmount)
	}
	if fromID == toID {
		return fmt.Errorf("transfer funds: %w", ErrSameAccount)
	}
	err := l.db.InTx(ctx, func(tx *sql.Tx) error {
		return transferFunds(ctx, tx, fromID, toID, amount, l.allowOverdraft)
	})
	if err != nil {
		return fmt.Errorf("transfer funds: %w", err)
	}
	l.log.Debug("funds transferred", zap.String("from", fromID), zap.String("to", toID),
		zap.Int64("amount", int64(amount)))
	return nil
}

func credit(ctx context.Context, q querier, accountID string, amount Cash) (Cash, error) {
	var bal Cash
	err := q.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance + ? WHERE id = ? RETURNING balance`,
		amount, accountID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", ErrAccountNotFound, accountID)
	}
	return bal, err
}

func debit(ctx context.Context, q querier, accountID string, amount Cash, overdraft bool) (Cash, error) {
	var bal Cash
	err := q.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance - ? WHERE id = ? AND (? OR balance >= ?) RETURNING balance`,
		amount, accountID, overdraft, amount).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		if _, gerr := getAccount(ctx, q, accountID); gerr != nil {
			return 0, gerr
		}
		return 0, fmt.Errorf("%w: %q", ErrInsufficientFunds, accountID)
	}
	return bal, err
}

func transferFunds(ctx context.Context, q querier, fromID, toID string, amount Cash, overdraft bool) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if _, err := debit(ctx, q, fromID, amount, overdraft); err != nil {
		return err
	}
	_, err := credit(ctx, q, toID, amount)
	return err
}
