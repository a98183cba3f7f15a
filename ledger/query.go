package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const accountColumns = `id, user_id, goal_id, role, balance, created_at`

const linkColumns = `id, kind, creditor_id, debtor_id, goal_id, qty, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (Account, error) {
	var (
		a    Account
		role string
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.GoalID, &role, &a.Balance, &a.CreatedAt); err != nil {
		return Account{}, err
	}
	r, err := parseRole(role)
	if err != nil {
		return Account{}, err
	}
	a.Role = r
	return a, nil
}

func scanLink(row scanner) (Link, error) {
	var (
		l    Link
		kind string
	)
	if err := row.Scan(&l.ID, &kind, &l.CreditorID, &l.DebtorID, &l.GoalID, &l.Qty, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return Link{}, err
	}
	k, err := ParseKind(kind)
	if err != nil {
		return Link{}, err
	}
	l.Kind = k
	return l, nil
}

func getAccount(ctx context.Context, q querier, id string) (Account, error) {
	a, err := scanAccount(q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("%w: %q", ErrAccountNotFound, id)
	}
	return a, err
}

func queryAccounts(ctx context.Context, q querier, where string, args ...any) ([]Account, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE `+where+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func queryLinks(ctx context.Context, q querier, where string, args ...any) ([]Link, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE `+where+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func sumQty(ctx context.Context, q querier, where string, args ...any) (int64, error) {
	var qty int64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(qty), 0) FROM links WHERE `+where, args...).Scan(&qty)
	return qty, err
}

func bondQty(ctx context.Context, q querier, accountID string) (int64, error) {
	return sumQty(ctx, q, `creditor_id = ?`, accountID)
}

func swapQty(ctx context.Context, q querier, accountID string) (int64, error) {
	return sumQty(ctx, q, `debtor_id = ?`, accountID)
}

// Account returns a single account by id.
func (l *Ledger) Account(ctx context.Context, id string) (Account, error) {
	return getAccount(ctx, l.db.DB(), id)
}

// AccountFor returns the member account a user holds in a goal.
func (l *Ledger) AccountFor(ctx context.Context, userID, goalID string) (Account, error) {
	a, err := scanAccount(l.db.DB().QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? AND goal_id = ? AND role = 'member'`,
		userID, goalID))
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("%w: user %q goal %q", ErrAccountNotFound, userID, goalID)
	}
	return a, err
}

// Treasury returns the goal's treasury account.
func (l *Ledger) Treasury(ctx context.Context, goalID string) (Account, error) {
	a, err := scanAccount(l.db.DB().QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE goal_id = ? AND role = 'treasury'`, goalID))
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("%w: no treasury for goal %q", ErrAccountNotFound, goalID)
	}
	return a, err
}

// Accounts lists every account in a goal, treasury included.
func (l *Ledger) Accounts(ctx context.Context, goalID string) ([]Account, error) {
	return queryAccounts(ctx, l.db.DB(), `goal_id = ?`, goalID)
}

// Links returns every link the account is on either end of.
func (l *Ledger) Links(ctx context.Context, accountID string) ([]Link, error) {
	return queryLinks(ctx, l.db.DB(), `creditor_id = ? OR debtor_id = ?`, accountID, accountID)
}

// Bonds returns the links held by the account as creditor.
func (l *Ledger) Bonds(ctx context.Context, accountID string) ([]Link, error) {
	return queryLinks(ctx, l.db.DB(), `creditor_id = ?`, accountID)
}

// Swaps returns the links the account owes on as debtor.
func (l *Ledger) Swaps(ctx context.Context, accountID string) ([]Link, error) {
	return queryLinks(ctx, l.db.DB(), `debtor_id = ?`, accountID)
}

// BondQty sums the quantity the account holds as creditor, 0 if none.
func (l *Ledger) BondQty(ctx context.Context, accountID string) (int64, error) {
	return bondQty(ctx, l.db.DB(), accountID)
}

// SwapQty sums the quantity the account owes as debtor, 0 if none.
func (l *Ledger) SwapQty(ctx context.Context, accountID string) (int64, error) {
	return swapQty(ctx, l.db.DB(), accountID)
}

// OutstandingQty sums every link quantity in a goal. Issuance raises it,
// transfers leave it unchanged.
func (l *Ledger) OutstandingQty(ctx context.Context, goalID string) (int64, error) {
	return sumQty(ctx, l.db.DB(), `goal_id = ?`, goalID)
}
