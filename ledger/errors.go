package ledger

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrLinkNotFound      = errors.New("link not found")
	ErrAlreadyFollowing  = errors.New("user already has an account for this goal")
	ErrTreasuryExists    = errors.New("goal already has a treasury")
	ErrInvalidAmount     = errors.New("amount must not be negative")
	ErrInvalidQty        = errors.New("quantity must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInsufficientQty   = errors.New("insufficient quantity")
	ErrSameAccount       = errors.New("source and destination are the same account")
	ErrSelfObligation    = errors.New("an account cannot hold an obligation on itself")
	ErrNotTreasury       = errors.New("only the treasury can issue")
	ErrTreasuryTransfer  = errors.New("the treasury issues instead of transferring")
	ErrGoalMismatch      = errors.New("accounts belong to different goals")

	ErrHasBonds         = errors.New("account has bonds")
	ErrHasSwaps         = errors.New("account has swaps")
	ErrHasPendingOrders = errors.New("account has pending orders")
)

// ClosureError lists every rule that blocks closing an account.
type ClosureError struct {
	AccountID string
	err       error
}

func (e *ClosureError) Error() string {
	return fmt.Sprintf("account %s cannot be closed: %s", e.AccountID, strings.Join(e.Reasons(), "; "))
}

// Unwrap exposes each violated rule to errors.Is.
func (e *ClosureError) Unwrap() []error { return multierr.Errors(e.err) }

// Reasons returns one message per violated rule.
func (e *ClosureError) Reasons() []string {
	errs := multierr.Errors(e.err)
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}
