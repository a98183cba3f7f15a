package ledger

import (
	"fmt"
	"time"
)

// Kind records which side of a link was bought at issuance.
type Kind int

const (
	// KindBond links are issued with the buyer as creditor and the
	// treasury as debtor.
	KindBond Kind = iota
	// KindSwap links are issued with the treasury as creditor and the
	// buyer as debtor.
	KindSwap
)

func (k Kind) String() string {
	switch k {
	case KindBond:
		return "bond"
	case KindSwap:
		return "swap"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts "bond" or "swap".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "bond":
		return KindBond, nil
	case "swap":
		return KindSwap, nil
	default:
		return 0, fmt.Errorf("unknown instrument kind %q", s)
	}
}

// Link is a quantity-bearing obligation of the debtor toward the creditor
// within one goal. Seen from the creditor it is a bond, seen from the
// debtor it is a swap. At most one link exists per (creditor, debtor,
// goal) and its quantity is always positive.
type Link struct {
	ID         string
	Kind       Kind
	CreditorID string
	DebtorID   string
	GoalID     string
	Qty        int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Counterparty returns the other end of the link as seen from accountID.
func (l Link) Counterparty(accountID string) string {
	if l.CreditorID == accountID {
		return l.DebtorID
	}
	return l.CreditorID
}

// sides returns the creditor and debtor a holder's link has for kind,
// given the account on the other end.
func sides(kind Kind, holder, counterparty string) (creditor, debtor string) {
	if kind == KindSwap {
		return counterparty, holder
	}
	return holder, counterparty
}
