package ledger

import (
	"fmt"
	"time"
)

// Role distinguishes the goal's treasury from member accounts.
type Role int

const (
	RoleMember Role = iota
	// RoleTreasury is the goal-scoped account that is the sole source of
	// primary issuance.
	RoleTreasury
)

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleTreasury:
		return "treasury"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func parseRole(s string) (Role, error) {
	switch s {
	case "member":
		return RoleMember, nil
	case "treasury":
		return RoleTreasury, nil
	default:
		return 0, fmt.Errorf("unknown account role %q", s)
	}
}

// Account is a user's cash position in one goal.
type Account struct {
	ID        string
	UserID    string
	GoalID    string
	Role      Role
	Balance   Cash
	CreatedAt time.Time
}

func (a Account) IsTreasury() bool { return a.Role == RoleTreasury }
