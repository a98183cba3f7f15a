// Package trade holds the order-book data the ledger consumes: line items,
// executed fills, cancellations and goal payments. Matching and order
// intake happen elsewhere; these records arrive already decided.
package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/dunkbonds/ledger"
)

// TypeOf names the instrument side of a line item.
type TypeOf string

const (
	BondBid TypeOf = "bond bid"
	BondAsk TypeOf = "bond ask"
	SwapBid TypeOf = "swap bid"
	SwapAsk TypeOf = "swap ask"
)

// Instrument returns "bond" or "swap".
func (t TypeOf) Instrument() string {
	switch t {
	case BondBid, BondAsk:
		return "bond"
	case SwapBid, SwapAsk:
		return "swap"
	}
	return ""
}

func (t TypeOf) valid() bool { return t.Instrument() != "" }

type Status string

const (
	Pending   Status = "pending"
	Executed  Status = "executed"
	Cancelled Status = "cancelled"
)

func (s Status) valid() bool {
	return s == Pending || s == Executed || s == Cancelled
}

// LineItem is one order line. Price is the limit: the maximum bid or the
// minimum ask per unit.
type LineItem struct {
	ID        string
	AccountID string
	TypeOf    TypeOf
	Status    Status
	Qty       int64
	Price     ledger.Cash
	PlacedAt  time.Time
}

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Fill is an executed buy or sell from the account's point of view.
type Fill struct {
	AccountID string
	Side      Side
	TypeOf    TypeOf
	Price     ledger.Cash
	Qty       int64
	At        time.Time
}

type Cancellation struct {
	AccountID string
	TypeOf    TypeOf
	Qty       int64
	At        time.Time
}

// Direction says whether the account paid or received a payment.
type Direction string

const (
	Paid     Direction = "paid"
	Received Direction = "received"
)

// Payment is a periodic swap payout made or a bond payout received.
type Payment struct {
	AccountID string
	Direction Direction
	Amount    ledger.Cash
	At        time.Time
}

// Book returns an account's line items.
type Book interface {
	LineItems(ctx context.Context, accountID string) ([]LineItem, error)
}

// Qty sums the quantity of items matching typeOf and status. An empty
// typeOf matches every type.
func Qty(items []LineItem, typeOf TypeOf, status Status) int64 {
	var n int64
	for _, li := range items {
		if matches(li, typeOf, status) {
			n += li.Qty
		}
	}
	return n
}

// Count returns how many items match typeOf and status.
func Count(items []LineItem, typeOf TypeOf, status Status) int {
	n := 0
	for _, li := range items {
		if matches(li, typeOf, status) {
			n++
		}
	}
	return n
}

// Value sums qty times price over items matching typeOf and status.
func Value(items []LineItem, typeOf TypeOf, status Status) ledger.Cash {
	var v ledger.Cash
	for _, li := range items {
		if matches(li, typeOf, status) {
			v += li.Price.Mul(li.Qty)
		}
	}
	return v
}

func matches(li LineItem, typeOf TypeOf, status Status) bool {
	return (typeOf == "" || li.TypeOf == typeOf) && li.Status == status
}

func (li LineItem) validate() error {
	if !li.TypeOf.valid() {
		return fmt.Errorf("line item %s: unknown type %q", li.ID, li.TypeOf)
	}
	if !li.Status.valid() {
		return fmt.Errorf("line item %s: unknown status %q", li.ID, li.Status)
	}
	if li.Qty <= 0 {
		return fmt.Errorf("line item %s: quantity must be positive", li.ID)
	}
	return nil
}
