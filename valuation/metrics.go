// Package valuation derives position metrics for a goal account from its
// ledger holdings and the order book, and renders its activity history.
package valuation

import (
	"fmt"

	"github.com/rustyeddy/dunkbonds/ledger"
	"github.com/rustyeddy/dunkbonds/trade"
)

// Snapshot is everything the metrics read. None of the methods mutate it.
type Snapshot struct {
	Balance   ledger.Cash
	BondQty   int64
	SwapQty   int64
	FaceValue ledger.Cash
	Items     []trade.LineItem
}

// BondValue is the payout the held bonds are worth if the goal fails.
func (s Snapshot) BondValue() ledger.Cash {
	return s.FaceValue.Mul(s.BondQty)
}

// SwapCost is the face value of executed swap bids.
func (s Snapshot) SwapCost() ledger.Cash {
	return s.FaceValue.Mul(trade.Qty(s.Items, trade.SwapBid, trade.Executed))
}

// BondValueOnBlock is the face value of bonds offered in pending asks.
func (s Snapshot) BondValueOnBlock() ledger.Cash {
	return s.FaceValue.Mul(trade.Qty(s.Items, trade.BondAsk, trade.Pending))
}

func (s Snapshot) Pledged() ledger.Cash {
	return s.BondValue() + s.SwapCost() + s.BondValueOnBlock()
}

// CurrentInvestment is the balance plus the cash committed to pending
// bond and swap bids at their limit prices.
func (s Snapshot) CurrentInvestment() ledger.Cash {
	return s.Balance +
		trade.Value(s.Items, trade.BondBid, trade.Pending) +
		trade.Value(s.Items, trade.SwapBid, trade.Pending)
}

func (s Snapshot) PendingInvestment() ledger.Cash {
	return s.Balance - s.CurrentInvestment()
}

// PayoffIfGoalSucceeds is the balance: bonds pay nothing.
func (s Snapshot) PayoffIfGoalSucceeds() ledger.Cash {
	return s.Balance
}

// PayoffIfGoalFails adds bond payouts and takes off swap payouts.
func (s Snapshot) PayoffIfGoalFails() ledger.Cash {
	return s.Balance + s.BondValue() - s.SwapCost()
}

// PendingQty sums pending line items of typeOf, or of every type when
// typeOf is empty.
func (s Snapshot) PendingQty(typeOf trade.TypeOf) int64 {
	return trade.Qty(s.Items, typeOf, trade.Pending)
}

// IsBondholder is true for anyone holding or owing units, or offering
// bonds or bidding for swaps.
func (s Snapshot) IsBondholder() bool {
	return s.BondQty > 0 ||
		s.SwapQty > 0 ||
		trade.Count(s.Items, trade.BondAsk, trade.Pending) > 0 ||
		trade.Count(s.Items, trade.SwapBid, trade.Pending) > 0
}

// Supporting is true while the account has bonds, swaps or bonds on the
// block.
func (s Snapshot) Supporting() bool {
	return s.BondQty > 0 || s.SwapQty > 0 || s.PendingQty(trade.BondAsk) > 0
}

type Sentiment string

const (
	Optimistic  Sentiment = "Optimistic"
	Neutral     Sentiment = "Neutral"
	Pessimistic Sentiment = "Pessimistic"
)

// Sentiment compares executed swap bids against executed bond bids.
func (s Snapshot) Sentiment() Sentiment {
	swaps := trade.Qty(s.Items, trade.SwapBid, trade.Executed)
	bonds := trade.Qty(s.Items, trade.BondBid, trade.Executed)
	switch {
	case swaps > bonds:
		return Optimistic
	case swaps == bonds:
		return Neutral
	default:
		return Pessimistic
	}
}

// Position is bonds minus swaps. Positive is a bet against the goal.
type Position int64

func (s Snapshot) Position() Position {
	return Position(s.BondQty - s.SwapQty)
}

func (p Position) String() string {
	switch {
	case p > 0:
		return fmt.Sprintf("%d pessimistic", int64(p))
	case p == 0:
		return "neutral"
	default:
		return fmt.Sprintf("%d optimistic", int64(p))
	}
}
