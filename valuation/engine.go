package valuation

import (
	"context"
	"fmt"

	"github.com/rustyeddy/dunkbonds/goal"
	"github.com/rustyeddy/dunkbonds/ledger"
	"github.com/rustyeddy/dunkbonds/trade"
)

// Holdings is the read side of the ledger.
type Holdings interface {
	Account(ctx context.Context, id string) (ledger.Account, error)
	BondQty(ctx context.Context, accountID string) (int64, error)
	SwapQty(ctx context.Context, accountID string) (int64, error)
}

// Engine assembles snapshots from the ledger, the goal source and the
// order book.
type Engine struct {
	holdings Holdings
	goals    goal.Source
	book     trade.Book
}

// NewEngine returns an Engine. A nil book means no line items.
func NewEngine(h Holdings, goals goal.Source, book trade.Book) *Engine {
	return &Engine{holdings: h, goals: goals, book: book}
}

// Report is every metric for one account.
type Report struct {
	Account  ledger.Account
	Goal     goal.Goal
	BondQty  int64
	SwapQty  int64
	Snapshot Snapshot

	BondValue            ledger.Cash
	SwapCost             ledger.Cash
	BondValueOnBlock     ledger.Cash
	Pledged              ledger.Cash
	CurrentInvestment    ledger.Cash
	PendingInvestment    ledger.Cash
	PayoffIfGoalSucceeds ledger.Cash
	PayoffIfGoalFails    ledger.Cash
	Sentiment            Sentiment
	Position             Position
	IsBondholder         bool
	Supporting           bool
}

// Snapshot loads the inputs for one account.
func (e *Engine) Snapshot(ctx context.Context, accountID string) (Snapshot, ledger.Account, goal.Goal, error) {
	acct, err := e.holdings.Account(ctx, accountID)
	if err != nil {
		return Snapshot{}, ledger.Account{}, goal.Goal{}, err
	}
	g, err := e.goals.Goal(ctx, acct.GoalID)
	if err != nil {
		return Snapshot{}, ledger.Account{}, goal.Goal{}, err
	}
	bonds, err := e.holdings.BondQty(ctx, accountID)
	if err != nil {
		return Snapshot{}, ledger.Account{}, goal.Goal{}, fmt.Errorf("bond qty: %w", err)
	}
	swaps, err := e.holdings.SwapQty(ctx, accountID)
	if err != nil {
		return Snapshot{}, ledger.Account{}, goal.Goal{}, fmt.Errorf("swap qty: %w", err)
	}
	var items []trade.LineItem
	if e.book != nil {
		if items, err = e.book.LineItems(ctx, accountID); err != nil {
			return Snapshot{}, ledger.Account{}, goal.Goal{}, fmt.Errorf("line items: %w", err)
		}
	}

	s := Snapshot{
		Balance:   acct.Balance,
		BondQty:   bonds,
		SwapQty:   swaps,
		FaceValue: g.FaceValue,
		Items:     items,
	}
	return s, acct, g, nil
}

// Report values one account.
func (e *Engine) Report(ctx context.Context, accountID string) (Report, error) {
	s, acct, g, err := e.Snapshot(ctx, accountID)
	if err != nil {
		return Report{}, fmt.Errorf("value account: %w", err)
	}
	return Report{
		Account:              acct,
		Goal:                 g,
		BondQty:              s.BondQty,
		SwapQty:              s.SwapQty,
		Snapshot:             s,
		BondValue:            s.BondValue(),
		SwapCost:             s.SwapCost(),
		BondValueOnBlock:     s.BondValueOnBlock(),
		Pledged:              s.Pledged(),
		CurrentInvestment:    s.CurrentInvestment(),
		PendingInvestment:    s.PendingInvestment(),
		PayoffIfGoalSucceeds: s.PayoffIfGoalSucceeds(),
		PayoffIfGoalFails:    s.PayoffIfGoalFails(),
		Sentiment:            s.Sentiment(),
		Position:             s.Position(),
		IsBondholder:         s.IsBondholder(),
		Supporting:           s.Supporting(),
	}, nil
}
