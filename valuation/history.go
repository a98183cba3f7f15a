package valuation

import (
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/rustyeddy/dunkbonds/ledger"
	"github.com/rustyeddy/dunkbonds/trade"
)

// EventKind tags where a history event came from.
type EventKind string

const (
	EventPlaced    EventKind = "placed"
	EventCancelled EventKind = "cancelled"
	EventBuy       EventKind = "buy"
	EventSale      EventKind = "sale"
	EventPayment   EventKind = "payment"
	EventReceipt   EventKind = "receipt"
)

// Event is one row of an account's history. Subtotal is a cost from the
// account's side: buys and payments made are positive, sales and receipts
// negative. Orders placed or cancelled move no cash.
type Event struct {
	Kind        EventKind
	Description string
	At          time.Time
	Price       ledger.Cash
	HasPrice    bool
	Qty         int64
	Subtotal    ledger.Cash
}

// History yields the activity's events in ascending time order. Events
// with equal timestamps keep source order: line items first, then
// cancellations, fills and payments. Each range over the sequence starts
// again from the activity.
func History(a trade.Activity) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, ev := range collect(a) {
			if !yield(ev) {
				return
			}
		}
	}
}

func collect(a trade.Activity) []Event {
	events := make([]Event, 0, len(a.Items)+len(a.Cancellations)+len(a.Fills)+len(a.Payments))

	for _, li := range a.Items {
		events = append(events, Event{
			Kind:        EventPlaced,
			Description: "Placed " + string(li.TypeOf),
			At:          li.PlacedAt,
			Price:       li.Price,
			HasPrice:    true,
			Qty:         li.Qty,
		})
	}
	for _, c := range a.Cancellations {
		events = append(events, Event{
			Kind:        EventCancelled,
			Description: "Cancelled " + string(c.TypeOf),
			At:          c.At,
			Qty:         c.Qty,
		})
	}
	for _, f := range a.Fills {
		ev := Event{
			At:       f.At,
			Price:    f.Price,
			HasPrice: true,
			Qty:      f.Qty,
			Subtotal: f.Price.Mul(f.Qty),
		}
		instrument := capitalize(f.TypeOf.Instrument())
		if f.Side == trade.Buy {
			ev.Kind = EventBuy
			ev.Description = instrument + " buy"
		} else {
			ev.Kind = EventSale
			ev.Description = instrument + " sale"
			ev.Subtotal = ev.Subtotal.Neg()
		}
		events = append(events, ev)
	}
	for _, p := range a.Payments {
		if p.Direction == trade.Paid {
			events = append(events, Event{
				Kind:        EventPayment,
				Description: "Swap payout",
				At:          p.At,
				Subtotal:    p.Amount,
			})
			continue
		}
		events = append(events, Event{
			Kind:        EventReceipt,
			Description: "Bond payout",
			At:          p.At,
			Subtotal:    p.Amount.Neg(),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.Before(events[j].At)
	})
	return events
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
