package trade

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/dunkbonds/ledger"
)

// Activity is a snapshot of everything the order side knows about a set
// of accounts. It satisfies Book and ledger.PendingCounter.
type Activity struct {
	Items         []LineItem
	Fills         []Fill
	Cancellations []Cancellation
	Payments      []Payment
}

func (a *Activity) LineItems(_ context.Context, accountID string) ([]LineItem, error) {
	return a.ForAccount(accountID).Items, nil
}

func (a *Activity) PendingCount(_ context.Context, accountID string) (int, error) {
	return Count(a.ForAccount(accountID).Items, "", Pending), nil
}

// ForAccount returns the subset of the activity that belongs to accountID.
func (a *Activity) ForAccount(accountID string) Activity {
	var out Activity
	if a == nil {
		return out
	}
	for _, li := range a.Items {
		if li.AccountID == accountID {
			out.Items = append(out.Items, li)
		}
	}
	for _, f := range a.Fills {
		if f.AccountID == accountID {
			out.Fills = append(out.Fills, f)
		}
	}
	for _, c := range a.Cancellations {
		if c.AccountID == accountID {
			out.Cancellations = append(out.Cancellations, c)
		}
	}
	for _, p := range a.Payments {
		if p.AccountID == accountID {
			out.Payments = append(out.Payments, p)
		}
	}
	return out
}

type activityFile struct {
	LineItems []struct {
		ID       string    `yaml:"id"`
		Account  string    `yaml:"account"`
		Type     TypeOf    `yaml:"type"`
		Status   Status    `yaml:"status"`
		Qty      int64     `yaml:"qty"`
		Price    string    `yaml:"price"`
		PlacedAt time.Time `yaml:"placed_at"`
	} `yaml:"line_items"`
	Fills []struct {
		Account string    `yaml:"account"`
		Side    Side      `yaml:"side"`
		Type    TypeOf    `yaml:"type"`
		Qty     int64     `yaml:"qty"`
		Price   string    `yaml:"price"`
		At      time.Time `yaml:"at"`
	} `yaml:"fills"`
	Cancellations []struct {
		Account string    `yaml:"account"`
		Type    TypeOf    `yaml:"type"`
		Qty     int64     `yaml:"qty"`
		At      time.Time `yaml:"at"`
	} `yaml:"cancellations"`
	Payments []struct {
		Account   string    `yaml:"account"`
		Direction Direction `yaml:"direction"`
		Amount    string    `yaml:"amount"`
		At        time.Time `yaml:"at"`
	} `yaml:"payments"`
}

// LoadActivity reads an activity YAML file. Prices and amounts are
// major-unit decimal strings in currency.
func LoadActivity(path, currency string) (*Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read activity file: %w", err)
	}
	return ParseActivity(data, currency)
}

// ParseActivity decodes activity YAML.
func ParseActivity(data []byte, currency string) (*Activity, error) {
	var raw activityFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse activity: %w", err)
	}

	a := &Activity{}
	for _, r := range raw.LineItems {
		price, err := cash(r.Price, currency)
		if err != nil {
			return nil, fmt.Errorf("line item %s: %w", r.ID, err)
		}
		li := LineItem{
			ID:        r.ID,
			AccountID: r.Account,
			TypeOf:    r.Type,
			Status:    r.Status,
			Qty:       r.Qty,
			Price:     price,
			PlacedAt:  r.PlacedAt,
		}
		if err := li.validate(); err != nil {
			return nil, err
		}
		a.Items = append(a.Items, li)
	}
	for i, r := range raw.Fills {
		price, err := cash(r.Price, currency)
		if err != nil {
			return nil, fmt.Errorf("fill %d: %w", i, err)
		}
		if r.Side != Buy && r.Side != Sell {
			return nil, fmt.Errorf("fill %d: unknown side %q", i, r.Side)
		}
		if !r.Type.valid() {
			return nil, fmt.Errorf("fill %d: unknown type %q", i, r.Type)
		}
		a.Fills = append(a.Fills, Fill{
			AccountID: r.Account, Side: r.Side, TypeOf: r.Type,
			Price: price, Qty: r.Qty, At: r.At,
		})
	}
	for i, r := range raw.Cancellations {
		if !r.Type.valid() {
			return nil, fmt.Errorf("cancellation %d: unknown type %q", i, r.Type)
		}
		a.Cancellations = append(a.Cancellations, Cancellation{
			AccountID: r.Account, TypeOf: r.Type, Qty: r.Qty, At: r.At,
		})
	}
	for i, r := range raw.Payments {
		amount, err := cash(r.Amount, currency)
		if err != nil {
			return nil, fmt.Errorf("payment %d: %w", i, err)
		}
		if r.Direction != Paid && r.Direction != Received {
			return nil, fmt.Errorf("payment %d: unknown direction %q", i, r.Direction)
		}
		a.Payments = append(a.Payments, Payment{
			AccountID: r.Account, Direction: r.Direction, Amount: amount, At: r.At,
		})
	}
	return a, nil
}

func cash(s, currency string) (ledger.Cash, error) {
	if s == "" {
		return 0, nil
	}
	return ledger.ParseCash(s, currency)
}
