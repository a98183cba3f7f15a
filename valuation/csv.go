package valuation

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"strconv"
	"time"
)

var historyHeader = []string{"time", "kind", "description", "price", "qty", "subtotal"}

// WriteHistoryCSV writes events as CSV with a header row. Missing prices
// are left empty.
func WriteHistoryCSV(w io.Writer, currency string, events iter.Seq[Event]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return err
	}
	for ev := range events {
		price := ""
		if ev.HasPrice {
			price = ev.Price.Plain(currency)
		}
		err := cw.Write([]string{
			ev.At.UTC().Format(time.RFC3339),
			string(ev.Kind),
			ev.Description,
			price,
			strconv.FormatInt(ev.Qty, 10),
			ev.Subtotal.Plain(currency),
		})
		if err != nil {
			return fmt.Errorf("write history: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
