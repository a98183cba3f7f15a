package valuation

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"text/template"
	"time"

	"github.com/rustyeddy/dunkbonds/ledger"
)

// FormatHistoryOrg renders an account's events as an Org-mode heading
// with a table, one row per event.
func FormatHistoryOrg(accountID, currency string, events iter.Seq[Event]) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("** History: %s\n", shortID(accountID)))
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ACCOUNT_ID: %s\n", accountID))
	b.WriteString(fmt.Sprintf(":CURRENCY: %s\n", currency))
	b.WriteString(":END:\n\n")
	b.WriteString("| Date | Description | Price | Qty | Subtotal |\n")
	b.WriteString("|------+-------------+-------+-----+----------|\n")

	var total ledger.Cash
	for ev := range events {
		price := ""
		if ev.HasPrice {
			price = ev.Price.Plain(currency)
		}
		qty := ""
		if ev.Qty != 0 {
			qty = fmt.Sprint(ev.Qty)
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			orgTime(ev.At), ev.Description, price, qty, ev.Subtotal.Plain(currency)))
		total += ev.Subtotal
	}
	b.WriteString("|------+-------------+-------+-----+----------|\n")
	b.WriteString(fmt.Sprintf("| | Total | | | %s |\n", total.Plain(currency)))
	return b.String()
}

func orgTime(t time.Time) string {
	return "[" + t.UTC().Format("2006-01-02 Mon 15:04") + "]"
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

// reportView is what ReportOrgTemplate renders.
type reportView struct {
	Report
	Currency string
}

var reportOrgFuncs = template.FuncMap{
	"money": func(c ledger.Cash, currency string) string { return c.Format(currency) },
	"short": shortID,
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
}

var reportOrg = template.Must(template.New("report").Funcs(reportOrgFuncs).Parse(ReportOrgTemplate))

// WriteReportOrg renders a valuation report as Org-mode.
func WriteReportOrg(w io.Writer, r Report, currency string) error {
	if err := reportOrg.Execute(w, reportView{Report: r, Currency: currency}); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

const ReportOrgTemplate = `* ACCOUNT: {{short .Account.ID}} {{if .Goal.Title}}{{.Goal.Title}}{{else}}{{.Goal.ID}}{{end}}
:PROPERTIES:
:ACCOUNT_ID:  {{.Account.ID}}
:ROLE:        {{.Account.Role}}
:GOAL:        {{.Goal.ID}}
:GOAL_VALID:  {{yesno .Goal.Valid}}
:FACE_VALUE:  {{money .Goal.FaceValue .Currency}}
:END:

** Holdings
| Metric   | Value |
|----------+-------|
| Balance  | {{money .Account.Balance .Currency}} |
| Bonds    | {{.BondQty}} |
| Swaps    | {{.SwapQty}} |
| Position | {{.Position}} |

** Valuation
- Bond value:          *{{money .BondValue .Currency}}*
- Swap cost:           *{{money .SwapCost .Currency}}*
- Bonds on the block:  *{{money .BondValueOnBlock .Currency}}*
- Pledged:             *{{money .Pledged .Currency}}*
- Current investment:  *{{money .CurrentInvestment .Currency}}*
- Pending investment:  *{{money .PendingInvestment .Currency}}*
- If goal succeeds:    *{{money .PayoffIfGoalSucceeds .Currency}}*
- If goal fails:       *{{money .PayoffIfGoalFails .Currency}}*

** Outlook
- Sentiment:   {{.Sentiment}}
- Bondholder:  {{yesno .IsBondholder}}
- Supporting:  {{yesno .Supporting}}
`
