package aggregate

import (
	"time"

	"github.com/printpower/storefront/internal/donation/domain"
	"github.com/shopspring/decimal"
)

// Totals is a value; Snapshot and Apply return new copies rather than
// mutating in place, so callers can hand totals across goroutines freely.
// All window sums are computed relative to Now, which is fixed at
// snapshot time and never re-evaluated.
type Totals struct {
	Now           time.Time
	Overall       decimal.Decimal
	Count         int64
	PerCause      map[string]decimal.Decimal
	Today         decimal.Decimal
	Last7Days     decimal.Decimal
	Last60Seconds decimal.Decimal
}

// Event is one donation delivered through the change feed.
type Event struct {
	DonationID int64
	Cause      string
	Amount     decimal.Decimal
	CreatedAt  time.Time
}

// Snapshot reduces a full donation set into totals. Sums are exact
// decimal arithmetic; rounding happens only at display time.
func Snapshot(rows []*domain.Donation, now time.Time) Totals {
	totals := Totals{
		Now:      now.UTC(),
		PerCause: map[string]decimal.Decimal{},
	}
	for _, row := range rows {
		if row == nil {
			continue
		}
		totals = add(totals, row.Cause, row.Amount, row.CreatedAt)
	}
	return totals
}

// Apply folds one change-feed event into existing totals and returns the
// result. The input totals are not modified.
func Apply(totals Totals, event Event) Totals {
	next := clone(totals)
	return add(next, event.Cause, event.Amount, event.CreatedAt)
}

func add(totals Totals, cause string, amount decimal.Decimal, createdAt time.Time) Totals {
	totals.Overall = totals.Overall.Add(amount)
	totals.Count++
	totals.PerCause[cause] = totals.PerCause[cause].Add(amount)

	ts := createdAt.UTC()
	if sameDay(ts, totals.Now) || ts.After(totals.Now) {
		totals.Today = totals.Today.Add(amount)
	}
	if ts.After(totals.Now.Add(-7 * 24 * time.Hour)) {
		totals.Last7Days = totals.Last7Days.Add(amount)
	}
	if ts.After(totals.Now.Add(-60 * time.Second)) {
		totals.Last60Seconds = totals.Last60Seconds.Add(amount)
	}
	return totals
}

func clone(totals Totals) Totals {
	next := totals
	next.PerCause = make(map[string]decimal.Decimal, len(totals.PerCause))
	for cause, sum := range totals.PerCause {
		next.PerCause[cause] = sum
	}
	return next
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Display is the two-decimal wire rendering of totals. Rounding applies
// here only; the underlying sums stay exact.
type Display struct {
	GeneratedAt   string            `json:"generated_at"`
	Total         string            `json:"total"`
	DonationCount int64             `json:"donation_count"`
	PerCause      map[string]string `json:"per_cause"`
	Today         string            `json:"today"`
	Last7Days     string            `json:"last_7_days"`
	Last60Seconds string            `json:"last_60_seconds"`
}

func (t Totals) Display() Display {
	perCause := make(map[string]string, len(t.PerCause))
	for cause, sum := range t.PerCause {
		perCause[cause] = sum.StringFixed(2)
	}
	return Display{
		GeneratedAt:   t.Now.Format(time.RFC3339),
		Total:         t.Overall.StringFixed(2),
		DonationCount: t.Count,
		PerCause:      perCause,
		Today:         t.Today.StringFixed(2),
		Last7Days:     t.Last7Days.StringFixed(2),
		Last60Seconds: t.Last60Seconds.StringFixed(2),
	}
}
