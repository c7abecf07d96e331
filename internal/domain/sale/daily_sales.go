package sale

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDateLayout renders a calendar day the way ja-JP locales do (2024/1/5)
const DefaultDateLayout = "2006/1/2"

// DailySales is the derived per-day grouping of persisted transactions
type DailySales struct {
	Date         string        `json:"date"`
	Transactions []Transaction `json:"transactions"`
	Total        int64         `json:"total"`
}

// DayPolicy decides which calendar day a timestamp belongs to
type DayPolicy struct {
	Location *time.Location
	Layout   string
}

// NewDayPolicy builds a policy, falling back to UTC and DefaultDateLayout
func NewDayPolicy(loc *time.Location, layout string) DayPolicy {
	if loc == nil {
		loc = time.UTC
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return DayPolicy{Location: loc, Layout: layout}
}

// Format renders the day key for ts
func (p DayPolicy) Format(ts time.Time) string {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	layout := p.Layout
	if layout == "" {
		layout = DefaultDateLayout
	}
	return ts.In(loc).Format(layout)
}

// SkippedRecord is a transaction left out of the aggregation
type SkippedRecord struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// Aggregation is the output of Aggregate
type Aggregation struct {
	Days    []DailySales    `json:"days"`
	Skipped []SkippedRecord `json:"skipped,omitempty"`
}

// Aggregate groups transactions by calendar day.
// Groups appear in first-occurrence order and members keep input order, so a
// newest-first input yields the newest day first with its newest sale first.
// Records without a creation time are reported in Skipped.
func Aggregate(transactions []Transaction, policy DayPolicy) Aggregation {
	out := Aggregation{Days: make([]DailySales, 0)}
	index := make(map[string]int)

	for _, t := range transactions {
		if t.CreatedAt == nil {
			out.Skipped = append(out.Skipped, SkippedRecord{ID: t.ID, Reason: "missing created_at"})
			continue
		}

		date := policy.Format(*t.CreatedAt)
		i, ok := index[date]
		if !ok {
			i = len(out.Days)
			index[date] = i
			out.Days = append(out.Days, DailySales{Date: date, Transactions: make([]Transaction, 0, 1)})
		}
		out.Days[i].Transactions = append(out.Days[i].Transactions, t.Clone())
		out.Days[i].Total += t.Total
	}

	return out
}

// Total sums every group
func (a Aggregation) Total() int64 {
	var total int64
	for _, d := range a.Days {
		total += d.Total
	}
	return total
}
