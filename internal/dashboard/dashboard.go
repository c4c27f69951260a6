// Package dashboard packages aggregates and listings for the admin views.
package dashboard

import (
	"fmt"
	"time"

	"github.com/MattLee479/UpdatedWebsite2/internal/aggregator"
	"github.com/MattLee479/UpdatedWebsite2/internal/model"
	"github.com/MattLee479/UpdatedWebsite2/internal/query"
)

// Bucket is a label/count pair for charts.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Payload is what the dashboard consumer receives for one request.
type Payload struct {
	GeneratedAt    time.Time                  `json:"generated_at"`
	Filter         string                     `json:"filter,omitempty"`
	Counts         aggregator.Counts          `json:"counts"`
	Top3           []aggregator.QuestionCount `json:"top3"`
	Top10          []aggregator.QuestionCount `json:"top10"`
	ConversionRate float64                    `json:"conversion_rate"`
	Categories     []Bucket                   `json:"categories"`
	Hours          []Bucket                   `json:"hours"`
	Logs           []query.Entry              `json:"logs"`
	Total          int                        `json:"total"`
	Skipped        int                        `json:"skipped"`
	Error          string                     `json:"error,omitempty"`
}

// Options selects the optional listing.
type Options struct {
	// Filter names a query predicate. A non-empty filter produces a listing
	// only view with aggregate sections left empty.
	Filter string
	// IncludeLogs adds the full listing to an unfiltered payload.
	IncludeLogs bool
}

// Assemble builds the payload from computed stats and the records behind them.
func Assemble(st aggregator.Stats, records []model.LogRecord, opts Options) Payload {
	p := Payload{
		GeneratedAt: st.Now,
		Total:       st.Total,
		Skipped:     st.Skipped,
		Top3:        []aggregator.QuestionCount{},
		Top10:       []aggregator.QuestionCount{},
		Categories:  []Bucket{},
		Hours:       []Bucket{},
	}

	if opts.Filter != "" {
		p.Filter = opts.Filter
		p.Logs = query.Filter(records, opts.Filter)
		return p
	}

	p.Counts = st.Counts
	p.ConversionRate = st.ConversionRate
	if st.Top3 != nil {
		p.Top3 = st.Top3
	}
	if st.Top10 != nil {
		p.Top10 = st.Top10
	}
	for _, c := range st.Categories {
		p.Categories = append(p.Categories, Bucket{Label: string(c.Category), Count: c.Count})
	}
	p.Hours = HourBuckets(st.Hours)
	if opts.IncludeLogs {
		p.Logs = query.Filter(records, "")
	}
	return p
}

// HourBuckets converts an hour histogram to labelled buckets, 0 to 23,
// skipping empty hours.
func HourBuckets(hours [24]int) []Bucket {
	out := []Bucket{}
	for h, n := range hours {
		if n > 0 {
			out = append(out, Bucket{Label: HourLabel(h), Count: n})
		}
	}
	return out
}

// HourLabel formats an hour of day as "HH:00".
func HourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}
