package aggregator

import (
	"math"
	"time"

	"github.com/MattLee479/UpdatedWebsite2/internal/classifier"
	"github.com/MattLee479/UpdatedWebsite2/internal/model"
)

// ConversionKeywords signal commercial intent in a user utterance.
var ConversionKeywords = []string{"quote", "cost", "pricing", "appointment", "book", "support", "install", "refund"}

// Counts holds record volume per window.
type Counts struct {
	Today int `json:"today"`
	Week  int `json:"week"`
	Month int `json:"month"`
}

// QuestionCount is one row of the top-question ranking.
type QuestionCount struct {
	Question string `json:"question"`
	Count    int    `json:"count"`
}

// CategoryCount is one row of the category histogram.
type CategoryCount struct {
	Category classifier.Category `json:"category"`
	Count    int                 `json:"count"`
}

// Stats holds a point-in-time snapshot of aggregated metrics.
type Stats struct {
	Now            time.Time       `json:"now"`
	Scope          string          `json:"scope"`
	Total          int             `json:"total"`
	Skipped        int             `json:"skipped"`
	Counts         Counts          `json:"counts"`
	Categories     []CategoryCount `json:"categories"`
	Hours          [24]int         `json:"hours"`
	Top3           []QuestionCount `json:"top3"`
	Top10          []QuestionCount `json:"top10"`
	ConversionRate float64         `json:"conversion_rate"`
}

// Options controls which records feed the histograms and ranking.
type Options struct {
	// Scope bounds the category histogram. Hours and the question ranking
	// cover every record; window counts and the conversion rate have fixed
	// windows of their own.
	Scope model.Window
}

// DefaultOptions scopes the category histogram to the trailing month.
func DefaultOptions() Options {
	return Options{Scope: model.Month}
}

// Compute aggregates records relative to now. Records may be in any order.
func Compute(records []model.LogRecord, now time.Time, opts Options) Stats {
	st := Stats{
		Now:   now,
		Scope: opts.Scope.String(),
		Total: len(records),
	}

	categories := make(map[classifier.Category]int)
	rank := newRanking()
	var monthTotal, hits int

	for _, r := range records {
		if model.Today.Contains(r.Timestamp, now) {
			st.Counts.Today++
		}
		if model.Week.Contains(r.Timestamp, now) {
			st.Counts.Week++
		}
		inMonth := model.Month.Contains(r.Timestamp, now)
		if inMonth {
			st.Counts.Month++
			monthTotal++
			if classifier.ContainsAny(r.Question(), ConversionKeywords) {
				hits++
			}
		}

		st.Hours[r.Timestamp.In(now.Location()).Hour()]++
		rank.add(r.Question())
		if opts.Scope.Contains(r.Timestamp, now) {
			categories[classifier.Classify(r.UserText)]++
		}
	}

	for _, c := range classifier.Categories() {
		if n := categories[c]; n > 0 {
			st.Categories = append(st.Categories, CategoryCount{Category: c, Count: n})
		}
	}
	st.Top10 = rank.top(10)
	st.Top3 = truncate(st.Top10, 3)
	st.ConversionRate = ConversionRate(hits, monthTotal)
	return st
}

// ConversionRate returns hits/total as a percentage rounded to one decimal.
// It is zero when total is zero.
func ConversionRate(hits, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(hits)/float64(total)*1000) / 10
}

// Category returns the count for c, or zero.
func (s Stats) Category(c classifier.Category) int {
	for _, cc := range s.Categories {
		if cc.Category == c {
			return cc.Count
		}
	}
	return 0
}

func truncate(qs []QuestionCount, n int) []QuestionCount {
	if len(qs) > n {
		qs = qs[:n]
	}
	out := make([]QuestionCount, len(qs))
	copy(out, qs)
	return out
}
