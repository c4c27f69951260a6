package dashboard

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/MattLee479/UpdatedWebsite2/internal/classifier"
	"github.com/MattLee479/UpdatedWebsite2/internal/parser"
)

// Chart is the single-pass chart data: every User: line is classified and
// ranked, and every header line contributes its hour. Entries are not
// assembled, so the two sides are counted independently.
type Chart struct {
	Categories map[string]int `json:"categories"`
	Hours      map[int]int    `json:"hours"`
	Questions  []Bucket       `json:"questions"`
}

type chartBuilder struct {
	chart  Chart
	order  []string
	counts map[string]int
}

func (b *chartBuilder) OnUser(text string) {
	b.chart.Categories[string(classifier.Classify(text))]++
	q := strings.ToLower(text)
	if q == "" {
		return
	}
	if _, ok := b.counts[q]; !ok {
		b.order = append(b.order, q)
	}
	b.counts[q]++
}

func (b *chartBuilder) OnTimestamp(ts time.Time) {
	b.chart.Hours[ts.Hour()]++
}

// ChartData streams the log once and returns category, hour and top-10
// question counts. A nil reader means a missing log.
func ChartData(r io.Reader) (Chart, error) {
	b := &chartBuilder{
		chart: Chart{
			Categories: make(map[string]int),
			Hours:      make(map[int]int),
			Questions:  []Bucket{},
		},
		counts: make(map[string]int),
	}
	if r == nil {
		return b.chart, nil
	}
	if err := parser.ScanLines(r, b); err != nil {
		return b.chart, err
	}
	b.chart.Questions = topBuckets(b.order, b.counts, 10)
	return b.chart, nil
}

func topBuckets(order []string, counts map[string]int, n int) []Bucket {
	out := make([]Bucket, 0, len(order))
	for _, q := range order {
		out = append(out, Bucket{Label: q, Count: counts[q]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
