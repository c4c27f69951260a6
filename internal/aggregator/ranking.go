package aggregator

import "sort"

// ranking counts distinct questions and remembers the order they first appeared
// so equal counts rank deterministically.
type ranking struct {
	index  map[string]int
	counts []QuestionCount
}

func newRanking() *ranking {
	return &ranking{index: make(map[string]int)}
}

func (r *ranking) add(q string) {
	if q == "" {
		return
	}
	if i, ok := r.index[q]; ok {
		r.counts[i].Count++
		return
	}
	r.index[q] = len(r.counts)
	r.counts = append(r.counts, QuestionCount{Question: q, Count: 1})
}

// top returns the n most frequent questions, ties in first-seen order.
func (r *ranking) top(n int) []QuestionCount {
	sorted := make([]QuestionCount, len(r.counts))
	copy(sorted, r.counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
