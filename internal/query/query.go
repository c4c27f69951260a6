// Package query filters parsed records with named predicates.
package query

import (
	"html"
	"sort"
	"strings"

	"github.com/MattLee479/UpdatedWebsite2/internal/classifier"
	"github.com/MattLee479/UpdatedWebsite2/internal/model"
)

// Predicate selects records.
type Predicate func(model.LogRecord) bool

var (
	quoteTerms      = []string{"quote", "price", "cost", "estimate"}
	nonAnswerPhrase = []string{"sorry", "not sure", "please contact", "feel free to ask"}
)

// minAnswerLen is the shortest trimmed reply not treated as a non-answer.
const minAnswerLen = 5

// Quote matches user text asking about prices.
func Quote(r model.LogRecord) bool {
	return classifier.ContainsAny(strings.ToLower(r.UserText), quoteTerms)
}

// Unanswered matches replies that look like a non-answer. The heuristic is
// loose: any apology or referral counts, as does a very short reply.
func Unanswered(r model.LogRecord) bool {
	bot := strings.ToLower(strings.TrimSpace(r.BotText))
	return classifier.ContainsAny(bot, nonAnswerPhrase) || len([]rune(bot)) < minAnswerLen
}

func all(model.LogRecord) bool { return true }

var registry = map[string]Predicate{
	"quote":      Quote,
	"unanswered": Unanswered,
}

// Lookup returns the predicate registered under name. The empty name and
// "all" select every record.
func Lookup(name string) (Predicate, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "all" {
		return all, true
	}
	p, ok := registry[name]
	return p, ok
}

// Names lists the registered predicate names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Entry is one rendered log listing row.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Route     string `json:"route"`
	User      string `json:"user"`
	Bot       string `json:"bot"`
	Text      string `json:"text"`
	HTML      string `json:"html"`
}

// Render formats a record for listings. HTML is escaped and uses <br> for
// line breaks.
func Render(r model.LogRecord) Entry {
	text := r.Raw
	if text == "" {
		text = strings.TrimRight(model.Format(r), "\n")
	}
	return Entry{
		Timestamp: r.Timestamp.Format(model.TimeLayout),
		Route:     r.Route,
		User:      r.UserText,
		Bot:       r.BotText,
		Text:      text,
		HTML:      strings.ReplaceAll(html.EscapeString(text), "\n", "<br>"),
	}
}

// Filter renders the records matching the named predicate in log order.
// An unknown name yields no entries.
func Filter(records []model.LogRecord, name string) []Entry {
	p, ok := Lookup(name)
	if !ok {
		return []Entry{}
	}
	return Select(records, p)
}

// Select renders the records matching p in log order.
func Select(records []model.LogRecord, p Predicate) []Entry {
	out := []Entry{}
	for _, r := range records {
		if p(r) {
			out = append(out, Render(r))
		}
	}
	return out
}
