// Package classifier buckets user utterances into topical categories.
package classifier

import "strings"

// Category is a topical bucket label.
type Category string

const (
	Pricing Category = "pricing"
	Support Category = "support"
	Refunds Category = "refunds"
	Hours   Category = "hours"
	Contact Category = "contact"
	Other   Category = "other"
)

// Rule pairs a category with its trigger substrings.
type Rule struct {
	Category Category
	Triggers []string
}

// Rules is evaluated top to bottom; the first rule with a matching trigger wins.
var Rules = []Rule{
	{Pricing, []string{"price", "quote", "cost"}},
	{Support, []string{"support", "help", "issue", "warranty"}},
	{Refunds, []string{"refund", "return"}},
	{Hours, []string{"opening", "hours", "times"}},
	{Contact, []string{"contact", "email", "phone"}},
}

// Classify returns the category for text. Matching is case-insensitive.
func Classify(text string) Category {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return Other
	}
	for _, r := range Rules {
		if ContainsAny(lower, r.Triggers) {
			return r.Category
		}
	}
	return Other
}

// Categories lists every label in evaluation order, ending with Other.
func Categories() []Category {
	out := make([]Category, 0, len(Rules)+1)
	for _, r := range Rules {
		out = append(out, r.Category)
	}
	return append(out, Other)
}

// ContainsAny reports whether s contains any of the substrings.
func ContainsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
