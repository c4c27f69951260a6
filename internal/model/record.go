package model

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the fixed timestamp shape used inside the square brackets of an entry header.
const TimeLayout = "2006-01-02 15:04:05"

// Route tags written by the chat handlers.
const (
	RouteModel    = "OpenAI"
	RouteBlocked  = "Blocked"
	RouteIdentity = "Identity"
	RouteFallback = "Fallback"
	RouteUnknown  = "unknown"
)

// LogRecord represents a single parsed chat exchange.
type LogRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Route     string    `json:"route"`
	UserText  string    `json:"user_text"`
	BotText   string    `json:"bot_text"`
	Raw       string    `json:"raw"` // entry text as found in the log
}

// Question returns the normalized form used for ranking and keyword matching.
func (r LogRecord) Question() string {
	return strings.ToLower(strings.TrimSpace(r.UserText))
}

// Format serializes a record into the flat log representation, including the
// trailing blank line that delimits entries.
func Format(r LogRecord) string {
	route := r.Route
	if route == "" {
		route = RouteUnknown
	}
	return fmt.Sprintf("[%s] | Route: %s\nUser: %s\nBot: %s\n\n",
		r.Timestamp.Format(TimeLayout), route, FirstLine(r.UserText), FirstLine(r.BotText))
}

// FirstLine truncates s at its first line break. The log format cannot carry
// multi-line fields.
func FirstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
