package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MattLee479/UpdatedWebsite2/internal/classifier"
	"github.com/MattLee479/UpdatedWebsite2/internal/dashboard"
	"github.com/MattLee479/UpdatedWebsite2/internal/model"
)

// Renderer writes dashboard payloads and single exchanges to an output stream.
type Renderer interface {
	Render(p dashboard.Payload) error
	RenderRecord(r model.LogRecord) error
}

// New returns the renderer for format ("text" or "json") writing to w.
func New(format string, w io.Writer) Renderer {
	if strings.EqualFold(format, "json") {
		return NewJSONRenderer(w)
	}
	return NewTextRenderer(w)
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal report)
// ---------------------------------------------------------------------------

const barWidth = 30

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleSection = lipgloss.NewStyle().Bold(true).Underline(true)
	styleLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	styleValue   = lipgloss.NewStyle().Bold(true)
	styleBar     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleRate    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleRoute   = map[string]lipgloss.Style{
		model.RouteBlocked:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		model.RouteFallback: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		model.RouteIdentity: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Faint(true),
	}
)

// TextRenderer prints a human-readable report.
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer returns a Renderer that writes colorized text to w, or
// stdout when w is nil.
func NewTextRenderer(w io.Writer) *TextRenderer {
	if w == nil {
		w = os.Stdout
	}
	return &TextRenderer{w: w}
}

func (r *TextRenderer) Render(p dashboard.Payload) error {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Chat activity") + "  " + p.GeneratedAt.Format(model.TimeLayout) + "\n")
	if p.Error != "" {
		b.WriteString(styleWarn.Render("error: "+p.Error) + "\n")
	}

	if p.Filter == "" {
		b.WriteString("\n" + styleSection.Render("Volume") + "\n")
		row(&b, "today", fmt.Sprint(p.Counts.Today))
		row(&b, "week", fmt.Sprint(p.Counts.Week))
		row(&b, "month", fmt.Sprint(p.Counts.Month))
		row(&b, "conversion", styleRate.Render(fmt.Sprintf("%.1f%%", p.ConversionRate)))
		row(&b, "records", fmt.Sprintf("%d (%d skipped)", p.Total, p.Skipped))

		b.WriteString("\n" + styleSection.Render("Top questions") + "\n")
		for i, q := range p.Top10 {
			fmt.Fprintf(&b, "%2d. %-40s %s\n", i+1, clip(q.Question, 40), styleValue.Render(fmt.Sprint(q.Count)))
		}

		b.WriteString("\n" + styleSection.Render("Categories") + "\n")
		bars(&b, p.Categories)
		b.WriteString("\n" + styleSection.Render("Hours") + "\n")
		bars(&b, p.Hours)
	}

	if p.Logs != nil {
		title := "Log"
		if p.Filter != "" {
			title = "Log (" + p.Filter + ")"
		}
		b.WriteString("\n" + styleSection.Render(title) + "\n")
		for _, e := range p.Logs {
			route := e.Route
			if st, ok := styleRoute[route]; ok {
				route = st.Render(route)
			}
			fmt.Fprintf(&b, "%s %s\n  User: %s\n  Bot:  %s\n", e.Timestamp, route, e.User, e.Bot)
		}
		if len(p.Logs) == 0 {
			b.WriteString("(no entries)\n")
		}
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// RenderRecord prints one exchange, tagged with its category.
func (r *TextRenderer) RenderRecord(rec model.LogRecord) error {
	route := rec.Route
	if st, ok := styleRoute[route]; ok {
		route = st.Render(route)
	}
	cat := styleLabel.Render(string(classifier.Classify(rec.UserText)))
	_, err := fmt.Fprintf(r.w, "%s %s %s\n  User: %s\n  Bot:  %s\n",
		rec.Timestamp.Format("15:04:05"), cat, route, rec.UserText, rec.BotText)
	return err
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(styleLabel.Render(label) + styleValue.Render(value) + "\n")
}

func bars(b *strings.Builder, buckets []dashboard.Bucket) {
	max := 0
	for _, bk := range buckets {
		if bk.Count > max {
			max = bk.Count
		}
	}
	for _, bk := range buckets {
		n := bk.Count * barWidth / max
		if n == 0 {
			n = 1
		}
		b.WriteString(styleLabel.Render(bk.Label) + styleBar.Render(strings.Repeat("█", n)) + " " + fmt.Sprint(bk.Count) + "\n")
	}
}

func clip(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each payload as a single JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON lines to w, or stdout
// when w is nil.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	if w == nil {
		w = os.Stdout
	}
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONRenderer) Render(p dashboard.Payload) error {
	return r.enc.Encode(p)
}

func (r *JSONRenderer) RenderRecord(rec model.LogRecord) error {
	return r.enc.Encode(struct {
		model.LogRecord
		Category classifier.Category `json:"category"`
	}{rec, classifier.Classify(rec.UserText)})
}
