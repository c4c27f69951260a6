package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/MattLee479/UpdatedWebsite2/internal/aggregator"
	"github.com/MattLee479/UpdatedWebsite2/internal/dashboard"
	"github.com/MattLee479/UpdatedWebsite2/internal/model"
	"github.com/MattLee479/UpdatedWebsite2/internal/query"
)

func samplePayload() dashboard.Payload {
	return dashboard.Payload{
		GeneratedAt:    time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC),
		Counts:         aggregator.Counts{Today: 1, Week: 3, Month: 4},
		Top3:           []aggregator.QuestionCount{{Question: "what's the cost?", Count: 2}},
		Top10:          []aggregator.QuestionCount{{Question: "what's the cost?", Count: 2}},
		ConversionRate: 50,
		Categories:     []dashboard.Bucket{{Label: "pricing", Count: 2}, {Label: "other", Count: 2}},
		Hours:          []dashboard.Bucket{{Label: "09:00", Count: 4}},
		Total:          4,
		Skipped:        1,
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewJSONRenderer(&buf)

	if err := renderer.Render(samplePayload()); err != nil {
		t.Fatal(err)
	}

	var got dashboard.Payload
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, buf.String())
	}
	if got.Counts.Month != 4 {
		t.Errorf("expected month 4, got %d", got.Counts.Month)
	}
	if got.ConversionRate != 50 {
		t.Errorf("expected conversion 50, got %v", got.ConversionRate)
	}
	if len(got.Categories) != 2 || got.Categories[0].Label != "pricing" {
		t.Errorf("unexpected categories %v", got.Categories)
	}
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer

	if err := New("text", &buf).Render(samplePayload()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"what's the cost?", "50.0%", "pricing", "09:00", "4 (1 skipped)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTextRendererFilteredListing(t *testing.T) {
	p := dashboard.Payload{
		Filter: "unanswered",
		Logs:   []query.Entry{{Timestamp: "2026-02-17 12:00:00", Route: "OpenAI", User: "hello", Bot: "ok"}},
	}
	var buf bytes.Buffer

	if err := NewTextRenderer(&buf).Render(p); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "Log (unanswered)") || !strings.Contains(out, "User: hello") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "Top questions") {
		t.Error("filtered view should not print aggregate sections")
	}
}

func TestRenderRecord(t *testing.T) {
	rec := model.LogRecord{
		Timestamp: time.Date(2026, 2, 17, 12, 30, 0, 0, time.UTC),
		Route:     model.RouteFallback,
		UserText:  "refund my order",
		BotText:   "Sorry, something went wrong on our side.",
	}

	var text bytes.Buffer
	if err := NewTextRenderer(&text).RenderRecord(rec); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text.String(), "refunds") || !strings.Contains(text.String(), "12:30:00") {
		t.Errorf("unexpected text output %q", text.String())
	}

	var js bytes.Buffer
	if err := NewJSONRenderer(&js).RenderRecord(rec); err != nil {
		t.Fatal(err)
	}
	var got struct {
		UserText string `json:"user_text"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal(js.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", js.String(), err)
	}
	if got.UserText != "refund my order" || got.Category != "refunds" {
		t.Errorf("unexpected %+v", got)
	}
}
