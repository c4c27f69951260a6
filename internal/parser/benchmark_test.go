package parser

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/MattLee479/UpdatedWebsite2/internal/model"
)

func buildLog(n int) []byte {
	var b strings.Builder
	base := time.Date(2026, 2, 17, 0, 0, 0, 0, time.Local)
	for i := 0; i < n; i++ {
		b.WriteString(model.Format(model.LogRecord{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Route:     model.RouteModel,
			UserText:  fmt.Sprintf("how much does package %d cost?", i%20),
			BotText:   "Pricing starts at a flat monthly fee.",
		}))
	}
	return []byte(b.String())
}

// BenchmarkParseBytes measures entry parsing throughput.
func BenchmarkParseBytes(b *testing.B) {
	data := buildLog(1000)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ParseBytes(data)
	}
}

type discard struct{}

func (discard) OnUser(string) {}
func (discard) OnTimestamp(time.Time) {}

// BenchmarkScanLines measures the line-oriented pass.
func BenchmarkScanLines(b *testing.B) {
	data := buildLog(1000)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ScanLines(strings.NewReader(string(data)), discard{})
	}
}
