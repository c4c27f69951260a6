package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// LineHandler receives the fields recognized by ScanLines.
type LineHandler interface {
	OnUser(text string)
	OnTimestamp(ts time.Time)
}

// ScanLines walks the log one physical line at a time without assembling
// entries. Lines containing a "User:" marker and '['-prefixed timestamp lines
// are reported independently, so a handler sees a user line even when its
// header is missing. Memory use is bounded by the longest line.
func ScanLines(r io.Reader, h LineHandler) error {
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if len(raw) > 0 {
			scanLine(strings.ToValidUTF8(raw, "\uFFFD"), h)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("scan log: %w", err)
		}
	}
}

func scanLine(line string, h LineHandler) {
	if i := strings.Index(line, "User:"); i >= 0 {
		h.OnUser(strings.TrimSpace(line[i+len("User:"):]))
	}
	if strings.HasPrefix(line, "[") {
		if end := strings.IndexByte(line, ']'); end > 0 {
			if ts, ok := parseTimestamp(line[1:end]); ok {
				h.OnTimestamp(ts)
			}
		}
	}
}
