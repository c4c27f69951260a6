package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MattLee479/UpdatedWebsite2/internal/model"
)

const (
	userMarker  = "user:"
	botMarker   = "bot:"
	routeMarker = "Route:"
)

// state tracks where the parser is inside the current entry.
type state int

const (
	awaitingTimestamp state = iota
	awaitingUser
	awaitingBot
	entryComplete
)

func (s state) String() string {
	switch s {
	case awaitingTimestamp:
		return "AwaitingTimestamp"
	case awaitingUser:
		return "AwaitingUser"
	case awaitingBot:
		return "AwaitingBot"
	default:
		return "EntryComplete"
	}
}

// Result holds parsed records and the number of malformed entries that were skipped.
type Result struct {
	Records []model.LogRecord
	Skipped int
}

// Each calls fn for every record in log order until fn returns false.
// It can be called any number of times.
func (r *Result) Each(fn func(model.LogRecord) bool) {
	for _, rec := range r.Records {
		if !fn(rec) {
			return
		}
	}
}

// Parse reads the whole log from r and returns the records it contains.
// Malformed entries are skipped and counted; only read errors are returned.
func Parse(r io.Reader) (*Result, error) {
	p := newEntryParser()
	br := bufio.NewReader(r)
	terminated := true
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			p.feed(line)
			terminated = strings.HasSuffix(line, "\n")
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			p.finish()
			return p.result, fmt.Errorf("read log: %w", err)
		}
	}
	if !terminated {
		p.dropTorn()
	}
	p.finish()
	return p.result, nil
}

// ParseBytes parses an in-memory log snapshot. It never fails.
func ParseBytes(data []byte) *Result {
	res, _ := Parse(bytes.NewReader(data))
	return res
}

// entryParser is a line-driven state machine over blank-line delimited entries.
type entryParser struct {
	state  state
	result *Result
	cur    pending
}

type pending struct {
	lines   []string
	ts      time.Time
	tsOK    bool
	route   string
	user    string
	hasUser bool
	bot     string
}

func newEntryParser() *entryParser {
	return &entryParser{result: &Result{}}
}

func (p *entryParser) feed(raw string) {
	line := strings.TrimRight(strings.ToValidUTF8(raw, "\uFFFD"), " \t\r\n")
	trimmed := strings.TrimSpace(line)

	if trimmed == "" {
		p.finish()
		return
	}

	// A header line while an entry is open starts a new entry even without
	// the blank delimiter.
	if p.state != awaitingTimestamp && strings.HasPrefix(trimmed, "[") {
		if _, _, ok := parseHeader(trimmed); ok {
			p.finish()
		}
	}

	p.cur.lines = append(p.cur.lines, line)

	switch p.state {
	case awaitingTimestamp:
		p.cur.ts, p.cur.route, p.cur.tsOK = parseHeader(trimmed)
		p.state = awaitingUser
		if !p.cur.tsOK {
			// The line may itself be the user line of a header-less entry.
			p.matchUser(trimmed)
		}
	case awaitingUser:
		if !p.matchUser(trimmed) {
			if text, ok := cutMarker(trimmed, botMarker); ok {
				p.cur.bot = text
			}
		}
	case awaitingBot:
		if text, ok := cutMarker(trimmed, botMarker); ok {
			p.cur.bot = text
			p.state = entryComplete
		}
	case entryComplete:
		// continuation lines of the bot reply are not part of the record
	}
}

func (p *entryParser) matchUser(line string) bool {
	text, ok := cutMarker(line, userMarker)
	if !ok {
		return false
	}
	p.cur.user = text
	p.cur.hasUser = true
	p.state = awaitingBot
	return true
}

// dropTorn discards the open entry when the log ends without a final line
// break. Writers append whole entries, so this is a partial append whatever
// field it stopped in.
func (p *entryParser) dropTorn() {
	p.cur.hasUser = false
}

// finish closes the open entry, materializing it or counting it as skipped.
func (p *entryParser) finish() {
	defer func() {
		p.cur = pending{}
		p.state = awaitingTimestamp
	}()

	if len(p.cur.lines) == 0 {
		return
	}
	if !p.cur.tsOK || !p.cur.hasUser {
		p.result.Skipped++
		return
	}
	p.result.Records = append(p.result.Records, model.LogRecord{
		Timestamp: p.cur.ts,
		Route:     p.cur.route,
		UserText:  p.cur.user,
		BotText:   p.cur.bot,
		Raw:       strings.Join(p.cur.lines, "\n"),
	})
}

// parseHeader extracts the timestamp between the first '[' and the first ']'
// and the route tag that follows it.
func parseHeader(line string) (time.Time, string, bool) {
	open := strings.IndexByte(line, '[')
	end := strings.IndexByte(line, ']')
	if open < 0 || end < open {
		return time.Time{}, "", false
	}
	ts, ok := parseTimestamp(line[open+1 : end])
	if !ok {
		return time.Time{}, "", false
	}

	route := model.RouteUnknown
	if i := strings.Index(line[end:], routeMarker); i >= 0 {
		if r := strings.TrimSpace(line[end+i+len(routeMarker):]); r != "" {
			route = r
		}
	}
	return ts, route, true
}

func parseTimestamp(s string) (time.Time, bool) {
	ts, err := time.ParseInLocation(model.TimeLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// cutMarker matches a case-insensitive field marker at the start of line and
// returns the trimmed remainder.
func cutMarker(line, marker string) (string, bool) {
	if len(line) < len(marker) || !strings.EqualFold(line[:len(marker)], marker) {
		return "", false
	}
	return strings.TrimSpace(line[len(marker):]), true
}
