package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/MattLee479/UpdatedWebsite2/internal/logstore"
	"github.com/MattLee479/UpdatedWebsite2/internal/parser"
)

// Source provides parsed records along with the log revision they came from.
type Source interface {
	Revision() (logstore.Revision, error)
	Records(ctx context.Context) (*parser.Result, logstore.Revision, error)
}

// Cache holds the last computed Stats and reuses them while the log revision
// and the calendar date are unchanged.
type Cache struct {
	src  Source
	opts Options

	mu     sync.RWMutex
	valid  bool
	rev    logstore.Revision
	day    time.Time
	result *parser.Result
	stats  Stats
}

// NewCache creates a Cache over src.
func NewCache(src Source, opts Options) *Cache {
	return &Cache{src: src, opts: opts}
}

// Get returns stats and the records they were computed from. On a read error
// the previous snapshot, if any, is returned together with the error.
func (c *Cache) Get(ctx context.Context, now time.Time) (Stats, *parser.Result, error) {
	rev, err := c.src.Revision()
	if err != nil {
		return c.fallback(err)
	}
	day := dayOf(now)

	c.mu.RLock()
	if c.valid && c.rev.Equal(rev) && c.day.Equal(day) {
		st, res := c.stats, c.result
		c.mu.RUnlock()
		st.Now = now
		return st, res, nil
	}
	c.mu.RUnlock()

	res, rev, err := c.src.Records(ctx)
	if err != nil {
		return c.fallback(err)
	}
	st := Compute(res.Records, now, c.opts)
	st.Skipped = res.Skipped

	c.mu.Lock()
	c.valid = true
	c.rev = rev
	c.day = day
	c.result = res
	c.stats = st
	c.mu.Unlock()
	return st, res, nil
}

// Invalidate forces the next Get to re-read the log.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

func (c *Cache) fallback(err error) (Stats, *parser.Result, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.result == nil {
		return Stats{Scope: c.opts.Scope.String()}, &parser.Result{}, err
	}
	return c.stats, c.result, err
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
