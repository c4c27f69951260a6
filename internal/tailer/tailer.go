// Package tailer follows the chat log and emits exchanges as they are appended.
package tailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MattLee479/UpdatedWebsite2/internal/model"
	"github.com/MattLee479/UpdatedWebsite2/internal/parser"
	"github.com/MattLee479/UpdatedWebsite2/internal/pkg/logger"
	"github.com/MattLee479/UpdatedWebsite2/internal/watcher"
)

// An entry ends at a blank line, written with either line ending.
var entryDelimiters = [][]byte{[]byte("\n\n"), []byte("\n\r\n")}

// Tailer reads newly appended bytes from one log file and emits each entry
// once its terminating blank line has been written.
type Tailer struct {
	path   string
	events <-chan watcher.Event
	ckpt   *Checkpoint
	out    chan model.LogRecord
	log    *logger.Logger

	offset  int64  // bytes consumed from the file
	pending []byte // bytes read past the last complete entry
	skipped int
}

// New creates a Tailer for path driven by change events. Without a checkpoint
// entry it starts at the end of the file, or at the start when fromStart is set.
func New(path string, events <-chan watcher.Event, ckpt *Checkpoint, fromStart bool, log *logger.Logger) *Tailer {
	t := &Tailer{
		path:   path,
		events: events,
		ckpt:   ckpt,
		out:    make(chan model.LogRecord, 256),
		log:    log.WithComponent("tailer"),
	}
	if off, ok := ckpt.Get(path); ok {
		t.offset = off
	} else if !fromStart {
		if info, err := os.Stat(path); err == nil {
			t.offset = info.Size()
		}
	}
	return t
}

// Records returns the channel parsed entries are sent on.
func (t *Tailer) Records() <-chan model.LogRecord {
	return t.out
}

// Skipped returns how many malformed entries were dropped so far. Only valid
// after Start has returned.
func (t *Tailer) Skipped() int {
	return t.skipped
}

// Start processes change events until the context is cancelled or the event
// channel closes. Records is closed on return.
func (t *Tailer) Start(ctx context.Context) {
	defer close(t.out)
	defer t.saveCheckpoint()

	saveTicker := time.NewTicker(5 * time.Second)
	defer saveTicker.Stop()

	// Catch up with anything written since the checkpoint.
	if !t.readNew(ctx) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-t.events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				// Rotated away; the replacement is read from its start.
				t.reset()
				continue
			}
			if !t.readNew(ctx) {
				return
			}
		case <-saveTicker.C:
			t.saveCheckpoint()
		}
	}
}

// readNew reads from the current position to EOF and emits complete entries.
// It reports false when the context was cancelled mid-send.
func (t *Tailer) readNew(ctx context.Context) bool {
	data, err := t.read()
	if err != nil {
		t.log.WithError(err).Warn("read appended bytes failed")
		return true
	}
	if len(data) == 0 {
		return true
	}
	t.pending = append(t.pending, data...)

	end := completeEnd(t.pending)
	if end < 0 {
		return true
	}

	res := parser.ParseBytes(t.pending[:end])
	t.pending = append([]byte(nil), t.pending[end:]...)
	t.skipped += res.Skipped
	t.ckpt.Set(t.path, t.offset-int64(len(t.pending)))

	for _, r := range res.Records {
		select {
		case t.out <- r:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (t *Tailer) read() ([]byte, error) {
	f, err := os.Open(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() < t.offset {
		// Truncated in place.
		t.reset()
	}
	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", t.path, err)
	}
	data, err := io.ReadAll(io.LimitReader(f, info.Size()-t.offset))
	t.offset += int64(len(data))
	return data, err
}

func (t *Tailer) reset() {
	t.offset = 0
	t.pending = nil
	t.ckpt.Set(t.path, 0)
}

func (t *Tailer) saveCheckpoint() {
	if err := t.ckpt.Save(); err != nil {
		t.log.WithError(err).Warn("checkpoint save failed")
	}
}

// completeEnd returns the offset just past the last blank line in b, or -1.
func completeEnd(b []byte) int {
	end := -1
	for _, d := range entryDelimiters {
		if i := bytes.LastIndex(b, d); i >= 0 && i+len(d) > end {
			end = i + len(d)
		}
	}
	return end
}
