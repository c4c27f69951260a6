// Package logstore reads and appends the flat chat log.
package logstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/MattLee479/UpdatedWebsite2/internal/model"
	"github.com/MattLee479/UpdatedWebsite2/internal/parser"
)

// ErrNotFound is returned by Open when the log has not been written yet.
var ErrNotFound = errors.New("log file not found")

// Revision identifies a version of the log file. The zero value means the
// file does not exist.
type Revision struct {
	Size    int64
	ModTime time.Time
}

// IsZero reports whether the revision describes a missing file.
func (r Revision) IsZero() bool {
	return r.Size == 0 && r.ModTime.IsZero()
}

// Equal reports whether both revisions describe the same file contents.
func (r Revision) Equal(o Revision) bool {
	return r.Size == o.Size && r.ModTime.Equal(o.ModTime)
}

// Snapshot is the whole log as read in a single pass.
type Snapshot struct {
	Data     []byte
	Revision Revision
}

// Store is an append-only log file. Reads never lock; appends from this
// process are serialized so each entry lands in one write.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a Store for the file at path. The file need not exist.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the log file location.
func (s *Store) Path() string {
	return s.path
}

// Revision stats the log without reading it.
func (s *Store) Revision() (Revision, error) {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Revision{}, nil
	}
	if err != nil {
		return Revision{}, fmt.Errorf("stat %s: %w", s.path, err)
	}
	return revisionOf(info), nil
}

// Snapshot reads the whole file at once. A missing file yields an empty
// snapshot.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Snapshot{}, fmt.Errorf("stat %s: %w", s.path, err)
	}
	// Bytes appended after the stat are left for the next snapshot.
	data, err := io.ReadAll(io.LimitReader(f, info.Size()))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return Snapshot{Data: data, Revision: revisionOf(info)}, nil
}

// Records parses a fresh snapshot.
func (s *Store) Records(ctx context.Context) (*parser.Result, Revision, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return &parser.Result{}, Revision{}, err
	}
	return parser.ParseBytes(snap.Data), snap.Revision, nil
}

// Append writes one whole entry to the end of the log, creating it if needed.
func (s *Store) Append(ctx context.Context, rec model.LogRecord) error {
	return s.appendEntry(ctx, model.Format(rec))
}

// AppendFeedback writes one feedback entry. Feedback lives in its own Store.
func (s *Store) AppendFeedback(ctx context.Context, fb model.Feedback) error {
	return s.appendEntry(ctx, model.FormatFeedback(fb))
}

func (s *Store) appendEntry(ctx context.Context, entry string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", s.path, err)
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", s.path, err)
	}
	return f.Close()
}

// Open returns the raw log for download. The caller closes it.
func (s *Store) Open() (*os.File, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	return f, nil
}

func revisionOf(info fs.FileInfo) Revision {
	return Revision{Size: info.Size(), ModTime: info.ModTime()}
}
