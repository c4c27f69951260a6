package tailer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"
)

// Position is how far a log has been consumed.
type Position struct {
	Offset    int64     `json:"offset"`
	UpdatedAt time.Time `json:"updated_at"`
}

type checkpointData struct {
	Positions map[string]Position `json:"positions"`
}

// Checkpoint persists consumed offsets so following can resume after a restart.
type Checkpoint struct {
	mu   sync.RWMutex
	path string
	data checkpointData
}

// NewCheckpoint loads the checkpoint at path, starting empty when the file is
// missing. A corrupt file is an error so offsets are never silently reset.
func NewCheckpoint(path string) (*Checkpoint, error) {
	c := &Checkpoint{
		path: path,
		data: checkpointData{Positions: make(map[string]Position)},
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	if err := json.Unmarshal(raw, &c.data); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", path, err)
	}
	if c.data.Positions == nil {
		c.data.Positions = make(map[string]Position)
	}
	return c, nil
}

// Get returns the saved offset for a log path.
func (c *Checkpoint) Get(path string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.data.Positions[path]
	return p.Offset, ok
}

// Set records the consumed offset for a log path.
func (c *Checkpoint) Set(path string, offset int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Positions[path] = Position{Offset: offset, UpdatedAt: time.Now().UTC()}
}

// Save writes the checkpoint via a temp file and rename.
func (c *Checkpoint) Save() error {
	c.mu.RLock()
	raw, err := json.MarshalIndent(c.data, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return os.Rename(tmp, c.path)
}
