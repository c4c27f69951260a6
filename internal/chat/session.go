package chat

import (
	"sync"

	"github.com/google/uuid"
)

// historyTurns is how many prior exchanges are sent with each completion.
const historyTurns = 5

// Turn is one completed exchange.
type Turn struct {
	User string
	Bot  string
}

// Sessions keeps per-session conversation history in memory.
type Sessions struct {
	mu   sync.Mutex
	byID map[string][]Turn
}

// NewSessions returns an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{byID: make(map[string][]Turn)}
}

// Resolve returns id if it is a valid session id, or a new one otherwise.
func (s *Sessions) Resolve(id string) string {
	if _, err := uuid.Parse(id); err == nil {
		return id
	}
	return uuid.NewString()
}

// History returns the most recent turns for id, oldest first.
func (s *Sessions) History(id string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := s.byID[id]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Record appends a turn, keeping only the window sent to the model.
func (s *Sessions) Record(id string, t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append(s.byID[id], t)
	if len(turns) > historyTurns {
		turns = turns[len(turns)-historyTurns:]
	}
	s.byID[id] = turns
}
