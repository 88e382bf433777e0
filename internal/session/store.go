// Package session keeps the per-session question/answer transcript.
// Transcripts are display-only history for the client; they are never
// included in prompts and do not survive a restart.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"candleboard/pkg/errors"
)

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one line of the transcript.
type Entry struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Store holds in-memory session transcripts.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]Entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string][]Entry),
	}
}

// Create opens a new session and returns its ID.
func (s *Store) Create() string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = nil
	return id
}

// Append adds an entry to a session, creating the session if the ID is
// unknown (a client may present an ID from before a restart).
func (s *Store) Append(id string, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = append(s.sessions[id], Entry{
		Role:    role,
		Content: content,
		At:      time.Now(),
	})
}

// Transcript returns a copy of the session's entries.
func (s *Store) Transcript(id string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.sessions[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "session %s", id)
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}
