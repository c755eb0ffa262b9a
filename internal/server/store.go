package server

import (
	"errors"
	"sort"
	"sync"
	"time"

	"sketch-guess/internal/game"

	"github.com/google/uuid"
)

var (
	errSessionNotFound = errors.New("session not found")
	errUnknownCommand  = errors.New("unknown command")
)

type storedSession struct {
	session  *game.Session
	lastSeen time.Time
}

// Store holds the live game sessions keyed by id.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*storedSession
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*storedSession),
		now:      time.Now,
	}
}

// Create allocates an id and stores the session built for it.
func (s *Store) Create(build func(id string) *game.Session) (string, *game.Session) {
	id := uuid.NewString()
	session := build(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &storedSession{session: session, lastSeen: s.now()}
	return id, session
}

// Get returns the session and marks it as recently used.
func (s *Store) Get(id string) (*game.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = s.now()
	return entry.session, true
}

// Delete removes and returns the session.
func (s *Store) Delete(id string) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, errSessionNotFound
	}
	delete(s.sessions, id)
	return entry.session, nil
}

// IdleSince lists sessions not used since cutoff.
func (s *Store) IdleSince(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, entry := range s.sessions {
		if entry.lastSeen.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
