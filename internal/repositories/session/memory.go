package session

import (
	"context"
	"errors"
	"sync"

	"github.com/groupforge/keystone/internal/models"
)

// ErrSessionNotFound is returned when a session is absent or expired
var ErrSessionNotFound = errors.New("session not found")

// Config holds configuration for the in-memory session repository
type Config struct {
}

// entry pairs a session with the lock that linearizes its mutations
type entry struct {
	mu      sync.Mutex
	session *models.Session
	deleted bool
}

// memoryRepository implements Repository with an in-process map.
// Session state is ephemeral by design: it does not survive a restart.
type memoryRepository struct {
	mu      sync.RWMutex // guards the map, never held during a mutator
	entries map[string]*entry
}

// NewMemory creates a new in-memory session repository
func NewMemory(cfg *Config) (*memoryRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	return &memoryRepository{
		entries: make(map[string]*entry),
	}, nil
}

// PutSession registers a session under its ID
func (r *memoryRepository) PutSession(ctx context.Context, input *PutSessionInput) error {
	if input == nil || input.Session == nil {
		return errors.New("input and session cannot be nil")
	}

	if input.Session.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[input.Session.ID] = &entry{session: input.Session.Clone()}
	return nil
}

// GetSession returns a snapshot of a session by ID. A session whose
// deadline has passed but which the sweeper has not yet retired is
// still returned; expiry is enforced by WithSession and by the
// services' mutators, not by reads.
func (r *memoryRepository) GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	e := r.lookup(input.SessionID)
	if e == nil {
		return nil, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return nil, ErrSessionNotFound
	}

	return e.session.Clone(), nil
}

// WithSession applies the mutator under the session's exclusive lock.
// The mutator runs against a copy; the copy replaces the stored session
// only when the mutator returns nil, so a failed mutation is invisible.
func (r *memoryRepository) WithSession(ctx context.Context, input *WithSessionInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	if input.Mutate == nil {
		return errors.New("mutate func cannot be nil")
	}

	e := r.lookup(input.SessionID)
	if e == nil {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return ErrSessionNotFound
	}

	if e.session.Status == models.SessionStatusExpired {
		return ErrSessionNotFound
	}

	work := e.session.Clone()
	if err := input.Mutate(work); err != nil {
		return err
	}

	e.session = work
	return nil
}

// ListSessions returns snapshots of every registered session
func (r *memoryRepository) ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	r.mu.RLock()
	all := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		all = append(all, e)
	}
	r.mu.RUnlock()

	sessions := make([]*models.Session, 0, len(all))
	for _, e := range all {
		e.mu.Lock()
		if !e.deleted {
			sessions = append(sessions, e.session.Clone())
		}
		e.mu.Unlock()
	}

	return &ListSessionsOutput{Sessions: sessions}, nil
}

// DeleteSession removes a session. Taking the entry lock first means a
// mutation already in flight finishes before the session disappears, and
// any mutation that raced the delete observes the deleted flag.
func (r *memoryRepository) DeleteSession(ctx context.Context, input *DeleteSessionInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	e := r.lookup(input.SessionID)
	if e == nil {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	alreadyDeleted := e.deleted
	e.deleted = true
	e.mu.Unlock()

	if alreadyDeleted {
		return ErrSessionNotFound
	}

	r.mu.Lock()
	delete(r.entries, input.SessionID)
	r.mu.Unlock()

	return nil
}

// lookup fetches an entry without holding the map lock afterwards
func (r *memoryRepository) lookup(id string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id]
}
