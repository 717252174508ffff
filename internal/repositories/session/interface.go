package session

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/groupforge/keystone/internal/repositories/session Repository

import (
	"context"

	"github.com/groupforge/keystone/internal/models"
)

// Repository owns the keyed collection of live sessions. All mutations
// to one session go through WithSession, which linearizes them; sessions
// are independent and mutate in parallel.
type Repository interface {
	// PutSession registers a session under its ID
	PutSession(ctx context.Context, input *PutSessionInput) error

	// GetSession returns a snapshot of a session by ID
	GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error)

	// WithSession acquires exclusive access to one session, applies the
	// mutator and persists the result. A mutator error leaves the stored
	// session unchanged.
	WithSession(ctx context.Context, input *WithSessionInput) error

	// ListSessions returns snapshots of every registered session
	ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error)

	// DeleteSession removes a session, serializing with in-flight mutations
	DeleteSession(ctx context.Context, input *DeleteSessionInput) error
}
