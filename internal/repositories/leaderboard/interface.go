package leaderboard

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/groupforge/keystone/internal/repositories/leaderboard Repository

import (
	"context"
)

// Repository persists per-guild host and participant run tallies. These
// outlive sessions, which are themselves in-memory only.
type Repository interface {
	// RecordHost credits a creator with one hosted run
	RecordHost(ctx context.Context, input *RecordHostInput) error

	// RecordParticipant credits a player with one joined run
	RecordParticipant(ctx context.Context, input *RecordParticipantInput) error

	// GetTopHosts returns the highest host tallies for a guild
	GetTopHosts(ctx context.Context, input *GetTopHostsInput) (*GetTopHostsOutput, error)

	// GetTopParticipants returns the highest participant tallies for a guild
	GetTopParticipants(ctx context.Context, input *GetTopParticipantsInput) (*GetTopParticipantsOutput, error)
}
