package group

import "context"

// Service defines the interface for dungeon session operations
type Service interface {
	// CreateSession registers a finalized session with the creator
	// pre-assigned into their chosen role
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// GetSession returns a rendering-ready snapshot of a session
	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)

	// FindSession locates the live session a creator hosts in a channel
	FindSession(ctx context.Context, input *FindSessionInput) (*FindSessionOutput, error)

	// ClaimRole maps a raw role-claim signal onto a slot assignment
	ClaimRole(ctx context.Context, input *ClaimRoleInput) (*ClaimRoleOutput, error)

	// ReleaseRole removes a participant from a role; releasing a role
	// not held is a no-op
	ReleaseRole(ctx context.Context, input *ReleaseRoleInput) (*ReleaseRoleOutput, error)

	// UpdateActivity changes the session's dungeon, creator-only
	UpdateActivity(ctx context.Context, input *UpdateActivityInput) (*UpdateActivityOutput, error)

	// UpdateTier changes the session's key level, creator-only
	UpdateTier(ctx context.Context, input *UpdateTierInput) (*UpdateTierOutput, error)

	// UpdateSchedule changes the start time and re-stamps the expiry
	// deadline, creator-only
	UpdateSchedule(ctx context.Context, input *UpdateScheduleInput) (*UpdateScheduleOutput, error)

	// UpdateComment changes the free-text comment, creator-only
	UpdateComment(ctx context.Context, input *UpdateCommentInput) (*UpdateCommentOutput, error)

	// DeleteSession removes a session, creator-only
	DeleteSession(ctx context.Context, input *DeleteSessionInput) (*DeleteSessionOutput, error)

	// SweepExpired retires every session past its deadline
	SweepExpired(ctx context.Context, input *SweepExpiredInput) (*SweepExpiredOutput, error)

	// GetLeaderboard returns the guild's top hosts and participants
	GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error)
}
