package group

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/groupforge/keystone/internal/catalog"
	"github.com/groupforge/keystone/internal/common/clock"
	"github.com/groupforge/keystone/internal/models"
	leaderboardRepo "github.com/groupforge/keystone/internal/repositories/leaderboard"
	sessionRepo "github.com/groupforge/keystone/internal/repositories/session"
)

// Config contains configuration for the group service
type Config struct {
	// SessionRepo stores live sessions
	SessionRepo sessionRepo.Repository

	// LeaderboardRepo persists host/participant tallies
	LeaderboardRepo leaderboardRepo.Repository

	// Catalog is the activity and tier lists sessions choose from
	Catalog *catalog.Catalog

	// Clock supplies the current time
	Clock clock.Clock

	// Logger is the structured logger for session events
	Logger zerolog.Logger

	// SessionTTL is how long a session stays alive; schedule edits
	// re-stamp the deadline to now + SessionTTL. Defaults to an hour.
	SessionTTL time.Duration

	// Location is the timezone schedule text is interpreted in
	Location *time.Location

	// MaxCommentLength bounds the free-text comment
	MaxCommentLength int
}

// CreateSessionInput contains parameters for registering a finalized session
type CreateSessionInput struct {
	// SessionID is the Discord message ID of the rendered session
	SessionID string

	// ChannelID is where the session message lives
	ChannelID string

	// GuildID is the Discord server
	GuildID string

	// Creator is the participant who ran the wizard
	Creator models.Participant

	// CreatorRole is the slot the creator chose for themselves
	CreatorRole models.RoleKind

	// Activity is the selected dungeon
	Activity string

	// Tier is the selected key level
	Tier string

	// Schedule is the selected start time
	Schedule models.Schedule

	// Comment is the optional free-text comment
	Comment string
}

// CreateSessionOutput contains the registered session
type CreateSessionOutput struct {
	Session *models.Session
}

type GetSessionInput struct {
	SessionID string
}

type GetSessionOutput struct {
	Session *models.Session
}

// FindSessionInput locates the live session a creator hosts in a channel
type FindSessionInput struct {
	ChannelID string
	CreatorID string
}

type FindSessionOutput struct {
	Session *models.Session
}

// ClaimRoleInput carries a raw role-claim signal
type ClaimRoleInput struct {
	SessionID string

	// Participant is the user behind the signal
	Participant models.Participant

	// Role is the raw role symbol from the transport; unknown symbols
	// are treated as noise, not errors
	Role string
}

// ClaimRoleOutput describes how the claim resolved
type ClaimRoleOutput struct {
	// Ignored is true when the role symbol was unrecognized noise
	Ignored bool

	// Outcome is the slot-set result; AlreadyHeld and SlotFull mean the
	// caller should undo the triggering signal
	Outcome models.ClaimOutcome

	// Session is the updated snapshot for re-rendering
	Session *models.Session
}

type ReleaseRoleInput struct {
	SessionID   string
	Participant models.Participant
	Role        string
}

type ReleaseRoleOutput struct {
	Ignored bool
	Outcome models.ReleaseOutcome
	Session *models.Session
}

type UpdateActivityInput struct {
	SessionID   string
	RequestedBy models.Participant
	Activity    string
}

type UpdateActivityOutput struct {
	Session *models.Session
}

type UpdateTierInput struct {
	SessionID   string
	RequestedBy models.Participant
	Tier        string
}

type UpdateTierOutput struct {
	Session *models.Session
}

type UpdateScheduleInput struct {
	SessionID   string
	RequestedBy models.Participant

	// RawSchedule is the new start time text, "now" or free text
	RawSchedule string
}

type UpdateScheduleOutput struct {
	Session *models.Session
}

type UpdateCommentInput struct {
	SessionID   string
	RequestedBy models.Participant
	Comment     string
}

type UpdateCommentOutput struct {
	Session *models.Session
}

type DeleteSessionInput struct {
	SessionID   string
	RequestedBy models.Participant
}

type DeleteSessionOutput struct {
	// Session is the final snapshot, for message cleanup
	Session *models.Session
}

type SweepExpiredInput struct {
}

type SweepExpiredOutput struct {
	// Retired holds the sessions this sweep expired and removed
	Retired []*models.Session
}

type GetLeaderboardInput struct {
	GuildID string
	Limit   int
}

type GetLeaderboardOutput struct {
	Hosts        []leaderboardRepo.Entry
	Participants []leaderboardRepo.Entry
}
