package group

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/groupforge/keystone/internal/catalog"
	"github.com/groupforge/keystone/internal/common/clock"
	"github.com/groupforge/keystone/internal/models"
	leaderboardRepo "github.com/groupforge/keystone/internal/repositories/leaderboard"
	sessionRepo "github.com/groupforge/keystone/internal/repositories/session"
	"github.com/groupforge/keystone/internal/schedule"
)

const (
	// defaultSessionTTL is how long a session lives without a schedule edit
	defaultSessionTTL = time.Hour

	// defaultMaxCommentLength bounds the free-text comment
	defaultMaxCommentLength = 200
)

// errSweepSkip aborts a sweep mutation when the session turned out to be
// alive after all (a schedule edit raced the sweep and extended it)
var errSweepSkip = errors.New("sweep skip")

// service implements the Service interface
type service struct {
	sessionRepo     sessionRepo.Repository
	leaderboardRepo leaderboardRepo.Repository
	catalog         *catalog.Catalog
	clock           clock.Clock
	logger          zerolog.Logger
	sessionTTL      time.Duration
	location        *time.Location
	maxComment      int
}

// New creates a new group service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.SessionRepo == nil {
		return nil, ErrNilSessionRepo
	}

	if cfg.LeaderboardRepo == nil {
		return nil, ErrNilLeaderboardRepo
	}

	if cfg.Catalog == nil {
		return nil, ErrNilCatalog
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	maxComment := cfg.MaxCommentLength
	if maxComment <= 0 {
		maxComment = defaultMaxCommentLength
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	return &service{
		sessionRepo:     cfg.SessionRepo,
		leaderboardRepo: cfg.LeaderboardRepo,
		catalog:         cfg.Catalog,
		clock:           cfg.Clock,
		logger:          cfg.Logger,
		sessionTTL:      ttl,
		location:        loc,
		maxComment:      maxComment,
	}, nil
}

// CreateSession registers a finalized session with the creator pre-assigned
// into their chosen role
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if !s.catalog.HasActivity(input.Activity) {
		return nil, ErrUnknownActivity
	}

	if !s.catalog.HasTier(input.Tier) {
		return nil, ErrUnknownTier
	}

	if len(input.Comment) > s.maxComment {
		return nil, ErrCommentTooLong
	}

	now := s.clock.Now()
	sess := &models.Session{
		ID:        input.SessionID,
		ChannelID: input.ChannelID,
		GuildID:   input.GuildID,
		Creator:   input.Creator,
		Activity:  input.Activity,
		Tier:      input.Tier,
		Schedule:  input.Schedule,
		Comment:   input.Comment,
		Slots:     models.NewRoleSlotSet(),
		Status:    models.SessionStatusActive,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	sess.Slots.TryClaim(input.CreatorRole, input.Creator)

	err := s.sessionRepo.PutSession(ctx, &sessionRepo.PutSessionInput{
		Session: sess,
	})
	if err != nil {
		return nil, err
	}

	s.creditHost(ctx, sess)

	s.logger.Info().
		Str("session_id", sess.ID).
		Str("guild_id", sess.GuildID).
		Str("creator_id", sess.Creator.ID).
		Str("activity", sess.Activity).
		Str("tier", sess.Tier).
		Msg("session created")

	return &CreateSessionOutput{Session: sess.Clone()}, nil
}

// GetSession returns a rendering-ready snapshot of a session
func (s *service) GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	sess, err := s.sessionRepo.GetSession(ctx, &sessionRepo.GetSessionInput{
		SessionID: input.SessionID,
	})
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	return &GetSessionOutput{Session: sess}, nil
}

// FindSession locates the live session a creator hosts in a channel. When
// the creator hosts more than one, the newest wins.
func (s *service) FindSession(ctx context.Context, input *FindSessionInput) (*FindSessionOutput, error) {
	listOutput, err := s.sessionRepo.ListSessions(ctx, &sessionRepo.ListSessionsInput{})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var found *models.Session
	for _, sess := range listOutput.Sessions {
		if sess.ChannelID != input.ChannelID || sess.Creator.ID != input.CreatorID {
			continue
		}

		if sess.IsExpired(now) {
			continue
		}

		if found == nil || sess.CreatedAt.After(found.CreatedAt) {
			found = sess
		}
	}

	if found == nil {
		return nil, ErrSessionNotFound
	}

	return &FindSessionOutput{Session: found}, nil
}

// ClaimRole maps a raw role-claim signal onto a slot assignment
func (s *service) ClaimRole(ctx context.Context, input *ClaimRoleInput) (*ClaimRoleOutput, error) {
	role, ok := models.ParseRoleKind(input.Role)
	if !ok {
		// Unrelated signal, e.g. a random reaction emoji
		return &ClaimRoleOutput{Ignored: true}, nil
	}

	var outcome models.ClaimOutcome
	var snapshot *models.Session

	err := s.sessionRepo.WithSession(ctx, &sessionRepo.WithSessionInput{
		SessionID: input.SessionID,
		Mutate: func(sess *models.Session) error {
			if sess.IsExpired(s.clock.Now()) {
				return ErrSessionNotFound
			}

			outcome = sess.Slots.TryClaim(role, input.Participant)
			snapshot = sess.Clone()
			return nil
		},
	})
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	if outcome == models.ClaimAssigned {
		s.creditParticipant(ctx, snapshot, input.Participant)
	}

	s.logger.Debug().
		Str("session_id", input.SessionID).
		Str("user_id", input.Participant.ID).
		Str("role", string(role)).
		Str("outcome", string(outcome)).
		Msg("claim resolved")

	return &ClaimRoleOutput{
		Outcome: outcome,
		Session: snapshot,
	}, nil
}

// ReleaseRole removes a participant from a role. Releasing a role the
// participant does not hold is a no-op.
func (s *service) ReleaseRole(ctx context.Context, input *ReleaseRoleInput) (*ReleaseRoleOutput, error) {
	role, ok := models.ParseRoleKind(input.Role)
	if !ok {
		return &ReleaseRoleOutput{Ignored: true}, nil
	}

	var outcome models.ReleaseOutcome
	var snapshot *models.Session

	err := s.sessionRepo.WithSession(ctx, &sessionRepo.WithSessionInput{
		SessionID: input.SessionID,
		Mutate: func(sess *models.Session) error {
			if sess.IsExpired(s.clock.Now()) {
				return ErrSessionNotFound
			}

			outcome = sess.Slots.Release(role, input.Participant)
			snapshot = sess.Clone()
			return nil
		},
	})
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	s.logger.Debug().
		Str("session_id", input.SessionID).
		Str("user_id", input.Participant.ID).
		Str("role", string(role)).
		Str("outcome", string(outcome)).
		Msg("release resolved")

	return &ReleaseRoleOutput{
		Outcome: outcome,
		Session: snapshot,
	}, nil
}

// UpdateActivity changes the session's dungeon, creator-only
func (s *service) UpdateActivity(ctx context.Context, input *UpdateActivityInput) (*UpdateActivityOutput, error) {
	if !s.catalog.HasActivity(input.Activity) {
		return nil, ErrUnknownActivity
	}

	snapshot, err := s.edit(ctx, input.SessionID, input.RequestedBy, func(sess *models.Session) {
		sess.Activity = input.Activity
	})
	if err != nil {
		return nil, err
	}

	return &UpdateActivityOutput{Session: snapshot}, nil
}

// UpdateTier changes the session's key level, creator-only
func (s *service) UpdateTier(ctx context.Context, input *UpdateTierInput) (*UpdateTierOutput, error) {
	if !s.catalog.HasTier(input.Tier) {
		return nil, ErrUnknownTier
	}

	snapshot, err := s.edit(ctx, input.SessionID, input.RequestedBy, func(sess *models.Session) {
		sess.Tier = input.Tier
	})
	if err != nil {
		return nil, err
	}

	return &UpdateTierOutput{Session: snapshot}, nil
}

// UpdateSchedule changes the start time and re-stamps the expiry deadline
func (s *service) UpdateSchedule(ctx context.Context, input *UpdateScheduleInput) (*UpdateScheduleOutput, error) {
	now := s.clock.Now()
	sched := schedule.Parse(input.RawSchedule, now, s.location)

	snapshot, err := s.edit(ctx, input.SessionID, input.RequestedBy, func(sess *models.Session) {
		sess.Schedule = sched
		sess.ExpiresAt = now.Add(s.sessionTTL)
	})
	if err != nil {
		return nil, err
	}

	return &UpdateScheduleOutput{Session: snapshot}, nil
}

// UpdateComment changes the free-text comment, creator-only
func (s *service) UpdateComment(ctx context.Context, input *UpdateCommentInput) (*UpdateCommentOutput, error) {
	if len(input.Comment) > s.maxComment {
		return nil, ErrCommentTooLong
	}

	snapshot, err := s.edit(ctx, input.SessionID, input.RequestedBy, func(sess *models.Session) {
		sess.Comment = input.Comment
	})
	if err != nil {
		return nil, err
	}

	return &UpdateCommentOutput{Session: snapshot}, nil
}

// DeleteSession removes a session, creator-only
func (s *service) DeleteSession(ctx context.Context, input *DeleteSessionInput) (*DeleteSessionOutput, error) {
	// The creator check runs under the session lock so it serializes
	// with in-flight mutations before the session disappears
	var snapshot *models.Session
	err := s.sessionRepo.WithSession(ctx, &sessionRepo.WithSessionInput{
		SessionID: input.SessionID,
		Mutate: func(sess *models.Session) error {
			if sess.Creator.ID != input.RequestedBy.ID {
				return ErrUnauthorized
			}
			snapshot = sess.Clone()
			return nil
		},
	})
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	err = s.sessionRepo.DeleteSession(ctx, &sessionRepo.DeleteSessionInput{
		SessionID: input.SessionID,
	})
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	s.logger.Info().
		Str("session_id", input.SessionID).
		Str("user_id", input.RequestedBy.ID).
		Msg("session deleted by creator")

	return &DeleteSessionOutput{Session: snapshot}, nil
}

// SweepExpired retires every session past its deadline. Correctness does
// not depend on the sweep: every mutation checks the deadline itself, so
// the sweep only bounds memory and cleans up rendered messages.
func (s *service) SweepExpired(ctx context.Context, input *SweepExpiredInput) (*SweepExpiredOutput, error) {
	listed, err := s.sessionRepo.ListSessions(ctx, &sessionRepo.ListSessionsInput{})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	retired := make([]*models.Session, 0)

	for _, candidate := range listed.Sessions {
		if !candidate.IsExpired(now) {
			continue
		}

		var snapshot *models.Session
		err := s.sessionRepo.WithSession(ctx, &sessionRepo.WithSessionInput{
			SessionID: candidate.ID,
			Mutate: func(sess *models.Session) error {
				// A schedule edit may have extended the deadline
				// after the list snapshot was taken
				if !sess.IsExpired(now) {
					return errSweepSkip
				}
				sess.Status = models.SessionStatusExpired
				snapshot = sess.Clone()
				return nil
			},
		})
		if err != nil {
			continue
		}

		if err := s.sessionRepo.DeleteSession(ctx, &sessionRepo.DeleteSessionInput{
			SessionID: candidate.ID,
		}); err != nil {
			s.logger.Warn().Err(err).Str("session_id", candidate.ID).Msg("failed to drop retired session")
		}

		retired = append(retired, snapshot)
	}

	if len(retired) > 0 {
		s.logger.Info().Int("count", len(retired)).Msg("retired expired sessions")
	}

	return &SweepExpiredOutput{Retired: retired}, nil
}

// GetLeaderboard returns the guild's top hosts and participants
func (s *service) GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error) {
	hosts, err := s.leaderboardRepo.GetTopHosts(ctx, &leaderboardRepo.GetTopHostsInput{
		GuildID: input.GuildID,
		Limit:   input.Limit,
	})
	if err != nil {
		return nil, err
	}

	participants, err := s.leaderboardRepo.GetTopParticipants(ctx, &leaderboardRepo.GetTopParticipantsInput{
		GuildID: input.GuildID,
		Limit:   input.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &GetLeaderboardOutput{
		Hosts:        hosts.Entries,
		Participants: participants.Entries,
	}, nil
}

// edit applies a creator-only field change under the session lock
func (s *service) edit(ctx context.Context, sessionID string, requestedBy models.Participant, apply func(*models.Session)) (*models.Session, error) {
	now := s.clock.Now()

	var snapshot *models.Session
	err := s.sessionRepo.WithSession(ctx, &sessionRepo.WithSessionInput{
		SessionID: sessionID,
		Mutate: func(sess *models.Session) error {
			if sess.IsExpired(now) {
				return ErrSessionNotFound
			}

			if sess.Creator.ID != requestedBy.ID {
				return ErrUnauthorized
			}

			apply(sess)
			snapshot = sess.Clone()
			return nil
		},
	})
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	return snapshot, nil
}

// creditHost records a hosted run; tally failures never affect the session
func (s *service) creditHost(ctx context.Context, sess *models.Session) {
	err := s.leaderboardRepo.RecordHost(ctx, &leaderboardRepo.RecordHostInput{
		GuildID:    sess.GuildID,
		PlayerID:   sess.Creator.ID,
		PlayerName: sess.Creator.Name,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to record host tally")
	}
}

// creditParticipant records a joined run; tally failures never affect the session
func (s *service) creditParticipant(ctx context.Context, sess *models.Session, p models.Participant) {
	err := s.leaderboardRepo.RecordParticipant(ctx, &leaderboardRepo.RecordParticipantInput{
		GuildID:    sess.GuildID,
		PlayerID:   p.ID,
		PlayerName: p.Name,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to record participant tally")
	}
}

// mapRepoError translates repository errors into service errors
func (s *service) mapRepoError(err error) error {
	if errors.Is(err, sessionRepo.ErrSessionNotFound) {
		return ErrSessionNotFound
	}
	return err
}
