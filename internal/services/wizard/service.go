package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/groupforge/keystone/internal/catalog"
	"github.com/groupforge/keystone/internal/common/clock"
	"github.com/groupforge/keystone/internal/common/uuid"
	"github.com/groupforge/keystone/internal/models"
	"github.com/groupforge/keystone/internal/schedule"
	"github.com/groupforge/keystone/internal/services/group"
)

const (
	// defaultStepTimeout is the per-step inactivity window
	defaultStepTimeout = time.Minute

	// defaultMaxCommentLength bounds the free-text comment
	defaultMaxCommentLength = 200
)

// service implements the Service interface
type service struct {
	groupService group.Service
	catalog      *catalog.Catalog
	clock        clock.Clock
	uuid         uuid.UUID
	logger       zerolog.Logger
	stepTimeout  time.Duration
	location     *time.Location
	maxComment   int

	// mu guards the draft map. Each draft has a single owner, so there
	// is no finer-grained locking to win here.
	mu     sync.Mutex
	drafts map[string]*models.WizardDraft
}

// New creates a new wizard service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.GroupService == nil {
		return nil, ErrNilGroupService
	}

	if cfg.Catalog == nil {
		return nil, ErrNilCatalog
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUID == nil {
		return nil, ErrNilUUID
	}

	stepTimeout := cfg.StepTimeout
	if stepTimeout <= 0 {
		stepTimeout = defaultStepTimeout
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
		groupService: cfg.GroupService,
		catalog:      cfg.Catalog,
		clock:        cfg.Clock,
		uuid:         cfg.UUID,
		logger:       cfg.Logger,
		stepTimeout:  stepTimeout,
		location:     loc,
		maxComment:   maxComment,
		drafts:       make(map[string]*models.WizardDraft),
	}, nil
}

// StartDraft begins a creation flow at the role choice step
func (s *service) StartDraft(ctx context.Context, input *StartDraftInput) (*StartDraftOutput, error) {
	now := s.clock.Now()

	draft := &models.WizardDraft{
		ID:        s.uuid.NewUUID(),
		ChannelID: input.ChannelID,
		GuildID:   input.GuildID,
		Creator:   input.Creator,
		Step:      models.StepRoleChoice,
		CreatedAt: now,
		UpdatedAt: now,
		Deadline:  now.Add(s.stepTimeout),
	}

	s.mu.Lock()
	s.purgeExpired(now)
	s.drafts[draft.ID] = draft
	s.mu.Unlock()

	s.logger.Debug().
		Str("draft_id", draft.ID).
		Str("user_id", input.Creator.ID).
		Msg("wizard started")

	return &StartDraftOutput{Draft: draft.Clone()}, nil
}

// GetDraft returns a snapshot of an in-progress draft
func (s *service) GetDraft(ctx context.Context, input *GetDraftInput) (*GetDraftOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.lookup(input.DraftID, input.RequestedBy)
	if err != nil {
		return nil, err
	}

	return &GetDraftOutput{Draft: draft.Clone()}, nil
}

// ChooseRole records the role the creator will occupy
func (s *service) ChooseRole(ctx context.Context, input *ChooseRoleInput) (*ChooseRoleOutput, error) {
	role, ok := models.ParseRoleKind(input.Role)
	if !ok {
		return nil, ErrUnknownRole
	}

	draft, err := s.advance(input.DraftID, input.RequestedBy, models.StepRoleChoice, models.StepActivityChoice, func(d *models.WizardDraft) error {
		d.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ChooseRoleOutput{Draft: draft}, nil
}

// ChooseActivity records the dungeon selection
func (s *service) ChooseActivity(ctx context.Context, input *ChooseActivityInput) (*ChooseActivityOutput, error) {
	if !s.catalog.HasActivity(input.Activity) {
		return nil, ErrUnknownActivity
	}

	draft, err := s.advance(input.DraftID, input.RequestedBy, models.StepActivityChoice, models.StepTierChoice, func(d *models.WizardDraft) error {
		d.Activity = input.Activity
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ChooseActivityOutput{Draft: draft}, nil
}

// ChooseTier records the key level selection
func (s *service) ChooseTier(ctx context.Context, input *ChooseTierInput) (*ChooseTierOutput, error) {
	if !s.catalog.HasTier(input.Tier) {
		return nil, ErrUnknownTier
	}

	draft, err := s.advance(input.DraftID, input.RequestedBy, models.StepTierChoice, models.StepScheduleChoice, func(d *models.WizardDraft) error {
		d.Tier = input.Tier
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ChooseTierOutput{Draft: draft}, nil
}

// ChooseSchedule records the now/custom start time choice
func (s *service) ChooseSchedule(ctx context.Context, input *ChooseScheduleInput) (*ChooseScheduleOutput, error) {
	if input.Choice == ScheduleChoiceCustom {
		draft, err := s.advance(input.DraftID, input.RequestedBy, models.StepScheduleChoice, models.StepCustomTime, func(d *models.WizardDraft) error {
			return nil
		})
		if err != nil {
			return nil, err
		}

		return &ChooseScheduleOutput{Draft: draft, NeedsCustomTime: true}, nil
	}

	draft, err := s.advance(input.DraftID, input.RequestedBy, models.StepScheduleChoice, models.StepCommentChoice, func(d *models.WizardDraft) error {
		d.Schedule = models.Schedule{Now: true, Display: schedule.NowDisplay}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ChooseScheduleOutput{Draft: draft}, nil
}

// EnterCustomTime records the free-text start time. Text the parser
// cannot handle is kept verbatim as a display-only value; the flow
// continues either way.
func (s *service) EnterCustomTime(ctx context.Context, input *EnterCustomTimeInput) (*EnterCustomTimeOutput, error) {
	sched := schedule.Parse(input.Raw, s.clock.Now(), s.location)

	draft, err := s.advance(input.DraftID, input.RequestedBy, models.StepCustomTime, models.StepCommentChoice, func(d *models.WizardDraft) error {
		d.Schedule = sched
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &EnterCustomTimeOutput{
		Draft:    draft,
		Degraded: !sched.Now && sched.At == nil,
	}, nil
}

// SetComment records the optional comment, or skips it
func (s *service) SetComment(ctx context.Context, input *SetCommentInput) (*SetCommentOutput, error) {
	if !input.Skip && len(input.Comment) > s.maxComment {
		return nil, ErrCommentTooLong
	}

	draft, err := s.advance(input.DraftID, input.RequestedBy, models.StepCommentChoice, models.StepFinalized, func(d *models.WizardDraft) error {
		if !input.Skip {
			d.Comment = input.Comment
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SetCommentOutput{Draft: draft}, nil
}

// Finalize consumes a completed draft into a registered session. The
// draft is removed only after the session is registered, so a failed
// registration leaves the draft intact for a retry.
func (s *service) Finalize(ctx context.Context, input *FinalizeInput) (*FinalizeOutput, error) {
	s.mu.Lock()
	draft, err := s.lookup(input.DraftID, input.RequestedBy)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if draft.Step != models.StepFinalized {
		s.mu.Unlock()
		return nil, ErrWrongStep
	}

	snapshot := draft.Clone()
	s.mu.Unlock()

	out, err := s.groupService.CreateSession(ctx, &group.CreateSessionInput{
		SessionID:   input.MessageID,
		ChannelID:   snapshot.ChannelID,
		GuildID:     snapshot.GuildID,
		Creator:     snapshot.Creator,
		CreatorRole: snapshot.Role,
		Activity:    snapshot.Activity,
		Tier:        snapshot.Tier,
		Schedule:    snapshot.Schedule,
		Comment:     snapshot.Comment,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.drafts, input.DraftID)
	s.mu.Unlock()

	s.logger.Info().
		Str("draft_id", input.DraftID).
		Str("session_id", out.Session.ID).
		Str("user_id", input.RequestedBy.ID).
		Msg("wizard finalized")

	return &FinalizeOutput{Session: out.Session}, nil
}

// advance applies one step transition under the map lock
func (s *service) advance(draftID string, requestedBy models.Participant, from, to models.WizardStep, apply func(*models.WizardDraft) error) (*models.WizardDraft, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.lookup(draftID, requestedBy)
	if err != nil {
		return nil, err
	}

	if draft.Step != from {
		return nil, ErrWrongStep
	}

	if err := apply(draft); err != nil {
		return nil, err
	}

	draft.Advance(to, now, s.stepTimeout)
	return draft.Clone(), nil
}

// lookup fetches a live draft and enforces ownership. Timed-out drafts
// are discarded on sight; the caller sees not-found. Callers hold s.mu.
func (s *service) lookup(draftID string, requestedBy models.Participant) (*models.WizardDraft, error) {
	draft, ok := s.drafts[draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}

	if draft.IsExpired(s.clock.Now()) {
		delete(s.drafts, draftID)
		s.logger.Debug().Str("draft_id", draftID).Msg("draft timed out")
		return nil, ErrDraftNotFound
	}

	if draft.Creator.ID != requestedBy.ID {
		return nil, ErrNotDraftOwner
	}

	return draft, nil
}

// purgeExpired drops timed-out drafts. Callers hold s.mu.
func (s *service) purgeExpired(now time.Time) {
	for id, draft := range s.drafts {
		if draft.IsExpired(now) {
			delete(s.drafts, id)
		}
	}
}
