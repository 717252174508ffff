package wizard

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/groupforge/keystone/internal/catalog"
	"github.com/groupforge/keystone/internal/common/clock"
	"github.com/groupforge/keystone/internal/common/uuid"
	"github.com/groupforge/keystone/internal/models"
	"github.com/groupforge/keystone/internal/services/group"
)

// Config contains configuration for the wizard service
type Config struct {
	// GroupService registers finalized sessions
	GroupService group.Service

	// Catalog is the activity and tier lists offered to the creator
	Catalog *catalog.Catalog

	// Clock supplies the current time
	Clock clock.Clock

	// UUID generates draft identifiers
	UUID uuid.UUID

	// Logger is the structured logger for wizard events
	Logger zerolog.Logger

	// StepTimeout is the inactivity window per step. Defaults to a minute.
	StepTimeout time.Duration

	// Location is the timezone custom schedule text is interpreted in
	Location *time.Location

	// MaxCommentLength bounds the free-text comment
	MaxCommentLength int
}

type StartDraftInput struct {
	ChannelID string
	GuildID   string
	Creator   models.Participant
}

type StartDraftOutput struct {
	Draft *models.WizardDraft
}

type GetDraftInput struct {
	DraftID     string
	RequestedBy models.Participant
}

type GetDraftOutput struct {
	Draft *models.WizardDraft
}

type ChooseRoleInput struct {
	DraftID     string
	RequestedBy models.Participant

	// Role is the raw role symbol chosen by the creator
	Role string
}

type ChooseRoleOutput struct {
	Draft *models.WizardDraft
}

type ChooseActivityInput struct {
	DraftID     string
	RequestedBy models.Participant
	Activity    string
}

type ChooseActivityOutput struct {
	Draft *models.WizardDraft
}

type ChooseTierInput struct {
	DraftID     string
	RequestedBy models.Participant
	Tier        string
}

type ChooseTierOutput struct {
	Draft *models.WizardDraft
}

// ScheduleChoice selects between starting now and entering a custom time
type ScheduleChoice string

const (
	// ScheduleChoiceNow starts the group immediately
	ScheduleChoiceNow ScheduleChoice = "now"

	// ScheduleChoiceCustom asks for free-text time entry
	ScheduleChoiceCustom ScheduleChoice = "custom"
)

type ChooseScheduleInput struct {
	DraftID     string
	RequestedBy models.Participant
	Choice      ScheduleChoice
}

type ChooseScheduleOutput struct {
	Draft *models.WizardDraft

	// NeedsCustomTime is true when the flow moved to free-text entry
	NeedsCustomTime bool
}

type EnterCustomTimeInput struct {
	DraftID     string
	RequestedBy models.Participant

	// Raw is the free-text start time
	Raw string
}

type EnterCustomTimeOutput struct {
	Draft *models.WizardDraft

	// Degraded is true when the text could not be parsed and is kept
	// verbatim as a display-only value
	Degraded bool
}

type SetCommentInput struct {
	DraftID     string
	RequestedBy models.Participant

	// Skip leaves the session without a comment
	Skip bool

	Comment string
}

type SetCommentOutput struct {
	Draft *models.WizardDraft
}

type FinalizeInput struct {
	DraftID     string
	RequestedBy models.Participant

	// MessageID is the Discord message ID of the rendered session; it
	// becomes the session's identifier
	MessageID string
}

type FinalizeOutput struct {
	Session *models.Session
}
