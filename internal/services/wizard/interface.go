package wizard

import "context"

// Service drives the multi-step creation wizard. Steps are strictly
// linear; each draft is owned by the user who started it and is silently
// discarded when a step times out.
type Service interface {
	// StartDraft begins a creation flow at the role choice step
	StartDraft(ctx context.Context, input *StartDraftInput) (*StartDraftOutput, error)

	// GetDraft returns a snapshot of an in-progress draft
	GetDraft(ctx context.Context, input *GetDraftInput) (*GetDraftOutput, error)

	// ChooseRole records the role the creator will occupy
	ChooseRole(ctx context.Context, input *ChooseRoleInput) (*ChooseRoleOutput, error)

	// ChooseActivity records the dungeon selection
	ChooseActivity(ctx context.Context, input *ChooseActivityInput) (*ChooseActivityOutput, error)

	// ChooseTier records the key level selection
	ChooseTier(ctx context.Context, input *ChooseTierInput) (*ChooseTierOutput, error)

	// ChooseSchedule records the now/custom start time choice
	ChooseSchedule(ctx context.Context, input *ChooseScheduleInput) (*ChooseScheduleOutput, error)

	// EnterCustomTime records the free-text start time
	EnterCustomTime(ctx context.Context, input *EnterCustomTimeInput) (*EnterCustomTimeOutput, error)

	// SetComment records the optional comment, or skips it
	SetComment(ctx context.Context, input *SetCommentInput) (*SetCommentOutput, error)

	// Finalize consumes a completed draft into a registered session
	Finalize(ctx context.Context, input *FinalizeInput) (*FinalizeOutput, error)
}
