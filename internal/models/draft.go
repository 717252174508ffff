package models

import (
	"time"
)

// WizardStep represents the current step in the creation wizard
type WizardStep string

const (
	// StepRoleChoice waits for the creator to pick their own role
	StepRoleChoice WizardStep = "role_choice"

	// StepActivityChoice waits for a dungeon selection
	StepActivityChoice WizardStep = "activity_choice"

	// StepTierChoice waits for a key level selection
	StepTierChoice WizardStep = "tier_choice"

	// StepScheduleChoice waits for the now/custom start time choice
	StepScheduleChoice WizardStep = "schedule_choice"

	// StepCustomTime waits for free-text start time entry
	StepCustomTime WizardStep = "custom_time"

	// StepCommentChoice waits for an optional comment or a skip
	StepCommentChoice WizardStep = "comment_choice"

	// StepFinalized means every choice is made and the draft is ready
	// to be consumed into a session
	StepFinalized WizardStep = "finalized"
)

// WizardDraft holds the in-progress selections of one creation flow.
// A draft is owned by the creator who started it and is never shared;
// it is consumed at finalize or discarded on step timeout, never both.
type WizardDraft struct {
	// ID is a generated identifier for this flow
	ID string

	// ChannelID is where the finalized session will be posted
	ChannelID string

	// GuildID is the Discord server the flow was started in
	GuildID string

	// Creator is the only user allowed to advance this draft
	Creator Participant

	// Step is the step the flow is currently waiting on
	Step WizardStep

	// Role is the slot the creator will occupy, set at role choice
	Role RoleKind

	// Activity is the selected dungeon
	Activity string

	// Tier is the selected key level
	Tier string

	// Schedule is the selected start time
	Schedule Schedule

	// Comment is the optional free-text comment
	Comment string

	// CreatedAt is when the flow started
	CreatedAt time.Time

	// UpdatedAt is when the draft last advanced
	UpdatedAt time.Time

	// Deadline is when the current step times out and the draft is
	// silently discarded
	Deadline time.Time
}

// IsExpired reports whether the current step timed out
func (d *WizardDraft) IsExpired(now time.Time) bool {
	return now.After(d.Deadline)
}

// Advance moves the draft to the next step and pushes the deadline out
func (d *WizardDraft) Advance(step WizardStep, now time.Time, timeout time.Duration) {
	d.Step = step
	d.UpdatedAt = now
	d.Deadline = now.Add(timeout)
}

// Clone returns a deep copy of the draft
func (d *WizardDraft) Clone() *WizardDraft {
	c := *d
	if d.Schedule.At != nil {
		at := *d.Schedule.At
		c.Schedule.At = &at
	}
	return &c
}
