package models

import (
	"time"
)

// SessionStatus represents the lifecycle state of a dungeon session
type SessionStatus string

const (
	// SessionStatusActive indicates the session accepts claims and edits
	SessionStatusActive SessionStatus = "active"

	// SessionStatusExpired indicates the session passed its deadline and
	// is read-only until it is garbage-collected
	SessionStatusExpired SessionStatus = "expired"
)

// Schedule is a session start time. Either the "now" sentinel, a parsed
// timestamp with its display string, or, for text the parser could not
// handle, the raw text kept verbatim as a display-only value.
type Schedule struct {
	// Now is true when the group starts immediately
	Now bool

	// At is the parsed start time, nil when Now is set or parsing failed
	At *time.Time

	// Display is the string shown in the rendered message
	Display string
}

// Session represents one group-formation proposal in a channel
type Session struct {
	// ID is the Discord message ID of the rendered session, assigned at
	// finalize time and immutable afterwards
	ID string

	// ChannelID is the Discord channel the session was posted in
	ChannelID string

	// GuildID is the Discord server the session belongs to
	GuildID string

	// Creator is the participant who ran the creation wizard
	Creator Participant

	// Activity is the selected dungeon, including the LFG wildcard
	Activity string

	// Tier is the selected key level, including the LFG entry
	Tier string

	// Schedule is the start time selection
	Schedule Schedule

	// Comment is optional free text from the creator
	Comment string

	// Slots tracks role assignments
	Slots *RoleSlotSet

	// Status is the lifecycle state
	Status SessionStatus

	// CreatedAt is when the session was finalized
	CreatedAt time.Time

	// ExpiresAt is when the session is retired; re-stamped on schedule edits
	ExpiresAt time.Time
}

// IsExpired reports whether the session deadline has passed
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s
	if s.Schedule.At != nil {
		at := *s.Schedule.At
		c.Schedule.At = &at
	}
	if s.Slots != nil {
		c.Slots = s.Slots.Clone()
	}
	return &c
}
