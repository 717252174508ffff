package models

// Participant identifies a guild member as reported by Discord.
// Sessions reference participants, they never own them.
type Participant struct {
	// ID is the stable Discord user ID
	ID string

	// Name is the display name at the time the event arrived
	Name string
}
