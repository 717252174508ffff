package leaderboard

// Entry is one row of a leaderboard
type Entry struct {
	// PlayerID is the Discord user ID
	PlayerID string

	// PlayerName is the display name recorded with the tally
	PlayerName string

	// Runs is the number of credited runs
	Runs int
}

type RecordHostInput struct {
	GuildID    string
	PlayerID   string
	PlayerName string
}

type RecordParticipantInput struct {
	GuildID    string
	PlayerID   string
	PlayerName string
}

type GetTopHostsInput struct {
	GuildID string
	Limit   int
}

type GetTopHostsOutput struct {
	Entries []Entry
}

type GetTopParticipantsInput struct {
	GuildID string
	Limit   int
}

type GetTopParticipantsOutput struct {
	Entries []Entry
}
