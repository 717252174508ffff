package group

// GroupError is a custom error type for group session errors
type GroupError string

// Error implements the error interface
func (e GroupError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrSessionNotFound    GroupError = "session not found or expired"
	ErrUnauthorized       GroupError = "only the session creator can do that"
	ErrUnknownActivity    GroupError = "activity is not in the catalog"
	ErrUnknownTier        GroupError = "tier is not in the catalog"
	ErrCommentTooLong     GroupError = "comment exceeds the maximum length"
	ErrNilConfig          GroupError = "config cannot be nil"
	ErrNilSessionRepo     GroupError = "session repository cannot be nil"
	ErrNilLeaderboardRepo GroupError = "leaderboard repository cannot be nil"
	ErrNilCatalog         GroupError = "catalog cannot be nil"
	ErrNilClock           GroupError = "clock cannot be nil"
)
