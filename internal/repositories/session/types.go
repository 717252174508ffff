package session

import "github.com/groupforge/keystone/internal/models"

type PutSessionInput struct {
	Session *models.Session
}

type GetSessionInput struct {
	SessionID string
}

type WithSessionInput struct {
	SessionID string

	// Mutate receives the current session value and edits it in place.
	// Returning an error discards the edit.
	Mutate func(s *models.Session) error
}

type ListSessionsInput struct {
}

type ListSessionsOutput struct {
	Sessions []*models.Session
}

type DeleteSessionInput struct {
	SessionID string
}
