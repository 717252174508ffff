package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/groupforge/keystone/internal/models"
)

type MemoryRepositoryTestSuite struct {
	suite.Suite
	repo    Repository
	testNow time.Time
}

func (s *MemoryRepositoryTestSuite) SetupTest() {
	repo, err := NewMemory(&Config{})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func TestMemoryRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryRepositoryTestSuite))
}

func (s *MemoryRepositoryTestSuite) newSession(id string) *models.Session {
	return &models.Session{
		ID:        id,
		ChannelID: "test-channel-id",
		GuildID:   "test-guild-id",
		Creator:   models.Participant{ID: "creator-id", Name: "Creator"},
		Activity:  "Op Floodgate",
		Tier:      "10",
		Schedule:  models.Schedule{Now: true, Display: "Now"},
		Slots:     models.NewRoleSlotSet(),
		Status:    models.SessionStatusActive,
		CreatedAt: s.testNow,
		ExpiresAt: s.testNow.Add(time.Hour),
	}
}

func (s *MemoryRepositoryTestSuite) TestPutAndGetSession() {
	err := s.repo.PutSession(context.Background(), &PutSessionInput{
		Session: s.newSession("test-session-id"),
	})
	s.Require().NoError(err)

	retrieved, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)

	s.Equal("test-session-id", retrieved.ID)
	s.Equal("Op Floodgate", retrieved.Activity)
	s.Equal(models.SessionStatusActive, retrieved.Status)
}

func (s *MemoryRepositoryTestSuite) TestGetSessionNotFound() {
	_, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "missing-session-id",
	})
	s.Require().Error(err)
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *MemoryRepositoryTestSuite) TestGetReturnsSnapshot() {
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{
		Session: s.newSession("test-session-id"),
	}))

	snapshot, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)

	// Mutating the snapshot must not leak into the store
	snapshot.Slots.TryClaim(models.RoleTank, models.Participant{ID: "sneaky-id"})

	fresh, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.Equal(0, fresh.Slots.Count(models.RoleTank))
}

func (s *MemoryRepositoryTestSuite) TestWithSessionPersistsMutation() {
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{
		Session: s.newSession("test-session-id"),
	}))

	err := s.repo.WithSession(context.Background(), &WithSessionInput{
		SessionID: "test-session-id",
		Mutate: func(sess *models.Session) error {
			sess.Slots.TryClaim(models.RoleTank, models.Participant{ID: "tank-id", Name: "Tanky"})
			return nil
		},
	})
	s.Require().NoError(err)

	retrieved, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.Equal(1, retrieved.Slots.Count(models.RoleTank))
}

func (s *MemoryRepositoryTestSuite) TestWithSessionMutatorErrorLeavesStateUnchanged() {
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{
		Session: s.newSession("test-session-id"),
	}))

	boom := errors.New("boom")
	err := s.repo.WithSession(context.Background(), &WithSessionInput{
		SessionID: "test-session-id",
		Mutate: func(sess *models.Session) error {
			sess.Activity = "corrupted"
			sess.Slots.TryClaim(models.RoleHealer, models.Participant{ID: "healer-id"})
			return boom
		},
	})
	s.Require().Error(err)
	s.ErrorIs(err, boom)

	retrieved, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.Equal("Op Floodgate", retrieved.Activity)
	s.Equal(0, retrieved.Slots.Count(models.RoleHealer))
}

func (s *MemoryRepositoryTestSuite) TestWithSessionRejectsExpiredSession() {
	sess := s.newSession("test-session-id")
	sess.Status = models.SessionStatusExpired
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{Session: sess}))

	err := s.repo.WithSession(context.Background(), &WithSessionInput{
		SessionID: "test-session-id",
		Mutate: func(sess *models.Session) error {
			return nil
		},
	})
	s.Require().Error(err)
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *MemoryRepositoryTestSuite) TestGetSessionStillReturnsPastDeadlineSession() {
	// A past deadline alone does not hide the session from reads;
	// only the sweeper flipping the status does
	sess := s.newSession("test-session-id")
	sess.ExpiresAt = s.testNow.Add(-time.Minute)
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{Session: sess}))

	got, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.Equal(models.SessionStatusActive, got.Status)
	s.True(got.IsExpired(s.testNow))
}

func (s *MemoryRepositoryTestSuite) TestGetSessionReturnsSweptSessionSnapshot() {
	sess := s.newSession("test-session-id")
	sess.Status = models.SessionStatusExpired
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{Session: sess}))

	got, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.Equal(models.SessionStatusExpired, got.Status)
}

func (s *MemoryRepositoryTestSuite) TestDeleteSession() {
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{
		Session: s.newSession("test-session-id"),
	}))

	err := s.repo.DeleteSession(context.Background(), &DeleteSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)

	_, err = s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.ErrorIs(err, ErrSessionNotFound)

	err = s.repo.WithSession(context.Background(), &WithSessionInput{
		SessionID: "test-session-id",
		Mutate:    func(sess *models.Session) error { return nil },
	})
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *MemoryRepositoryTestSuite) TestListSessions() {
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{
		Session: s.newSession("session-one"),
	}))
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{
		Session: s.newSession("session-two"),
	}))

	out, err := s.repo.ListSessions(context.Background(), &ListSessionsInput{})
	s.Require().NoError(err)
	s.Len(out.Sessions, 2)
}

func (s *MemoryRepositoryTestSuite) TestConcurrentClaimsOnSingleSlotHaveOneWinner() {
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{
		Session: s.newSession("test-session-id"),
	}))

	const attempts = 32
	outcomes := make(chan models.ClaimOutcome, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p := models.Participant{ID: string(rune('a' + n))}
			err := s.repo.WithSession(context.Background(), &WithSessionInput{
				SessionID: "test-session-id",
				Mutate: func(sess *models.Session) error {
					outcomes <- sess.Slots.TryClaim(models.RoleTank, p)
					return nil
				},
			})
			s.NoError(err)
		}(i)
	}
	wg.Wait()
	close(outcomes)

	assigned := 0
	full := 0
	for outcome := range outcomes {
		switch outcome {
		case models.ClaimAssigned:
			assigned++
		case models.ClaimSlotFull:
			full++
		}
	}

	// Exactly one winner, everyone else bounced off the full slot
	s.Equal(1, assigned)
	s.Equal(attempts-1, full)

	retrieved, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.Equal(1, retrieved.Slots.Count(models.RoleTank))
}

func (s *MemoryRepositoryTestSuite) TestConcurrentMutationsNeverOverfillDPS() {
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{
		Session: s.newSession("test-session-id"),
	}))

	const attempts = 24
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p := models.Participant{ID: string(rune('a' + n))}
			_ = s.repo.WithSession(context.Background(), &WithSessionInput{
				SessionID: "test-session-id",
				Mutate: func(sess *models.Session) error {
					sess.Slots.TryClaim(models.RoleDPS, p)
					return nil
				},
			})
		}(i)
	}
	wg.Wait()

	retrieved, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.Equal(3, retrieved.Slots.Count(models.RoleDPS))
}

func (s *MemoryRepositoryTestSuite) TestMutationsOnDifferentSessionsDoNotBlock() {
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{
		Session: s.newSession("session-one"),
	}))
	s.Require().NoError(s.repo.PutSession(context.Background(), &PutSessionInput{
		Session: s.newSession("session-two"),
	}))

	// Hold session-one's lock open and verify session-two still mutates
	release := make(chan struct{})
	holding := make(chan struct{})

	go func() {
		_ = s.repo.WithSession(context.Background(), &WithSessionInput{
			SessionID: "session-one",
			Mutate: func(sess *models.Session) error {
				close(holding)
				<-release
				return nil
			},
		})
	}()

	<-holding

	done := make(chan error, 1)
	go func() {
		done <- s.repo.WithSession(context.Background(), &WithSessionInput{
			SessionID: "session-two",
			Mutate: func(sess *models.Session) error {
				sess.Comment = "independent"
				return nil
			},
		})
	}()

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(2 * time.Second):
		s.Fail("mutation on an independent session blocked")
	}

	close(release)
}
