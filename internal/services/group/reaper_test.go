package group

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/groupforge/keystone/internal/catalog"
	clockMocks "github.com/groupforge/keystone/internal/common/clock/mocks"
	"github.com/groupforge/keystone/internal/models"
	leaderboardMocks "github.com/groupforge/keystone/internal/repositories/leaderboard/mocks"
	sessionRepo "github.com/groupforge/keystone/internal/repositories/session"
)

type ReaperTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	groupService Service
	testTime     time.Time
	now          time.Time
}

func (s *ReaperTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())

	mockClock := clockMocks.NewMockClock(s.mockCtrl)
	s.testTime = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	s.now = s.testTime
	mockClock.EXPECT().Now().DoAndReturn(func() time.Time {
		return s.now
	}).AnyTimes()

	mockLeaderboard := leaderboardMocks.NewMockRepository(s.mockCtrl)
	mockLeaderboard.EXPECT().RecordHost(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	sessions, err := sessionRepo.NewMemory(&sessionRepo.Config{})
	s.Require().NoError(err)

	svc, err := New(&Config{
		SessionRepo:     sessions,
		LeaderboardRepo: mockLeaderboard,
		Catalog:         catalog.Default(),
		Clock:           mockClock,
		Logger:          zerolog.Nop(),
		SessionTTL:      time.Hour,
	})
	s.Require().NoError(err)
	s.groupService = svc
}

func (s *ReaperTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReaperTestSuite(t *testing.T) {
	suite.Run(t, new(ReaperTestSuite))
}

func (s *ReaperTestSuite) TestReaperRetiresExpiredSessions() {
	_, err := s.groupService.CreateSession(context.Background(), &CreateSessionInput{
		SessionID:   "test-session-id",
		ChannelID:   "test-channel-id",
		GuildID:     "test-guild-id",
		Creator:     models.Participant{ID: "creator-id", Name: "Creator"},
		CreatorRole: models.RoleTank,
		Activity:    "Op Floodgate",
		Tier:        "10",
		Schedule:    models.Schedule{Now: true, Display: "Now"},
	})
	s.Require().NoError(err)

	retired := make(chan []*models.Session, 1)
	reaper, err := NewReaper(&ReaperConfig{
		Service:  s.groupService,
		Interval: 10 * time.Millisecond,
		Logger:   zerolog.Nop(),
		OnRetired: func(sessions []*models.Session) {
			select {
			case retired <- sessions:
			default:
			}
		},
	})
	s.Require().NoError(err)

	// Nothing to retire yet
	reaper.Start()
	defer reaper.Stop()

	time.Sleep(50 * time.Millisecond)
	select {
	case got := <-retired:
		s.Failf("premature retirement", "retired %d sessions before expiry", len(got))
	default:
	}

	// Cross the deadline and wait for the next sweep
	s.now = s.testTime.Add(2 * time.Hour)

	select {
	case got := <-retired:
		s.Require().Len(got, 1)
		s.Equal("test-session-id", got[0].ID)
		s.Equal(models.SessionStatusExpired, got[0].Status)
	case <-time.After(2 * time.Second):
		s.Fail("reaper never retired the expired session")
	}

	_, err = s.groupService.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *ReaperTestSuite) TestNewReaperRequiresService() {
	_, err := NewReaper(&ReaperConfig{})
	s.Require().Error(err)
}
