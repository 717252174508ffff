package discord

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/groupforge/keystone/internal/catalog"
	"github.com/groupforge/keystone/internal/common/clock"
	"github.com/groupforge/keystone/internal/common/uuid"
	leaderboardMocks "github.com/groupforge/keystone/internal/repositories/leaderboard/mocks"
	sessionRepo "github.com/groupforge/keystone/internal/repositories/session"
	"github.com/groupforge/keystone/internal/services/group"
	"github.com/groupforge/keystone/internal/services/wizard"
)

type ComponentsTestSuite struct {
	suite.Suite
	mockCtrl *gomock.Controller
}

func (s *ComponentsTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
}

func (s *ComponentsTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestComponentsTestSuite(t *testing.T) {
	suite.Run(t, new(ComponentsTestSuite))
}

// newTestBot builds a bot against real services so config plumbing is
// exercised end to end. No Discord connection is opened.
func (s *ComponentsTestSuite) newTestBot(maxComment int) *Bot {
	sessions, err := sessionRepo.NewMemory(&sessionRepo.Config{})
	s.Require().NoError(err)

	groupSvc, err := group.New(&group.Config{
		SessionRepo:      sessions,
		LeaderboardRepo:  leaderboardMocks.NewMockRepository(s.mockCtrl),
		Catalog:          catalog.Default(),
		Clock:            clock.New(),
		Logger:           zerolog.Nop(),
		SessionTTL:       time.Hour,
		MaxCommentLength: maxComment,
	})
	s.Require().NoError(err)

	wizardSvc, err := wizard.New(&wizard.Config{
		GroupService:     groupSvc,
		Catalog:          catalog.Default(),
		Clock:            clock.New(),
		UUID:             uuid.New(),
		Logger:           zerolog.Nop(),
		MaxCommentLength: maxComment,
	})
	s.Require().NoError(err)

	bot, err := New(&Config{
		Token:            "test-token",
		ApplicationID:    "test-app-id",
		GroupService:     groupSvc,
		WizardService:    wizardSvc,
		Catalog:          catalog.Default(),
		Logger:           zerolog.Nop(),
		MaxCommentLength: maxComment,
	})
	s.Require().NoError(err)
	return bot
}

func (s *ComponentsTestSuite) TestNoteInputCarriesConfiguredBound() {
	bot := s.newTestBot(140)

	in := noteInput(bot.maxComment)
	s.Equal(InputNote, in.CustomID)
	s.Equal(140, in.MaxLength)
}

func (s *ComponentsTestSuite) TestNoteInputBoundDefaultsWhenUnset() {
	bot := s.newTestBot(0)

	in := noteInput(bot.maxComment)
	s.Equal(defaultMaxCommentLength, in.MaxLength)
}
