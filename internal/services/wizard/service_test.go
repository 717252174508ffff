package wizard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/groupforge/keystone/internal/catalog"
	clockMocks "github.com/groupforge/keystone/internal/common/clock/mocks"
	uuidMocks "github.com/groupforge/keystone/internal/common/uuid/mocks"
	"github.com/groupforge/keystone/internal/models"
	leaderboardMocks "github.com/groupforge/keystone/internal/repositories/leaderboard/mocks"
	sessionRepo "github.com/groupforge/keystone/internal/repositories/session"
	"github.com/groupforge/keystone/internal/services/group"
)

type WizardServiceTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockClock     *clockMocks.MockClock
	mockUUID      *uuidMocks.MockUUID
	groupService  group.Service
	wizardService Service
	ctx           context.Context

	// Test data
	testTime    time.Time
	testDraftID string
	testCreator models.Participant
	testOther   models.Participant

	// now backs the clock mock so tests can advance time
	now time.Time
}

func (s *WizardServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)

	s.ctx = context.Background()

	s.testTime = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	s.now = s.testTime
	s.testDraftID = "test-draft-id"
	s.testCreator = models.Participant{ID: "test-creator-id", Name: "Test Creator"}
	s.testOther = models.Participant{ID: "test-other-id", Name: "Someone Else"}

	s.mockClock.EXPECT().Now().DoAndReturn(func() time.Time {
		return s.now
	}).AnyTimes()
	s.mockUUID.EXPECT().NewUUID().Return(s.testDraftID).AnyTimes()

	mockLeaderboard := leaderboardMocks.NewMockRepository(s.mockCtrl)
	mockLeaderboard.EXPECT().RecordHost(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	sessions, err := sessionRepo.NewMemory(&sessionRepo.Config{})
	s.Require().NoError(err)

	groupSvc, err := group.New(&group.Config{
		SessionRepo:     sessions,
		LeaderboardRepo: mockLeaderboard,
		Catalog:         catalog.Default(),
		Clock:           s.mockClock,
		Logger:          zerolog.Nop(),
	})
	s.Require().NoError(err)
	s.groupService = groupSvc

	wizardSvc, err := New(&Config{
		GroupService: s.groupService,
		Catalog:      catalog.Default(),
		Clock:        s.mockClock,
		UUID:         s.mockUUID,
		Logger:       zerolog.Nop(),
		StepTimeout:  time.Minute,
	})
	s.Require().NoError(err)
	s.wizardService = wizardSvc
}

func (s *WizardServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestWizardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WizardServiceTestSuite))
}

// startDraft runs StartDraft and returns the draft ID
func (s *WizardServiceTestSuite) startDraft() string {
	out, err := s.wizardService.StartDraft(s.ctx, &StartDraftInput{
		ChannelID: "test-channel-id",
		GuildID:   "test-guild-id",
		Creator:   s.testCreator,
	})
	s.Require().NoError(err)
	s.Equal(models.StepRoleChoice, out.Draft.Step)
	return out.Draft.ID
}

// advanceToComment walks a draft up to the comment step
func (s *WizardServiceTestSuite) advanceToComment(draftID string) {
	_, err := s.wizardService.ChooseRole(s.ctx, &ChooseRoleInput{
		DraftID: draftID, RequestedBy: s.testCreator, Role: "dps",
	})
	s.Require().NoError(err)

	_, err = s.wizardService.ChooseActivity(s.ctx, &ChooseActivityInput{
		DraftID: draftID, RequestedBy: s.testCreator, Activity: "Op Floodgate",
	})
	s.Require().NoError(err)

	_, err = s.wizardService.ChooseTier(s.ctx, &ChooseTierInput{
		DraftID: draftID, RequestedBy: s.testCreator, Tier: "10",
	})
	s.Require().NoError(err)

	_, err = s.wizardService.ChooseSchedule(s.ctx, &ChooseScheduleInput{
		DraftID: draftID, RequestedBy: s.testCreator, Choice: ScheduleChoiceNow,
	})
	s.Require().NoError(err)
}

func (s *WizardServiceTestSuite) TestHappyPathSeedsCreatorIntoChosenRole() {
	draftID := s.startDraft()
	s.advanceToComment(draftID)

	_, err := s.wizardService.SetComment(s.ctx, &SetCommentInput{
		DraftID: draftID, RequestedBy: s.testCreator, Skip: true,
	})
	s.Require().NoError(err)

	out, err := s.wizardService.Finalize(s.ctx, &FinalizeInput{
		DraftID:     draftID,
		RequestedBy: s.testCreator,
		MessageID:   "test-message-id",
	})
	s.Require().NoError(err)

	sess := out.Session
	s.Equal("test-message-id", sess.ID)
	s.Equal("Op Floodgate", sess.Activity)
	s.Equal("10", sess.Tier)
	s.True(sess.Schedule.Now)
	s.Empty(sess.Comment)

	// Creator pre-assigned as DPS, tank and healer empty
	holders := sess.Slots.Holders(models.RoleDPS)
	s.Require().Len(holders, 1)
	s.Equal(s.testCreator.ID, holders[0].ID)
	s.Equal(0, sess.Slots.Count(models.RoleTank))
	s.Equal(0, sess.Slots.Count(models.RoleHealer))

	// The session is live in the store
	got, err := s.groupService.GetSession(s.ctx, &group.GetSessionInput{
		SessionID: "test-message-id",
	})
	s.Require().NoError(err)
	s.Equal(models.SessionStatusActive, got.Session.Status)

	// The draft was consumed
	_, err = s.wizardService.GetDraft(s.ctx, &GetDraftInput{
		DraftID: draftID, RequestedBy: s.testCreator,
	})
	s.ErrorIs(err, ErrDraftNotFound)
}

func (s *WizardServiceTestSuite) TestStepTimeoutDiscardsDraft() {
	draftID := s.startDraft()

	_, err := s.wizardService.ChooseRole(s.ctx, &ChooseRoleInput{
		DraftID: draftID, RequestedBy: s.testCreator, Role: "tank",
	})
	s.Require().NoError(err)

	// The activity step times out
	s.now = s.testTime.Add(5 * time.Minute)

	_, err = s.wizardService.ChooseActivity(s.ctx, &ChooseActivityInput{
		DraftID: draftID, RequestedBy: s.testCreator, Activity: "Op Floodgate",
	})
	s.ErrorIs(err, ErrDraftNotFound)

	// The draft stays gone
	_, err = s.wizardService.GetDraft(s.ctx, &GetDraftInput{
		DraftID: draftID, RequestedBy: s.testCreator,
	})
	s.ErrorIs(err, ErrDraftNotFound)
}

func (s *WizardServiceTestSuite) TestEachChoiceExtendsTheDeadline() {
	draftID := s.startDraft()

	// Advance 40s between steps; each is inside the fresh window
	s.now = s.testTime.Add(40 * time.Second)
	_, err := s.wizardService.ChooseRole(s.ctx, &ChooseRoleInput{
		DraftID: draftID, RequestedBy: s.testCreator, Role: "healer",
	})
	s.Require().NoError(err)

	s.now = s.now.Add(40 * time.Second)
	_, err = s.wizardService.ChooseActivity(s.ctx, &ChooseActivityInput{
		DraftID: draftID, RequestedBy: s.testCreator, Activity: "The Rookery",
	})
	s.Require().NoError(err)
}

func (s *WizardServiceTestSuite) TestDraftOwnership() {
	draftID := s.startDraft()

	_, err := s.wizardService.ChooseRole(s.ctx, &ChooseRoleInput{
		DraftID: draftID, RequestedBy: s.testOther, Role: "tank",
	})
	s.ErrorIs(err, ErrNotDraftOwner)
}

func (s *WizardServiceTestSuite) TestStepsAreStrictlyLinear() {
	draftID := s.startDraft()

	// Skipping ahead to tier choice is rejected
	_, err := s.wizardService.ChooseTier(s.ctx, &ChooseTierInput{
		DraftID: draftID, RequestedBy: s.testCreator, Tier: "10",
	})
	s.ErrorIs(err, ErrWrongStep)

	// Finalize before the flow is complete is rejected
	_, err = s.wizardService.Finalize(s.ctx, &FinalizeInput{
		DraftID: draftID, RequestedBy: s.testCreator, MessageID: "test-message-id",
	})
	s.ErrorIs(err, ErrWrongStep)
}

func (s *WizardServiceTestSuite) TestCustomTimeParsed() {
	draftID := s.startDraft()

	_, err := s.wizardService.ChooseRole(s.ctx, &ChooseRoleInput{
		DraftID: draftID, RequestedBy: s.testCreator, Role: "tank",
	})
	s.Require().NoError(err)
	_, err = s.wizardService.ChooseActivity(s.ctx, &ChooseActivityInput{
		DraftID: draftID, RequestedBy: s.testCreator, Activity: "Motherlode",
	})
	s.Require().NoError(err)
	_, err = s.wizardService.ChooseTier(s.ctx, &ChooseTierInput{
		DraftID: draftID, RequestedBy: s.testCreator, Tier: "LFG",
	})
	s.Require().NoError(err)

	chooseOut, err := s.wizardService.ChooseSchedule(s.ctx, &ChooseScheduleInput{
		DraftID: draftID, RequestedBy: s.testCreator, Choice: ScheduleChoiceCustom,
	})
	s.Require().NoError(err)
	s.True(chooseOut.NeedsCustomTime)
	s.Equal(models.StepCustomTime, chooseOut.Draft.Step)

	timeOut, err := s.wizardService.EnterCustomTime(s.ctx, &EnterCustomTimeInput{
		DraftID: draftID, RequestedBy: s.testCreator, Raw: "2025-04-19 18:00",
	})
	s.Require().NoError(err)
	s.False(timeOut.Degraded)
	s.Require().NotNil(timeOut.Draft.Schedule.At)
	s.Equal("Today at 18:00", timeOut.Draft.Schedule.Display)
	s.Equal(models.StepCommentChoice, timeOut.Draft.Step)
}

func (s *WizardServiceTestSuite) TestUnparsableCustomTimeDegrades() {
	draftID := s.startDraft()

	_, err := s.wizardService.ChooseRole(s.ctx, &ChooseRoleInput{
		DraftID: draftID, RequestedBy: s.testCreator, Role: "dps",
	})
	s.Require().NoError(err)
	_, err = s.wizardService.ChooseActivity(s.ctx, &ChooseActivityInput{
		DraftID: draftID, RequestedBy: s.testCreator, Activity: "Op Floodgate",
	})
	s.Require().NoError(err)
	_, err = s.wizardService.ChooseTier(s.ctx, &ChooseTierInput{
		DraftID: draftID, RequestedBy: s.testCreator, Tier: "8",
	})
	s.Require().NoError(err)
	_, err = s.wizardService.ChooseSchedule(s.ctx, &ChooseScheduleInput{
		DraftID: draftID, RequestedBy: s.testCreator, Choice: ScheduleChoiceCustom,
	})
	s.Require().NoError(err)

	timeOut, err := s.wizardService.EnterCustomTime(s.ctx, &EnterCustomTimeInput{
		DraftID: draftID, RequestedBy: s.testCreator, Raw: "whenever the tank logs on",
	})
	s.Require().NoError(err)
	s.True(timeOut.Degraded)
	s.Nil(timeOut.Draft.Schedule.At)
	s.Equal("whenever the tank logs on", timeOut.Draft.Schedule.Display)

	// The degraded schedule still flows through to the session
	_, err = s.wizardService.SetComment(s.ctx, &SetCommentInput{
		DraftID: draftID, RequestedBy: s.testCreator, Skip: true,
	})
	s.Require().NoError(err)

	out, err := s.wizardService.Finalize(s.ctx, &FinalizeInput{
		DraftID: draftID, RequestedBy: s.testCreator, MessageID: "test-message-id",
	})
	s.Require().NoError(err)
	s.Equal("whenever the tank logs on", out.Session.Schedule.Display)
}

func (s *WizardServiceTestSuite) TestCommentTooLongRejected() {
	draftID := s.startDraft()
	s.advanceToComment(draftID)

	_, err := s.wizardService.SetComment(s.ctx, &SetCommentInput{
		DraftID:     draftID,
		RequestedBy: s.testCreator,
		Comment:     strings.Repeat("x", 201),
	})
	s.ErrorIs(err, ErrCommentTooLong)

	// The draft is still waiting at the comment step
	got, err := s.wizardService.GetDraft(s.ctx, &GetDraftInput{
		DraftID: draftID, RequestedBy: s.testCreator,
	})
	s.Require().NoError(err)
	s.Equal(models.StepCommentChoice, got.Draft.Step)
}

func (s *WizardServiceTestSuite) TestUnknownChoicesRejected() {
	draftID := s.startDraft()

	_, err := s.wizardService.ChooseRole(s.ctx, &ChooseRoleInput{
		DraftID: draftID, RequestedBy: s.testCreator, Role: "bard",
	})
	s.ErrorIs(err, ErrUnknownRole)

	_, err = s.wizardService.ChooseRole(s.ctx, &ChooseRoleInput{
		DraftID: draftID, RequestedBy: s.testCreator, Role: "tank",
	})
	s.Require().NoError(err)

	_, err = s.wizardService.ChooseActivity(s.ctx, &ChooseActivityInput{
		DraftID: draftID, RequestedBy: s.testCreator, Activity: "Deadmines",
	})
	s.ErrorIs(err, ErrUnknownActivity)
}
