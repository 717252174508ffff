package models

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type RoleSlotSetTestSuite struct {
	suite.Suite
	slots *RoleSlotSet

	testTank   Participant
	testHealer Participant
	testDPS    Participant
}

func (s *RoleSlotSetTestSuite) SetupTest() {
	s.slots = NewRoleSlotSet()

	s.testTank = Participant{ID: "tank-id", Name: "Tanky"}
	s.testHealer = Participant{ID: "healer-id", Name: "Heals"}
	s.testDPS = Participant{ID: "dps-id", Name: "Pewpew"}
}

func TestRoleSlotSetTestSuite(t *testing.T) {
	suite.Run(t, new(RoleSlotSetTestSuite))
}

func (s *RoleSlotSetTestSuite) TestClaimAssignsSlot() {
	outcome := s.slots.TryClaim(RoleTank, s.testTank)
	s.Equal(ClaimAssigned, outcome)

	role, held := s.slots.RoleOf(s.testTank.ID)
	s.True(held)
	s.Equal(RoleTank, role)
}

func (s *RoleSlotSetTestSuite) TestParticipantHoldsAtMostOneRole() {
	outcome := s.slots.TryClaim(RoleTank, s.testTank)
	s.Equal(ClaimAssigned, outcome)

	// Same participant claiming a different role is a duplicate event
	outcome = s.slots.TryClaim(RoleDPS, s.testTank)
	s.Equal(ClaimAlreadyHeld, outcome)

	// State is unchanged
	s.Equal(1, s.slots.Count(RoleTank))
	s.Equal(0, s.slots.Count(RoleDPS))
}

func (s *RoleSlotSetTestSuite) TestDuplicateClaimOfSameRole() {
	s.Equal(ClaimAssigned, s.slots.TryClaim(RoleHealer, s.testHealer))
	s.Equal(ClaimAlreadyHeld, s.slots.TryClaim(RoleHealer, s.testHealer))
	s.Equal(1, s.slots.Count(RoleHealer))
}

func (s *RoleSlotSetTestSuite) TestSingleSlotCapacity() {
	s.Equal(ClaimAssigned, s.slots.TryClaim(RoleTank, s.testTank))

	other := Participant{ID: "other-id", Name: "Other"}
	outcome := s.slots.TryClaim(RoleTank, other)
	s.Equal(ClaimSlotFull, outcome)

	// The original holder keeps the slot
	holders := s.slots.Holders(RoleTank)
	s.Len(holders, 1)
	s.Equal(s.testTank.ID, holders[0].ID)
}

func (s *RoleSlotSetTestSuite) TestDPSCapacityAndClaimOrder() {
	first := Participant{ID: "dps-1", Name: "First"}
	second := Participant{ID: "dps-2", Name: "Second"}
	third := Participant{ID: "dps-3", Name: "Third"}
	fourth := Participant{ID: "dps-4", Name: "Fourth"}

	s.Equal(ClaimAssigned, s.slots.TryClaim(RoleDPS, first))
	s.Equal(ClaimAssigned, s.slots.TryClaim(RoleDPS, second))
	s.Equal(ClaimAssigned, s.slots.TryClaim(RoleDPS, third))
	s.Equal(ClaimSlotFull, s.slots.TryClaim(RoleDPS, fourth))

	// First-claimed, first-listed
	holders := s.slots.Holders(RoleDPS)
	s.Require().Len(holders, 3)
	s.Equal("dps-1", holders[0].ID)
	s.Equal("dps-2", holders[1].ID)
	s.Equal("dps-3", holders[2].ID)
}

func (s *RoleSlotSetTestSuite) TestReleaseFreesSlot() {
	s.Equal(ClaimAssigned, s.slots.TryClaim(RoleTank, s.testTank))
	s.Equal(ReleaseDone, s.slots.Release(RoleTank, s.testTank))

	_, held := s.slots.RoleOf(s.testTank.ID)
	s.False(held)

	// The slot can be claimed again
	other := Participant{ID: "other-id", Name: "Other"}
	s.Equal(ClaimAssigned, s.slots.TryClaim(RoleTank, other))
}

func (s *RoleSlotSetTestSuite) TestReleaseNotHeldIsNoOp() {
	s.Equal(ReleaseNotHeld, s.slots.Release(RoleTank, s.testTank))

	// Holding a different role does not release either
	s.Equal(ClaimAssigned, s.slots.TryClaim(RoleDPS, s.testDPS))
	s.Equal(ReleaseNotHeld, s.slots.Release(RoleTank, s.testDPS))
	s.Equal(1, s.slots.Count(RoleDPS))
}

func (s *RoleSlotSetTestSuite) TestIsFull() {
	s.False(s.slots.IsFull())

	s.slots.TryClaim(RoleTank, s.testTank)
	s.slots.TryClaim(RoleHealer, s.testHealer)
	s.slots.TryClaim(RoleDPS, Participant{ID: "dps-1"})
	s.slots.TryClaim(RoleDPS, Participant{ID: "dps-2"})
	s.False(s.slots.IsFull())

	s.slots.TryClaim(RoleDPS, Participant{ID: "dps-3"})
	s.True(s.slots.IsFull())
}

func (s *RoleSlotSetTestSuite) TestCloneIsIndependent() {
	s.slots.TryClaim(RoleTank, s.testTank)

	clone := s.slots.Clone()
	clone.TryClaim(RoleHealer, s.testHealer)
	clone.Release(RoleTank, s.testTank)

	s.Equal(1, s.slots.Count(RoleTank))
	s.Equal(0, s.slots.Count(RoleHealer))
}

func TestParseRoleKind(t *testing.T) {
	role, ok := ParseRoleKind("tank")
	if !ok || role != RoleTank {
		t.Fatalf("expected tank, got %q ok=%v", role, ok)
	}

	if _, ok := ParseRoleKind("bard"); ok {
		t.Fatal("unknown role symbol should not parse")
	}
}
