package models

// RoleKind represents a group role a participant can fill
type RoleKind string

const (
	// RoleTank is the single tank slot
	RoleTank RoleKind = "tank"

	// RoleHealer is the single healer slot
	RoleHealer RoleKind = "healer"

	// RoleDPS is one of the three damage slots
	RoleDPS RoleKind = "dps"
)

// AllRoles lists the roles in display order
var AllRoles = []RoleKind{RoleTank, RoleHealer, RoleDPS}

// roleCapacities holds the fixed slot count per role
var roleCapacities = map[RoleKind]int{
	RoleTank:   1,
	RoleHealer: 1,
	RoleDPS:    3,
}

// Capacity returns how many participants the role can hold
func (r RoleKind) Capacity() int {
	return roleCapacities[r]
}

// Label returns the display name for the role
func (r RoleKind) Label() string {
	switch r {
	case RoleTank:
		return "Tank"
	case RoleHealer:
		return "Healer"
	case RoleDPS:
		return "DPS"
	default:
		return string(r)
	}
}

// ParseRoleKind maps a raw role symbol to a RoleKind. Unknown symbols
// return false so callers can treat them as noise rather than errors.
func ParseRoleKind(raw string) (RoleKind, bool) {
	switch RoleKind(raw) {
	case RoleTank, RoleHealer, RoleDPS:
		return RoleKind(raw), true
	default:
		return "", false
	}
}

// ClaimOutcome is the result of attempting to claim a role slot
type ClaimOutcome string

const (
	// ClaimAssigned indicates the participant now holds the slot
	ClaimAssigned ClaimOutcome = "assigned"

	// ClaimAlreadyHeld indicates the participant already holds a role
	// in this session; the claim is a duplicate and was ignored
	ClaimAlreadyHeld ClaimOutcome = "already_held"

	// ClaimSlotFull indicates the target role is at capacity
	ClaimSlotFull ClaimOutcome = "slot_full"
)

// ReleaseOutcome is the result of releasing a role slot
type ReleaseOutcome string

const (
	// ReleaseDone indicates the participant was removed from the role
	ReleaseDone ReleaseOutcome = "released"

	// ReleaseNotHeld indicates the participant did not hold the role;
	// the release was a benign no-op
	ReleaseNotHeld ReleaseOutcome = "not_held"
)

// RoleSlotSet tracks which participants hold which role slots. It is a
// pure value type: concurrent access is serialized one layer up by the
// session store, not here. A participant holds at most one role across
// the whole set, and DPS assignments keep claim order.
type RoleSlotSet struct {
	// Assigned maps each role to its current holders in claim order
	Assigned map[RoleKind][]Participant
}

// NewRoleSlotSet creates an empty slot set
func NewRoleSlotSet() *RoleSlotSet {
	return &RoleSlotSet{
		Assigned: map[RoleKind][]Participant{
			RoleTank:   {},
			RoleHealer: {},
			RoleDPS:    {},
		},
	}
}

// TryClaim assigns the participant to the role if they hold no role yet
// and the role has a free slot
func (s *RoleSlotSet) TryClaim(role RoleKind, p Participant) ClaimOutcome {
	if _, held := s.RoleOf(p.ID); held {
		return ClaimAlreadyHeld
	}

	if len(s.Assigned[role]) >= role.Capacity() {
		return ClaimSlotFull
	}

	s.Assigned[role] = append(s.Assigned[role], p)
	return ClaimAssigned
}

// Release removes the participant from the role if present
func (s *RoleSlotSet) Release(role RoleKind, p Participant) ReleaseOutcome {
	holders := s.Assigned[role]
	for i, h := range holders {
		if h.ID == p.ID {
			s.Assigned[role] = append(holders[:i:i], holders[i+1:]...)
			return ReleaseDone
		}
	}
	return ReleaseNotHeld
}

// RoleOf returns the role the participant currently holds, if any
func (s *RoleSlotSet) RoleOf(participantID string) (RoleKind, bool) {
	for role, holders := range s.Assigned {
		for _, h := range holders {
			if h.ID == participantID {
				return role, true
			}
		}
	}
	return "", false
}

// Holders returns the participants assigned to the role in claim order
func (s *RoleSlotSet) Holders(role RoleKind) []Participant {
	holders := s.Assigned[role]
	out := make([]Participant, len(holders))
	copy(out, holders)
	return out
}

// Count returns the number of filled slots for the role
func (s *RoleSlotSet) Count(role RoleKind) int {
	return len(s.Assigned[role])
}

// IsFull reports whether every slot in the set is occupied
func (s *RoleSlotSet) IsFull() bool {
	for _, role := range AllRoles {
		if len(s.Assigned[role]) < role.Capacity() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the slot set
func (s *RoleSlotSet) Clone() *RoleSlotSet {
	c := &RoleSlotSet{Assigned: make(map[RoleKind][]Participant, len(s.Assigned))}
	for role, holders := range s.Assigned {
		dup := make([]Participant, len(holders))
		copy(dup, holders)
		c.Assigned[role] = dup
	}
	return c
}
