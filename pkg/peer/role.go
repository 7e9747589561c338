package peer

import "fmt"

// Role is the self-designated role of a peer.
type Role int

// Roles
const (
	Undetermined Role = iota
	Master
	Slave
)

func (r Role) String() string {
	switch r {
	case Undetermined:
		return "undetermined"
	case Master:
		return "master"
	case Slave:
		return "slave"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Assignment selects how the role is determined.
type Assignment int

// Assignments
const (
	// Negotiated starts Undetermined and claims Master on the local trigger.
	Negotiated Assignment = iota
	// StaticMaster is always Master.
	StaticMaster
	// StaticSlave is always Slave.
	StaticSlave
)

func (a Assignment) String() string {
	switch a {
	case Negotiated:
		return "negotiated"
	case StaticMaster:
		return "master"
	case StaticSlave:
		return "slave"
	}
	return fmt.Sprintf("assignment(%d)", int(a))
}

// ParseAssignment parses the textual form used in flags and config files.
func ParseAssignment(s string) (Assignment, error) {
	switch s {
	case "", "negotiated":
		return Negotiated, nil
	case "master":
		return StaticMaster, nil
	case "slave":
		return StaticSlave, nil
	}
	return Negotiated, fmt.Errorf("unknown role assignment %q", s)
}

// ConflictPolicy decides what happens when both peers want to be Master.
type ConflictPolicy int

// Conflict policies
const (
	// Race lets both peers be Master, each overwriting the other's ball.
	Race ConflictPolicy = iota
	// Yield ignores the local trigger while the peer announces Master.
	Yield
	// LowestGroup keeps the peer with the lower group number as Master.
	LowestGroup
)

func (p ConflictPolicy) String() string {
	switch p {
	case Race:
		return "race"
	case Yield:
		return "yield"
	case LowestGroup:
		return "lowest-group"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParseConflictPolicy parses the textual form used in flags and config files.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch s {
	case "", "race":
		return Race, nil
	case "yield":
		return Yield, nil
	case "lowest-group":
		return LowestGroup, nil
	}
	return Race, fmt.Errorf("unknown conflict policy %q", s)
}
