package peer

import (
	"github.com/golang/glog"

	"github.com/robotalks/canpong/pkg/protocol"
)

// Arbiter tracks the local role and the announced role of the peer.
type Arbiter struct {
	Assignment Assignment
	Policy     ConflictPolicy
	Group      int
	Opponent   int

	role         Role
	claimed      bool
	peerIsMaster bool
	announced    bool
}

// NewArbiter creates an Arbiter in its initial role.
func NewArbiter(assign Assignment, policy ConflictPolicy, group, opponent int) *Arbiter {
	a := &Arbiter{Assignment: assign, Policy: policy, Group: group, Opponent: opponent}
	a.role = a.derive()
	return a
}

// Role returns the current local role.
func (a *Arbiter) Role() Role {
	return a.role
}

// PeerIsMaster returns the last announced role of the peer.
func (a *Arbiter) PeerIsMaster() bool {
	return a.peerIsMaster
}

// Tick processes the local trigger once per tick and reports whether the
// role must be announced this tick.
func (a *Arbiter) Tick(assumeMaster bool) (Role, bool) {
	if assumeMaster && a.Assignment == Negotiated && !a.claimed {
		switch {
		case a.Policy == Yield && a.peerIsMaster:
			glog.V(2).Infof("group %d: peer is master, master trigger ignored", a.Group)
		case a.Policy == LowestGroup && a.peerIsMaster && a.Group > a.Opponent:
			glog.V(2).Infof("group %d: group %d is master, master trigger ignored", a.Group, a.Opponent)
		default:
			a.claimed = true
		}
	}
	a.update()

	announce := true
	if a.Assignment != Negotiated {
		announce = !a.announced
	}
	a.announced = true
	return a.role, announce
}

// Observe records a role announcement received from the peer.
func (a *Arbiter) Observe(msg protocol.RoleAnnouncement) {
	if msg.Master != a.peerIsMaster {
		glog.V(1).Infof("group %d: peer master=%v", a.Group, msg.Master)
	}
	a.peerIsMaster = msg.Master
	if a.claimed && msg.Master && a.Policy == LowestGroup && a.Group > a.Opponent {
		glog.Infof("group %d: both peers master, yielding to group %d", a.Group, a.Opponent)
		a.claimed = false
	}
	a.update()
}

func (a *Arbiter) update() {
	if role := a.derive(); role != a.role {
		glog.Infof("group %d: role %v -> %v", a.Group, a.role, role)
		a.role = role
	}
}

func (a *Arbiter) derive() Role {
	switch a.Assignment {
	case StaticMaster:
		return Master
	case StaticSlave:
		return Slave
	}
	switch {
	case a.claimed:
		return Master
	case a.peerIsMaster:
		return Slave
	}
	return Undetermined
}
