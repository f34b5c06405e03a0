package cluster

import "sync"

// Membership is the authoritative, process-local list of replica addresses
// known to this process, plus the address (and epoch) of whoever this
// process currently believes leads the cluster.
//
// A single mutex guards all fields; no reader holds it across network I/O.
type Membership struct {
	mu sync.RWMutex

	selfID      ServerID
	selfAddress ServerAddress

	// addresses is the ordered set of known replica addresses, including self.
	addresses []ServerAddress

	currentLeader ServerAddress
	// epoch increases by one on every election this process completes, and
	// is raised to any higher epoch learned through SetLeader.
	epoch uint64

	// memberIDs assigns each known address its election rank: the initial
	// list is numbered by position (1-based), matching every replica's
	// configured self_id when all processes share the same initial address
	// order; a joiner added later gets the next unused id.
	memberIDs map[ServerAddress]ServerID
}

// New builds a Membership seeded from configuration. initial is the starting
// address list; selfAddress is added if not already present.
func New(selfID ServerID, selfAddress ServerAddress, initial []ServerAddress) *Membership {
	addrs := make([]ServerAddress, 0, len(initial)+1)
	seen := make(map[ServerAddress]bool, len(initial)+1)
	for _, a := range initial {
		if !seen[a] {
			addrs = append(addrs, a)
			seen[a] = true
		}
	}
	if !seen[selfAddress] {
		addrs = append(addrs, selfAddress)
	}

	ids := make(map[ServerAddress]ServerID, len(addrs))
	for i, a := range addrs {
		ids[a] = ServerID(i + 1)
	}
	ids[selfAddress] = selfID

	return &Membership{
		selfID:      selfID,
		selfAddress: selfAddress,
		addresses:   addrs,
		memberIDs:   ids,
	}
}

// SelfID returns this replica's election rank.
func (m *Membership) SelfID() ServerID { return m.selfID }

// SelfAddress returns this replica's own address.
func (m *Membership) SelfAddress() ServerAddress { return m.selfAddress }

// Addresses returns a copy of the full known address list, including self.
func (m *Membership) Addresses() []ServerAddress {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ServerAddress, len(m.addresses))
	copy(out, m.addresses)
	return out
}

// Peers returns every known address except self.
func (m *Membership) Peers() []ServerAddress {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ServerAddress, 0, len(m.addresses))
	for _, a := range m.addresses {
		if a != m.selfAddress {
			out = append(out, a)
		}
	}
	return out
}

// CurrentLeader returns the address of the replica this process currently
// believes leads the cluster, and whether one is known.
func (m *Membership) CurrentLeader() (ServerAddress, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentLeader, m.currentLeader != ""
}

// Epoch returns the most recently observed leadership epoch.
func (m *Membership) Epoch() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch
}

// SetLeader records a newly observed leader and its epoch. A lower epoch
// than the one already recorded is ignored, so a stale heartbeat from a
// demoted leader cannot resurrect it; an equal epoch is accepted.
func (m *Membership) SetLeader(addr ServerAddress, epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch < m.epoch {
		return
	}
	m.currentLeader = addr
	m.epoch = epoch
}

// ClearLeader forgets the current leader, e.g. on lease timeout.
func (m *Membership) ClearLeader() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentLeader = ""
}

// BecomeLeader installs self as leader at a freshly incremented epoch and
// returns the new epoch.
func (m *Membership) BecomeLeader() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.currentLeader = m.selfAddress
	return m.epoch
}

// AddMember adds addr to the known address list if not already present,
// assigning it the next unused election id. Returns true if it was newly
// added.
func (m *Membership) AddMember(addr ServerAddress) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.addresses {
		if a == addr {
			return false
		}
	}
	m.addresses = append(m.addresses, addr)
	m.memberIDs[addr] = m.nextIDLocked()
	return true
}

// ReplaceAll atomically replaces the known address list, e.g. on receipt of
// a membership_update replication payload. self is re-added if missing.
// Addresses already known keep their election id; brand new ones are
// assigned the next unused id, in list order.
func (m *Membership) ReplaceAll(addrs []ServerAddress) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ServerAddress, 0, len(addrs)+1)
	seen := make(map[ServerAddress]bool, len(addrs)+1)
	for _, a := range addrs {
		if !seen[a] {
			out = append(out, a)
			seen[a] = true
		}
	}
	if !seen[m.selfAddress] {
		out = append(out, m.selfAddress)
	}
	m.addresses = out

	for _, a := range out {
		if _, ok := m.memberIDs[a]; !ok {
			m.memberIDs[a] = m.nextIDLocked()
		}
	}
}

// nextIDLocked returns one more than the largest election id already
// assigned. Caller must hold mu.
func (m *Membership) nextIDLocked() ServerID {
	var max ServerID
	for _, id := range m.memberIDs {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// IDOf returns the election id assigned to addr, if known.
func (m *Membership) IDOf(addr ServerAddress) (ServerID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.memberIDs[addr]
	return id, ok
}

// LowerIDPeers returns every known peer address (excluding self) whose
// election id is lower than self's, the set a candidate must contact before
// declaring leadership.
func (m *Membership) LowerIDPeers() []ServerAddress {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ServerAddress
	for _, a := range m.addresses {
		if a == m.selfAddress {
			continue
		}
		if id, ok := m.memberIDs[a]; ok && id < m.selfID {
			out = append(out, a)
		}
	}
	return out
}
