package replica

import (
	"sync"
	"time"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/cluster"
)

// roleState is the mutex-guarded role and liveness bookkeeping a Replica
// keeps on top of cluster.Membership's leader/epoch view, a small
// getter/setter struct in the same mutex-guarded-state idiom as the rest
// of this package.
type roleState struct {
	mu sync.RWMutex

	role            cluster.Role
	lastHeartbeatAt time.Time
}

func (s *roleState) getRole() cluster.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *roleState) setRole(r cluster.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = r
}

func (s *roleState) getLastHeartbeatAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastHeartbeatAt
}

func (s *roleState) setLastHeartbeatAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHeartbeatAt = t
}
