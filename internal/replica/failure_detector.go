package replica

import (
	"context"
	"log"
	"time"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/cluster"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/events"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/transport"
)

// startHeartbeatLoop is the leader-side failure detector mode: every
// HeartbeatInterval, fire Heartbeat at every peer, best-effort. Driven by
// the injectable clock.Clock instead of time.Sleep, so tests can
// fast-forward it deterministically.
func (r *Replica) startHeartbeatLoop() {
	r.heartbeatTicker = r.Clock.NewTicker(r.HeartbeatInterval)
	go func() {
		for {
			select {
			case <-r.heartbeatTicker.C():
				r.sendHeartbeats()
			case <-r.watchdogStop:
				return
			}
		}
	}()
}

func (r *Replica) sendHeartbeats() {
	epoch := r.Membership.Epoch()
	req := &transport.HeartbeatRequest{
		LeaderID:      int32(r.ID),
		LeaderAddress: string(r.Address),
		Timestamp:     r.Clock.Now().UnixMilli(),
		Epoch:         epoch,
	}

	for _, peer := range r.Membership.Peers() {
		peer := peer
		go func() {
			client, err := r.client(peer)
			if err != nil {
				log.Printf("heartbeat: no client for %s: %v", peer, err)
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if _, err := client.Heartbeat(ctx, req); err != nil {
				log.Printf("heartbeat: %s unreachable: %v", peer, err)
			}
		}()
	}
}

// startFollowerWatchdog is the follower-side failure detector mode: if no
// heartbeat arrives within LeaseTimeout, publish LeaderLost.
func (r *Replica) startFollowerWatchdog() {
	go func() {
		for {
			waitFor := r.timeUntilLeaseExpiry()
			select {
			case <-r.Clock.After(waitFor):
				if r.getRole() == cluster.Leader {
					continue
				}
				if r.timeUntilLeaseExpiry() > 0 {
					// A heartbeat arrived while we were waiting; recheck.
					continue
				}
				log.Printf("replica %d: lease expired, raising leader lost", r.ID)
				r.Membership.ClearLeader()
				events.Publish(r.bus, events.New(events.LeaderLost, struct{}{}))
				return
			case <-r.watchdogStop:
				return
			}
		}
	}()
}

func (r *Replica) timeUntilLeaseExpiry() time.Duration {
	elapsed := r.Clock.Now().Sub(r.getLastHeartbeatAt())
	remaining := r.LeaseTimeout - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// maybeJoinOnFirstHeartbeat runs once, on the first heartbeat a follower
// receives: a brand-new follower that booted with a pre-populated member
// list but no local data asks the leader for a snapshot.
func (r *Replica) maybeJoinOnFirstHeartbeat(leaderAddr cluster.ServerAddress) {
	r.joinOnce.Do(func() {
		rows, err := r.Store.Snapshot()
		if err != nil || len(rows) > 0 {
			return
		}
		go func() {
			if err := r.JoinAsFollower(context.Background(), leaderAddr); err != nil {
				log.Printf("replica %d: join-on-first-heartbeat failed: %v", r.ID, err)
			}
		}()
	})
}

// onHeartbeat applies an incoming Heartbeat: updates the current leader
// address and resets the lease. A heartbeat carrying a stale epoch is
// ignored outright.
//
// When self is also a leader, the conflict resolves by epoch first, then by
// id: a strictly higher epoch wins outright (the sender won a later
// election), and at equal epochs the lower id keeps the role while the
// higher-id rival demotes itself.
func (r *Replica) onHeartbeat(req *transport.HeartbeatRequest) {
	epoch := r.Membership.Epoch()
	if req.Epoch < epoch {
		return
	}

	if r.getRole() == cluster.Leader {
		if req.Epoch == epoch && cluster.ServerID(req.LeaderID) > r.ID {
			// Rival with a higher id at our epoch: it demotes itself when our
			// next heartbeat reaches it.
			return
		}
		log.Printf("replica %d: stepping down, heartbeat from leader %d at epoch %d", r.ID, req.LeaderID, req.Epoch)
		r.setRole(cluster.Follower)
		if r.heartbeatTicker != nil {
			r.heartbeatTicker.Stop()
		}
		r.setLastHeartbeatAt(r.Clock.Now())
		r.Membership.SetLeader(cluster.ServerAddress(req.LeaderAddress), req.Epoch)
		r.startFollowerWatchdog()
		return
	}

	r.setLastHeartbeatAt(r.Clock.Now())
	r.Membership.SetLeader(cluster.ServerAddress(req.LeaderAddress), req.Epoch)
	r.maybeJoinOnFirstHeartbeat(cluster.ServerAddress(req.LeaderAddress))
}
