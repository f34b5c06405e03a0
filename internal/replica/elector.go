package replica

import (
	"context"
	"log"
	"time"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/cluster"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/transport"
)

// electionCallTimeout is kept short so a dead peer cannot stall an election.
const electionCallTimeout = time.Second

// runElection implements the lowest-id protocol: contact
// every known peer with a lower id; if any responds, stand down; if none
// respond within the window, declare self leader.
func (r *Replica) runElection(ctx context.Context) {
	if r.getRole() == cluster.Leader {
		return
	}

	log.Printf("replica %d: starting election", r.ID)

	lowerPeers := r.Membership.LowerIDPeers()
	if len(lowerPeers) == 0 {
		r.becomeLeader()
		return
	}

	respCh := make(chan bool, len(lowerPeers))
	for _, peer := range lowerPeers {
		peer := peer
		go func() {
			client, err := r.client(peer)
			if err != nil {
				respCh <- false
				return
			}
			callCtx, cancel := context.WithTimeout(ctx, electionCallTimeout)
			defer cancel()
			_, err = client.Election(callCtx, &transport.ElectionRequest{CandidateID: int32(r.ID)})
			respCh <- err == nil
		}()
	}

	deadline := r.Clock.After(electionCallTimeout + 200*time.Millisecond)
	for i := 0; i < len(lowerPeers); i++ {
		select {
		case ok := <-respCh:
			if ok {
				log.Printf("replica %d: abandoning candidacy, a lower-id peer responded", r.ID)
				// Rearm the lease watchdog while waiting for the surviving
				// lower-id peer's heartbeats; if it never leads, the lease
				// expires again and a fresh election starts.
				r.setLastHeartbeatAt(r.Clock.Now())
				r.startFollowerWatchdog()
				return
			}
		case <-deadline:
			i = len(lowerPeers)
		}
	}

	r.becomeLeader()
}

func (r *Replica) becomeLeader() {
	epoch := r.Membership.BecomeLeader()
	r.setRole(cluster.Leader)
	log.Printf("replica %d: declares itself leader at epoch %d", r.ID, epoch)
	if r.heartbeatTicker != nil {
		r.heartbeatTicker.Stop()
	}
	r.startHeartbeatLoop()
	r.sendHeartbeats()
}

// onElection handles an incoming Election RPC: respond vote_granted=true
// unconditionally. If the candidate has a lower id
// than self and self currently believes itself leader, self steps down to
// follower. There is no separate candidate role: an election running on this
// replica is not interrupted here, and ends through its own Election calls
// to lower-id peers in runElection.
func (r *Replica) onElection(candidateID cluster.ServerID) *transport.ElectionResponse {
	if candidateID < r.ID && r.getRole() == cluster.Leader {
		log.Printf("replica %d: stepping down for lower-id candidate %d", r.ID, candidateID)
		r.setRole(cluster.Follower)
		if r.heartbeatTicker != nil {
			r.heartbeatTicker.Stop()
		}
		r.setLastHeartbeatAt(r.Clock.Now())
		r.startFollowerWatchdog()
	}
	return &transport.ElectionResponse{VoteGranted: true}
}
