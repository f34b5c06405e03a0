package replica

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/cluster"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/events"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/transport"
)

func TestRunElectionBecomesLeaderWithNoLowerPeers(t *testing.T) {
	// self_id=1 has no lower-id peers to contact.
	r, _ := newTestReplica(t, 1, false, []string{"127.0.0.1:50002"})

	r.runElection(context.Background())

	assert.Equal(t, cluster.Leader, r.getRole())
	leaderAddr, ok := r.Membership.CurrentLeader()
	require.True(t, ok)
	assert.Equal(t, r.Address, leaderAddr)
}

func TestRunElectionAbandonsCandidacyWhenLowerPeerResponds(t *testing.T) {
	lowerPeer := cluster.ServerAddress("127.0.0.1:50001")
	// self_id=2, "127.0.0.1:50001" is positionally id=1.
	r, _ := newTestReplica(t, 2, false, []string{string(lowerPeer), "127.0.0.1:50002"})

	withFakeClient(r, lowerPeer, &fakeClient{
		electionFn: func(context.Context, *transport.ElectionRequest) (*transport.ElectionResponse, error) {
			return &transport.ElectionResponse{VoteGranted: true}, nil
		},
	})

	r.runElection(context.Background())

	assert.Equal(t, cluster.Follower, r.getRole())
}

func TestAbandonedElectionRearmsLeaseWatchdog(t *testing.T) {
	lowerPeer := cluster.ServerAddress("127.0.0.1:50001")
	r, fakeClock := newTestReplica(t, 2, false, []string{string(lowerPeer), "127.0.0.1:50002"})

	withFakeClient(r, lowerPeer, &fakeClient{
		electionFn: func(context.Context, *transport.ElectionRequest) (*transport.ElectionResponse, error) {
			return &transport.ElectionResponse{VoteGranted: true}, nil
		},
	})

	ch := make(chan *events.Event[struct{}], 1)
	events.Subscribe(r.bus, events.LeaderLost, ch, events.SubscriptionOptions{})

	r.runElection(context.Background())
	require.Equal(t, cluster.Follower, r.getRole())

	// The survivor never sends a heartbeat: the lease must expire again.
	fakeClock.Advance(11 * time.Second)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("lease watchdog was not rearmed after abandoned candidacy")
	}
}

func TestOnElectionStepsDownForLowerIDCandidate(t *testing.T) {
	r, _ := newTestReplica(t, 3, true, nil)
	require.Equal(t, cluster.Leader, r.getRole())

	resp := r.onElection(cluster.ServerID(1))

	assert.True(t, resp.VoteGranted)
	assert.Equal(t, cluster.Follower, r.getRole())
}

func TestOnElectionDoesNotStepDownForHigherIDCandidate(t *testing.T) {
	r, _ := newTestReplica(t, 1, true, nil)

	resp := r.onElection(cluster.ServerID(5))

	assert.True(t, resp.VoteGranted)
	assert.Equal(t, cluster.Leader, r.getRole())
}
