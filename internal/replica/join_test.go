package replica

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/cluster"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/store"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/transport"
)

func TestJoinClusterRejectsOnFollower(t *testing.T) {
	r, _ := newTestReplica(t, 2, false, []string{"127.0.0.1:50001"})

	resp, err := r.JoinCluster(context.Background(), &transport.JoinClusterRequest{NewAddress: "127.0.0.1:50099"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestJoinClusterAdmitsJoinerAndReturnsSnapshot(t *testing.T) {
	r, _ := newTestReplica(t, 1, true, nil)

	_, err := r.Store.Append(store.RiskReport{PatientID: "P1", Timestamp: 1000, Tier: "AMBER"})
	require.NoError(t, err)

	resp, err := r.JoinCluster(context.Background(), &transport.JoinClusterRequest{NewAddress: "127.0.0.1:50099"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Contains(t, resp.State, "P1")

	_, ok := r.Membership.IDOf(cluster.ServerAddress("127.0.0.1:50099"))
	assert.True(t, ok)
}

func TestJoinAsFollowerLoadsSnapshotOnSuccess(t *testing.T) {
	leaderAddr := cluster.ServerAddress("127.0.0.1:50001")
	r, _ := newTestReplica(t, 2, false, []string{string(leaderAddr)})

	withFakeClient(r, leaderAddr, &fakeClient{
		joinClusterFn: func(context.Context, *transport.JoinClusterRequest) (*transport.JoinClusterResponse, error) {
			return &transport.JoinClusterResponse{
				Success: true,
				State:   `[{"patient_id":"P9","timestamp":500,"tier":"RED"}]`,
			}, nil
		},
	})

	err := r.JoinAsFollower(context.Background(), leaderAddr)
	require.NoError(t, err)

	rows, err := r.Store.ListByPatient("P9", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestJoinAsFollowerRetriesThenSucceeds(t *testing.T) {
	leaderAddr := cluster.ServerAddress("127.0.0.1:50001")
	r, fakeClock := newTestReplica(t, 2, false, []string{string(leaderAddr)})

	attempts := 0
	withFakeClient(r, leaderAddr, &fakeClient{
		joinClusterFn: func(context.Context, *transport.JoinClusterRequest) (*transport.JoinClusterResponse, error) {
			attempts++
			if attempts < 3 {
				return &transport.JoinClusterResponse{Success: false}, nil
			}
			return &transport.JoinClusterResponse{Success: true, State: "[]"}, nil
		},
	})

	done := make(chan error, 1)
	go func() { done <- r.JoinAsFollower(context.Background(), leaderAddr) }()

	// Advance the fake clock past the backoff schedule's first two waits,
	// giving the background goroutine a moment to register each
	// r.Clock.After call before we advance past its deadline.
	for i := 0; i < 2; i++ {
		time.Sleep(10 * time.Millisecond)
		fakeClock.Advance(5 * time.Second)
	}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("JoinAsFollower did not return after retries succeeded")
	}
	assert.Equal(t, 3, attempts)
}
