package replica

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/cluster"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/store"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/transport"
)

// JoinCluster is the leader-side onboarding handler: admit the joiner,
// snapshot the Store, and asynchronously broadcast the new membership.
func (r *Replica) JoinCluster(ctx context.Context, req *transport.JoinClusterRequest) (*transport.JoinClusterResponse, error) {
	if r.getRole() != cluster.Leader {
		return &transport.JoinClusterResponse{Success: false}, nil
	}

	newAddr := cluster.ServerAddress(req.NewAddress)
	r.Membership.AddMember(newAddr)

	reports, err := r.Store.Snapshot()
	if err != nil {
		log.Printf("replica %d: snapshot failed for joiner %s: %v", r.ID, newAddr, err)
		return &transport.JoinClusterResponse{Success: false}, nil
	}

	state, err := json.Marshal(reports)
	if err != nil {
		return nil, fmt.Errorf("join: marshaling snapshot: %w", err)
	}

	go r.broadcastMembershipUpdate(context.Background())

	return &transport.JoinClusterResponse{Success: true, State: string(state)}, nil
}

func (r *Replica) broadcastMembershipUpdate(ctx context.Context) {
	addrs := r.Membership.Addresses()
	strs := make([]string, len(addrs))
	for i, a := range addrs {
		strs[i] = string(a)
	}
	leaderAddr, _ := r.Membership.CurrentLeader()

	payload := transport.MembershipUpdatePayload{
		Addresses:     strs,
		LeaderAddress: string(leaderAddr),
		Epoch:         r.Membership.Epoch(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("replica %d: marshaling membership_update: %v", r.ID, err)
		return
	}

	r.replicateToFollowers(ctx, &transport.ReplicateOperationRequest{
		OperationType: transport.OpMembershipUpdate,
		Data:          string(data),
	}, 0)
}

// joinBackoffSchedule doubles from 1s and caps at 30s.
func joinBackoffSchedule() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 30 * time.Second}
}

// JoinAsFollower is the joiner-side path: call JoinCluster on the leader and
// load the returned snapshot, retrying with exponential backoff on failure.
func (r *Replica) JoinAsFollower(ctx context.Context, leaderAddr cluster.ServerAddress) error {
	client, err := r.client(leaderAddr)
	if err != nil {
		return fmt.Errorf("join: dialing leader %s: %w", leaderAddr, err)
	}

	var lastErr error
	for _, backoff := range joinBackoffSchedule() {
		callCtx, cancel := context.WithTimeout(ctx, replicateCallTimeout)
		resp, err := client.JoinCluster(callCtx, &transport.JoinClusterRequest{NewAddress: string(r.Address)})
		cancel()

		if err == nil && resp.Success {
			var reports []store.RiskReport
			if err := json.Unmarshal([]byte(resp.State), &reports); err != nil {
				lastErr = fmt.Errorf("join: decoding snapshot: %w", err)
			} else if err := r.Store.LoadSnapshot(reports); err != nil {
				lastErr = fmt.Errorf("join: loading snapshot: %w", err)
			} else {
				log.Printf("replica %d: joined via %s, loaded %d reports", r.ID, leaderAddr, len(reports))
				return nil
			}
		} else if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("join: leader %s rejected JoinCluster", leaderAddr)
		}

		log.Printf("replica %d: join attempt failed (%v), retrying in %s", r.ID, lastErr, backoff)
		select {
		case <-r.Clock.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("join: exhausted retries against %s: %w", leaderAddr, lastErr)
}
