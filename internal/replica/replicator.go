package replica

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/cluster"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/config"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/store"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/transport"
)

// ErrNotLeader's text is put in SendRiskReport's response message on a
// follower; the call itself returns a nil error.
var ErrNotLeader = errors.New("replica: not leader")

// ErrInvalidTier's text is put in SendRiskReport's response message when a
// client submits a GREEN or unknown tier; the call returns a nil error.
var ErrInvalidTier = errors.New("replica: invalid tier")

const replicateCallTimeout = 5 * time.Second

// SendRiskReport is the leader-side write path: validate, append locally,
// fan out to followers, alert on RED.
func (r *Replica) SendRiskReport(ctx context.Context, req *transport.RiskReportRequest) (*transport.RiskReportResponse, error) {
	if r.getRole() != cluster.Leader {
		leaderAddr, _ := r.Membership.CurrentLeader()
		return &transport.RiskReportResponse{
			Success: false,
			Message: fmt.Sprintf("%s; current leader is %q", ErrNotLeader, leaderAddr),
		}, nil
	}

	if req.Tier != "AMBER" && req.Tier != "RED" {
		return &transport.RiskReportResponse{Success: false, Message: fmt.Sprintf("%s: must be AMBER or RED", ErrInvalidTier)}, nil
	}
	if len(req.Inputs) != 5 {
		return &transport.RiskReportResponse{Success: false, Message: "invalid report: expected 5 inputs"}, nil
	}

	report := store.RiskReport{
		PatientID:        req.PatientID,
		Timestamp:        req.Timestamp,
		Age:              req.Inputs[0],
		SerumSodium:      req.Inputs[1],
		SerumCreatinine:  req.Inputs[2],
		EjectionFraction: req.Inputs[3],
		Day:              int64(req.Inputs[4]),
		Probability:      req.Probability,
		Tier:             req.Tier,
	}

	localID, err := r.Store.Append(report)
	if err != nil {
		log.Printf("replica %d: storage failure on SendRiskReport: %v", r.ID, err)
		return &transport.RiskReportResponse{Success: false, Message: "storage unavailable"}, nil
	}
	report.LocalID = localID

	// The replication envelope never carries LocalID: it is per-replica and
	// non-identifying. Each follower assigns its own.
	payload := report
	payload.LocalID = 0
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("replicator: marshaling risk_report payload: %w", err)
	}

	need := 1
	if r.ReplicationPolicy == config.Majority {
		need = (len(r.Membership.Peers()) + 1) / 2
	}
	acked := r.replicateToFollowers(ctx, &transport.ReplicateOperationRequest{
		OperationType: transport.OpRiskReport,
		Data:          string(data),
	}, need)

	if r.ReplicationPolicy == config.Majority && acked < need {
		// The local write stays durable; a follower that missed it converges
		// via a later retry or state transfer.
		log.Printf("replica %d: majority policy not met (%d/%d acked)", r.ID, acked, need)
		return &transport.RiskReportResponse{Success: false, Message: "replication quorum not reached"}, nil
	}

	alertSent := false
	if report.Tier == "RED" {
		if err := r.Alert.Notify(ctx, report); err != nil {
			log.Printf("replica %d: alert sink failed for local_id=%d: %v", r.ID, localID, err)
		} else {
			if err := r.Store.MarkAlertSent(localID); err != nil {
				log.Printf("replica %d: marking alert_sent failed for local_id=%d: %v", r.ID, localID, err)
			}
			alertSent = true
		}
	}

	return &transport.RiskReportResponse{Success: true, Message: "risk report received and stored", AlertSent: alertSent}, nil
}

// replicateToFollowers fans req out to every peer in parallel and waits
// until need followers have acked, or all have failed/timed out.
// need <= 0 waits for every peer to respond. Returns the
// number of acks seen before returning; a slow peer's ack that arrives after
// the threshold was met lands in the buffered channel and is not counted.
func (r *Replica) replicateToFollowers(ctx context.Context, req *transport.ReplicateOperationRequest, need int) int {
	peers := r.Membership.Peers()
	if len(peers) == 0 {
		return 0
	}

	results := make(chan bool, len(peers))
	for _, peer := range peers {
		peer := peer
		go func() {
			client, err := r.client(peer)
			if err != nil {
				log.Printf("replicate: no client for %s: %v", peer, err)
				results <- false
				return
			}
			callCtx, cancel := context.WithTimeout(ctx, replicateCallTimeout)
			defer cancel()
			resp, err := client.ReplicateOperation(callCtx, req)
			if err != nil {
				log.Printf("replicate: %s failed: %v", peer, err)
				results <- false
				return
			}
			results <- resp.Success
		}()
	}

	acked := 0
	for i := 0; i < len(peers); i++ {
		if <-results {
			acked++
			if need > 0 && acked >= need {
				return acked
			}
		}
	}
	return acked
}

// ReplicateOperation is the follower-side apply path.
func (r *Replica) ReplicateOperation(ctx context.Context, req *transport.ReplicateOperationRequest) (*transport.ReplicateOperationResponse, error) {
	switch req.OperationType {
	case transport.OpRiskReport:
		var report store.RiskReport
		if err := json.Unmarshal([]byte(req.Data), &report); err != nil {
			return &transport.ReplicateOperationResponse{Success: false, Message: "malformed risk_report payload"}, nil
		}
		if _, err := r.Store.Append(report); err != nil {
			return &transport.ReplicateOperationResponse{Success: false, Message: "storage unavailable"}, nil
		}
		return &transport.ReplicateOperationResponse{Success: true}, nil

	case transport.OpMembershipUpdate:
		var payload transport.MembershipUpdatePayload
		if err := json.Unmarshal([]byte(req.Data), &payload); err != nil {
			return &transport.ReplicateOperationResponse{Success: false, Message: "malformed membership_update payload"}, nil
		}
		addrs := make([]cluster.ServerAddress, 0, len(payload.Addresses))
		for _, a := range payload.Addresses {
			addrs = append(addrs, cluster.ServerAddress(a))
		}
		r.Membership.ReplaceAll(addrs)
		r.Membership.SetLeader(cluster.ServerAddress(payload.LeaderAddress), payload.Epoch)
		return &transport.ReplicateOperationResponse{Success: true}, nil

	default:
		return &transport.ReplicateOperationResponse{Success: false, Message: "unrecognized operation_type"}, nil
	}
}
