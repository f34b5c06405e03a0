package replica

import (
	"context"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/cluster"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/transport"
)

// ListRiskReports answers a client query against the local Store.
func (r *Replica) ListRiskReports(_ context.Context, req *transport.ListRiskReportsRequest) (*transport.ListRiskReportsResponse, error) {
	if req.PatientID == "" {
		return &transport.ListRiskReportsResponse{Success: false}, nil
	}

	rows, err := r.Store.ListByPatient(req.PatientID, int(req.Count))
	if err != nil {
		return &transport.ListRiskReportsResponse{Success: false}, nil
	}

	views := make([]transport.ReportView, len(rows))
	for i, row := range rows {
		views[i] = transport.ReportView{
			PatientID:        row.PatientID,
			Timestamp:        row.Timestamp,
			Age:              row.Age,
			SerumSodium:      row.SerumSodium,
			SerumCreatinine:  row.SerumCreatinine,
			EjectionFraction: row.EjectionFraction,
			Day:              row.Day,
			Probability:      row.Probability,
			Tier:             row.Tier,
			AlertSent:        row.AlertSent,
		}
	}
	return &transport.ListRiskReportsResponse{Success: true, Reports: views}, nil
}

// GetLeaderInfo answers leader discovery and membership queries.
func (r *Replica) GetLeaderInfo(_ context.Context, _ *transport.GetLeaderInfoRequest) (*transport.GetLeaderInfoResponse, error) {
	leaderAddr, _ := r.Membership.CurrentLeader()
	addrs := r.Membership.Addresses()
	strs := make([]string, len(addrs))
	for i, a := range addrs {
		strs[i] = string(a)
	}
	return &transport.GetLeaderInfoResponse{
		Success:          true,
		LeaderAddress:    string(leaderAddr),
		ReplicaAddresses: strs,
	}, nil
}

// Heartbeat applies an incoming leader liveness message.
func (r *Replica) Heartbeat(_ context.Context, req *transport.HeartbeatRequest) (*transport.HeartbeatResponse, error) {
	r.onHeartbeat(req)
	return &transport.HeartbeatResponse{Success: true}, nil
}

// Election answers an incoming vote request.
func (r *Replica) Election(_ context.Context, req *transport.ElectionRequest) (*transport.ElectionResponse, error) {
	return r.onElection(cluster.ServerID(req.CandidateID)), nil
}
