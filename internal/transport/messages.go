// Package transport is the typed request/response RPC endpoint every
// replica exposes, shared by client, replication, and coordination traffic.
//
// The wire messages below are plain Go structs rather than protoc-generated
// types: this repository doesn't run a .proto code generation step, so they
// travel over gRPC using the JSON codec in codec.go instead of the protobuf
// wire format. The snake_case JSON tags are the wire schema.
package transport

// RiskReportRequest is SendRiskReport's argument.
type RiskReportRequest struct {
	PatientID string `json:"patient_id"`
	Timestamp int64  `json:"timestamp"`
	// Inputs is [age, serum_sodium, serum_creatinine, ejection_fraction, day].
	Inputs      []float64 `json:"inputs"`
	Probability float64   `json:"probability"`
	Tier        string    `json:"tier"`
}

// RiskReportResponse is SendRiskReport's result.
type RiskReportResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	AlertSent bool   `json:"alert_sent"`
}

// ListRiskReportsRequest is ListRiskReports' argument. Count <= 0 means "all".
type ListRiskReportsRequest struct {
	PatientID string `json:"patient_id"`
	Count     int32  `json:"count"`
}

// ReportView is one row as returned to a querying client.
type ReportView struct {
	PatientID        string  `json:"patient_id"`
	Timestamp        int64   `json:"timestamp"`
	Age              float64 `json:"age"`
	SerumSodium      float64 `json:"serum_sodium"`
	SerumCreatinine  float64 `json:"serum_creatinine"`
	EjectionFraction float64 `json:"ejection_fraction"`
	Day              int64   `json:"day"`
	Probability      float64 `json:"probability"`
	Tier             string  `json:"tier"`
	AlertSent        bool    `json:"alert_sent"`
}

// ListRiskReportsResponse is ListRiskReports' result.
type ListRiskReportsResponse struct {
	Success bool         `json:"success"`
	Reports []ReportView `json:"reports"`
}

// GetLeaderInfoRequest is GetLeaderInfo's argument (always empty).
type GetLeaderInfoRequest struct{}

// GetLeaderInfoResponse carries the responder's view of the leader and the
// full known replica address list, so clients can grow their fallback set.
type GetLeaderInfoResponse struct {
	Success          bool     `json:"success"`
	LeaderAddress    string   `json:"leader_address"`
	ReplicaAddresses []string `json:"replica_addresses"`
}

// HeartbeatRequest is sent leader -> follower for liveness.
type HeartbeatRequest struct {
	LeaderID      int32  `json:"leader_id"`
	LeaderAddress string `json:"leader_address"`
	Timestamp     int64  `json:"timestamp"`
	Epoch         uint64 `json:"epoch"`
}

// HeartbeatResponse acknowledges a Heartbeat.
type HeartbeatResponse struct {
	Success bool `json:"success"`
}

// ElectionRequest is sent follower -> lower-id peers to request a vote.
type ElectionRequest struct {
	CandidateID int32 `json:"candidate_id"`
}

// ElectionResponse is always VoteGranted=true: the protocol's decision is
// "who responded", not vote counting.
type ElectionResponse struct {
	VoteGranted bool `json:"vote_granted"`
}

// ReplicateOperationRequest is the envelope for leader -> follower write
// propagation. Data is a JSON object whose shape depends on OperationType.
type ReplicateOperationRequest struct {
	OperationType string `json:"operation_type"`
	Data          string `json:"data"`
}

// ReplicateOperationResponse acknowledges a replicated operation.
type ReplicateOperationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JoinClusterRequest is sent joiner -> leader to onboard.
type JoinClusterRequest struct {
	NewAddress string `json:"new_address"`
}

// JoinClusterResponse carries a full state snapshot as a JSON-encoded array
// of reports.
type JoinClusterResponse struct {
	Success bool   `json:"success"`
	State   string `json:"state"`
}

// Recognized ReplicateOperationRequest.OperationType values.
const (
	OpRiskReport       = "risk_report"
	OpMembershipUpdate = "membership_update"
)

// MembershipUpdatePayload is the JSON shape carried as Data when
// OperationType == OpMembershipUpdate.
type MembershipUpdatePayload struct {
	Addresses     []string `json:"addresses"`
	LeaderAddress string   `json:"leader_address"`
	Epoch         uint64   `json:"epoch"`
}
