package replica

import (
	"context"

	"google.golang.org/grpc"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/transport"
)

// fakeClient is a hand-rolled transport.ReplicaServiceClient stand-in,
// avoiding a real gRPC dial in unit tests. Every method is backed by an
// overridable func field, defaulting to a successful no-op response.
type fakeClient struct {
	sendRiskReportFn      func(context.Context, *transport.RiskReportRequest) (*transport.RiskReportResponse, error)
	listRiskReportsFn     func(context.Context, *transport.ListRiskReportsRequest) (*transport.ListRiskReportsResponse, error)
	getLeaderInfoFn       func(context.Context, *transport.GetLeaderInfoRequest) (*transport.GetLeaderInfoResponse, error)
	heartbeatFn           func(context.Context, *transport.HeartbeatRequest) (*transport.HeartbeatResponse, error)
	electionFn            func(context.Context, *transport.ElectionRequest) (*transport.ElectionResponse, error)
	replicateOperationFn  func(context.Context, *transport.ReplicateOperationRequest) (*transport.ReplicateOperationResponse, error)
	joinClusterFn         func(context.Context, *transport.JoinClusterRequest) (*transport.JoinClusterResponse, error)
}

func (f *fakeClient) SendRiskReport(ctx context.Context, in *transport.RiskReportRequest, _ ...grpc.CallOption) (*transport.RiskReportResponse, error) {
	if f.sendRiskReportFn != nil {
		return f.sendRiskReportFn(ctx, in)
	}
	return &transport.RiskReportResponse{Success: true}, nil
}

func (f *fakeClient) ListRiskReports(ctx context.Context, in *transport.ListRiskReportsRequest, _ ...grpc.CallOption) (*transport.ListRiskReportsResponse, error) {
	if f.listRiskReportsFn != nil {
		return f.listRiskReportsFn(ctx, in)
	}
	return &transport.ListRiskReportsResponse{Success: true}, nil
}

func (f *fakeClient) GetLeaderInfo(ctx context.Context, in *transport.GetLeaderInfoRequest, _ ...grpc.CallOption) (*transport.GetLeaderInfoResponse, error) {
	if f.getLeaderInfoFn != nil {
		return f.getLeaderInfoFn(ctx, in)
	}
	return &transport.GetLeaderInfoResponse{Success: true}, nil
}

func (f *fakeClient) Heartbeat(ctx context.Context, in *transport.HeartbeatRequest, _ ...grpc.CallOption) (*transport.HeartbeatResponse, error) {
	if f.heartbeatFn != nil {
		return f.heartbeatFn(ctx, in)
	}
	return &transport.HeartbeatResponse{Success: true}, nil
}

func (f *fakeClient) Election(ctx context.Context, in *transport.ElectionRequest, _ ...grpc.CallOption) (*transport.ElectionResponse, error) {
	if f.electionFn != nil {
		return f.electionFn(ctx, in)
	}
	return &transport.ElectionResponse{VoteGranted: true}, nil
}

func (f *fakeClient) ReplicateOperation(ctx context.Context, in *transport.ReplicateOperationRequest, _ ...grpc.CallOption) (*transport.ReplicateOperationResponse, error) {
	if f.replicateOperationFn != nil {
		return f.replicateOperationFn(ctx, in)
	}
	return &transport.ReplicateOperationResponse{Success: true}, nil
}

func (f *fakeClient) JoinCluster(ctx context.Context, in *transport.JoinClusterRequest, _ ...grpc.CallOption) (*transport.JoinClusterResponse, error) {
	if f.joinClusterFn != nil {
		return f.joinClusterFn(ctx, in)
	}
	return &transport.JoinClusterResponse{Success: true}, nil
}
