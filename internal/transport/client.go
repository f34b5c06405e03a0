package transport

import (
	"context"

	"google.golang.org/grpc"
)

// defaultCallOptions is appended to every client call so the server
// negotiates the JSON codec registered in codec.go.
var defaultCallOptions = []grpc.CallOption{grpc.CallContentSubtype(CallContentSubtype)}

// ReplicaServiceClient is the client-side view of ReplicaServiceServer.
type ReplicaServiceClient interface {
	SendRiskReport(ctx context.Context, in *RiskReportRequest, opts ...grpc.CallOption) (*RiskReportResponse, error)
	ListRiskReports(ctx context.Context, in *ListRiskReportsRequest, opts ...grpc.CallOption) (*ListRiskReportsResponse, error)
	GetLeaderInfo(ctx context.Context, in *GetLeaderInfoRequest, opts ...grpc.CallOption) (*GetLeaderInfoResponse, error)
	Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error)
	Election(ctx context.Context, in *ElectionRequest, opts ...grpc.CallOption) (*ElectionResponse, error)
	ReplicateOperation(ctx context.Context, in *ReplicateOperationRequest, opts ...grpc.CallOption) (*ReplicateOperationResponse, error)
	JoinCluster(ctx context.Context, in *JoinClusterRequest, opts ...grpc.CallOption) (*JoinClusterResponse, error)
}

type replicaServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewReplicaServiceClient wraps cc with the ReplicaServiceClient RPC stubs.
func NewReplicaServiceClient(cc grpc.ClientConnInterface) ReplicaServiceClient {
	return &replicaServiceClient{cc}
}

func (c *replicaServiceClient) SendRiskReport(ctx context.Context, in *RiskReportRequest, opts ...grpc.CallOption) (*RiskReportResponse, error) {
	out := new(RiskReportResponse)
	err := c.cc.Invoke(ctx, "/hfcluster.ReplicaService/SendRiskReport", in, out, append(defaultCallOptions, opts...)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *replicaServiceClient) ListRiskReports(ctx context.Context, in *ListRiskReportsRequest, opts ...grpc.CallOption) (*ListRiskReportsResponse, error) {
	out := new(ListRiskReportsResponse)
	err := c.cc.Invoke(ctx, "/hfcluster.ReplicaService/ListRiskReports", in, out, append(defaultCallOptions, opts...)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *replicaServiceClient) GetLeaderInfo(ctx context.Context, in *GetLeaderInfoRequest, opts ...grpc.CallOption) (*GetLeaderInfoResponse, error) {
	out := new(GetLeaderInfoResponse)
	err := c.cc.Invoke(ctx, "/hfcluster.ReplicaService/GetLeaderInfo", in, out, append(defaultCallOptions, opts...)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *replicaServiceClient) Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error) {
	out := new(HeartbeatResponse)
	err := c.cc.Invoke(ctx, "/hfcluster.ReplicaService/Heartbeat", in, out, append(defaultCallOptions, opts...)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *replicaServiceClient) Election(ctx context.Context, in *ElectionRequest, opts ...grpc.CallOption) (*ElectionResponse, error) {
	out := new(ElectionResponse)
	err := c.cc.Invoke(ctx, "/hfcluster.ReplicaService/Election", in, out, append(defaultCallOptions, opts...)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *replicaServiceClient) ReplicateOperation(ctx context.Context, in *ReplicateOperationRequest, opts ...grpc.CallOption) (*ReplicateOperationResponse, error) {
	out := new(ReplicateOperationResponse)
	err := c.cc.Invoke(ctx, "/hfcluster.ReplicaService/ReplicateOperation", in, out, append(defaultCallOptions, opts...)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *replicaServiceClient) JoinCluster(ctx context.Context, in *JoinClusterRequest, opts ...grpc.CallOption) (*JoinClusterResponse, error) {
	out := new(JoinClusterResponse)
	err := c.cc.Invoke(ctx, "/hfcluster.ReplicaService/JoinCluster", in, out, append(defaultCallOptions, opts...)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
