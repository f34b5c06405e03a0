package transport

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ReplicaServiceServer is implemented by whatever handles the replica RPCs.
// internal/replica is the real implementation; this interface is the seam
// the hand-written ServiceDesc below dispatches through, the same role a
// protoc-gen-go-grpc XxxServer interface plays.
type ReplicaServiceServer interface {
	SendRiskReport(context.Context, *RiskReportRequest) (*RiskReportResponse, error)
	ListRiskReports(context.Context, *ListRiskReportsRequest) (*ListRiskReportsResponse, error)
	GetLeaderInfo(context.Context, *GetLeaderInfoRequest) (*GetLeaderInfoResponse, error)
	Heartbeat(context.Context, *HeartbeatRequest) (*HeartbeatResponse, error)
	Election(context.Context, *ElectionRequest) (*ElectionResponse, error)
	ReplicateOperation(context.Context, *ReplicateOperationRequest) (*ReplicateOperationResponse, error)
	JoinCluster(context.Context, *JoinClusterRequest) (*JoinClusterResponse, error)
}

// UnimplementedReplicaServiceServer can be embedded to get forward-compatible
// implementations that fail cleanly on methods a partial server doesn't
// override yet.
type UnimplementedReplicaServiceServer struct{}

func (UnimplementedReplicaServiceServer) SendRiskReport(context.Context, *RiskReportRequest) (*RiskReportResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SendRiskReport not implemented")
}
func (UnimplementedReplicaServiceServer) ListRiskReports(context.Context, *ListRiskReportsRequest) (*ListRiskReportsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListRiskReports not implemented")
}
func (UnimplementedReplicaServiceServer) GetLeaderInfo(context.Context, *GetLeaderInfoRequest) (*GetLeaderInfoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetLeaderInfo not implemented")
}
func (UnimplementedReplicaServiceServer) Heartbeat(context.Context, *HeartbeatRequest) (*HeartbeatResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Heartbeat not implemented")
}
func (UnimplementedReplicaServiceServer) Election(context.Context, *ElectionRequest) (*ElectionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Election not implemented")
}
func (UnimplementedReplicaServiceServer) ReplicateOperation(context.Context, *ReplicateOperationRequest) (*ReplicateOperationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReplicateOperation not implemented")
}
func (UnimplementedReplicaServiceServer) JoinCluster(context.Context, *JoinClusterRequest) (*JoinClusterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method JoinCluster not implemented")
}

// RegisterReplicaServiceServer registers srv on s.
func RegisterReplicaServiceServer(s grpc.ServiceRegistrar, srv ReplicaServiceServer) {
	s.RegisterService(&replicaServiceDesc, srv)
}

func sendRiskReportHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RiskReportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReplicaServiceServer).SendRiskReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hfcluster.ReplicaService/SendRiskReport"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReplicaServiceServer).SendRiskReport(ctx, req.(*RiskReportRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listRiskReportsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListRiskReportsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReplicaServiceServer).ListRiskReports(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hfcluster.ReplicaService/ListRiskReports"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReplicaServiceServer).ListRiskReports(ctx, req.(*ListRiskReportsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getLeaderInfoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetLeaderInfoRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReplicaServiceServer).GetLeaderInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hfcluster.ReplicaService/GetLeaderInfo"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReplicaServiceServer).GetLeaderInfo(ctx, req.(*GetLeaderInfoRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func heartbeatHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(HeartbeatRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReplicaServiceServer).Heartbeat(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hfcluster.ReplicaService/Heartbeat"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReplicaServiceServer).Heartbeat(ctx, req.(*HeartbeatRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func electionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ElectionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReplicaServiceServer).Election(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hfcluster.ReplicaService/Election"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReplicaServiceServer).Election(ctx, req.(*ElectionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func replicateOperationHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReplicateOperationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReplicaServiceServer).ReplicateOperation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hfcluster.ReplicaService/ReplicateOperation"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReplicaServiceServer).ReplicateOperation(ctx, req.(*ReplicateOperationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func joinClusterHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(JoinClusterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReplicaServiceServer).JoinCluster(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hfcluster.ReplicaService/JoinCluster"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReplicaServiceServer).JoinCluster(ctx, req.(*JoinClusterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var replicaServiceDesc = grpc.ServiceDesc{
	ServiceName: "hfcluster.ReplicaService",
	HandlerType: (*ReplicaServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SendRiskReport", Handler: sendRiskReportHandler},
		{MethodName: "ListRiskReports", Handler: listRiskReportsHandler},
		{MethodName: "GetLeaderInfo", Handler: getLeaderInfoHandler},
		{MethodName: "Heartbeat", Handler: heartbeatHandler},
		{MethodName: "Election", Handler: electionHandler},
		{MethodName: "ReplicateOperation", Handler: replicateOperationHandler},
		{MethodName: "JoinCluster", Handler: joinClusterHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "replica.proto",
}
