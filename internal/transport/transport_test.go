package transport

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

type stubServer struct {
	UnimplementedReplicaServiceServer
	lastReport *RiskReportRequest
}

func (s *stubServer) SendRiskReport(_ context.Context, in *RiskReportRequest) (*RiskReportResponse, error) {
	s.lastReport = in
	return &RiskReportResponse{Success: true, Message: "ok", AlertSent: in.Tier == "RED"}, nil
}

func (s *stubServer) GetLeaderInfo(_ context.Context, _ *GetLeaderInfoRequest) (*GetLeaderInfoResponse, error) {
	return &GetLeaderInfoResponse{Success: true, LeaderAddress: "127.0.0.1:9001"}, nil
}

func dialBufconn(t *testing.T, srv ReplicaServiceServer) (ReplicaServiceClient, func()) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)

	s := grpc.NewServer()
	RegisterReplicaServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	return NewReplicaServiceClient(conn), func() {
		conn.Close()
		s.Stop()
	}
}

func TestSendRiskReportRoundTrip(t *testing.T) {
	stub := &stubServer{}
	client, cleanup := dialBufconn(t, stub)
	defer cleanup()

	resp, err := client.SendRiskReport(context.Background(), &RiskReportRequest{
		PatientID:   "P1",
		Timestamp:   100,
		Inputs:      []float64{60, 140, 1.2, 35, 4},
		Probability: 0.9,
		Tier:        "RED",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.True(t, resp.AlertSent)
	require.NotNil(t, stub.lastReport)
	require.Equal(t, "P1", stub.lastReport.PatientID)
}

func TestGetLeaderInfoRoundTrip(t *testing.T) {
	client, cleanup := dialBufconn(t, &stubServer{})
	defer cleanup()

	resp, err := client.GetLeaderInfo(context.Background(), &GetLeaderInfoRequest{})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "127.0.0.1:9001", resp.LeaderAddress)
}

func TestUnimplementedMethodReturnsError(t *testing.T) {
	client, cleanup := dialBufconn(t, &stubServer{})
	defer cleanup()

	_, err := client.Election(context.Background(), &ElectionRequest{CandidateID: 2})
	require.Error(t, err)
}
