package replica

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/clock"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/cluster"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/config"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/store"
)

// recordingAlertSink satisfies AlertSink for tests without logging to stdout.
type recordingAlertSink struct {
	notified []store.RiskReport
}

func (s *recordingAlertSink) Notify(_ context.Context, report store.RiskReport) error {
	s.notified = append(s.notified, report)
	return nil
}

func newTestReplica(t *testing.T, selfID int32, initialLeader bool, peers []string) (*Replica, *clock.Fake) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	fakeClock := clock.NewFake(time.Unix(0, 0))
	cfg := config.Server{
		SelfID:                  selfID,
		SelfHost:                "127.0.0.1",
		SelfPort:                int(50000 + selfID),
		InitialReplicaAddresses: peers,
		HeartbeatIntervalS:      3,
		LeaseTimeoutS:           10,
		InitialLeader:           initialLeader,
		ReplicationPolicy:       config.AtLeastOne,
	}
	r := New(cfg, st, &recordingAlertSink{}, fakeClock)
	return r, fakeClock
}

func withFakeClient(r *Replica, addr cluster.ServerAddress, c *fakeClient) {
	r.pool.clients[addr] = c
}
