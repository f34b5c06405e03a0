package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := LoadServer(fs, []string{"--self_id=1", "--initial_leader=true"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), cfg.SelfID)
	assert.True(t, cfg.InitialLeader)
	assert.Equal(t, 3.0, cfg.HeartbeatIntervalS)
	assert.Equal(t, 10.0, cfg.LeaseTimeoutS)
	assert.Equal(t, AtLeastOne, cfg.ReplicationPolicy)
}

func TestLoadServerRejectsTooShortLeaseTimeout(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := LoadServer(fs, []string{"--heartbeat_interval_s=3", "--lease_timeout_s=5"})
	assert.Error(t, err)
}

func TestLoadServerFromJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"self_id": 7, "replication_policy": "majority"}`), 0o600))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := LoadServer(fs, []string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, int32(7), cfg.SelfID)
	assert.Equal(t, Majority, cfg.ReplicationPolicy)
}

func TestLoadServerFlagsOverrideJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"self_id": 7}`), 0o600))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := LoadServer(fs, []string{"--config", path, "--self_id=9"})
	require.NoError(t, err)
	assert.Equal(t, int32(9), cfg.SelfID)
}

func TestLoadServerParsesAddressList(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := LoadServer(fs, []string{"--initial_replica_addresses=a:1,b:2,c:3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a:1", "b:2", "c:3"}, cfg.InitialReplicaAddresses)
}

func TestLoadClientDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := LoadClient(fs, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.30, cfg.GreenThreshold)
	assert.Equal(t, 0.60, cfg.AmberThreshold)
	assert.Equal(t, 6.0, cfg.OverallLeaderLookupTimeoutS)
}

func TestLoadClientParsesFallbackAddresses(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := LoadClient(fs, []string{"--fallback_addresses=x:1,y:2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x:1", "y:2"}, cfg.FallbackAddresses)
}
