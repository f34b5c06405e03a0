// Package config loads the typed configuration surface for the replica and
// client binaries: compiled-in defaults, optionally overridden by a JSON
// file, optionally overridden again by CLI flags via flag.Parse().
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

// ReplicationPolicy selects how many follower acks the replicator waits for
// before acknowledging a write to the client.
type ReplicationPolicy string

const (
	AtLeastOne ReplicationPolicy = "at-least-one"
	Majority   ReplicationPolicy = "majority"
)

// Server is the replica process's configuration.
type Server struct {
	SelfID                  int32             `json:"self_id"`
	SelfHost                string            `json:"self_host"`
	SelfPort                int               `json:"self_port"`
	InitialReplicaAddresses []string          `json:"initial_replica_addresses"`
	DBPath                  string            `json:"db_path"`
	HeartbeatIntervalS      float64           `json:"heartbeat_interval_s"`
	LeaseTimeoutS           float64           `json:"lease_timeout_s"`
	InitialLeader           bool              `json:"initial_leader"`
	ReplicationPolicy       ReplicationPolicy `json:"replication_policy"`
}

// DefaultServer returns the stock single-node defaults.
func DefaultServer() Server {
	return Server{
		SelfHost:           "localhost",
		SelfPort:           50051,
		DBPath:             "./data/reports.db",
		HeartbeatIntervalS: 3,
		LeaseTimeoutS:      10,
		ReplicationPolicy:  AtLeastOne,
	}
}

// LoadServer builds a Server config: defaults, then an optional JSON file at
// configPath (skipped if empty), then flag.Parse() overrides registered on
// fs. fs is typically flag.CommandLine; args is typically os.Args[1:].
func LoadServer(fs *flag.FlagSet, args []string) (Server, error) {
	cfg := DefaultServer()

	// A first, lightweight pass just to find --config before the real flag
	// registration runs, since the file layer has to load before flags
	// override it.
	configPath := ""
	for i, a := range args {
		if a == "--config" && i+1 < len(args) {
			configPath = args[i+1]
		} else if len(a) > len("--config=") && a[:len("--config=")] == "--config=" {
			configPath = a[len("--config="):]
		}
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", configPath, err)
		}
	}

	fs.StringVar(&configPath, "config", configPath, "path to a JSON config file")
	selfID := fs.Int("self_id", int(cfg.SelfID), "this replica's election rank")
	selfHost := fs.String("self_host", cfg.SelfHost, "host to bind and advertise")
	selfPort := fs.Int("self_port", cfg.SelfPort, "port to bind and advertise")
	dbPath := fs.String("db_path", cfg.DBPath, "bbolt database path")
	heartbeatIntervalS := fs.Float64("heartbeat_interval_s", cfg.HeartbeatIntervalS, "leader heartbeat interval in seconds")
	leaseTimeoutS := fs.Float64("lease_timeout_s", cfg.LeaseTimeoutS, "follower lease timeout in seconds")
	initialLeader := fs.Bool("initial_leader", cfg.InitialLeader, "start as leader without an election")
	replicationPolicy := fs.String("replication_policy", string(cfg.ReplicationPolicy), "at-least-one or majority")
	initialAddrs := fs.String("initial_replica_addresses", "", "comma-separated replica addresses")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	cfg.SelfID = int32(*selfID)
	cfg.SelfHost = *selfHost
	cfg.SelfPort = *selfPort
	cfg.DBPath = *dbPath
	cfg.HeartbeatIntervalS = *heartbeatIntervalS
	cfg.LeaseTimeoutS = *leaseTimeoutS
	cfg.InitialLeader = *initialLeader
	cfg.ReplicationPolicy = ReplicationPolicy(*replicationPolicy)
	if *initialAddrs != "" {
		cfg.InitialReplicaAddresses = splitCSV(*initialAddrs)
	}

	if cfg.LeaseTimeoutS < 3*cfg.HeartbeatIntervalS {
		return cfg, fmt.Errorf("config: lease_timeout_s (%.1f) must be >= 3x heartbeat_interval_s (%.1f)", cfg.LeaseTimeoutS, cfg.HeartbeatIntervalS)
	}

	return cfg, nil
}

// Client is the client runtime's configuration.
type Client struct {
	PreferredLeaderAddress      string   `json:"preferred_leader_address"`
	FallbackAddresses           []string `json:"fallback_addresses"`
	RPCTimeoutS                 float64  `json:"rpc_timeout_s"`
	FallbackTimeoutS            float64  `json:"fallback_timeout_s"`
	OverallLeaderLookupTimeoutS float64  `json:"overall_leader_lookup_timeout_s"`
	RetryDelayS                 float64  `json:"retry_delay_s"`
	ClientHeartbeatIntervalS    float64  `json:"client_heartbeat_interval_s"`
	GreenThreshold              float64  `json:"green_threshold"`
	AmberThreshold              float64  `json:"amber_threshold"`
}

// DefaultClient returns the stock client defaults.
func DefaultClient() Client {
	return Client{
		RPCTimeoutS:                 10,
		FallbackTimeoutS:            3,
		OverallLeaderLookupTimeoutS: 6,
		RetryDelayS:                 2,
		ClientHeartbeatIntervalS:    5,
		GreenThreshold:              0.30,
		AmberThreshold:              0.60,
	}
}

// LoadClient builds a Client config from an optional JSON file followed by
// flag overrides, the same two-layer order as LoadServer.
func LoadClient(fs *flag.FlagSet, args []string) (Client, error) {
	cfg := DefaultClient()

	configPath := ""
	for i, a := range args {
		if a == "--config" && i+1 < len(args) {
			configPath = args[i+1]
		}
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", configPath, err)
		}
	}

	fs.StringVar(&configPath, "config", configPath, "path to a JSON config file")
	preferred := fs.String("preferred_leader_address", cfg.PreferredLeaderAddress, "address to try first")
	fallback := fs.String("fallback_addresses", "", "comma-separated fallback addresses")
	rpcTimeoutS := fs.Float64("rpc_timeout_s", cfg.RPCTimeoutS, "per-call RPC deadline in seconds")
	fallbackTimeoutS := fs.Float64("fallback_timeout_s", cfg.FallbackTimeoutS, "per-address fallback probe deadline in seconds")
	overallTimeoutS := fs.Float64("overall_leader_lookup_timeout_s", cfg.OverallLeaderLookupTimeoutS, "overall leader discovery budget in seconds")
	retryDelayS := fs.Float64("retry_delay_s", cfg.RetryDelayS, "delay between discovery attempts in seconds")
	heartbeatIntervalS := fs.Float64("client_heartbeat_interval_s", cfg.ClientHeartbeatIntervalS, "leader-info refresh interval in seconds")
	greenThreshold := fs.Float64("green_threshold", cfg.GreenThreshold, "probability below this is GREEN")
	amberThreshold := fs.Float64("amber_threshold", cfg.AmberThreshold, "probability below this is AMBER, at/above is RED")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	cfg.PreferredLeaderAddress = *preferred
	cfg.RPCTimeoutS = *rpcTimeoutS
	cfg.FallbackTimeoutS = *fallbackTimeoutS
	cfg.OverallLeaderLookupTimeoutS = *overallTimeoutS
	cfg.RetryDelayS = *retryDelayS
	cfg.ClientHeartbeatIntervalS = *heartbeatIntervalS
	cfg.GreenThreshold = *greenThreshold
	cfg.AmberThreshold = *amberThreshold
	if *fallback != "" {
		cfg.FallbackAddresses = splitCSV(*fallback)
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
