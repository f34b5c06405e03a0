// Package replica wires the store, membership, transport, failure detector,
// elector, replicator, and join coordinator into one per-process context
// object, so nothing lives in package-scope globals.
package replica

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/clock"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/cluster"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/config"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/events"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/store"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/transport"
	"google.golang.org/grpc"
)

// Replica is one cluster member: the context object injected into every
// component in place of shared globals.
type Replica struct {
	transport.UnimplementedReplicaServiceServer

	roleState

	ID      cluster.ServerID
	Address cluster.ServerAddress

	Membership *cluster.Membership
	Store      *store.Store
	Alert      AlertSink
	Clock      clock.Clock

	HeartbeatInterval time.Duration
	LeaseTimeout      time.Duration
	ReplicationPolicy config.ReplicationPolicy

	pool *clientPool
	bus  *events.Bus

	grpcServer *grpc.Server

	heartbeatTicker clock.Ticker
	watchdogStop    chan struct{}
	joinOnce        sync.Once
}

// New builds a Replica from configuration. The Store must already be open.
func New(cfg config.Server, st *store.Store, alert AlertSink, cl clock.Clock) *Replica {
	selfAddr := cluster.ServerAddress(fmt.Sprintf("%s:%d", cfg.SelfHost, cfg.SelfPort))

	initial := make([]cluster.ServerAddress, 0, len(cfg.InitialReplicaAddresses))
	for _, a := range cfg.InitialReplicaAddresses {
		initial = append(initial, cluster.ServerAddress(a))
	}

	r := &Replica{
		ID:                cluster.ServerID(cfg.SelfID),
		Address:           selfAddr,
		Membership:        cluster.New(cluster.ServerID(cfg.SelfID), selfAddr, initial),
		Store:             st,
		Alert:             alert,
		Clock:             cl,
		HeartbeatInterval: time.Duration(cfg.HeartbeatIntervalS * float64(time.Second)),
		LeaseTimeout:      time.Duration(cfg.LeaseTimeoutS * float64(time.Second)),
		ReplicationPolicy: cfg.ReplicationPolicy,
		pool:              newClientPool(),
		bus:               events.NewBus(),
		watchdogStop:      make(chan struct{}),
	}

	if cfg.InitialLeader {
		r.setRole(cluster.Leader)
		r.Membership.BecomeLeader()
	} else {
		r.setRole(cluster.Follower)
		r.setLastHeartbeatAt(cl.Now())
	}

	return r
}

// Serve binds addr, registers the RPC service, and starts the gRPC server.
// It blocks until the listener is closed.
func (r *Replica) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", "0.0.0.0", portOf(r.Address)))
	if err != nil {
		return fmt.Errorf("replica: listening on %s: %w", r.Address, err)
	}

	r.grpcServer = grpc.NewServer(
		grpc.ConnectionTimeout(30*time.Second),
		grpc.UnaryInterceptor(transport.UnaryServerInterceptor()),
	)
	transport.RegisterReplicaServiceServer(r.grpcServer, r)

	log.Printf("replica %d serving on %s (role=%s)", r.ID, r.Address, r.getRole())

	r.startBackgroundTasks()

	return r.grpcServer.Serve(lis)
}

func portOf(addr cluster.ServerAddress) string {
	_, port, err := net.SplitHostPort(string(addr))
	if err != nil {
		log.Fatalf("replica: malformed self address %q: %v", addr, err)
	}
	return port
}

// GracefulShutdown stops accepting new RPCs, lets in-flight ones finish,
// then closes outbound connections.
func (r *Replica) GracefulShutdown() {
	log.Printf("replica %d shutting down gracefully", r.ID)
	close(r.watchdogStop)
	if r.heartbeatTicker != nil {
		r.heartbeatTicker.Stop()
	}
	if r.grpcServer != nil {
		r.grpcServer.GracefulStop()
	}
	r.pool.closeAll()
	events.Publish(r.bus, events.New(events.ReplicaShutDown, struct{}{}))
	r.bus.GracefulShutdown()
}

// ForceShutdown stops immediately, dropping in-flight RPCs.
func (r *Replica) ForceShutdown() {
	log.Printf("replica %d force shutting down", r.ID)
	close(r.watchdogStop)
	if r.heartbeatTicker != nil {
		r.heartbeatTicker.Stop()
	}
	r.pool.closeAll()
	if r.grpcServer != nil {
		r.grpcServer.Stop()
	}
	events.Publish(r.bus, events.New(events.ReplicaShutDown, struct{}{}))
	r.bus.ForceShutdown()
}

func (r *Replica) startBackgroundTasks() {
	if r.getRole() == cluster.Leader {
		r.startHeartbeatLoop()
	} else {
		r.startFollowerWatchdog()
	}

	leaderLostCh := make(chan *events.Event[struct{}], 1)
	events.Subscribe(r.bus, events.LeaderLost, leaderLostCh, events.SubscriptionOptions{})
	go func() {
		for range leaderLostCh {
			r.runElection(context.Background())
		}
	}()
}

func (r *Replica) client(addr cluster.ServerAddress) (transport.ReplicaServiceClient, error) {
	return r.pool.get(addr)
}
