// Package clientlib is the client-side runtime: leader discovery, a retry
// queue, and a periodic leader-info refresh, kept outside any replica
// process.
package clientlib

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/config"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/transport"
)

// Report is the client-side view of a risk report awaiting submission.
type Report struct {
	PatientID   string
	Timestamp   int64
	Inputs      []float64
	Probability float64
	Tier        string
}

// AlertObserver is notified whenever a RED-tier report is accepted by the
// leader, the seam a user-facing alert surface hangs off of; cmd/client
// wires it to a log line.
type AlertObserver func(report Report)

// Client discovers the current leader, sends risk reports with retry, and
// keeps a FIFO queue of reports that haven't been acknowledged yet.
type Client struct {
	cfg      config.Client
	observer AlertObserver

	mu         sync.Mutex
	leaderAddr string
	known      map[string]struct{}
	conn       *grpc.ClientConn
	stub       transport.ReplicaServiceClient
	queue      []Report

	stopCh chan struct{}
}

// New builds a Client. Call Start to connect and begin the heartbeat loop.
func New(cfg config.Client, observer AlertObserver) *Client {
	known := make(map[string]struct{}, len(cfg.FallbackAddresses)+1)
	for _, a := range cfg.FallbackAddresses {
		known[a] = struct{}{}
	}
	if cfg.PreferredLeaderAddress != "" {
		known[cfg.PreferredLeaderAddress] = struct{}{}
	}
	return &Client{
		cfg:      cfg,
		observer: observer,
		known:    known,
		stopCh:   make(chan struct{}),
	}
}

// ClassifyRisk applies the configured GREEN/AMBER/RED thresholds to a model
// probability. Lower bounds are inclusive.
func (c *Client) ClassifyRisk(probability float64) string {
	switch {
	case probability < c.cfg.GreenThreshold:
		return "GREEN"
	case probability < c.cfg.AmberThreshold:
		return "AMBER"
	default:
		return "RED"
	}
}

// Start connects to the preferred leader address and launches the
// background heartbeat loop. It blocks until ctx is done or Stop is called.
// Dialing is lazy, so discovery runs here only when the preferred address is
// empty or cannot be parsed; an unreachable preferred address is noticed by
// the first failed call, which then rediscovers the leader.
func (c *Client) Start(ctx context.Context) error {
	if err := c.connect(c.cfg.PreferredLeaderAddress); err != nil {
		log.Printf("client: preferred address %s unreachable, discovering: %v", c.cfg.PreferredLeaderAddress, err)
		if err := c.discoverLeader(ctx); err != nil {
			return fmt.Errorf("clientlib: initial leader discovery: %w", err)
		}
	}

	go c.heartbeatLoop(ctx)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopCh:
		return nil
	}
}

// Stop ends the background heartbeat loop and unblocks Start.
func (c *Client) Stop() {
	close(c.stopCh)
}

func (c *Client) connect(addr string) error {
	if addr == "" {
		return fmt.Errorf("clientlib: empty address")
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("clientlib: dialing %s: %w", addr, err)
	}

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = conn
	c.stub = transport.NewReplicaServiceClient(conn)
	c.leaderAddr = addr
	c.known[addr] = struct{}{}
	c.mu.Unlock()

	log.Printf("clientlib: connected to %s", addr)
	return nil
}

// knownAddresses returns a snapshot of every address learned so far, for
// parallel fallback probing.
func (c *Client) knownAddresses() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.known))
	for a := range c.known {
		out = append(out, a)
	}
	return out
}

func (c *Client) mergeKnown(addrs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range addrs {
		c.known[a] = struct{}{}
	}
}

type probeResult struct {
	addr string
	resp *transport.GetLeaderInfoResponse
}

// discoverLeader probes every known address in parallel, adopting the first
// response naming a real leader; each probe is its own goroutine fanning
// results into one channel.
func (c *Client) discoverLeader(ctx context.Context) error {
	addrs := c.knownAddresses()
	if len(addrs) == 0 {
		return fmt.Errorf("clientlib: no known addresses to probe")
	}

	overallCtx, cancel := context.WithTimeout(ctx, secondsToDuration(c.cfg.OverallLeaderLookupTimeoutS))
	defer cancel()

	results := make(chan probeResult, len(addrs))
	for _, addr := range addrs {
		addr := addr
		go func() {
			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				results <- probeResult{addr: addr}
				return
			}
			defer conn.Close()
			stub := transport.NewReplicaServiceClient(conn)

			probeCtx, cancel := context.WithTimeout(overallCtx, secondsToDuration(c.cfg.FallbackTimeoutS))
			defer cancel()
			resp, err := stub.GetLeaderInfo(probeCtx, &transport.GetLeaderInfoRequest{})
			if err != nil {
				results <- probeResult{addr: addr}
				return
			}
			results <- probeResult{addr: addr, resp: resp}
		}()
	}

	for range addrs {
		select {
		case r := <-results:
			if r.resp != nil && r.resp.Success && r.resp.LeaderAddress != "" && r.resp.LeaderAddress != "Unknown" {
				log.Printf("clientlib: found leader %s via %s", r.resp.LeaderAddress, r.addr)
				c.mergeKnown(r.resp.ReplicaAddresses)
				return c.connect(r.resp.LeaderAddress)
			}
		case <-overallCtx.Done():
			time.Sleep(secondsToDuration(c.cfg.RetryDelayS))
			return fmt.Errorf("clientlib: leader lookup timed out")
		}
	}

	time.Sleep(secondsToDuration(c.cfg.RetryDelayS))
	return fmt.Errorf("clientlib: no address returned a valid leader")
}

// heartbeatLoop periodically refreshes leader knowledge so a quiet client
// notices a failover before its next write fails.
func (c *Client) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(secondsToDuration(c.cfg.ClientHeartbeatIntervalS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			stub := c.stub
			c.mu.Unlock()
			if stub == nil {
				continue
			}

			callCtx, cancel := context.WithTimeout(ctx, secondsToDuration(c.cfg.RPCTimeoutS))
			resp, err := stub.GetLeaderInfo(callCtx, &transport.GetLeaderInfoRequest{})
			cancel()

			if err != nil || !resp.Success || resp.LeaderAddress == "" || resp.LeaderAddress == "Unknown" {
				log.Printf("clientlib: heartbeat check failed, rediscovering leader: %v", err)
				if err := c.discoverLeader(ctx); err != nil {
					log.Printf("clientlib: rediscovery failed: %v", err)
				}
				continue
			}
			c.mergeKnown(resp.ReplicaAddresses)
		}
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
