package replica

import (
	"fmt"
	"log"
	"sync"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/cluster"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/transport"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// clientPool lazily dials and caches a transport.ReplicaServiceClient per
// peer address so replicas don't redial on every RPC.
type clientPool struct {
	mu      sync.RWMutex
	clients map[cluster.ServerAddress]transport.ReplicaServiceClient
	conns   map[cluster.ServerAddress]*grpc.ClientConn
}

func newClientPool() *clientPool {
	return &clientPool{
		clients: make(map[cluster.ServerAddress]transport.ReplicaServiceClient),
		conns:   make(map[cluster.ServerAddress]*grpc.ClientConn),
	}
}

func (p *clientPool) get(addr cluster.ServerAddress) (transport.ReplicaServiceClient, error) {
	p.mu.RLock()
	client, ok := p.clients[addr]
	p.mu.RUnlock()
	if ok {
		return client, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if client, ok := p.clients[addr]; ok {
		return client, nil
	}

	conn, err := grpc.NewClient(string(addr), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("clientPool: dialing %s: %w", addr, err)
	}
	client = transport.NewReplicaServiceClient(conn)
	p.clients[addr] = client
	p.conns[addr] = conn
	return client, nil
}

// closeAll closes every cached connection. Failures are logged, not fatal:
// shutdown should not wedge on a peer that's already gone.
func (p *clientPool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for addr, conn := range p.conns {
		if err := conn.Close(); err != nil {
			log.Printf("clientPool: closing conn to %s: %v", addr, err)
		}
	}
	p.clients = make(map[cluster.ServerAddress]transport.ReplicaServiceClient)
	p.conns = make(map[cluster.ServerAddress]*grpc.ClientConn)
}
