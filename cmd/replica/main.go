// Command replica runs one member of a heart-failure risk monitoring
// cluster: a gRPC server backed by a durable bbolt store, participating in
// primary/backup replication and lowest-id leader election. Loads config,
// starts serving in the background, and waits on a signal context for
// graceful shutdown.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/clock"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/config"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/replica"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/store"
)

func main() {
	cfg, err := config.LoadServer(flag.NewFlagSet("replica", flag.ExitOnError), os.Args[1:])
	if err != nil {
		log.Fatalf("replica: loading config: %v", err)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("replica: creating db directory %s: %v", dir, err)
		}
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("replica: opening store at %s: %v", cfg.DBPath, err)
	}
	defer st.Close()

	r := replica.New(cfg, st, &replica.LogAlertSink{}, clock.Real{})

	go func() {
		if err := r.Serve(); err != nil {
			log.Fatalf("replica: server stopped: %v", err)
		}
	}()

	log.Printf("replica %d listening on %s:%d (initial_leader=%v)", cfg.SelfID, cfg.SelfHost, cfg.SelfPort, cfg.InitialLeader)

	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-signalCtx.Done()

	log.Println("replica: shutting down...")
	r.GracefulShutdown()
	log.Println("replica: stopped")
}
