// Command client is a demo driver for internal/clientlib: it discovers the
// cluster leader, submits synthetic risk reports on a timer, and logs any
// RED-tier alert the server acknowledges, standing in for a real
// patient-monitoring front end.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/clientlib"
	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/config"
)

func main() {
	cfg, err := config.LoadClient(flag.NewFlagSet("client", flag.ExitOnError), os.Args[1:])
	if err != nil {
		log.Fatalf("client: loading config: %v", err)
	}

	observer := func(report clientlib.Report) {
		log.Printf("ALERT: patient %s reported RED risk (p=%.2f)", report.PatientID, report.Probability)
	}
	c := clientlib.New(cfg, observer)

	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := c.Start(signalCtx); err != nil && signalCtx.Err() == nil {
			log.Fatalf("client: %v", err)
		}
	}()

	monitoringLoop(signalCtx, c)

	log.Println("client: shutting down...")
	c.Stop()
}

// monitoringLoop stands in for a real vitals capture + inference loop: it
// submits a synthetic AMBER report every tick to exercise the send/retry
// path, since the model and scaler live outside this repository.
func monitoringLoop(ctx context.Context, c *clientlib.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	var timestamp int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			timestamp++
			report := clientlib.Report{
				PatientID:   "demo-patient",
				Timestamp:   timestamp,
				Inputs:      []float64{70, 138, 1.1, 45, float64(timestamp % 365)},
				Probability: 0.45,
				Tier:        c.ClassifyRisk(0.45),
			}
			if err := c.SendRiskReport(ctx, report); err != nil {
				log.Printf("client: send failed, queued for retry: %v", err)
			}
			c.RetryQueued(ctx)
		}
	}
}
