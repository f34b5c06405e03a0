package replica

import (
	"context"
	"log"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/store"
)

// AlertSink is the external collaborator notified on RED-tier writes. The
// vital-sign simulator, inference model, and alert surface live outside this
// process; this is the narrow seam the replication core touches.
type AlertSink interface {
	Notify(ctx context.Context, report store.RiskReport) error
}

// LogAlertSink is a minimal AlertSink that logs the alert. Called
// synchronously at commit time, when the tier and local id are already in
// hand.
type LogAlertSink struct{}

func (LogAlertSink) Notify(_ context.Context, report store.RiskReport) error {
	log.Printf("ALERT: patient %s RED report local_id=%d probability=%.2f", report.PatientID, report.LocalID, report.Probability)
	return nil
}
