package clientlib

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/transport"
)

const sendRetries = 3

// ErrRejected marks a server rejection that retrying cannot fix (an invalid
// tier or malformed report); such reports are not queued.
var ErrRejected = errors.New("clientlib: report rejected by server")

// SendRiskReport submits report to the current leader, retrying against a
// freshly discovered leader on UNAVAILABLE-style failures. On exhausted
// retries the report is queued for a later RetryQueued call instead of
// being dropped; an ErrRejected report is dropped outright.
func (c *Client) SendRiskReport(ctx context.Context, report Report) error {
	err := c.sendOnce(ctx, report)
	if err == nil {
		if report.Tier == "RED" && c.observer != nil {
			c.observer(report)
		}
		return nil
	}
	if errors.Is(err, ErrRejected) {
		log.Printf("clientlib: report for patient %s rejected, not queuing: %v", report.PatientID, err)
		return err
	}

	log.Printf("clientlib: send failed (%v), queuing report for patient %s", err, report.PatientID)
	c.mu.Lock()
	c.queue = append(c.queue, report)
	c.mu.Unlock()
	return err
}

func (c *Client) sendOnce(ctx context.Context, report Report) error {
	var lastErr error
	for i := 0; i < sendRetries; i++ {
		c.mu.Lock()
		stub := c.stub
		c.mu.Unlock()
		if stub == nil {
			lastErr = fmt.Errorf("clientlib: not connected to a leader")
		} else {
			callCtx, cancel := context.WithTimeout(ctx, secondsToDuration(c.cfg.RPCTimeoutS))
			resp, err := stub.SendRiskReport(callCtx, &transport.RiskReportRequest{
				PatientID:   report.PatientID,
				Timestamp:   report.Timestamp,
				Inputs:      report.Inputs,
				Probability: report.Probability,
				Tier:        report.Tier,
			})
			cancel()

			if err == nil && resp.Success {
				return nil
			}
			if err != nil {
				lastErr = err
			} else {
				if msg := strings.ToLower(resp.Message); strings.Contains(msg, "invalid") || strings.Contains(msg, "malformed") {
					return fmt.Errorf("%w: %s", ErrRejected, resp.Message)
				}
				lastErr = fmt.Errorf("clientlib: %s", resp.Message)
			}
		}

		log.Printf("clientlib: send attempt %d failed (%v), rediscovering leader", i+1, lastErr)
		if err := c.discoverLeader(ctx); err != nil {
			lastErr = err
			continue
		}
		time.Sleep(secondsToDuration(c.cfg.RetryDelayS))
	}
	return fmt.Errorf("clientlib: send failed after %d retries: %w", sendRetries, lastErr)
}

// RetryQueued attempts to resend every queued report once, keeping only the
// ones that still fail. Server-side idempotency on (patient_id, timestamp)
// makes a report that actually landed a harmless no-op on resend.
func (c *Client) RetryQueued(ctx context.Context) {
	c.mu.Lock()
	pending := c.queue
	c.queue = nil
	c.mu.Unlock()

	if len(pending) == 0 {
		return
	}
	log.Printf("clientlib: retrying %d queued reports", len(pending))

	var remaining []Report
	for _, report := range pending {
		if err := c.sendOnce(ctx, report); err != nil {
			if !errors.Is(err, ErrRejected) {
				remaining = append(remaining, report)
			}
			continue
		}
		if report.Tier == "RED" && c.observer != nil {
			c.observer(report)
		}
	}

	c.mu.Lock()
	c.queue = append(remaining, c.queue...)
	c.mu.Unlock()
}

// QueueLen reports how many unsent reports are currently held.
func (c *Client) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}
