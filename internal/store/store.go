// Package store is the durable, append-mostly table of risk reports each
// replica keeps locally, backed by go.etcd.io/bbolt with JSON-encoded
// RiskReport rows.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.etcd.io/bbolt"
)

var (
	// ErrStorageFailed is returned when the underlying durable write/read
	// itself fails (disk, IO). Callers surface it to clients as Unavailable.
	ErrStorageFailed = errors.New("store: storage failed")
	// ErrMalformedInput is returned when a required field is missing.
	ErrMalformedInput = errors.New("store: malformed input")
)

var (
	reportsBucket     = []byte("reports")
	idempotencyBucket = []byte("idempotency")
)

// RiskReport is the only replicated entity. LocalID is assigned per-replica
// by Append and must never be used as a cross-replica identifier.
type RiskReport struct {
	LocalID          int64   `json:"local_id"`
	PatientID        string  `json:"patient_id"`
	Timestamp        int64   `json:"timestamp"`
	Age              float64 `json:"age"`
	SerumSodium      float64 `json:"serum_sodium"`
	SerumCreatinine  float64 `json:"serum_creatinine"`
	EjectionFraction float64 `json:"ejection_fraction"`
	Day              int64   `json:"day"`
	Probability      float64 `json:"probability"`
	Tier             string  `json:"tier"`
	AlertSent        bool    `json:"alert_sent"`
}

// Store is a single-writer, append-mostly table of RiskReport rows,
// idempotent on (PatientID, Timestamp). The rest of the system assumes
// Append may be called concurrently from many goroutines; bbolt's own
// single-writer transaction serializes that for us.
type Store struct {
	// mu is taken only by LoadSnapshot, serializing snapshot loads against
	// each other; Append does not take it. LoadSnapshot's "replace
	// everything" runs as one bbolt Update transaction, and bbolt already
	// serializes that against concurrent Append transactions.
	mu sync.Mutex
	db *bbolt.DB
}

// Open opens (creating if necessary) a bbolt-backed Store at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: opening db: %v", ErrStorageFailed, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(reportsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(idempotencyBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: creating buckets: %v", ErrStorageFailed, err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func idempotencyKey(patientID string, timestamp int64) []byte {
	key := make([]byte, len(patientID)+1+8)
	copy(key, patientID)
	binary.BigEndian.PutUint64(key[len(patientID)+1:], uint64(timestamp))
	return key
}

// Append durably persists report and assigns its LocalID, unless a row with
// the same (PatientID, Timestamp) already exists, in which case the existing
// LocalID is returned and nothing is inserted.
func (s *Store) Append(report RiskReport) (int64, error) {
	if report.PatientID == "" {
		return 0, ErrMalformedInput
	}

	var localID int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		idemp := tx.Bucket(idempotencyBucket)
		key := idempotencyKey(report.PatientID, report.Timestamp)

		if existing := idemp.Get(key); existing != nil {
			localID = int64(binary.BigEndian.Uint64(existing))
			return nil
		}

		reports := tx.Bucket(reportsBucket)
		seq, err := reports.NextSequence()
		if err != nil {
			return err
		}
		report.LocalID = int64(seq)

		data, err := json.Marshal(report)
		if err != nil {
			return err
		}
		if err := reports.Put(encodeID(report.LocalID), data); err != nil {
			return err
		}

		idBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(idBytes, seq)
		if err := idemp.Put(key, idBytes); err != nil {
			return err
		}

		localID = report.LocalID
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return localID, nil
}

// MarkAlertSent sets the AlertSent flag on the row with the given LocalID.
// No-op if already set or if the row doesn't exist.
func (s *Store) MarkAlertSent(localID int64) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		reports := tx.Bucket(reportsBucket)
		key := encodeID(localID)
		data := reports.Get(key)
		if data == nil {
			return nil
		}

		var report RiskReport
		if err := json.Unmarshal(data, &report); err != nil {
			return err
		}
		if report.AlertSent {
			return nil
		}
		report.AlertSent = true

		updated, err := json.Marshal(report)
		if err != nil {
			return err
		}
		return reports.Put(key, updated)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return nil
}

// ListByPatient returns the most recent limit reports for patientID, newest
// first by Timestamp, ties broken by LocalID descending. limit == 0 returns
// all matching reports.
func (s *Store) ListByPatient(patientID string, limit int) ([]RiskReport, error) {
	var matches []RiskReport
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(reportsBucket).ForEach(func(_, v []byte) error {
			var report RiskReport
			if err := json.Unmarshal(v, &report); err != nil {
				return err
			}
			if report.PatientID == patientID {
				matches = append(matches, report)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Timestamp != matches[j].Timestamp {
			return matches[i].Timestamp > matches[j].Timestamp
		}
		return matches[i].LocalID > matches[j].LocalID
	})

	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

// Snapshot returns every row in the table, used to onboard a joining
// replica.
func (s *Store) Snapshot() ([]RiskReport, error) {
	var all []RiskReport
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(reportsBucket).ForEach(func(_, v []byte) error {
			var report RiskReport
			if err := json.Unmarshal(v, &report); err != nil {
				return err
			}
			all = append(all, report)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return all, nil
}

// LoadSnapshot atomically replaces the table contents with reports. Used by
// a joining replica after receiving a JoinCluster snapshot.
func (s *Store) LoadSnapshot(reports []RiskReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(reportsBucket); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		if err := tx.DeleteBucket(idempotencyBucket); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		reportsB, err := tx.CreateBucket(reportsBucket)
		if err != nil {
			return err
		}
		idempB, err := tx.CreateBucket(idempotencyBucket)
		if err != nil {
			return err
		}

		var maxID int64
		for _, report := range reports {
			data, err := json.Marshal(report)
			if err != nil {
				return err
			}
			if err := reportsB.Put(encodeID(report.LocalID), data); err != nil {
				return err
			}
			idBytes := make([]byte, 8)
			binary.BigEndian.PutUint64(idBytes, uint64(report.LocalID))
			if err := idempB.Put(idempotencyKey(report.PatientID, report.Timestamp), idBytes); err != nil {
				return err
			}
			if report.LocalID > maxID {
				maxID = report.LocalID
			}
		}
		// Re-seed the sequence so subsequent local Appends don't collide with
		// LocalIDs carried over from the snapshot.
		return reportsB.SetSequence(uint64(maxID))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return nil
}

func encodeID(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}
