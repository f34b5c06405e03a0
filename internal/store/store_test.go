package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempStore(t *testing.T) (*Store, func()) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "reports.db")

	s, err := Open(dbPath)
	require.NoError(t, err)
	require.NotNil(t, s)

	return s, func() {
		s.Close()
		os.RemoveAll(tmpDir)
	}
}

func TestOpen(t *testing.T) {
	t.Run("creates new database", func(t *testing.T) {
		s, cleanup := createTempStore(t)
		defer cleanup()
		assert.NotNil(t, s)
	})

	t.Run("fails with invalid path", func(t *testing.T) {
		s, err := Open("/invalid/path/that/does/not/exist/reports.db")
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestAppendAssignsMonotonicLocalID(t *testing.T) {
	s, cleanup := createTempStore(t)
	defer cleanup()

	id1, err := s.Append(RiskReport{PatientID: "P1", Timestamp: 100, Tier: "AMBER"})
	require.NoError(t, err)
	id2, err := s.Append(RiskReport{PatientID: "P1", Timestamp: 200, Tier: "RED"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)
}

func TestAppendIsIdempotent(t *testing.T) {
	s, cleanup := createTempStore(t)
	defer cleanup()

	report := RiskReport{PatientID: "P1", Timestamp: 100, Tier: "RED", Probability: 0.7}
	id1, err := s.Append(report)
	require.NoError(t, err)
	id2, err := s.Append(report)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)

	all, err := s.ListByPatient("P1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAppendRejectsMissingPatientID(t *testing.T) {
	s, cleanup := createTempStore(t)
	defer cleanup()

	_, err := s.Append(RiskReport{Timestamp: 100, Tier: "RED"})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestMarkAlertSent(t *testing.T) {
	s, cleanup := createTempStore(t)
	defer cleanup()

	id, err := s.Append(RiskReport{PatientID: "P1", Timestamp: 100, Tier: "RED"})
	require.NoError(t, err)

	require.NoError(t, s.MarkAlertSent(id))

	rows, err := s.ListByPatient("P1", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].AlertSent)

	// No-op on an already-set flag.
	require.NoError(t, s.MarkAlertSent(id))
}

func TestListByPatientOrdersNewestFirstWithLocalIDTiebreak(t *testing.T) {
	s, cleanup := createTempStore(t)
	defer cleanup()

	// Append dedups on (PatientID, Timestamp), so two P1 rows sharing a
	// timestamp can only be present together via a loaded snapshot.
	require.NoError(t, s.LoadSnapshot([]RiskReport{
		{LocalID: 1, PatientID: "P1", Timestamp: 300, Tier: "RED"},
		{LocalID: 2, PatientID: "P1", Timestamp: 300, Tier: "AMBER", Age: 1},
	}))
	_, err := s.Append(RiskReport{PatientID: "P1", Timestamp: 100, Tier: "AMBER"})
	require.NoError(t, err)
	_, err = s.Append(RiskReport{PatientID: "P2", Timestamp: 999, Tier: "RED"})
	require.NoError(t, err)

	rows, err := s.ListByPatient("P1", 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(300), rows[0].Timestamp)
	assert.Equal(t, int64(300), rows[1].Timestamp)
	assert.Greater(t, rows[0].LocalID, rows[1].LocalID)
	assert.Equal(t, int64(100), rows[2].Timestamp)
}

func TestListByPatientRespectsLimit(t *testing.T) {
	s, cleanup := createTempStore(t)
	defer cleanup()

	for i := int64(0); i < 5; i++ {
		_, err := s.Append(RiskReport{PatientID: "P1", Timestamp: i, Tier: "AMBER"})
		require.NoError(t, err)
	}

	rows, err := s.ListByPatient("P1", 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSnapshotAndLoadSnapshot(t *testing.T) {
	leader, cleanupLeader := createTempStore(t)
	defer cleanupLeader()

	for i := int64(0); i < 3; i++ {
		_, err := leader.Append(RiskReport{PatientID: "P1", Timestamp: i, Tier: "AMBER"})
		require.NoError(t, err)
	}

	snap, err := leader.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap, 3)

	joiner, cleanupJoiner := createTempStore(t)
	defer cleanupJoiner()

	require.NoError(t, joiner.LoadSnapshot(snap))

	got, err := joiner.ListByPatient("P1", 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	// LocalID sequence continues past the transferred snapshot.
	nextID, err := joiner.Append(RiskReport{PatientID: "P2", Timestamp: 999, Tier: "RED"})
	require.NoError(t, err)
	assert.Greater(t, nextID, int64(3))
}
