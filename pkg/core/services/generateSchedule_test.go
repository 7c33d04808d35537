package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/duty-rota/internal/config"
	"github.com/jakechorley/duty-rota/pkg/core/roster"
	"github.com/jakechorley/duty-rota/pkg/core/rotation"
	"github.com/jakechorley/duty-rota/pkg/db"
)

var testToday = time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC) // a Wednesday

func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			Weeks:               4,
			MaxRetries:          1000,
			AdjustmentDirection: string(rotation.AdjustDampen),
		},
	}
}

func TestGenerateSchedule_ColdStart(t *testing.T) {
	store := &mockHistoryStore{}
	reader := &mockRosterReader{people: testRoster("alice", "bob", "carol", "dan", "erin", "frank")}
	writer := &mockScheduleWriter{}

	result, err := GenerateSchedule(t.Context(), store, reader, []ScheduleWriter{writer}, testConfig(), zap.NewNop(),
		GenerateScheduleOptions{Seed: 42, Today: testToday})
	require.NoError(t, err)

	require.Len(t, result.Schedule, 4)
	assert.True(t, result.Written)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), result.Schedule[0].StartDate)
	assert.Empty(t, result.Changes)

	// Schedule went to the writer
	require.Len(t, writer.written, 1)
	assert.Equal(t, result.Schedule, writer.written[0])

	// History rows: one run, two assignments per week, a snapshot of the whole roster
	require.Len(t, store.runs, 1)
	assert.Equal(t, int64(42), store.runs[0].Seed)
	assert.Equal(t, 4, store.runs[0].Weeks)
	assert.Equal(t, result.Schedule[0].StartDate, store.runs[0].FirstWeekStart)
	assert.Equal(t, "dampen", store.runs[0].Direction)

	require.Len(t, store.assignments, 8)
	for i, a := range store.assignments {
		assert.Equal(t, store.runs[0].ID, a.RunID)
		assert.Equal(t, i/2+1, a.Week)
		assert.Equal(t, i%2+1, a.Slot)
	}
	assert.Len(t, store.snapshots, 6)

	assert.Equal(t, 8, result.History.Total())
}

func TestGenerateSchedule_DryRunWritesNothing(t *testing.T) {
	store := &mockHistoryStore{}
	reader := &mockRosterReader{people: testRoster("alice", "bob", "carol")}
	writer := &mockScheduleWriter{}

	result, err := GenerateSchedule(t.Context(), store, reader, []ScheduleWriter{writer}, testConfig(), zap.NewNop(),
		GenerateScheduleOptions{Seed: 1, Today: testToday, DryRun: true})
	require.NoError(t, err)

	assert.Len(t, result.Schedule, 4)
	assert.False(t, result.Written)
	assert.Empty(t, writer.written)
	assert.Empty(t, store.runs)
	assert.Empty(t, store.assignments)
	assert.Empty(t, store.snapshots)
}

func TestGenerateSchedule_SameSeedSameSchedule(t *testing.T) {
	run := func() []string {
		reader := &mockRosterReader{people: testRoster("alice", "bob", "carol", "dan", "erin")}
		result, err := GenerateSchedule(t.Context(), &mockHistoryStore{}, reader, nil, testConfig(), zap.NewNop(),
			GenerateScheduleOptions{Seed: 7, Today: testToday, DryRun: true})
		require.NoError(t, err)

		var names []string
		for _, week := range result.Schedule {
			names = append(names, week.Names()...)
		}
		return names
	}

	assert.Equal(t, run(), run())
}

func TestGenerateSchedule_InsufficientStaff(t *testing.T) {
	store := &mockHistoryStore{}
	people := testRoster("alice", "bob")
	people[1].Available = false
	writer := &mockScheduleWriter{}

	_, err := GenerateSchedule(t.Context(), store, &mockRosterReader{people: people}, []ScheduleWriter{writer}, testConfig(), zap.NewNop(),
		GenerateScheduleOptions{Seed: 1, Today: testToday})

	assert.ErrorIs(t, err, rotation.ErrInsufficientStaff)
	assert.Empty(t, writer.written)
	assert.Empty(t, store.runs)
	assert.Empty(t, store.assignments)
}

func TestGenerateSchedule_RosterError(t *testing.T) {
	reader := &mockRosterReader{err: roster.ErrSchema}

	_, err := GenerateSchedule(t.Context(), &mockHistoryStore{}, reader, nil, testConfig(), zap.NewNop(),
		GenerateScheduleOptions{Today: testToday})

	assert.ErrorIs(t, err, roster.ErrSchema)
	assert.ErrorContains(t, err, "failed to read roster")
}

func TestGenerateSchedule_StoreReadError(t *testing.T) {
	store := &mockHistoryStore{getErr: errStoreDown}

	_, err := GenerateSchedule(t.Context(), store, &mockRosterReader{people: testRoster("a", "b", "c")}, nil, testConfig(), zap.NewNop(),
		GenerateScheduleOptions{Today: testToday})

	assert.ErrorIs(t, err, errStoreDown)
}

func TestGenerateSchedule_WriterErrorAfterHistoryRecorded(t *testing.T) {
	store := &mockHistoryStore{}
	writer := &mockScheduleWriter{err: os.ErrPermission}

	_, err := GenerateSchedule(t.Context(), store, &mockRosterReader{people: testRoster("a", "b", "c")}, []ScheduleWriter{writer}, testConfig(), zap.NewNop(),
		GenerateScheduleOptions{Today: testToday})

	assert.ErrorIs(t, err, os.ErrPermission)
	require.Len(t, store.runs, 1)
	assert.ErrorContains(t, err, "run "+store.runs[0].ID+" recorded but failed to write schedule to mock-schedule")
	assert.Len(t, store.assignments, 8)
}

func TestGenerateSchedule_HistoryFlushFailureWritesNothing(t *testing.T) {
	store := &mockHistoryStore{recordErr: errStoreDown}
	first := &mockScheduleWriter{}
	second := &mockScheduleWriter{}

	result, err := GenerateSchedule(t.Context(), store, &mockRosterReader{people: testRoster("a", "b", "c", "d")}, []ScheduleWriter{first, second}, testConfig(), zap.NewNop(),
		GenerateScheduleOptions{Seed: 5, Today: testToday})

	assert.ErrorIs(t, err, errStoreDown)
	assert.ErrorContains(t, err, "failed to record history")
	assert.Nil(t, result)

	// No run, no orphaned assignments and no output
	assert.Empty(t, store.runs)
	assert.Empty(t, store.assignments)
	assert.Empty(t, store.snapshots)
	assert.Empty(t, first.written)
	assert.Empty(t, second.written)
}

func TestGenerateSchedule_ReplaysStoredHistory(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	store := &mockHistoryStore{
		runs: []db.Run{{ID: "run-0", CreatedAt: start}},
		assignments: []db.Assignment{
			{ID: "a1", RunID: "run-0", Week: 1, Slot: 1, Name: "alice", StartDate: start, EndDate: start.AddDate(0, 0, 4)},
			{ID: "a2", RunID: "run-0", Week: 1, Slot: 2, Name: "bob", StartDate: start, EndDate: start.AddDate(0, 0, 4)},
		},
	}

	result, err := GenerateSchedule(t.Context(), store, &mockRosterReader{people: testRoster("alice", "bob", "carol", "dan")}, nil, testConfig(), zap.NewNop(),
		GenerateScheduleOptions{Seed: 3, Today: testToday})
	require.NoError(t, err)

	// Carried-over history plus 4 new weeks
	assert.Equal(t, 10, result.History.Total())
	assert.Len(t, store.assignments, 10)
	assert.Len(t, store.runs, 2)
}

func TestGenerateSchedule_DetectsRosterChanges(t *testing.T) {
	taken := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	store := &mockHistoryStore{
		snapshots: []db.RosterSnapshot{
			{ID: "s1", SnapshotID: "snap-1", TakenAt: taken, Name: "alice", Email: "old@example.com", Available: true},
			{ID: "s2", SnapshotID: "snap-1", TakenAt: taken, Name: "bob", Email: "bob@example.com", Available: true},
			{ID: "s3", SnapshotID: "snap-1", TakenAt: taken, Name: "zed", Email: "zed@example.com", Available: true},
		},
	}

	result, err := GenerateSchedule(t.Context(), store, &mockRosterReader{people: testRoster("alice", "bob", "carol")}, nil, testConfig(), zap.NewNop(),
		GenerateScheduleOptions{Seed: 3, Today: testToday, DryRun: true})
	require.NoError(t, err)

	var lines []string
	for _, c := range result.Changes {
		lines = append(lines, c.String())
	}
	assert.Equal(t, []string{
		"Change in Email for employee alice: old@example.com -> alice@example.com",
		"Employee carol added",
		"Employee zed removed",
	}, lines)
}

func TestGenerateSchedule_ExportsMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.TextfilePath = filepath.Join(t.TempDir(), "duty_rota.prom")

	result, err := GenerateSchedule(t.Context(), &mockHistoryStore{}, &mockRosterReader{people: testRoster("a", "b", "c")}, nil, cfg, zap.NewNop(),
		GenerateScheduleOptions{Seed: 1, Today: testToday})
	require.NoError(t, err)

	assert.Equal(t, cfg.Metrics.TextfilePath, result.MetricsPath)
	content, err := os.ReadFile(cfg.Metrics.TextfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "duty_rota_run_weeks 4")
}

func TestEngineOptions(t *testing.T) {
	zero := 0
	cfg := testConfig()
	cfg.Engine.WindowSize = &zero

	opts := engineOptions(cfg, GenerateScheduleOptions{Weeks: 10}, zap.NewNop())

	assert.Equal(t, 10, opts.Weeks)
	assert.Equal(t, -1, opts.WindowSize)
	assert.Equal(t, 1000, opts.MaxRetries)
	assert.Equal(t, rotation.AdjustDampen, opts.Direction)

	cfg.Engine.WindowSize = nil
	assert.Equal(t, 4, engineOptions(cfg, GenerateScheduleOptions{}, zap.NewNop()).WindowSize)
	assert.Equal(t, 4, engineOptions(cfg, GenerateScheduleOptions{}, zap.NewNop()).Weeks)
}
