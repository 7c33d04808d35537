package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/duty-rota/internal/config"
	"github.com/jakechorley/duty-rota/pkg/core/model"
	"github.com/jakechorley/duty-rota/pkg/core/roster"
	"github.com/jakechorley/duty-rota/pkg/core/rotation"
	"github.com/jakechorley/duty-rota/pkg/db"
	"github.com/jakechorley/duty-rota/pkg/utils/metrics"
)

// GenerateScheduleOptions are the per-invocation inputs of a run
type GenerateScheduleOptions struct {
	Seed int64

	// Weeks overrides the configured week count when positive
	Weeks int

	// Today anchors week 1 to the first Monday on or after it
	Today time.Time

	// DryRun generates the schedule without writing output or history
	DryRun bool
}

// GenerateScheduleResult describes a completed run
type GenerateScheduleResult struct {
	Run      db.Run
	Schedule model.Schedule
	Changes  []roster.Change
	History  rotation.History
	Stats    rotation.Stats

	// Written is false for dry runs
	Written     bool
	MetricsPath string
}

// GenerateSchedule reads the roster, replays stored history, runs the rotation engine and,
// unless this is a dry run, records the run in the history store and writes the schedule.
// Nothing is written if any step before the history flush fails, and no output is written
// unless the flush succeeds.
func GenerateSchedule(
	ctx context.Context,
	store db.HistoryStore,
	reader RosterReader,
	writers []ScheduleWriter,
	cfg *config.Config,
	logger *zap.Logger,
	opts GenerateScheduleOptions,
) (*GenerateScheduleResult, error) {
	logger.Info("Starting generateSchedule",
		zap.Int64("seed", opts.Seed),
		zap.Bool("dry_run", opts.DryRun))

	// Step 1: Read roster
	logger.Debug("Reading roster", zap.String("source", reader.Location()))
	people, err := reader.ReadRoster()
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	logger.Info("Roster loaded",
		zap.Int("people", len(people)),
		zap.Int("available", roster.AvailableCount(people)))

	// Step 2: Compare against the last recorded roster
	changes, err := detectRosterChanges(ctx, store, people, logger)
	if err != nil {
		return nil, err
	}

	// Step 3: Replay history
	logger.Debug("Fetching assignment history")
	assignments, err := store.GetAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}
	history := BuildHistory(assignments)
	logger.Info("History loaded",
		zap.Int("assignments", len(assignments)),
		zap.Int("people", len(history)))

	// Step 4: Run the engine
	engine := rotation.NewEngine(engineOptions(cfg, opts, logger))
	result, err := engine.Run(rotation.Input{
		Roster:  people,
		History: history,
		Today:   opts.Today,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate schedule: %w", err)
	}
	logger.Info("Schedule generated",
		zap.Int("weeks", len(result.Schedule)),
		zap.Int("draws", result.Stats.Draws),
		zap.Int("retries", result.Stats.Retries),
		zap.Int("fallback_weeks", result.Stats.FallbackWeeks))

	createdAt := time.Now().UTC()
	run := db.Run{
		ID:        uuid.New().String(),
		CreatedAt: createdAt,
		Seed:      opts.Seed,
		Weeks:     len(result.Schedule),
		Direction: string(cfg.Engine.AdjustmentDirection),
	}
	if len(result.Schedule) > 0 {
		run.FirstWeekStart = result.Schedule[0].StartDate
	}

	out := &GenerateScheduleResult{
		Run:      run,
		Schedule: result.Schedule,
		Changes:  changes,
		History:  result.History,
		Stats:    result.Stats,
	}

	if opts.DryRun {
		logger.Info("Dry run, skipping schedule output and history")
		return out, nil
	}

	// Step 5: Record history in one flush so a failure leaves no partial run behind
	records := assignmentRecords(run.ID, result.Schedule)
	if err := store.RecordRun(&run, records, snapshotRecords(people, createdAt)); err != nil {
		return nil, fmt.Errorf("failed to record history: %w", err)
	}
	logger.Info("History updated",
		zap.String("run_id", run.ID),
		zap.Int("assignments", len(records)))

	// Step 6: Write schedule
	for _, writer := range writers {
		logger.Debug("Writing schedule", zap.String("destination", writer.Location()))
		if err := writer.WriteSchedule(result.Schedule); err != nil {
			return nil, fmt.Errorf("run %s recorded but failed to write schedule to %s: %w", run.ID, writer.Location(), err)
		}
		logger.Info("Schedule written", zap.String("destination", writer.Location()))
	}
	out.Written = true

	// Step 7: Export metrics; output is already committed so failures only warn
	if cfg.Metrics.TextfilePath != "" {
		if err := exportMetrics(cfg.Metrics, people, result); err != nil {
			logger.Warn("Failed to export metrics", zap.Error(err))
		} else {
			out.MetricsPath = cfg.Metrics.TextfilePath
			logger.Debug("Metrics exported", zap.String("path", out.MetricsPath))
		}
	}

	return out, nil
}

// engineOptions maps configuration onto engine options. A configured window size of 0
// disables the recency window.
func engineOptions(cfg *config.Config, opts GenerateScheduleOptions, logger *zap.Logger) rotation.Options {
	weeks := cfg.Engine.Weeks
	if opts.Weeks > 0 {
		weeks = opts.Weeks
	}

	window := cfg.Engine.EffectiveWindowSize()
	if window == 0 {
		window = -1
	}

	return rotation.Options{
		Rand:       rand.New(rand.NewSource(opts.Seed)),
		Logger:     logger,
		Weeks:      weeks,
		WindowSize: window,
		MaxRetries: cfg.Engine.MaxRetries,
		Direction:  rotation.AdjustmentDirection(cfg.Engine.AdjustmentDirection),
	}
}

// detectRosterChanges logs the differences between the latest snapshot and the current roster
func detectRosterChanges(ctx context.Context, store db.RosterSnapshotStore, people []model.Person, logger *zap.Logger) ([]roster.Change, error) {
	snapshots, err := store.GetRosterSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster snapshots: %w", err)
	}

	latest := db.LatestRosterSnapshot(snapshots)
	if latest == nil {
		logger.Info("No previous roster snapshot, skipping change detection")
		return nil, nil
	}

	changes := roster.DetectChanges(snapshotPeople(latest), people)
	for _, change := range changes {
		logger.Info(change.String())
	}
	logger.Debug("Roster changes detected", zap.Int("count", len(changes)))
	return changes, nil
}

// assignmentRecords flattens a schedule into one row per person per week
func assignmentRecords(runID string, schedule model.Schedule) []db.Assignment {
	records := make([]db.Assignment, 0, len(schedule)*2)
	for _, week := range schedule {
		for slot, person := range []model.Person{week.Agent1, week.Agent2} {
			records = append(records, db.Assignment{
				ID:        uuid.New().String(),
				RunID:     runID,
				Week:      week.Week,
				Slot:      slot + 1,
				Name:      person.Name,
				Email:     person.Email,
				StartDate: week.StartDate,
				EndDate:   week.EndDate,
			})
		}
	}
	return records
}

// snapshotRecords records the whole roster, available or not
func snapshotRecords(people []model.Person, takenAt time.Time) []db.RosterSnapshot {
	snapshotID := uuid.New().String()
	records := make([]db.RosterSnapshot, 0, len(people))
	for _, p := range people {
		records = append(records, db.RosterSnapshot{
			ID:         uuid.New().String(),
			SnapshotID: snapshotID,
			TakenAt:    takenAt,
			Name:       p.Name,
			Email:      p.Email,
			Available:  p.Available,
		})
	}
	return records
}

func exportMetrics(cfg config.MetricsConfig, people []model.Person, result *rotation.Result) error {
	counts := make(map[string]int, len(result.History))
	for _, name := range result.History.Names() {
		counts[name] = result.History.Count(name)
	}

	collector := metrics.New(cfg.Namespace)
	collector.RecordRun(metrics.RunSummary{
		Weeks:         len(result.Schedule),
		Available:     roster.AvailableCount(people),
		Draws:         result.Stats.Draws,
		Retries:       result.Stats.Retries,
		FallbackWeeks: result.Stats.FallbackWeeks,
		CappedWeeks:   result.Stats.CappedWeeks,
		WeightResets:  result.Stats.WeightResets,
		Assignments:   counts,
		FinishedAt:    time.Now(),
	})
	return collector.WriteTextfile(cfg.TextfilePath)
}
