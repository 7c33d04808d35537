package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/duty-rota/pkg/core/model"
	"github.com/jakechorley/duty-rota/pkg/core/roster"
	"github.com/jakechorley/duty-rota/pkg/db"
)

// ListRoster reads and validates the current roster
func ListRoster(reader RosterReader, logger *zap.Logger) ([]model.Person, error) {
	logger.Debug("Reading roster", zap.String("source", reader.Location()))
	people, err := reader.ReadRoster()
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	logger.Info("Roster loaded",
		zap.Int("people", len(people)),
		zap.Int("available", roster.AvailableCount(people)))
	return people, nil
}

// RosterDiff is the result of comparing the roster against the last snapshot
type RosterDiff struct {
	// HasSnapshot is false when no run has recorded a roster yet
	HasSnapshot bool
	Changes     []roster.Change
}

// DiffRoster compares the current roster with the snapshot recorded by the last run
func DiffRoster(ctx context.Context, store db.RosterSnapshotStore, reader RosterReader, logger *zap.Logger) (*RosterDiff, error) {
	people, err := ListRoster(reader, logger)
	if err != nil {
		return nil, err
	}

	snapshots, err := store.GetRosterSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster snapshots: %w", err)
	}

	latest := db.LatestRosterSnapshot(snapshots)
	if latest == nil {
		logger.Info("No previous roster snapshot")
		return &RosterDiff{}, nil
	}

	changes := roster.DetectChanges(snapshotPeople(latest), people)
	logger.Info("Roster compared",
		zap.Time("snapshot_taken_at", latest[0].TakenAt),
		zap.Int("changes", len(changes)))

	return &RosterDiff{HasSnapshot: true, Changes: changes}, nil
}
