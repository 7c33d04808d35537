package db

import (
	"context"
	"fmt"

	"github.com/jakechorley/duty-rota/pkg/sheetssql"
)

// GetRuns retrieves all run records
func (db *DB) GetRuns(ctx context.Context) ([]Run, error) {
	runs, err := sheetssql.GetTableAs[Run](db.ssql, RunTable)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	return dedupeByID(runs, func(r Run) string { return r.ID }), nil
}

// InsertRun inserts a new run record
func (db *DB) InsertRun(run *Run) error {
	if err := sheetssql.InsertModel(db.ssql, *run); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// RecordRun appends a run with its assignments and roster snapshot.
// Sheets has no transactions, so the run row is appended last and marks the run as
// recorded; assignments without a run row are ignored by GetAssignments.
func (db *DB) RecordRun(run *Run, assignments []Assignment, snapshots []RosterSnapshot) error {
	if err := db.InsertAssignments(assignments); err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	if err := db.InsertRosterSnapshots(snapshots); err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	if err := db.InsertRun(run); err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// LatestRun returns the most recently created run
func LatestRun(runs []Run) (Run, bool) {
	if len(runs) == 0 {
		return Run{}, false
	}

	latest := runs[0]
	for _, r := range runs[1:] {
		if r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	return latest, true
}
