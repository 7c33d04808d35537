package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/jakechorley/duty-rota/pkg/sheetssql"
)

// GetRosterSnapshots retrieves all roster snapshot records
func (db *DB) GetRosterSnapshots(ctx context.Context) ([]RosterSnapshot, error) {
	snapshots, err := sheetssql.GetTableAs[RosterSnapshot](db.ssql, RosterSnapshotTable)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster snapshots: %w", err)
	}
	return dedupeByID(snapshots, func(s RosterSnapshot) string { return s.ID }), nil
}

// InsertRosterSnapshots appends roster snapshot records
func (db *DB) InsertRosterSnapshots(snapshots []RosterSnapshot) error {
	if err := sheetssql.InsertModels(db.ssql, snapshots); err != nil {
		return fmt.Errorf("failed to insert roster snapshots: %w", err)
	}
	return nil
}

// LatestRosterSnapshot returns the rows of the most recently taken snapshot, or nil if
// there are none
func LatestRosterSnapshot(snapshots []RosterSnapshot) []RosterSnapshot {
	if len(snapshots) == 0 {
		return nil
	}

	latest := snapshots[0]
	for _, s := range snapshots[1:] {
		if s.TakenAt.After(latest.TakenAt) {
			latest = s
		}
	}

	var rows []RosterSnapshot
	for _, s := range snapshots {
		if s.SnapshotID == latest.SnapshotID {
			rows = append(rows, s)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Name < rows[j].Name
	})
	return rows
}
