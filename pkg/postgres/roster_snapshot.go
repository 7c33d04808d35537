package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/duty-rota/pkg/db"
)

// GetRosterSnapshots retrieves all roster snapshot records
func (d *DB) GetRosterSnapshots(ctx context.Context) ([]db.RosterSnapshot, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, snapshot_id, taken_at, name, email, available
		FROM roster_snapshot
		ORDER BY taken_at, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster snapshots: %w", err)
	}
	defer rows.Close()

	snapshots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.RosterSnapshot, error) {
		var s db.RosterSnapshot
		err := row.Scan(&s.ID, &s.SnapshotID, &s.TakenAt, &s.Name, &s.Email, &s.Available)
		s.TakenAt = s.TakenAt.UTC()
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan roster snapshots: %w", err)
	}

	return snapshots, nil
}

// InsertRosterSnapshots inserts roster snapshot records using COPY
func (d *DB) InsertRosterSnapshots(snapshots []db.RosterSnapshot) error {
	return insertRosterSnapshots(context.Background(), d.pool, snapshots)
}

func insertRosterSnapshots(ctx context.Context, q querier, snapshots []db.RosterSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, []any{s.ID, s.SnapshotID, s.TakenAt.UTC(), s.Name, s.Email, s.Available})
	}

	_, err := q.CopyFrom(
		ctx,
		pgx.Identifier{"roster_snapshot"},
		[]string{"id", "snapshot_id", "taken_at", "name", "email", "available"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert roster snapshots: %w", err)
	}
	return nil
}
