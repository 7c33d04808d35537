package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/duty-rota/pkg/db"
)

// RecordRun stores a run with its assignments and roster snapshot in one transaction
func (d *DB) RecordRun(run *db.Run, assignments []db.Assignment, snapshots []db.RosterSnapshot) error {
	ctx := context.Background()
	err := pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		if err := insertRun(ctx, tx, run); err != nil {
			return err
		}
		if err := insertAssignments(ctx, tx, assignments); err != nil {
			return err
		}
		return insertRosterSnapshots(ctx, tx, snapshots)
	})
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}
