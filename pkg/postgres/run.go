package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/duty-rota/pkg/db"
)

// GetRuns retrieves all run records, oldest first
func (d *DB) GetRuns(ctx context.Context) ([]db.Run, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, created_at, seed, weeks, first_week_start, direction
		FROM run
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []db.Run
	for rows.Next() {
		var r db.Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Seed, &r.Weeks, &r.FirstWeekStart, &r.Direction); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt = r.CreatedAt.UTC()
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// InsertRun inserts a new run record
func (d *DB) InsertRun(run *db.Run) error {
	return insertRun(context.Background(), d.pool, run)
}

func insertRun(ctx context.Context, q querier, run *db.Run) error {
	_, err := q.Exec(ctx, `
		INSERT INTO run (id, created_at, seed, weeks, first_week_start, direction)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.ID, run.CreatedAt.UTC(), run.Seed, run.Weeks, run.FirstWeekStart, run.Direction)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}
