package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/duty-rota/pkg/db"
)

// GetAssignments retrieves all assignment records in schedule order
func (d *DB) GetAssignments(ctx context.Context) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT a.id, a.run_id, a.week, a.slot, a.name, a.email, a.start_date, a.end_date
		FROM assignment a
		JOIN run r ON r.id = a.run_id
		ORDER BY r.created_at, a.week, a.slot
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		if err := rows.Scan(&a.ID, &a.RunID, &a.Week, &a.Slot, &a.Name, &a.Email, &a.StartDate, &a.EndDate); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// InsertAssignments inserts assignment records in a single batch transaction
func (d *DB) InsertAssignments(assignments []db.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	return pgx.BeginFunc(context.Background(), d.pool, func(tx pgx.Tx) error {
		return insertAssignments(context.Background(), tx, assignments)
	})
}

func insertAssignments(ctx context.Context, q querier, assignments []db.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, a := range assignments {
		batch.Queue(`
			INSERT INTO assignment (id, run_id, week, slot, name, email, start_date, end_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING
		`, a.ID, a.RunID, a.Week, a.Slot, a.Name, a.Email, a.StartDate, a.EndDate)
	}

	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert assignments: %w", err)
	}
	return nil
}
