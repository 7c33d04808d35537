package db

import (
	"context"
	"fmt"
	"slices"

	"github.com/jakechorley/duty-rota/pkg/sheetssql"
)

// GetAssignments retrieves all assignment records of recorded runs.
// Rows appended twice for the same ID (a retried flush) are returned once, and rows whose
// run row was never appended (an interrupted RecordRun) are skipped.
func (db *DB) GetAssignments(ctx context.Context) ([]Assignment, error) {
	runs, err := db.GetRuns(ctx)
	if err != nil {
		return nil, err
	}
	recorded := make(map[string]bool, len(runs))
	for _, r := range runs {
		recorded[r.ID] = true
	}

	assignments, err := sheetssql.GetTableAs[Assignment](db.ssql, AssignmentTable)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}

	assignments = slices.DeleteFunc(assignments, func(a Assignment) bool {
		return !recorded[a.RunID]
	})
	return dedupeByID(assignments, func(a Assignment) string { return a.ID }), nil
}

// InsertAssignments appends assignment records
func (db *DB) InsertAssignments(assignments []Assignment) error {
	if err := sheetssql.InsertModels(db.ssql, assignments); err != nil {
		return fmt.Errorf("failed to insert assignments: %w", err)
	}
	return nil
}

// dedupeByID keeps the first record for each ID, preserving order
func dedupeByID[T any](records []T, id func(T) string) []T {
	seen := make(map[string]bool, len(records))
	result := make([]T, 0, len(records))
	for _, record := range records {
		key := id(record)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, record)
	}
	return result
}
