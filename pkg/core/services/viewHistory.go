package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/duty-rota/pkg/db"
)

// PersonSummary is one person's cumulative duty record
type PersonSummary struct {
	Name               string
	NumAssignments     int
	LastAssignmentDate time.Time
	FirstAssignment    time.Time
}

// HistoryView summarises everything in the history store
type HistoryView struct {
	Runs        int
	LatestRun   *db.Run
	Assignments int
	People      []PersonSummary
}

// ViewHistory aggregates stored assignments per person, sorted by name
func ViewHistory(ctx context.Context, store db.HistoryStore, logger *zap.Logger) (*HistoryView, error) {
	logger.Debug("Fetching runs")
	runs, err := store.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	logger.Debug("Fetching assignments")
	assignments, err := store.GetAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	view := &HistoryView{
		Runs:        len(runs),
		Assignments: len(assignments),
	}
	if latest, ok := db.LatestRun(runs); ok {
		view.LatestRun = &latest
	}

	history := BuildHistory(assignments)
	for _, name := range history.Names() {
		ph := history[name]
		summary := PersonSummary{
			Name:               name,
			NumAssignments:     ph.NumAssignments,
			LastAssignmentDate: ph.LastAssignmentDate,
		}
		if len(ph.WorkloadHistory) > 0 {
			summary.FirstAssignment = ph.WorkloadHistory[0]
		}
		view.People = append(view.People, summary)
	}

	logger.Info("History loaded",
		zap.Int("runs", view.Runs),
		zap.Int("assignments", view.Assignments),
		zap.Int("people", len(view.People)))

	return view, nil
}
