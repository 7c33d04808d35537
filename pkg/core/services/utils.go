package services

import (
	"sort"

	"github.com/jakechorley/duty-rota/pkg/core/model"
	"github.com/jakechorley/duty-rota/pkg/core/rotation"
	"github.com/jakechorley/duty-rota/pkg/db"
)

// BuildHistory replays assignment rows, oldest first, into the engine's history aggregate
func BuildHistory(assignments []db.Assignment) rotation.History {
	sorted := make([]db.Assignment, len(assignments))
	copy(sorted, assignments)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		return a.Slot < b.Slot
	})

	history := rotation.History{}
	for _, a := range sorted {
		history = history.WithAssignment(a.Name, a.StartDate, a.EndDate)
	}
	return history
}

// snapshotPeople converts snapshot rows back into roster entries
func snapshotPeople(rows []db.RosterSnapshot) []model.Person {
	people := make([]model.Person, 0, len(rows))
	for _, row := range rows {
		people = append(people, model.Person{
			Name:      row.Name,
			Email:     row.Email,
			Available: row.Available,
		})
	}
	return people
}

// filterAssignmentsByRunID returns the assignments belonging to one run in week/slot order
func filterAssignmentsByRunID(assignments []db.Assignment, runID string) []db.Assignment {
	var filtered []db.Assignment
	for _, a := range assignments {
		if a.RunID == runID {
			filtered = append(filtered, a)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Week != filtered[j].Week {
			return filtered[i].Week < filtered[j].Week
		}
		return filtered[i].Slot < filtered[j].Slot
	})
	return filtered
}

// getNames returns the names of people in order
func getNames(people []model.Person) []string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}
	return names
}
