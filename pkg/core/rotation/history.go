package rotation

import (
	"slices"
	"sort"
	"time"
)

// PersonHistory is the cumulative assignment record for one person
type PersonHistory struct {
	NumAssignments int

	// LastAssignmentDate is the end date of the most recent assignment (zero if never assigned)
	LastAssignmentDate time.Time

	// WorkloadHistory holds the start date of every assignment in the order they were made
	WorkloadHistory []time.Time
}

// History maps a person's name to their assignment record.
// It is the only engine state that crosses runs.
type History map[string]PersonHistory

// Clone returns a deep copy so callers never share slices with the engine
func (h History) Clone() History {
	clone := make(History, len(h))
	for name, ph := range h {
		ph.WorkloadHistory = slices.Clone(ph.WorkloadHistory)
		clone[name] = ph
	}
	return clone
}

// Count returns the number of assignments recorded for name
func (h History) Count(name string) int {
	return h[name].NumAssignments
}

// Total returns the sum of assignment counts across everyone
func (h History) Total() int {
	total := 0
	for _, ph := range h {
		total += ph.NumAssignments
	}
	return total
}

// Names returns the names in the history in sorted order
func (h History) Names() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithPeople returns a copy of the history that has an entry (possibly empty) for each name
func (h History) WithPeople(names ...string) History {
	next := h.Clone()
	for _, name := range names {
		if _, ok := next[name]; !ok {
			next[name] = PersonHistory{WorkloadHistory: []time.Time{}}
		}
	}
	return next
}

// WithAssignment returns a copy of the history with one more assignment recorded for name.
// The receiver is left untouched.
func (h History) WithAssignment(name string, start, end time.Time) History {
	next := make(History, len(h)+1)
	for n, ph := range h {
		next[n] = ph
	}

	ph := h[name]
	workload := make([]time.Time, 0, len(ph.WorkloadHistory)+1)
	workload = append(workload, ph.WorkloadHistory...)
	workload = append(workload, start)

	next[name] = PersonHistory{
		NumAssignments:     ph.NumAssignments + 1,
		LastAssignmentDate: laterOf(ph.LastAssignmentDate, end),
		WorkloadHistory:    workload,
	}
	return next
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
