package db

import "context"

// RunStore defines the interface for run records
type RunStore interface {
	GetRuns(ctx context.Context) ([]Run, error)
	InsertRun(run *Run) error
}

// AssignmentStore defines the interface for assignment records
type AssignmentStore interface {
	GetAssignments(ctx context.Context) ([]Assignment, error)
	InsertAssignments(assignments []Assignment) error
}

// RosterSnapshotStore defines the interface for roster snapshot records
type RosterSnapshotStore interface {
	GetRosterSnapshots(ctx context.Context) ([]RosterSnapshot, error)
	InsertRosterSnapshots(snapshots []RosterSnapshot) error
}

// RunRecorder stores a run together with its assignments and roster snapshot.
// Either all three are recorded or the run is not visible to readers.
type RunRecorder interface {
	RecordRun(run *Run, assignments []Assignment, snapshots []RosterSnapshot) error
}

// HistoryStore defines the interface for all history operations.
// The SheetsSQL-backed db.DB, postgres.DB and filestore.Store implement it.
type HistoryStore interface {
	RunStore
	AssignmentStore
	RosterSnapshotStore
	RunRecorder
}
