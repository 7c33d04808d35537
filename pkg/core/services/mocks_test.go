package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jakechorley/duty-rota/pkg/core/model"
	"github.com/jakechorley/duty-rota/pkg/db"
)

// mockHistoryStore implements db.HistoryStore in memory
type mockHistoryStore struct {
	runs        []db.Run
	assignments []db.Assignment
	snapshots   []db.RosterSnapshot

	getErr    error
	insertErr error

	// recordErr fails RecordRun as a whole, like a rolled back transaction
	recordErr error
}

func (m *mockHistoryStore) GetRuns(ctx context.Context) ([]db.Run, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.runs, nil
}

func (m *mockHistoryStore) InsertRun(run *db.Run) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockHistoryStore) GetAssignments(ctx context.Context) ([]db.Assignment, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.assignments, nil
}

func (m *mockHistoryStore) InsertAssignments(assignments []db.Assignment) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.assignments = append(m.assignments, assignments...)
	return nil
}

func (m *mockHistoryStore) GetRosterSnapshots(ctx context.Context) ([]db.RosterSnapshot, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.snapshots, nil
}

func (m *mockHistoryStore) InsertRosterSnapshots(snapshots []db.RosterSnapshot) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.snapshots = append(m.snapshots, snapshots...)
	return nil
}

func (m *mockHistoryStore) RecordRun(run *db.Run, assignments []db.Assignment, snapshots []db.RosterSnapshot) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	m.runs = append(m.runs, *run)
	m.assignments = append(m.assignments, assignments...)
	m.snapshots = append(m.snapshots, snapshots...)
	return nil
}

// mockRosterReader returns a fixed roster
type mockRosterReader struct {
	people []model.Person
	err    error
}

func (m *mockRosterReader) ReadRoster() ([]model.Person, error) {
	return m.people, m.err
}

func (m *mockRosterReader) Location() string {
	return "mock-roster"
}

// mockScheduleWriter records written schedules
type mockScheduleWriter struct {
	written []model.Schedule
	err     error
}

func (m *mockScheduleWriter) WriteSchedule(schedule model.Schedule) error {
	if m.err != nil {
		return m.err
	}
	m.written = append(m.written, schedule)
	return nil
}

func (m *mockScheduleWriter) Location() string {
	return "mock-schedule"
}

// mockNotifier records sent emails and fails for selected recipients
type mockNotifier struct {
	sentEmails map[string]string
	failFor    []string
}

func (m *mockNotifier) SendEmail(to, subject, body string) error {
	for _, addr := range m.failFor {
		if addr == to {
			return fmt.Errorf("mailbox unavailable: %s", to)
		}
	}
	if m.sentEmails == nil {
		m.sentEmails = make(map[string]string)
	}
	m.sentEmails[to] = body
	return nil
}

var errStoreDown = errors.New("store unavailable")

func testRoster(names ...string) []model.Person {
	people := make([]model.Person, 0, len(names))
	for _, name := range names {
		people = append(people, model.Person{
			Name:      name,
			Email:     fmt.Sprintf("%s@example.com", name),
			Available: true,
		})
	}
	return people
}
