package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jakechorley/duty-rota/pkg/db"
)

// document is the on-disk layout of the history file
type document struct {
	Runs            []db.Run            `yaml:"runs"`
	Assignments     []db.Assignment     `yaml:"assignments"`
	RosterSnapshots []db.RosterSnapshot `yaml:"roster_snapshots"`
}

// Store keeps history in a single YAML file.
// A missing file reads as empty history; every insert rewrites the file atomically.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store backed by the file at path
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the history file location
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse history file %s: %w", s.path, err)
	}
	return &doc, nil
}

func (s *Store) save(doc *document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// update loads the document, applies fn and writes it back
func (s *Store) update(fn func(doc *document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	fn(doc)
	return s.save(doc)
}

func (s *Store) read() (*document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// GetRuns retrieves all run records
func (s *Store) GetRuns(ctx context.Context) ([]db.Run, error) {
	doc, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	return doc.Runs, nil
}

// InsertRun appends a run record
func (s *Store) InsertRun(run *db.Run) error {
	err := s.update(func(doc *document) {
		doc.Runs = append(doc.Runs, *run)
	})
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// GetAssignments retrieves all assignment records
func (s *Store) GetAssignments(ctx context.Context) ([]db.Assignment, error) {
	doc, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}
	return doc.Assignments, nil
}

// InsertAssignments appends assignment records
func (s *Store) InsertAssignments(assignments []db.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	err := s.update(func(doc *document) {
		doc.Assignments = append(doc.Assignments, assignments...)
	})
	if err != nil {
		return fmt.Errorf("failed to insert assignments: %w", err)
	}
	return nil
}

// GetRosterSnapshots retrieves all roster snapshot records
func (s *Store) GetRosterSnapshots(ctx context.Context) ([]db.RosterSnapshot, error) {
	doc, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("failed to get roster snapshots: %w", err)
	}
	return doc.RosterSnapshots, nil
}

// InsertRosterSnapshots appends roster snapshot records
func (s *Store) InsertRosterSnapshots(snapshots []db.RosterSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	err := s.update(func(doc *document) {
		doc.RosterSnapshots = append(doc.RosterSnapshots, snapshots...)
	})
	if err != nil {
		return fmt.Errorf("failed to insert roster snapshots: %w", err)
	}
	return nil
}

// RecordRun appends a run with its assignments and roster snapshot in a single rewrite
func (s *Store) RecordRun(run *db.Run, assignments []db.Assignment, snapshots []db.RosterSnapshot) error {
	err := s.update(func(doc *document) {
		doc.Runs = append(doc.Runs, *run)
		doc.Assignments = append(doc.Assignments, assignments...)
		doc.RosterSnapshots = append(doc.RosterSnapshots, snapshots...)
	})
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}
