package db

import "time"

// Run represents one generated schedule
type Run struct {
	ID             string    `ssql_header:"id" ssql_type:"uuid" yaml:"id"`
	CreatedAt      time.Time `ssql_header:"created_at" ssql_type:"datetime" yaml:"created_at"`
	Seed           int64     `ssql_header:"seed" ssql_type:"int" yaml:"seed"`
	Weeks          int       `ssql_header:"weeks" ssql_type:"int" yaml:"weeks"`
	FirstWeekStart time.Time `ssql_header:"first_week_start" ssql_type:"date" yaml:"first_week_start"`
	Direction      string    `ssql_header:"direction" ssql_type:"text" yaml:"direction"`
}

// Assignment is one person's duty for one week of a run.
// Each scheduled week produces two rows, one per slot.
type Assignment struct {
	ID        string    `ssql_header:"id" ssql_type:"uuid" yaml:"id"`
	RunID     string    `ssql_header:"run_id" ssql_type:"uuid" yaml:"run_id"`
	Week      int       `ssql_header:"week" ssql_type:"int" yaml:"week"`
	Slot      int       `ssql_header:"slot" ssql_type:"int" yaml:"slot"`
	Name      string    `ssql_header:"name" ssql_type:"text" yaml:"name"`
	Email     string    `ssql_header:"email" ssql_type:"text" yaml:"email"`
	StartDate time.Time `ssql_header:"start_date" ssql_type:"date" yaml:"start_date"`
	EndDate   time.Time `ssql_header:"end_date" ssql_type:"date" yaml:"end_date"`
}

// RosterSnapshot is one person's roster entry as seen by a run
type RosterSnapshot struct {
	ID         string    `ssql_header:"id" ssql_type:"uuid" yaml:"id"`
	SnapshotID string    `ssql_header:"snapshot_id" ssql_type:"uuid" yaml:"snapshot_id"`
	TakenAt    time.Time `ssql_header:"taken_at" ssql_type:"datetime" yaml:"taken_at"`
	Name       string    `ssql_header:"name" ssql_type:"text" yaml:"name"`
	Email      string    `ssql_header:"email" ssql_type:"text" yaml:"email"`
	Available  bool      `ssql_header:"available" ssql_type:"bool" yaml:"available"`
}
