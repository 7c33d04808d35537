package db

import (
	"github.com/jakechorley/duty-rota/pkg/sheetssql"
)

// DB provides history operations using SheetsSQL
type DB struct {
	ssql *sheetssql.DB
}

// NewDB creates a new database instance
func NewDB(ssql *sheetssql.DB) *DB {
	return &DB{
		ssql: ssql,
	}
}

// Schema returns the SheetsSQL schema for every history table
func Schema() (*sheetssql.Schema, error) {
	return sheetssql.SchemaFromModels(Run{}, Assignment{}, RosterSnapshot{})
}

// Table names as derived from the model structs
const (
	RunTable            = "run"
	AssignmentTable     = "assignment"
	RosterSnapshotTable = "roster_snapshot"
)
