package postgres

import (
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/duty-rota/pkg/db"
)

var (
	_ db.HistoryStore = (*DB)(nil)

	// RecordRun runs the same inserts against a transaction that the single-table methods run against the pool
	_ querier = (*pgxpool.Pool)(nil)
	_ querier = pgx.Tx(nil)
)

func TestMigrationFiles_Sorted(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)

	require.NotEmpty(t, files)
	assert.Equal(t, "001_history.sql", files[0])
	assert.IsNonDecreasing(t, files)
}

func TestMigrations_CreateHistoryTables(t *testing.T) {
	content, err := fs.ReadFile(migrationsFS, "migrations/001_history.sql")
	require.NoError(t, err)

	for _, table := range []string{db.RunTable, db.AssignmentTable, db.RosterSnapshotTable} {
		assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
