package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/duty-rota/internal/config"
	"github.com/jakechorley/duty-rota/pkg/clients/smtpclient"
	"github.com/jakechorley/duty-rota/pkg/clients/xlsxclient"
	"github.com/jakechorley/duty-rota/pkg/filestore"
)

func testApp(t *testing.T) *AppContext {
	t.Helper()
	dir := t.TempDir()
	return &AppContext{
		Env: "test",
		Cfg: &config.Config{
			Roster:   config.RosterConfig{Source: config.SourceXLSX, Path: filepath.Join(dir, "roster.xlsx")},
			Schedule: config.ScheduleConfig{OutputPath: filepath.Join(dir, "schedule.xlsx"), Sheet: "Schedule", BackupDir: filepath.Join(dir, "history")},
			History:  config.HistoryConfig{Store: config.StoreFile, Path: filepath.Join(dir, "history.yaml")},
		},
		Logger: zap.NewNop(),
		Ctx:    context.Background(),
	}
}

func TestAppContext_LocalCollaborators(t *testing.T) {
	app := testApp(t)

	reader, err := app.RosterReader()
	require.NoError(t, err)
	assert.IsType(t, &xlsxclient.Workbook{}, reader)

	writers, err := app.ScheduleWriters()
	require.NoError(t, err)
	require.Len(t, writers, 1)
	assert.Equal(t, app.Cfg.Schedule.OutputPath+"[Schedule]", writers[0].Location())

	store, err := app.HistoryStore()
	require.NoError(t, err)
	assert.IsType(t, &filestore.Store{}, store)

	again, err := app.HistoryStore()
	require.NoError(t, err)
	assert.Same(t, store, again)
}

func TestAppContext_SMTPNotifier(t *testing.T) {
	app := testApp(t)
	app.Cfg.Notifier = config.NotifierConfig{
		Provider: config.NotifierSMTP,
		Sender:   "rota@example.com",
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
	}

	notifier, err := app.Notifier()
	require.NoError(t, err)
	assert.IsType(t, &smtpclient.Client{}, notifier)
}

func TestAppContext_NoNotifier(t *testing.T) {
	_, err := testApp(t).Notifier()
	assert.ErrorContains(t, err, "no notifier configured")
}
