package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromPath_MinimalConfigGetsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
roster:
  source: xlsx
  path: team_list.xlsx
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "team_list.xlsx", cfg.Roster.Path)
	assert.Equal(t, "duty_schedule.xlsx", cfg.Schedule.OutputPath)
	assert.Equal(t, "Schedule", cfg.Schedule.Sheet)
	assert.Equal(t, "history", cfg.Schedule.BackupDir)
	assert.Equal(t, StoreFile, cfg.History.Store)
	assert.Equal(t, "duty_rota_history.yaml", cfg.History.Path)
	assert.Equal(t, 52, cfg.Engine.Weeks)
	assert.Equal(t, 1000, cfg.Engine.MaxRetries)
	assert.Equal(t, 4, cfg.Engine.EffectiveWindowSize())
	assert.Equal(t, "dampen", cfg.Engine.AdjustmentDirection)
	assert.Equal(t, "logs", cfg.Logging.Dir)
	assert.False(t, cfg.UsesGoogle())
}

func TestLoadFromPath_FullConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
roster:
  source: sheets
  spreadsheetID: roster-sheet
  tab: Team
schedule:
  outputPath: out/schedule.xlsx
  sheet: Rota
  backupDir: out/history
  spreadsheetID: schedule-sheet
history:
  store: postgres
  postgresDSN: postgres://localhost/rota
engine:
  weeks: 26
  windowSize: 0
  maxRetries: 50
  adjustmentDirection: boost
metrics:
  textfilePath: /var/lib/node_exporter/duty_rota.prom
notifier:
  provider: smtp
  sender: rota@example.com
  smtpHost: smtp.example.com
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, SourceSheets, cfg.Roster.Source)
	assert.Equal(t, "Schedule", cfg.Schedule.Tab)
	assert.Equal(t, StorePostgres, cfg.History.Store)
	assert.Equal(t, 26, cfg.Engine.Weeks)
	assert.Equal(t, 0, cfg.Engine.EffectiveWindowSize())
	assert.Equal(t, "boost", cfg.Engine.AdjustmentDirection)
	assert.Equal(t, 587, cfg.Notifier.SMTPPort)
	assert.True(t, cfg.UsesSheets())
}

func TestLoadFromPath_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
roster:
  path: team_list.xlsx
history:
  store: postgres
notifier:
  provider: smtp
  sender: rota@example.com
  smtpHost: smtp.example.com
`)

	t.Setenv("DUTY_ROTA_HISTORY_POSTGRES_DSN", "postgres://rota:secret@db/rota")
	t.Setenv("DUTY_ROTA_NOTIFIER_SMTP_PASSWORD", "hunter2")
	t.Setenv("DUTY_ROTA_ENGINE_WEEKS", "10")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://rota:secret@db/rota", cfg.History.PostgresDSN)
	assert.Equal(t, "hunter2", cfg.Notifier.SMTPPassword)
	assert.Equal(t, 10, cfg.Engine.Weeks)
}

func TestLoadFromPath_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "xlsx roster without path",
			content: "roster:\n  source: xlsx\n",
		},
		{
			name:    "unknown roster source",
			content: "roster:\n  source: csv\n  path: team.csv\n",
		},
		{
			name:    "sheets history without spreadsheet",
			content: "roster:\n  path: team.xlsx\nhistory:\n  store: sheets\n",
		},
		{
			name:    "postgres history without dsn",
			content: "roster:\n  path: team.xlsx\nhistory:\n  store: postgres\n",
		},
		{
			name:    "unknown direction",
			content: "roster:\n  path: team.xlsx\nengine:\n  adjustmentDirection: sideways\n",
		},
		{
			name:    "negative window",
			content: "roster:\n  path: team.xlsx\nengine:\n  windowSize: -2\n",
		},
		{
			name:    "smtp without host",
			content: "roster:\n  path: team.xlsx\nnotifier:\n  provider: smtp\n  sender: rota@example.com\n",
		},
		{
			name:    "notifier without sender",
			content: "roster:\n  path: team.xlsx\nnotifier:\n  provider: gmail\n",
		},
		{
			name:    "schedule not xlsx",
			content: "roster:\n  path: team.xlsx\nschedule:\n  outputPath: schedule.csv\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.yaml", tt.content)

			_, err := LoadFromPath(path)
			assert.ErrorContains(t, err, "validation failed")
		})
	}
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "roster:\n  path: a\n    bad indentation\n")

	_, err := LoadFromPath(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/path/config.yaml")
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadWithEnv_ReadsEnvFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	writeConfig(t, dir, "duty_rota_config.test.yaml", `
roster:
  path: team_list.xlsx
history:
  store: postgres
`)
	writeConfig(t, dir, ".env.test", "DUTY_ROTA_HISTORY_POSTGRES_DSN=postgres://from-dotenv/rota\n")
	t.Cleanup(func() { os.Unsetenv("DUTY_ROTA_HISTORY_POSTGRES_DSN") })

	cfg, err := LoadWithEnv("test")
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-dotenv/rota", cfg.History.PostgresDSN)
}

func TestLoadWithEnv_MissingConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	_, err := LoadWithEnv("prod")
	assert.ErrorContains(t, err, "duty_rota_config.prod.yaml not found")
}
