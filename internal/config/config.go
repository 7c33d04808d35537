package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override
const EnvPrefix = "DUTY_ROTA_"

// Roster sources
const (
	SourceXLSX   = "xlsx"
	SourceSheets = "sheets"
)

// History store backends
const (
	StoreFile     = "file"
	StoreSheets   = "sheets"
	StorePostgres = "postgres"
)

// Notification providers
const (
	NotifierGmail = "gmail"
	NotifierSMTP  = "smtp"
)

// RosterConfig says where the roster is read from
type RosterConfig struct {
	Source        string `yaml:"source" env:"SOURCE" validate:"required,oneof=xlsx sheets"`
	Path          string `yaml:"path,omitempty" env:"PATH" validate:"required_if=Source xlsx"`
	Sheet         string `yaml:"sheet,omitempty" env:"SHEET"`
	SpreadsheetID string `yaml:"spreadsheetID,omitempty" env:"SPREADSHEET_ID" validate:"required_if=Source sheets"`
	Tab           string `yaml:"tab,omitempty" env:"TAB" validate:"required_if=Source sheets"`
}

// ScheduleConfig says where the schedule is written.
// The xlsx file is always written; the sheets tab only when SpreadsheetID is set.
type ScheduleConfig struct {
	OutputPath    string `yaml:"outputPath" env:"OUTPUT_PATH" validate:"required"`
	Sheet         string `yaml:"sheet" env:"SHEET" validate:"required"`
	BackupDir     string `yaml:"backupDir" env:"BACKUP_DIR" validate:"required"`
	SpreadsheetID string `yaml:"spreadsheetID,omitempty" env:"SPREADSHEET_ID"`
	Tab           string `yaml:"tab,omitempty" env:"TAB" validate:"required_with=SpreadsheetID"`
}

// HistoryConfig selects the history store backend
type HistoryConfig struct {
	Store         string `yaml:"store" env:"STORE" validate:"required,oneof=file sheets postgres"`
	Path          string `yaml:"path,omitempty" env:"PATH" validate:"required_if=Store file"`
	SpreadsheetID string `yaml:"spreadsheetID,omitempty" env:"SPREADSHEET_ID" validate:"required_if=Store sheets"`
	PostgresDSN   string `yaml:"postgresDSN,omitempty" env:"POSTGRES_DSN" validate:"required_if=Store postgres"`
}

// EngineConfig holds the rotation engine knobs
type EngineConfig struct {
	Weeks      int  `yaml:"weeks" env:"WEEKS" validate:"min=1,max=520"`
	WindowSize *int `yaml:"windowSize,omitempty" env:"WINDOW_SIZE" validate:"omitempty,min=0"`
	MaxRetries int  `yaml:"maxRetries" env:"MAX_RETRIES" validate:"min=1"`

	// AdjustmentDirection is dampen (favour less-assigned people) or boost
	AdjustmentDirection string `yaml:"adjustmentDirection" env:"ADJUSTMENT_DIRECTION" validate:"oneof=dampen boost"`
}

// LoggingConfig configures the log file location
type LoggingConfig struct {
	Dir string `yaml:"dir" env:"DIR"`
}

// MetricsConfig enables the Prometheus textfile export when TextfilePath is set
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath,omitempty" env:"TEXTFILE_PATH"`
	Namespace    string `yaml:"namespace,omitempty" env:"NAMESPACE"`
}

// NotifierConfig configures assignee notifications
type NotifierConfig struct {
	Provider    string `yaml:"provider,omitempty" env:"PROVIDER" validate:"omitempty,oneof=gmail smtp"`
	Sender      string `yaml:"sender,omitempty" env:"SENDER" validate:"omitempty,email"`
	GmailUserID string `yaml:"gmailUserID,omitempty" env:"GMAIL_USER_ID"`

	SMTPHost     string `yaml:"smtpHost,omitempty" env:"SMTP_HOST" validate:"required_if=Provider smtp"`
	SMTPPort     int    `yaml:"smtpPort,omitempty" env:"SMTP_PORT" validate:"omitempty,min=1,max=65535"`
	SMTPUsername string `yaml:"smtpUsername,omitempty" env:"SMTP_USERNAME"`
	SMTPPassword string `yaml:"-" env:"SMTP_PASSWORD"`
	SMTPSSL      bool   `yaml:"smtpSSL,omitempty" env:"SMTP_SSL"`
}

// Config represents the application configuration
type Config struct {
	Roster   RosterConfig   `yaml:"roster" envPrefix:"ROSTER_"`
	Schedule ScheduleConfig `yaml:"schedule" envPrefix:"SCHEDULE_"`
	History  HistoryConfig  `yaml:"history" envPrefix:"HISTORY_"`
	Engine   EngineConfig   `yaml:"engine" envPrefix:"ENGINE_"`
	Logging  LoggingConfig  `yaml:"logging" envPrefix:"LOGGING_"`
	Metrics  MetricsConfig  `yaml:"metrics" envPrefix:"METRICS_"`
	Notifier NotifierConfig `yaml:"notifier" envPrefix:"NOTIFIER_"`
}

// UsesSheets reports whether any configured component talks to Google Sheets
func (c *Config) UsesSheets() bool {
	return c.Roster.Source == SourceSheets ||
		c.History.Store == StoreSheets ||
		c.Schedule.SpreadsheetID != ""
}

// UsesGoogle reports whether an OAuth token is needed at all
func (c *Config) UsesGoogle() bool {
	return c.UsesSheets() || c.Notifier.Provider == NotifierGmail
}

// EffectiveWindowSize returns the configured recency window size, defaulting to 4
func (e EngineConfig) EffectiveWindowSize() int {
	if e.WindowSize == nil {
		return 4
	}
	return *e.WindowSize
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// applyDefaults fills unset optional fields
func applyDefaults(cfg *Config) {
	if cfg.Roster.Source == "" {
		cfg.Roster.Source = SourceXLSX
	}
	if cfg.Schedule.OutputPath == "" {
		cfg.Schedule.OutputPath = "duty_schedule.xlsx"
	}
	if cfg.Schedule.Sheet == "" {
		cfg.Schedule.Sheet = "Schedule"
	}
	if cfg.Schedule.BackupDir == "" {
		cfg.Schedule.BackupDir = "history"
	}
	if cfg.Schedule.SpreadsheetID != "" && cfg.Schedule.Tab == "" {
		cfg.Schedule.Tab = "Schedule"
	}
	if cfg.History.Store == "" {
		cfg.History.Store = StoreFile
	}
	if cfg.History.Store == StoreFile && cfg.History.Path == "" {
		cfg.History.Path = "duty_rota_history.yaml"
	}
	if cfg.Engine.Weeks == 0 {
		cfg.Engine.Weeks = 52
	}
	if cfg.Engine.MaxRetries == 0 {
		cfg.Engine.MaxRetries = 1000
	}
	if cfg.Engine.AdjustmentDirection == "" {
		cfg.Engine.AdjustmentDirection = "dampen"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Notifier.GmailUserID == "" {
		cfg.Notifier.GmailUserID = "me"
	}
	if cfg.Notifier.Provider == NotifierSMTP && cfg.Notifier.SMTPPort == 0 {
		cfg.Notifier.SMTPPort = 587
	}
}

// Load loads the configuration from duty_rota_config.yaml
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for an environment.
// For example, env="test" reads "duty_rota_config.test.yaml" and ".env.test" as well as ".env".
func LoadWithEnv(envName string) (*Config, error) {
	if err := loadDotEnv(envName); err != nil {
		return nil, err
	}

	fileName := "duty_rota_config.yaml"
	if envName != "" {
		fileName = "duty_rota_config." + envName + ".yaml"
	}

	configPath, err := findFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// loadDotEnv loads .env.<env> then .env into the process environment.
// Variables already set take precedence and missing files are skipped.
func loadDotEnv(envName string) error {
	files := []string{".env"}
	if envName != "" {
		files = []string{".env." + envName, ".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// LoadFromPath reads a YAML config file, applies defaults and DUTY_ROTA_* environment
// overrides, then validates the result
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Notifier.Provider != "" && cfg.Notifier.Sender == "" {
		return fmt.Errorf("config validation failed: notifier sender is required when a provider is set")
	}

	if ext := filepath.Ext(cfg.Schedule.OutputPath); ext != ".xlsx" {
		return fmt.Errorf("config validation failed: schedule outputPath must be an .xlsx file, got %q", cfg.Schedule.OutputPath)
	}

	return nil
}

// findFile looks for name in the current directory, then the home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
