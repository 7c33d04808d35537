package commands

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jakechorley/duty-rota/internal/config"
	"github.com/jakechorley/duty-rota/pkg/clients/gmailclient"
	"github.com/jakechorley/duty-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/duty-rota/pkg/clients/smtpclient"
	"github.com/jakechorley/duty-rota/pkg/clients/xlsxclient"
	"github.com/jakechorley/duty-rota/pkg/core/services"
	"github.com/jakechorley/duty-rota/pkg/db"
	"github.com/jakechorley/duty-rota/pkg/filestore"
	"github.com/jakechorley/duty-rota/pkg/postgres"
	"github.com/jakechorley/duty-rota/pkg/sheetssql"
	"github.com/jakechorley/duty-rota/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands.
// Clients and the history store are built on first use so commands that never touch
// Google or Postgres do not need credentials for them.
type AppContext struct {
	Env    string
	Cfg    *config.Config
	Logger *zap.Logger
	Ctx    context.Context

	httpClient   *http.Client
	sheetsClient *sheetsclient.Client
	store        db.HistoryStore
	closers      []func()
}

// Close releases connections opened by the context
func (app *AppContext) Close() {
	for _, closeFn := range app.closers {
		closeFn()
	}
	app.closers = nil
}

// googleHTTPClient authorises once and shares the token between Sheets and Gmail
func (app *AppContext) googleHTTPClient() (*http.Client, error) {
	if app.httpClient != nil {
		return app.httpClient, nil
	}

	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	oauthConfig, err := utils.GetOAuthConfig(oauthCfg, utils.RequiredScopes(app.Cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	token, err := utils.GetTokenWithFlow(app.Ctx, oauthConfig, app.Env, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth token: %w", err)
	}

	app.httpClient = oauthConfig.Client(app.Ctx, token)
	return app.httpClient, nil
}

// SheetsClient returns the shared Google Sheets client
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}

	httpClient, err := app.googleHTTPClient()
	if err != nil {
		return nil, err
	}

	app.Logger.Info("Initializing sheets client")
	app.sheetsClient, err = sheetsclient.NewClient(app.Ctx, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return app.sheetsClient, nil
}

// RosterReader returns the configured roster source
func (app *AppContext) RosterReader() (services.RosterReader, error) {
	switch app.Cfg.Roster.Source {
	case config.SourceSheets:
		client, err := app.SheetsClient()
		if err != nil {
			return nil, err
		}
		return sheetsclient.NewTab(client, app.Cfg.Roster.SpreadsheetID, app.Cfg.Roster.Tab), nil
	default:
		return xlsxclient.NewWorkbook(app.Cfg.Roster.Path, app.Cfg.Roster.Sheet, ""), nil
	}
}

// ScheduleWriters returns every configured schedule destination; the xlsx file is always first
func (app *AppContext) ScheduleWriters() ([]services.ScheduleWriter, error) {
	writers := []services.ScheduleWriter{
		xlsxclient.NewWorkbook(app.Cfg.Schedule.OutputPath, app.Cfg.Schedule.Sheet, app.Cfg.Schedule.BackupDir),
	}

	if app.Cfg.Schedule.SpreadsheetID != "" {
		client, err := app.SheetsClient()
		if err != nil {
			return nil, err
		}
		writers = append(writers, sheetsclient.NewTab(client, app.Cfg.Schedule.SpreadsheetID, app.Cfg.Schedule.Tab))
	}

	return writers, nil
}

// HistoryStore opens the configured history backend
func (app *AppContext) HistoryStore() (db.HistoryStore, error) {
	if app.store != nil {
		return app.store, nil
	}

	switch app.Cfg.History.Store {
	case config.StoreSheets:
		client, err := app.SheetsClient()
		if err != nil {
			return nil, err
		}

		schema, err := db.Schema()
		if err != nil {
			return nil, fmt.Errorf("failed to create database schema: %w", err)
		}
		app.Logger.Debug("Database schema created", zap.Int("tables", len(schema.Tables)))

		app.Logger.Info("Connecting to history spreadsheet", zap.String("spreadsheet_id", app.Cfg.History.SpreadsheetID))
		ssqlDB, err := sheetssql.NewDB(client, app.Cfg.History.SpreadsheetID, schema)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		app.store = db.NewDB(ssqlDB)

	case config.StorePostgres:
		app.Logger.Info("Connecting to postgres history store")
		pg, err := postgres.NewDB(app.Ctx, app.Cfg.History.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		app.closers = append(app.closers, pg.Close)

		if err := pg.RunMigrations(app.Ctx); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		app.store = pg

	default:
		app.Logger.Info("Using file history store", zap.String("path", app.Cfg.History.Path))
		app.store = filestore.New(app.Cfg.History.Path)
	}

	return app.store, nil
}

// Notifier returns the configured email sender
func (app *AppContext) Notifier() (services.Notifier, error) {
	n := app.Cfg.Notifier
	switch n.Provider {
	case config.NotifierGmail:
		httpClient, err := app.googleHTTPClient()
		if err != nil {
			return nil, err
		}
		app.Logger.Info("Initializing gmail client")
		client, err := gmailclient.NewClient(app.Ctx, httpClient, n.GmailUserID, n.Sender)
		if err != nil {
			return nil, fmt.Errorf("failed to create gmail client: %w", err)
		}
		return client, nil

	case config.NotifierSMTP:
		app.Logger.Info("Initializing smtp client", zap.String("host", n.SMTPHost), zap.Int("port", n.SMTPPort))
		client, err := smtpclient.NewClient(app.Ctx, smtpclient.Options{
			Host:     n.SMTPHost,
			Port:     n.SMTPPort,
			Username: n.SMTPUsername,
			Password: n.SMTPPassword,
			SSL:      n.SMTPSSL,
			Sender:   n.Sender,
		})
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("no notifier configured - set notifier.provider to gmail or smtp")
	}
}
