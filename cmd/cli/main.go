package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/duty-rota/cmd/cli/commands"
	"github.com/jakechorley/duty-rota/internal/config"
	"github.com/jakechorley/duty-rota/pkg/utils/logging"
)

var (
	env string
	app = &commands.AppContext{Ctx: context.Background()}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Duty rota CLI - generate fair weekly on-call schedules",
		Long: `A CLI tool for assigning pairs of on-call staff to weekly duty slots,
keeping workload fair across runs and avoiding repeats within a few weeks.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.GenerateScheduleCmd(app))
	rootCmd.AddCommand(commands.ViewHistoryCmd(app))
	rootCmd.AddCommand(commands.DiffRosterCmd(app))
	rootCmd.AddCommand(commands.ListRosterCmd(app))
	rootCmd.AddCommand(commands.NotifyAssigneesCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd())

	if err := rootCmd.Execute(); err != nil {
		if app.Logger != nil {
			app.Logger.Error("Command failed", zap.Error(err))
			_ = app.Logger.Sync()
		}
		app.Close()
		os.Exit(1)
	}
}

// initApp loads configuration and sets up the logger; clients are created on demand
func initApp() error {
	cfg, err := config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, logFile, err := logging.InitLogger(env, cfg.Logging.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Env = env
	app.Cfg = cfg
	app.Logger = logger

	logger.Info("Starting application",
		zap.String("environment", env),
		zap.String("log_file", logFile))
	logger.Debug("Configuration loaded",
		zap.String("roster_source", cfg.Roster.Source),
		zap.String("history_store", cfg.History.Store),
		zap.Int("weeks", cfg.Engine.Weeks),
		zap.String("direction", cfg.Engine.AdjustmentDirection))

	return nil
}
