package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"github.com/jakechorley/duty-rota/pkg/core/services"
)

// StartDateLayout is the --start flag format
const StartDateLayout = "2006-01-02"

// GenerateScheduleCmd creates the generateSchedule command
func GenerateScheduleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generateSchedule",
		Short: "Generate the weekly on-call schedule and record it in history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seedFlag, _ := cmd.Flags().GetString("seed")
			weeks, _ := cmd.Flags().GetInt("weeks")
			start, _ := cmd.Flags().GetString("start")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			seed, err := parseSeed(seedFlag, time.Now())
			if err != nil {
				return err
			}
			today, err := parseStart(start, time.Now())
			if err != nil {
				return err
			}
			if weeks < 0 {
				return fmt.Errorf("weeks must be positive, got %d", weeks)
			}

			// Logged so an unseeded run can be reproduced
			app.Logger.Info("generateSchedule command",
				zap.String("seed_flag", seedFlag),
				zap.Int64("seed", seed),
				zap.Time("start", today),
				zap.Bool("dry_run", dryRun))

			reader, err := app.RosterReader()
			if err != nil {
				return err
			}
			store, err := app.HistoryStore()
			if err != nil {
				return err
			}
			var writers []services.ScheduleWriter
			if !dryRun {
				writers, err = app.ScheduleWriters()
				if err != nil {
					return err
				}
			}

			result, err := services.GenerateSchedule(app.Ctx, store, reader, writers, app.Cfg, app.Logger,
				services.GenerateScheduleOptions{
					Seed:   seed,
					Weeks:  weeks,
					Today:  today,
					DryRun: dryRun,
				})
			if err != nil {
				return err
			}

			printGenerateResult(result, writers)
			return nil
		},
	}

	cmd.Flags().String("seed", "", "Seed for random decisions (integer or any text)")
	cmd.Flags().Int("weeks", 0, "Number of weeks to schedule (defaults to config)")
	cmd.Flags().String("start", "", "Schedule from the first Monday on or after this date (YYYY-MM-DD)")
	cmd.Flags().Bool("dry-run", false, "Generate without writing the schedule or history")

	return cmd
}

// parseSeed turns --seed into an int64. Integers are used as-is, other text is hashed,
// and an empty flag falls back to the current time.
func parseSeed(flag string, now time.Time) (int64, error) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return now.UnixNano(), nil
	}
	if n, err := strconv.ParseInt(flag, 10, 64); err == nil {
		return n, nil
	}
	return int64(xxh3.HashString(flag)), nil
}

// parseStart returns the date the schedule is anchored to
func parseStart(flag string, now time.Time) (time.Time, error) {
	if flag == "" {
		return now, nil
	}
	start, err := time.Parse(StartDateLayout, flag)
	if err != nil {
		return time.Time{}, fmt.Errorf("start must be a date like 2025-03-10, got %q", flag)
	}
	return start, nil
}

func printGenerateResult(result *services.GenerateScheduleResult, writers []services.ScheduleWriter) {
	if len(result.Changes) > 0 {
		fmt.Printf("\nRoster changes since last run:\n")
		for _, change := range result.Changes {
			fmt.Printf("  - %s\n", change)
		}
	}

	fmt.Printf("\nSchedule (%d weeks, seed %d):\n\n", len(result.Schedule), result.Run.Seed)
	printSchedule(result)

	fmt.Printf("\nDraws: %d  Retries: %d  Fallback weeks: %d\n",
		result.Stats.Draws, result.Stats.Retries, result.Stats.FallbackWeeks)

	if !result.Written {
		fmt.Printf("\nDry run - nothing was written.\n\n")
		return
	}

	fmt.Printf("\n✓ Schedule generated successfully!\n\n")
	fmt.Printf("Run ID: %s\n", result.Run.ID)
	for _, w := range writers {
		fmt.Printf("Written to: %s\n", w.Location())
	}
	if result.MetricsPath != "" {
		fmt.Printf("Metrics:    %s\n", result.MetricsPath)
	}
	fmt.Println()
}

func printSchedule(result *services.GenerateScheduleResult) {
	rows := result.Schedule.Rows()
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	for r, row := range rows {
		for i, cell := range row {
			fmt.Printf("%-*s  ", widths[i], cell)
		}
		fmt.Println()
		if r == 0 {
			for _, w := range widths {
				fmt.Print(strings.Repeat("-", w) + "  ")
			}
			fmt.Println()
		}
	}
}
