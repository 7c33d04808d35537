package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/duty-rota/pkg/core/services"
)

// NotifyAssigneesCmd creates the notifyAssignees command
func NotifyAssigneesCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifyAssignees",
		Short: "Email everyone in the latest schedule their duty weeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			app.Logger.Debug("notifyAssignees command", zap.Bool("dry_run", dryRun))

			store, err := app.HistoryStore()
			if err != nil {
				return err
			}

			var notifier services.Notifier
			if !dryRun {
				notifier, err = app.Notifier()
				if err != nil {
					return err
				}
			}

			result, err := services.NotifyAssignees(app.Ctx, store, notifier, app.Logger, dryRun)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Printf("\nDry run - %d emails would be sent:\n\n", len(result.Planned))
				for _, n := range result.Planned {
					fmt.Printf("  %s (%s): %d weeks\n", n.Name, n.Email, len(n.Weeks))
				}
				fmt.Println()
				return nil
			}

			fmt.Printf("\n✓ Notifications sent!\n\n")
			if len(result.Sent) > 0 {
				fmt.Printf("Sent to %d people:\n", len(result.Sent))
				for _, n := range result.Sent {
					fmt.Printf("  ✓ %s (%s)\n", n.Name, n.Email)
				}
				fmt.Println()
			}

			if len(result.Failed) > 0 {
				fmt.Printf("⚠️  Failed to send %d emails:\n", len(result.Failed))
				for _, f := range result.Failed {
					fmt.Printf("  ✗ %s (%s): %s\n", f.Name, f.Email, f.Error)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "List the emails without sending them")

	return cmd
}
