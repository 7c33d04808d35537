package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/duty-rota/pkg/core/roster"
	"github.com/jakechorley/duty-rota/pkg/core/services"
)

// ListRosterCmd creates the listRoster command
func ListRosterCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listRoster",
		Short: "List everyone in the roster with their availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := app.RosterReader()
			if err != nil {
				return err
			}

			people, err := services.ListRoster(reader, app.Logger)
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d people (%d available):\n\n", len(people), roster.AvailableCount(people))
			for _, p := range people {
				fmt.Printf("- %s (%s) - available: %s\n", p.Name, p.Email, roster.FormatAvailable(p.Available))
			}
			fmt.Println()

			return nil
		},
	}
}

// DiffRosterCmd creates the diffRoster command
func DiffRosterCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "diffRoster",
		Short: "Show roster changes since the last generated schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := app.RosterReader()
			if err != nil {
				return err
			}
			store, err := app.HistoryStore()
			if err != nil {
				return err
			}

			diff, err := services.DiffRoster(app.Ctx, store, reader, app.Logger)
			if err != nil {
				return err
			}

			switch {
			case !diff.HasSnapshot:
				fmt.Printf("\nNo previous roster recorded - generate a schedule first.\n\n")
			case len(diff.Changes) == 0:
				fmt.Printf("\nNo changes since the last run.\n\n")
			default:
				fmt.Printf("\n%d changes since the last run:\n\n", len(diff.Changes))
				for _, change := range diff.Changes {
					fmt.Printf("  - %s\n", change)
				}
				fmt.Println()
			}

			return nil
		},
	}
}
