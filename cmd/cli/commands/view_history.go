package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/duty-rota/pkg/core/model"
	"github.com/jakechorley/duty-rota/pkg/core/services"
)

// ViewHistoryCmd creates the viewHistory command
func ViewHistoryCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewHistory",
		Short: "Show assignment counts and last duty dates per person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.HistoryStore()
			if err != nil {
				return err
			}

			view, err := services.ViewHistory(app.Ctx, store, app.Logger)
			if err != nil {
				return err
			}

			fmt.Printf("\nHistory: %d runs, %d assignments\n", view.Runs, view.Assignments)
			if view.LatestRun != nil {
				fmt.Printf("Latest run: %s (%s, %d weeks from %s)\n",
					view.LatestRun.ID,
					view.LatestRun.CreatedAt.Local().Format("2006-01-02 15:04"),
					view.LatestRun.Weeks,
					view.LatestRun.FirstWeekStart.Format(model.DateLayout))
			}

			if len(view.People) == 0 {
				fmt.Printf("\nNo assignments recorded yet.\n\n")
				return nil
			}

			nameWidth := 20
			for _, p := range view.People {
				nameWidth = max(nameWidth, len(p.Name))
			}

			fmt.Println()
			fmt.Printf("%-*s  %-11s  %-12s  %-12s\n", nameWidth, "Name", "Assignments", "First", "Last")
			fmt.Println(strings.Repeat("-", nameWidth+43))
			for _, p := range view.People {
				fmt.Printf("%-*s  %-11d  %-12s  %-12s\n",
					nameWidth, p.Name,
					p.NumAssignments,
					formatDate(p.FirstAssignment),
					formatDate(p.LastAssignmentDate))
			}
			fmt.Println()

			return nil
		},
	}
}
