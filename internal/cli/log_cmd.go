package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/baseline/internal/cli/formatter"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/spf13/cobra"
)

func newLogCmd(app *App) *cobra.Command {
	var actor, action, element, from, to string

	cmd := &cobra.Command{
		Use:   "log PROJECT",
		Short: "Query the modification log, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}

			filter := domain.LogFilter{
				Actor:         actor,
				ActionType:    domain.ActionType(action),
				ElementPrefix: element,
			}
			if from != "" {
				t, err := time.Parse("2006-01-02", from)
				if err != nil {
					return fmt.Errorf("invalid from date %q: %w", from, err)
				}
				filter.From = &t
			}
			if to != "" {
				t, err := time.Parse("2006-01-02", to)
				if err != nil {
					return fmt.Errorf("invalid to date %q: %w", to, err)
				}
				// Inclusive end of day.
				t = t.Add(24*time.Hour - time.Nanosecond)
				filter.To = &t
			}

			entries, err := app.Logs.Query(ctx, projectID, filter)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No log entries match.")
				return nil
			}
			fmt.Print(formatter.FormatLogEntries(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Filter by actor name")
	cmd.Flags().StringVar(&action, "action", "", "Filter by action: created, modified, deleted, validated, rejected")
	cmd.Flags().StringVar(&element, "element", "", "Filter by element path prefix")
	cmd.Flags().StringVar(&from, "from", "", "Only entries on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Only entries on or before this date (YYYY-MM-DD)")

	return cmd
}
