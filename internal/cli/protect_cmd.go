package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/baseline/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newProtectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protect",
		Short: "Manage per-field baseline protection",
	}
	cmd.AddCommand(
		newProtectOnCmd(app),
		newProtectOffCmd(app),
		newProtectListCmd(app),
	)
	return cmd
}

func newProtectOnCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "on PROJECT FIELD",
		Short: "Flag a field as baseline-protected",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleProtection(app, args[0], args[1], true)
		},
	}
}

func newProtectOffCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "off PROJECT FIELD",
		Short: "Clear a field's baseline protection (auto fields cannot be cleared)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleProtection(app, args[0], args[1], false)
		},
	}
}

func toggleProtection(app *App, project, field string, on bool) error {
	ctx := context.Background()
	projectID, err := resolveProjectID(ctx, app, project)
	if err != nil {
		return err
	}
	if err := app.Baseline.ToggleProtection(ctx, projectID, field, on); err != nil {
		return err
	}
	state := "protected"
	if !on {
		state = "open"
	}
	fmt.Printf("Field %s is now %s.\n", field, state)
	return nil
}

func newProtectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "Show every field's protection state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			states, err := app.Baseline.ListProtections(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatProtectionList(states))
			return nil
		},
	}
}
