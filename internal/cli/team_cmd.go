package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/baseline/internal/cli/formatter"
	"github.com/alexanderramin/baseline/internal/contract"
	"github.com/spf13/cobra"
)

func newTeamCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage the project team",
	}
	cmd.AddCommand(
		newTeamAddCmd(app),
		newTeamRemoveCmd(app),
		newTeamListCmd(app),
	)
	return cmd
}

func newTeamAddCmd(app *App) *cobra.Command {
	var role, justification string

	cmd := &cobra.Command{
		Use:   "add PROJECT EMPLOYEE_ID",
		Short: "Add an employee to the team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}

			out, err := app.Team.Add(ctx, projectID, args[1], role, justification)
			if err != nil {
				return err
			}
			if out.Kind == contract.OutcomeNeedsJustification {
				justification, err = promptText(app, "Justification for the team composition change", justification)
				if err != nil {
					return err
				}
				if justification != "" {
					out, err = app.Team.Add(ctx, projectID, args[1], role, justification)
					if err != nil {
						return err
					}
				}
			}
			if out.Kind == contract.OutcomeBlocked {
				return out.Reason
			}
			fmt.Println(formatter.FormatSaveOutcome(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "contributor", "Team role")
	cmd.Flags().StringVar(&justification, "justification", "", "Justification for baseline-impacting changes")
	return cmd
}

func newTeamRemoveCmd(app *App) *cobra.Command {
	var justification string

	cmd := &cobra.Command{
		Use:   "remove PROJECT EMPLOYEE_ID",
		Short: "Remove an employee from the team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}

			out, err := app.Team.Remove(ctx, projectID, args[1], justification)
			if err != nil {
				return err
			}
			if out.Kind == contract.OutcomeNeedsJustification {
				justification, err = promptText(app, "Justification for the team composition change", justification)
				if err != nil {
					return err
				}
				if justification != "" {
					out, err = app.Team.Remove(ctx, projectID, args[1], justification)
					if err != nil {
						return err
					}
				}
			}
			if out.Kind == contract.OutcomeBlocked {
				return out.Reason
			}
			fmt.Println(formatter.FormatSaveOutcome(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&justification, "justification", "", "Justification for baseline-impacting changes")
	return cmd
}

func newTeamListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List the project team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			members, err := app.Team.List(ctx, projectID)
			if err != nil {
				return err
			}
			rows := make([][]string, len(members))
			for i, m := range members {
				rows[i] = []string{
					formatter.Bold(m.EmployeeID),
					m.Role,
					formatter.Dim(m.AddedAt.Format("2006-01-02")),
				}
			}
			fmt.Print(formatter.RenderTable([]string{"EMPLOYEE", "ROLE", "ADDED"}, rows))
			return nil
		},
	}
}
