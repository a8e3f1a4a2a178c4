package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/baseline/internal/cli/formatter"
	"github.com/alexanderramin/baseline/internal/contract"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectInspectCmd(app),
		newProjectSetCmd(app),
		newProjectRemoveCmd(app),
	)

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var code, title, shortTitle, start, end, pm, sponsor string
	var budget int64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project in draft state",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("invalid start date %q: %w", start, err)
			}
			endDate, err := time.Parse("2006-01-02", end)
			if err != nil {
				return fmt.Errorf("invalid end date %q: %w", end, err)
			}

			p := &domain.Project{
				Code:             strings.ToUpper(code),
				Title:            title,
				ShortTitle:       shortTitle,
				StartDate:        startDate,
				EndDate:          endDate,
				TotalBudget:      budget,
				ProjectManagerID: pm,
				SponsorID:        sponsor,
			}
			if err := app.Projects.Create(context.Background(), p); err != nil {
				return err
			}
			fmt.Printf("Created project %s [%s]\n", p.Title, p.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Project code (uppercase letters, digits, hyphens)")
	cmd.Flags().StringVar(&title, "title", "", "Project title")
	cmd.Flags().StringVar(&shortTitle, "short-title", "", "Short title (letters, digits, hyphens)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&budget, "budget", 0, "Total budget in whole currency units")
	cmd.Flags().StringVar(&pm, "pm", "", "Project manager employee id")
	cmd.Flags().StringVar(&sponsor, "sponsor", "", "Sponsor employee id")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(context.Background())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println("No projects found.")
				return nil
			}
			fmt.Print(formatter.FormatProjectList(projects))
			return nil
		},
	}
}

func newProjectInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect PROJECT",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatProject(p))
			return nil
		},
	}
}

// project set routes every field edit through the single decision point, so
// a protected field on a validated baseline turns into a change request.
func newProjectSetCmd(app *App) *cobra.Command {
	var justification string

	cmd := &cobra.Command{
		Use:   "set PROJECT FIELD VALUE",
		Short: "Edit a project field (may spawn a change request)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}

			out, err := app.Baseline.EditField(ctx, projectID, args[1], args[2], justification)
			if err != nil {
				return err
			}
			switch out.Kind {
			case contract.OutcomeApplied:
				fmt.Printf("Set %s: %s → %s\n", out.Field, out.OldValue, out.NewValue)
			case contract.OutcomePending:
				fmt.Printf("Field %s is baseline-protected; change request %s submitted.\n",
					out.Field, out.RequestID[:8])
			case contract.OutcomeBlocked:
				return out.Reason
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&justification, "justification", "", "Justification (required for protected fields)")
	return cmd
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PROJECT",
		Short: "Delete a project and all its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Projects.Delete(ctx, projectID); err != nil {
				return err
			}
			fmt.Println("Project removed.")
			return nil
		},
	}
}

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate PROJECT",
		Short: "Validate the project plan as a baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Baseline.Validate(ctx, projectID); err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Printf("Baseline validated at version %s.\n", p.CurrentVersion)
			return nil
		},
	}
}
