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

func newPhaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Manage WBS phases",
	}
	cmd.AddCommand(
		newPhaseAddCmd(app),
		newPhaseListCmd(app),
		newPhaseRemoveCmd(app),
	)
	return cmd
}

func newPhaseAddCmd(app *App) *cobra.Command {
	var title, start, end string
	var coefficient int

	cmd := &cobra.Command{
		Use:   "add PROJECT",
		Short: "Add a phase to the project plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			startDate, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("invalid start date %q: %w", start, err)
			}
			endDate, err := time.Parse("2006-01-02", end)
			if err != nil {
				return fmt.Errorf("invalid end date %q: %w", end, err)
			}

			phase := &domain.Phase{
				ProjectID:   projectID,
				Title:       title,
				StartDate:   startDate,
				EndDate:     endDate,
				Coefficient: coefficient,
			}
			if err := app.WBS.AddPhase(ctx, phase); err != nil {
				return err
			}
			fmt.Printf("Added phase %s\n", phase.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Phase title")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&coefficient, "coefficient", 1, "Weighting coefficient (1-99)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newPhaseListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List the project's phases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			phases, err := app.WBS.ListPhases(ctx, projectID)
			if err != nil {
				return err
			}
			rows := make([][]string, len(phases))
			for i, p := range phases {
				rows[i] = []string{
					formatter.Dim(p.ID[:8]),
					formatter.Bold(p.Title),
					p.StartDate.Format("2006-01-02"),
					p.EndDate.Format("2006-01-02"),
					fmt.Sprintf("%d", p.Coefficient),
				}
			}
			fmt.Print(formatter.RenderTable([]string{"ID", "TITLE", "START", "END", "COEF"}, rows))
			return nil
		},
	}
}

func newPhaseRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PHASE_ID",
		Short: "Delete a phase and its deliverables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.WBS.DeletePhase(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("Phase removed.")
			return nil
		},
	}
}

func newDeliverableCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deliverable",
		Short: "Manage WBS deliverables and their dependencies",
	}
	cmd.AddCommand(
		newDeliverableAddCmd(app),
		newDeliverableListCmd(app),
		newDeliverableLinkCmd(app),
		newDeliverableUnlinkCmd(app),
		newDeliverableRemoveCmd(app),
		newDeliverableCheckCmd(app),
	)
	return cmd
}

func newDeliverableAddCmd(app *App) *cobra.Command {
	var title, phaseID, delivery string
	var duration, coefficient int

	cmd := &cobra.Command{
		Use:   "add PROJECT",
		Short: "Add a deliverable to a phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			deliveryDate, err := time.Parse("2006-01-02", delivery)
			if err != nil {
				return fmt.Errorf("invalid delivery date %q: %w", delivery, err)
			}

			d := &domain.Deliverable{
				ProjectID:    projectID,
				PhaseID:      phaseID,
				Title:        title,
				DurationDays: duration,
				DeliveryDate: deliveryDate,
				Coefficient:  coefficient,
			}
			out, err := app.WBS.AddDeliverable(ctx, d)
			if err != nil {
				return err
			}
			if out.Kind == contract.OutcomeBlocked {
				return out.Reason
			}
			fmt.Printf("Added deliverable %s\n", d.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Deliverable title")
	cmd.Flags().StringVar(&phaseID, "phase", "", "Parent phase id")
	cmd.Flags().StringVar(&delivery, "delivery", "", "Delivery date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Duration in days")
	cmd.Flags().IntVar(&coefficient, "coefficient", 1, "Weighting coefficient (1-99)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("phase")
	_ = cmd.MarkFlagRequired("delivery")
	_ = cmd.MarkFlagRequired("duration")

	return cmd
}

func newDeliverableListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List the project's deliverables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			items, err := app.WBS.ListDeliverables(ctx, projectID)
			if err != nil {
				return err
			}
			titleByID := make(map[string]string, len(items))
			for _, d := range items {
				titleByID[d.ID] = d.Title
			}
			rows := make([][]string, len(items))
			for i, d := range items {
				pred := ""
				if d.PredecessorID != "" {
					pred = fmt.Sprintf("%s (%s)", titleByID[d.PredecessorID],
						strings.ReplaceAll(string(d.RelationType), "_", "-"))
				}
				rows[i] = []string{
					formatter.Dim(d.ID[:8]),
					formatter.Bold(d.Title),
					d.DeliveryDate.Format("2006-01-02"),
					fmt.Sprintf("%dd", d.DurationDays),
					pred,
				}
			}
			fmt.Print(formatter.RenderTable([]string{"ID", "TITLE", "DELIVERY", "DURATION", "PREDECESSOR"}, rows))
			return nil
		},
	}
}

func newDeliverableLinkCmd(app *App) *cobra.Command {
	var relation string

	cmd := &cobra.Command{
		Use:   "link DELIVERABLE_ID PREDECESSOR_ID",
		Short: "Set a deliverable's predecessor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := app.WBS.SetPredecessor(context.Background(),
				args[0], args[1], domain.RelationType(relation))
			if err != nil {
				return err
			}
			if out.Kind == contract.OutcomeBlocked {
				return out.Reason
			}
			fmt.Println("Linked.")
			return nil
		},
	}

	cmd.Flags().StringVar(&relation, "relation", "finish_to_start",
		"Relation type (finish_to_start, start_to_start, finish_to_finish, start_to_finish)")
	return cmd
}

func newDeliverableUnlinkCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink DELIVERABLE_ID",
		Short: "Clear a deliverable's predecessor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.WBS.ClearPredecessor(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("Unlinked.")
			return nil
		},
	}
}

func newDeliverableRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove DELIVERABLE_ID",
		Short: "Delete a deliverable and detach its dependents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.WBS.DeleteDeliverable(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("Deliverable removed.")
			return nil
		},
	}
}

func newDeliverableCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check PROJECT",
		Short: "Sweep the dependency graph for cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.WBS.CheckGraph(ctx, projectID); err != nil {
				return err
			}
			fmt.Println("No cycles.")
			return nil
		},
	}
}
