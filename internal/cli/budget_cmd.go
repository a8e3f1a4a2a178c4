package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/baseline/internal/cli/formatter"
	"github.com/alexanderramin/baseline/internal/contract"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/spf13/cobra"
)

func newBudgetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage budget envelopes and the monthly distribution",
	}
	cmd.AddCommand(
		newBudgetEnvelopeCmd(app),
		newBudgetMonthlyCmd(app),
		newBudgetCheckCmd(app),
	)
	return cmd
}

func newBudgetCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check PROJECT",
		Short: "Reconcile stored allocations against the total budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			report, err := app.Budgets.Check(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatBudgetCheck(report))
			return nil
		},
	}
}

func newBudgetEnvelopeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envelope",
		Short: "Manage budget envelopes",
	}
	cmd.AddCommand(
		newEnvelopeSetCmd(app),
		newEnvelopeListCmd(app),
	)
	return cmd
}

// parseAlloc parses "type=amount" or "type=amount:fundingSource".
func parseAlloc(spec string) (*domain.BudgetEnvelope, error) {
	typeID, rest, ok := strings.Cut(spec, "=")
	if !ok || typeID == "" {
		return nil, fmt.Errorf("invalid allocation %q (expected type=amount[:funding])", spec)
	}
	amountStr, funding, _ := strings.Cut(rest, ":")
	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount in %q: %w", spec, err)
	}
	return &domain.BudgetEnvelope{TypeID: typeID, Amount: amount, FundingSourceID: funding}, nil
}

func newEnvelopeSetCmd(app *App) *cobra.Command {
	var allocs []string
	var justification string

	cmd := &cobra.Command{
		Use:   "set PROJECT",
		Short: "Replace the envelope set (sum must reconcile with the total budget)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}

			envelopes := make([]*domain.BudgetEnvelope, len(allocs))
			for i, spec := range allocs {
				e, err := parseAlloc(spec)
				if err != nil {
					return err
				}
				envelopes[i] = e
			}

			out, err := app.Budgets.SaveEnvelopes(ctx, projectID, envelopes, justification)
			if err != nil {
				return err
			}
			if out.Kind == contract.OutcomeNeedsJustification {
				justification, err = promptText(app, "Justification for the baseline-impacting save", justification)
				if err != nil {
					return err
				}
				if justification != "" {
					out, err = app.Budgets.SaveEnvelopes(ctx, projectID, envelopes, justification)
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

	cmd.Flags().StringArrayVar(&allocs, "alloc", nil, "Allocation as type=amount[:funding] (repeatable)")
	cmd.Flags().StringVar(&justification, "justification", "", "Justification for baseline-impacting changes")
	_ = cmd.MarkFlagRequired("alloc")

	return cmd
}

func newEnvelopeListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List the project's envelopes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			envelopes, err := app.Budgets.ListEnvelopes(ctx, projectID)
			if err != nil {
				return err
			}
			rows := make([][]string, len(envelopes))
			for i, e := range envelopes {
				rows[i] = []string{
					formatter.Bold(e.TypeID),
					formatter.Money(e.Amount),
					e.FundingSourceID,
				}
			}
			rows = append(rows, []string{
				formatter.Dim("total"),
				formatter.Money(domain.SumEnvelopes(envelopes)),
				"",
			})
			fmt.Print(formatter.RenderTable([]string{"TYPE", "AMOUNT", "FUNDING"}, rows))
			return nil
		},
	}
}

func newBudgetMonthlyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Manage the monthly spending distribution",
	}
	cmd.AddCommand(
		newMonthlySetCmd(app),
		newMonthlyListCmd(app),
	)
	return cmd
}

// parseMonth parses "YYYY-MM=amount".
func parseMonth(spec string) (*domain.MonthlyBudget, error) {
	month, amountStr, ok := strings.Cut(spec, "=")
	if !ok || month == "" {
		return nil, fmt.Errorf("invalid month allocation %q (expected YYYY-MM=amount)", spec)
	}
	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount in %q: %w", spec, err)
	}
	return &domain.MonthlyBudget{Month: month, Amount: amount}, nil
}

func newMonthlySetCmd(app *App) *cobra.Command {
	var allocs []string
	var justification string

	cmd := &cobra.Command{
		Use:   "set PROJECT",
		Short: "Set monthly amounts (sum must match the total within one unit)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}

			months := make([]*domain.MonthlyBudget, len(allocs))
			for i, spec := range allocs {
				m, err := parseMonth(spec)
				if err != nil {
					return err
				}
				months[i] = m
			}

			out, err := app.Budgets.SaveMonthly(ctx, projectID, months, justification)
			if err != nil {
				return err
			}
			if out.Kind == contract.OutcomeBlocked {
				return out.Reason
			}
			fmt.Println(formatter.FormatSaveOutcome(out))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&allocs, "month", nil, "Monthly amount as YYYY-MM=amount (repeatable)")
	cmd.Flags().StringVar(&justification, "justification", "", "Justification for baseline-impacting changes")
	_ = cmd.MarkFlagRequired("month")

	return cmd
}

func newMonthlyListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List the monthly distribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			months, err := app.Budgets.ListMonthly(ctx, projectID)
			if err != nil {
				return err
			}
			rows := make([][]string, len(months))
			for i, m := range months {
				rows[i] = []string{m.Month, formatter.Money(m.Amount)}
			}
			fmt.Print(formatter.RenderTable([]string{"MONTH", "AMOUNT"}, rows))
			return nil
		},
	}
}
