package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/baseline/internal/cli/formatter"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/repository"
	"github.com/spf13/cobra"
)

func newRefdataCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refdata",
		Short: "Manage reference data (employees, budget and envelope types)",
	}
	cmd.AddCommand(
		newRefdataListCmd(app),
		newRefdataAddCmd(app),
	)
	return cmd
}

func refdataKind(arg string) (string, error) {
	switch arg {
	case repository.KindEmployee, repository.KindBudgetType,
		repository.KindEnvelopeType, repository.KindFundingSource:
		return arg, nil
	}
	return "", fmt.Errorf("unknown reference kind %q (expected employee, budget_type, envelope_type or funding_source)", arg)
}

func newRefdataListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list KIND",
		Short: "List reference entries of a kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := refdataKind(args[0])
			if err != nil {
				return err
			}
			refs, err := app.MasterData.ListKind(context.Background(), kind)
			if err != nil {
				return err
			}
			if len(refs) == 0 {
				fmt.Printf("No %s entries.\n", kind)
				return nil
			}
			fmt.Print(formatter.FormatRefList(refs))
			return nil
		},
	}
}

func newRefdataAddCmd(app *App) *cobra.Command {
	var code, label string

	cmd := &cobra.Command{
		Use:   "add KIND ID",
		Short: "Add a reference entry (existing ids are left untouched)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := refdataKind(args[0])
			if err != nil {
				return err
			}
			ref := domain.MasterDataRef{ID: args[1], Code: code, Label: label}
			if ref.Label == "" {
				ref.Label = ref.ID
			}
			if err := app.MasterData.Seed(context.Background(), kind, []domain.MasterDataRef{ref}); err != nil {
				return err
			}
			fmt.Printf("Added %s %s.\n", kind, ref.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Short display code")
	cmd.Flags().StringVar(&label, "label", "", "Display label (defaults to the id)")
	return cmd
}
