package cli

import (
	"github.com/alexanderramin/baseline/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects   service.ProjectService
	Baseline   service.BaselineService
	Requests   service.ChangeRequestService
	Versions   service.VersionService
	WBS        service.WBSService
	Budgets    service.BudgetService
	Team       service.TeamService
	Logs       service.LogService
	MasterData service.MasterDataService

	// IsInteractive reports whether stdin is a terminal; prompts are only
	// shown when it is.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "baseline" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "baseline",
		Short:         "Project baseline governance and change control",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newValidateCmd(app),
		newPhaseCmd(app),
		newDeliverableCmd(app),
		newBudgetCmd(app),
		newTeamCmd(app),
		newProtectCmd(app),
		newRequestCmd(app),
		newVersionCmd(app),
		newLogCmd(app),
		newRefdataCmd(app),
	)

	return root
}
