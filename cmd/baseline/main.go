package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/baseline/internal/cli"
	"github.com/alexanderramin/baseline/internal/config"
	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/repository"
	"github.com/alexanderramin/baseline/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	projectRepo := repository.NewSQLiteProjectRepo(database)
	protectionRepo := repository.NewSQLiteProtectionRepo(database)
	requestRepo := repository.NewSQLiteChangeRequestRepo(database)
	versionRepo := repository.NewSQLiteVersionRepo(database)
	phaseRepo := repository.NewSQLitePhaseRepo(database)
	deliverableRepo := repository.NewSQLiteDeliverableRepo(database)
	budgetRepo := repository.NewSQLiteBudgetRepo(database)
	teamRepo := repository.NewSQLiteTeamRepo(database)
	logRepo := repository.NewSQLiteModificationLogRepo(database)
	masterDataRepo := repository.NewSQLiteMasterDataRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	auth := service.StaticAuthorization{Role: cfg.Role}
	actor := service.Actor{Name: cfg.Actor, Role: cfg.Role}
	policy := service.VersionPolicy{
		MinorStep: domain.VersionNumber(cfg.VersionStep),
		MajorStep: domain.VersionNumber(cfg.VersionStepCritical),
	}
	tol := cfg.Tolerances()

	app := &cli.App{
		Projects:   service.NewProjectService(projectRepo),
		Baseline:   service.NewBaselineService(protectionRepo, uow, auth, actor, policy, tol),
		Requests:   service.NewChangeRequestService(requestRepo, uow, auth, actor, policy),
		Versions:   service.NewVersionService(versionRepo, uow, auth, actor, policy),
		WBS:        service.NewWBSService(phaseRepo, deliverableRepo, uow, actor),
		Budgets:    service.NewBudgetService(budgetRepo, uow, actor, tol),
		Team:       service.NewTeamService(teamRepo, masterDataRepo, uow, actor, tol),
		Logs:       service.NewLogService(logRepo),
		MasterData: service.NewMasterDataService(masterDataRepo),
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
		},
	}

	return cli.NewRootCmd(app).Execute()
}
