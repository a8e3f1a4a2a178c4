package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/baseline/internal/contract"
	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/reconcile"
	"github.com/alexanderramin/baseline/internal/repository"
	"github.com/google/uuid"
)

type teamService struct {
	team       repository.TeamRepo
	masterData repository.MasterDataRepo
	uow        db.UnitOfWork
	actor      Actor
	tol        reconcile.Tolerances
}

func NewTeamService(team repository.TeamRepo, masterData repository.MasterDataRepo, uow db.UnitOfWork, actor Actor, tol reconcile.Tolerances) TeamService {
	return &teamService{team: team, masterData: masterData, uow: uow, actor: actor, tol: tol}
}

// teamDriftWarning compares the prospective member set against the validated
// baseline set by symmetric difference.
func teamDriftWarning(baseline, proposed []string, threshold float64) *contract.Warning {
	pct := domain.SymmetricDifferencePercent(baseline, proposed)
	if pct < threshold {
		return nil
	}
	return &contract.Warning{
		Code:    contract.WarnTeamDrift,
		Message: fmt.Sprintf("team composition drifted %.1f%% from the validated baseline", pct),
		Percent: pct,
	}
}

func (s *teamService) Add(ctx context.Context, projectID, employeeID, role, justification string) (contract.SaveOutcome, error) {
	if _, err := s.masterData.Lookup(ctx, repository.KindEmployee, employeeID); err != nil {
		return contract.SaveOutcome{}, fmt.Errorf("employee %q: %w", employeeID, err)
	}

	var outcome contract.SaveOutcome
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		members, err := r.team.ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		current := make([]string, len(members))
		for i, m := range members {
			if m.EmployeeID == employeeID {
				verr := (&domain.ValidationError{}).Add("employee",
					fmt.Sprintf("employee %q is already on the team", employeeID))
				outcome = contract.Blocked(verr)
				return nil
			}
			current[i] = m.EmployeeID
		}

		baseline, err := r.team.BaselineEmployees(ctx, projectID)
		if err != nil {
			return err
		}
		var warnings []contract.Warning
		if w := teamDriftWarning(baseline, append(current, employeeID), s.tol.TeamWarningPercent); w != nil {
			if justification == "" {
				outcome = contract.SaveOutcome{Kind: contract.OutcomeNeedsJustification, Warnings: []contract.Warning{*w}}
				return nil
			}
			warnings = append(warnings, *w)
		}

		if err := r.team.Add(ctx, &domain.TeamMember{
			ID:         uuid.New().String(),
			ProjectID:  projectID,
			EmployeeID: employeeID,
			Role:       role,
			AddedAt:    nowUTC(),
		}); err != nil {
			return err
		}

		impact, err := markStructuralChange(ctx, r, projectID)
		if err != nil {
			return err
		}
		if err := appendLog(ctx, r.log, s.actor, projectID, domain.ActionCreated,
			"team."+employeeID, "", employeeID, impact || len(warnings) > 0, justification); err != nil {
			return err
		}
		outcome = contract.SaveOutcome{Kind: contract.OutcomeApplied, Warnings: warnings}
		return nil
	})
	if err != nil {
		return contract.SaveOutcome{}, err
	}
	return outcome, nil
}

func (s *teamService) Remove(ctx context.Context, projectID, employeeID, justification string) (contract.SaveOutcome, error) {
	var outcome contract.SaveOutcome
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		members, err := r.team.ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		var target *domain.TeamMember
		remaining := make([]string, 0, len(members))
		for _, m := range members {
			if m.EmployeeID == employeeID {
				target = m
				continue
			}
			remaining = append(remaining, m.EmployeeID)
		}
		if target == nil {
			return fmt.Errorf("employee %q is not on the team: %w", employeeID, repository.ErrNotFound)
		}
		if len(members) == 1 {
			verr := (&domain.ValidationError{}).Add("team", "the team cannot drop below one member")
			outcome = contract.Blocked(verr)
			return nil
		}

		baseline, err := r.team.BaselineEmployees(ctx, projectID)
		if err != nil {
			return err
		}
		var warnings []contract.Warning
		if w := teamDriftWarning(baseline, remaining, s.tol.TeamWarningPercent); w != nil {
			if justification == "" {
				outcome = contract.SaveOutcome{Kind: contract.OutcomeNeedsJustification, Warnings: []contract.Warning{*w}}
				return nil
			}
			warnings = append(warnings, *w)
		}

		if err := r.team.Remove(ctx, target.ID); err != nil {
			return err
		}
		impact, err := markStructuralChange(ctx, r, projectID)
		if err != nil {
			return err
		}
		if err := appendLog(ctx, r.log, s.actor, projectID, domain.ActionDeleted,
			"team."+employeeID, employeeID, "", impact || len(warnings) > 0, justification); err != nil {
			return err
		}
		outcome = contract.SaveOutcome{Kind: contract.OutcomeApplied, Warnings: warnings}
		return nil
	})
	if err != nil {
		return contract.SaveOutcome{}, err
	}
	return outcome, nil
}

func (s *teamService) List(ctx context.Context, projectID string) ([]*domain.TeamMember, error) {
	return s.team.ListByProject(ctx, projectID)
}
