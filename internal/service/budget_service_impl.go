package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexanderramin/baseline/internal/contract"
	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/reconcile"
	"github.com/alexanderramin/baseline/internal/repository"
	"github.com/google/uuid"
)

type budgetService struct {
	budgets repository.BudgetRepo
	uow     db.UnitOfWork
	actor   Actor
	tol     reconcile.Tolerances
}

func NewBudgetService(budgets repository.BudgetRepo, uow db.UnitOfWork, actor Actor, tol reconcile.Tolerances) BudgetService {
	return &budgetService{budgets: budgets, uow: uow, actor: actor, tol: tol}
}

// budgetDriftWarning raises the baseline-impact warning when the current
// total has drifted from the initially validated total beyond the threshold.
func budgetDriftWarning(p *domain.Project, threshold float64) *contract.Warning {
	if p.InitialBudget <= 0 {
		return nil
	}
	pct := reconcile.SignificantChangePercent(p.TotalBudget, p.InitialBudget)
	if pct < threshold {
		return nil
	}
	return &contract.Warning{
		Code:    contract.WarnBudgetDrift,
		Message: fmt.Sprintf("total budget drifted %.1f%% from the validated baseline", pct),
		Percent: pct,
	}
}

// SaveEnvelopes replaces the project's envelope set. The sum must reconcile
// with the total budget within the fractional band; a drifted total demands
// justification before the save proceeds.
func (s *budgetService) SaveEnvelopes(ctx context.Context, projectID string, envelopes []*domain.BudgetEnvelope, justification string) (contract.SaveOutcome, error) {
	var outcome contract.SaveOutcome
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		p, err := r.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}

		for _, e := range envelopes {
			if err := e.ValidateEnvelope(); err != nil {
				outcome = contract.Blocked(err)
				return nil
			}
		}
		if dup := domain.DuplicateEnvelopeType(envelopes); dup != "" {
			verr := (&domain.ValidationError{}).Add("type", fmt.Sprintf("envelope type %q appears more than once", dup))
			outcome = contract.Blocked(verr)
			return nil
		}

		sum := domain.SumEnvelopes(envelopes)
		if !reconcile.WithinTolerance(sum, p.TotalBudget, s.tol.EnvelopeFraction) {
			outcome = contract.Blocked(&domain.ReconciliationError{Kind: "envelope", Sum: sum, Target: p.TotalBudget})
			return nil
		}

		var warnings []contract.Warning
		if w := budgetDriftWarning(p, s.tol.BudgetWarningPercent); w != nil {
			if justification == "" {
				outcome = contract.SaveOutcome{Kind: contract.OutcomeNeedsJustification, Warnings: []contract.Warning{*w}}
				return nil
			}
			warnings = append(warnings, *w)
		}

		existing, err := r.budgets.ListEnvelopes(ctx, p.ID)
		if err != nil {
			return err
		}
		oldSum := domain.SumEnvelopes(existing)
		for _, e := range existing {
			if err := r.budgets.DeleteEnvelope(ctx, e.ID); err != nil {
				return err
			}
		}
		now := nowUTC()
		for _, e := range envelopes {
			if e.ID == "" {
				e.ID = uuid.New().String()
			}
			e.ProjectID = p.ID
			e.CreatedAt = now
			e.UpdatedAt = now
			if err := r.budgets.CreateEnvelope(ctx, e); err != nil {
				return err
			}
		}

		impact, err := markStructuralChange(ctx, r, p.ID)
		if err != nil {
			return err
		}
		if err := appendLog(ctx, r.log, s.actor, p.ID, domain.ActionModified,
			"budget.envelopes", strconv.FormatInt(oldSum, 10), strconv.FormatInt(sum, 10),
			impact || len(warnings) > 0, justification); err != nil {
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

func (s *budgetService) ListEnvelopes(ctx context.Context, projectID string) ([]*domain.BudgetEnvelope, error) {
	return s.budgets.ListEnvelopes(ctx, projectID)
}

// SaveMonthly writes the monthly distribution. The band here is one absolute
// currency unit, not a fraction of the total.
func (s *budgetService) SaveMonthly(ctx context.Context, projectID string, months []*domain.MonthlyBudget, justification string) (contract.SaveOutcome, error) {
	var outcome contract.SaveOutcome
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		p, err := r.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}

		verr := &domain.ValidationError{}
		seen := make(map[string]bool, len(months))
		var sum int64
		for _, m := range months {
			if m.Month == "" {
				verr.Add("month", "month is required")
			} else if seen[m.Month] {
				verr.Add("month", fmt.Sprintf("month %s appears more than once", m.Month))
			}
			seen[m.Month] = true
			if m.Amount < 0 {
				verr.Add("amount", "monthly amount must not be negative")
			}
			sum += m.Amount
		}
		if err := verr.OrNil(); err != nil {
			outcome = contract.Blocked(err)
			return nil
		}

		if !reconcile.WithinAbsolute(sum, p.TotalBudget, s.tol.MonthlyUnits) {
			outcome = contract.Blocked(&domain.ReconciliationError{Kind: "monthly", Sum: sum, Target: p.TotalBudget})
			return nil
		}

		var warnings []contract.Warning
		if w := budgetDriftWarning(p, s.tol.BudgetWarningPercent); w != nil {
			if justification == "" {
				outcome = contract.SaveOutcome{Kind: contract.OutcomeNeedsJustification, Warnings: []contract.Warning{*w}}
				return nil
			}
			warnings = append(warnings, *w)
		}

		now := nowUTC()
		for _, m := range months {
			if m.ID == "" {
				m.ID = uuid.New().String()
			}
			m.ProjectID = p.ID
			m.CreatedAt = now
			m.UpdatedAt = now
			if err := r.budgets.UpsertMonthly(ctx, m); err != nil {
				return err
			}
		}

		impact, err := markStructuralChange(ctx, r, p.ID)
		if err != nil {
			return err
		}
		if err := appendLog(ctx, r.log, s.actor, p.ID, domain.ActionModified,
			"budget.monthly", "", strconv.FormatInt(sum, 10),
			impact || len(warnings) > 0, justification); err != nil {
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

func (s *budgetService) ListMonthly(ctx context.Context, projectID string) ([]*domain.MonthlyBudget, error) {
	return s.budgets.ListMonthly(ctx, projectID)
}

// Check reconciles both stored allocation sets against the total budget in
// one consistent read. A set that has no rows yet reports as reconciled.
func (s *budgetService) Check(ctx context.Context, projectID string) (*contract.BudgetCheck, error) {
	var report *contract.BudgetCheck
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		p, err := r.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		envelopes, err := r.budgets.ListEnvelopes(ctx, p.ID)
		if err != nil {
			return err
		}
		months, err := r.budgets.ListMonthly(ctx, p.ID)
		if err != nil {
			return err
		}

		var monthlySum int64
		for _, m := range months {
			monthlySum += m.Amount
		}
		envelopeSum := domain.SumEnvelopes(envelopes)

		report = &contract.BudgetCheck{
			Target:        p.TotalBudget,
			EnvelopeSum:   envelopeSum,
			EnvelopeCount: len(envelopes),
			EnvelopesOK:   len(envelopes) == 0 || reconcile.WithinTolerance(envelopeSum, p.TotalBudget, s.tol.EnvelopeFraction),
			MonthlySum:    monthlySum,
			MonthCount:    len(months),
			MonthlyOK:     len(months) == 0 || reconcile.WithinAbsolute(monthlySum, p.TotalBudget, s.tol.MonthlyUnits),
		}
		if w := budgetDriftWarning(p, s.tol.BudgetWarningPercent); w != nil {
			report.Warnings = append(report.Warnings, *w)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
