package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/alexanderramin/baseline/internal/contract"
	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/graph"
	"github.com/alexanderramin/baseline/internal/reconcile"
	"github.com/alexanderramin/baseline/internal/repository"
)

type baselineService struct {
	protections repository.ProtectionRepo
	uow         db.UnitOfWork
	auth        AuthorizationPort
	actor       Actor
	policy      VersionPolicy
	tol         reconcile.Tolerances
}

func NewBaselineService(protections repository.ProtectionRepo, uow db.UnitOfWork, auth AuthorizationPort, actor Actor, policy VersionPolicy, tol reconcile.Tolerances) BaselineService {
	return &baselineService{
		protections: protections,
		uow:         uow,
		auth:        auth,
		actor:       actor,
		policy:      policy,
		tol:         tol,
	}
}

// Validate runs the full pre-baseline check set and, on success, freezes the
// plan: auto fields become baseline-flagged, the team composition is
// snapshotted and the initial Active version is minted.
func (s *baselineService) Validate(ctx context.Context, projectID string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		p, err := r.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if p.BaselineStatus == domain.BaselineValidated {
			return fmt.Errorf("project %s is already validated: %w", p.DisplayID(), domain.ErrInvalidState)
		}

		if err := s.checkPlan(ctx, r, p); err != nil {
			return err
		}

		// First validation pins the reference total for drift warnings.
		if p.InitialBudget == 0 {
			p.InitialBudget = p.TotalBudget
		}

		for field := range domain.AutoProtectedFields {
			state := &domain.FieldProtectionState{
				ProjectID:  p.ID,
				FieldName:  field,
				IsAuto:     true,
				IsBaseline: true,
			}
			if err := r.protections.Upsert(ctx, state); err != nil {
				return err
			}
		}

		members, err := r.team.ListByProject(ctx, p.ID)
		if err != nil {
			return err
		}
		ids := make([]string, len(members))
		for i, m := range members {
			ids[i] = m.EmployeeID
		}
		if err := r.team.SnapshotBaseline(ctx, p.ID, ids); err != nil {
			return err
		}

		step := s.policy.MinorStep
		if p.CurrentVersion == 0 {
			step = 10 // first validation mints 1.0
		}
		if _, err := mintVersion(ctx, r, p, s.actor, step, domain.ChangeGovernance, nil, "baseline validated", 0); err != nil {
			return err
		}

		oldStatus := string(p.BaselineStatus)
		p.BaselineStatus = domain.BaselineValidated
		p.HasModifications = false
		p.UpdatedAt = nowUTC()
		if err := r.projects.Update(ctx, p); err != nil {
			return err
		}

		return appendLog(ctx, r.log, s.actor, p.ID, domain.ActionValidated,
			"project.baseline_status", oldStatus, string(domain.BaselineValidated), true, "")
	})
}

// checkPlan gathers every blocking condition: mandatory fields, master-data
// references, team size, envelope reconciliation and dependency cycles.
func (s *baselineService) checkPlan(ctx context.Context, r *txRepos, p *domain.Project) error {
	if err := p.ValidateMandatory(); err != nil {
		return err
	}

	// Lookups go through the tx so they see the same snapshot as every
	// other check.
	verr := &domain.ValidationError{}
	if _, err := r.masterData.Lookup(ctx, repository.KindEmployee, p.ProjectManagerID); err != nil {
		verr.Add(domain.FieldProjectManager, fmt.Sprintf("unknown employee %q", p.ProjectManagerID))
	}
	if _, err := r.masterData.Lookup(ctx, repository.KindEmployee, p.SponsorID); err != nil {
		verr.Add(domain.FieldSponsor, fmt.Sprintf("unknown employee %q", p.SponsorID))
	}

	members, err := r.team.ListByProject(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		verr.Add("team", "project team must have at least one member")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	envelopes, err := r.budgets.ListEnvelopes(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(envelopes) > 0 {
		sum := domain.SumEnvelopes(envelopes)
		if !reconcile.WithinTolerance(sum, p.TotalBudget, s.tol.EnvelopeFraction) {
			return &domain.ReconciliationError{Kind: "envelope", Sum: sum, Target: p.TotalBudget}
		}
	}

	return checkDeliverableGraph(ctx, r.deliverables, p.ID)
}

// checkDeliverableGraph sweeps the whole predecessor graph and renders any
// cycle found with deliverable titles.
func checkDeliverableGraph(ctx context.Context, deliverables repository.DeliverableRepo, projectID string) error {
	items, err := deliverables.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	byID := make(map[string]*domain.Deliverable, len(items))
	ids := make([]string, len(items))
	for i, d := range items {
		byID[d.ID] = d
		ids[i] = d.ID
	}
	pred := func(id string) (string, bool) {
		d, ok := byID[id]
		if !ok || d.PredecessorID == "" {
			return "", false
		}
		return d.PredecessorID, true
	}
	cycle := graph.CheckAll(ids, pred)
	if cycle == nil {
		return nil
	}
	titles := make([]string, len(cycle))
	for i, id := range cycle {
		if d, ok := byID[id]; ok {
			titles[i] = d.Title
		} else {
			titles[i] = id
		}
	}
	return &domain.StructuralConflictError{Path: titles}
}

// EditField is the single routing decision for project field edits: apply
// directly, or divert to a change request when the field is protected on a
// validated baseline. The stored value never moves on the request path.
func (s *baselineService) EditField(ctx context.Context, projectID, field, newValue, justification string) (contract.EditOutcome, error) {
	if !domain.EditableFields[field] {
		return contract.EditOutcome{}, fmt.Errorf("unknown project field %q", field)
	}

	var outcome contract.EditOutcome
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		p, err := r.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		oldValue, err := p.FieldValue(field)
		if err != nil {
			return err
		}

		state, err := protectionOrDefault(ctx, r.protections, p.ID, field)
		if err != nil {
			return err
		}
		if state.IsPending {
			outcome = contract.EditOutcome{
				Kind:  contract.OutcomeBlocked,
				Field: field,
				Reason: fmt.Errorf("field %q already has a pending change request: %w",
					field, domain.ErrInvalidState),
			}
			return nil
		}

		if p.BaselineStatus != domain.BaselineValidated || !state.IsProtected() {
			if err := p.SetField(field, newValue); err != nil {
				outcome = contract.EditOutcome{Kind: contract.OutcomeBlocked, Field: field, Reason: err}
				return nil
			}
			markModified(p)
			p.UpdatedAt = nowUTC()
			if err := r.projects.Update(ctx, p); err != nil {
				return err
			}
			if err := appendLog(ctx, r.log, s.actor, p.ID, domain.ActionModified,
				projectElement(field), oldValue, newValue, false, justification); err != nil {
				return err
			}
			outcome = contract.EditOutcome{
				Kind:     contract.OutcomeApplied,
				Field:    field,
				OldValue: oldValue,
				NewValue: newValue,
			}
			return nil
		}

		// Protected on a validated baseline: divert to a change request.
		if justification == "" {
			outcome = contract.EditOutcome{
				Kind:   contract.OutcomeBlocked,
				Field:  field,
				Reason: fmt.Errorf("justification is required to change baseline-protected field %q", field),
			}
			return nil
		}

		req, err := createRequest(ctx, r, p, s.actor,
			[]domain.AffectedField{{Field: field, OldValue: oldValue, NewValue: newValue}},
			justification, domain.RequestMinor, "", 0)
		if err != nil {
			return err
		}

		state.IsPending = true
		state.PendingValue = newValue
		if err := r.protections.Upsert(ctx, state); err != nil {
			return err
		}

		if err := appendLog(ctx, r.log, s.actor, p.ID, domain.ActionCreated,
			fmt.Sprintf("change_request.%d", req.RequestNumber),
			oldValue, newValue, true, justification); err != nil {
			return err
		}
		outcome = contract.EditOutcome{
			Kind:      contract.OutcomePending,
			Field:     field,
			OldValue:  oldValue,
			NewValue:  newValue,
			RequestID: req.ID,
		}
		return nil
	})
	return outcome, err
}

func (s *baselineService) ToggleProtection(ctx context.Context, projectID, field string, on bool) error {
	if !s.auth.CheckPermission(CapEditTabs) {
		return fmt.Errorf("toggling protection requires %s: %w", CapEditTabs, ErrPermissionDenied)
	}
	if !domain.EditableFields[field] {
		return fmt.Errorf("unknown project field %q", field)
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		p, err := r.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		state, err := protectionOrDefault(ctx, r.protections, p.ID, field)
		if err != nil {
			return err
		}
		if state.IsPending {
			return fmt.Errorf("field %q has a pending change request: %w", field, domain.ErrInvalidState)
		}
		was := state.IsBaseline
		if err := state.SetBaseline(on); err != nil {
			return err
		}
		if err := r.protections.Upsert(ctx, state); err != nil {
			return err
		}
		return appendLog(ctx, r.log, s.actor, p.ID, domain.ActionModified,
			"protection."+field, strconv.FormatBool(was), strconv.FormatBool(on), false, "")
	})
}

// ListProtections merges stored protection rows with the unstored defaults
// so every editable field reports a state.
func (s *baselineService) ListProtections(ctx context.Context, projectID string) ([]*domain.FieldProtectionState, error) {
	stored, err := s.protections.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	byField := make(map[string]*domain.FieldProtectionState, len(stored))
	for _, st := range stored {
		byField[st.FieldName] = st
	}

	out := make([]*domain.FieldProtectionState, 0, len(domain.EditableFields))
	for field := range domain.EditableFields {
		if st, ok := byField[field]; ok {
			out = append(out, st)
			continue
		}
		out = append(out, &domain.FieldProtectionState{
			ProjectID: projectID,
			FieldName: field,
			IsAuto:    domain.AutoProtectedFields[field],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldName < out[j].FieldName })
	return out, nil
}
