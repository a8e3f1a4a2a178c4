package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/baseline/internal/contract"
	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/graph"
	"github.com/alexanderramin/baseline/internal/repository"
	"github.com/google/uuid"
)

type wbsService struct {
	phases       repository.PhaseRepo
	deliverables repository.DeliverableRepo
	uow          db.UnitOfWork
	actor        Actor
}

func NewWBSService(phases repository.PhaseRepo, deliverables repository.DeliverableRepo, uow db.UnitOfWork, actor Actor) WBSService {
	return &wbsService{
		phases:       phases,
		deliverables: deliverables,
		uow:          uow,
		actor:        actor,
	}
}

// markStructuralChange flags the project when a WBS edit lands on a
// validated baseline; the change is applied but the drift is recorded.
func markStructuralChange(ctx context.Context, r *txRepos, projectID string) (baselineImpact bool, err error) {
	p, err := r.projects.GetByID(ctx, projectID)
	if err != nil {
		return false, err
	}
	impact := p.BaselineStatus == domain.BaselineValidated
	markModified(p)
	p.UpdatedAt = nowUTC()
	return impact, r.projects.Update(ctx, p)
}

func (s *wbsService) AddPhase(ctx context.Context, p *domain.Phase) error {
	if err := p.ValidatePhase(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := nowUTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)
		if err := r.phases.Create(ctx, p); err != nil {
			return err
		}
		impact, err := markStructuralChange(ctx, r, p.ProjectID)
		if err != nil {
			return err
		}
		return appendLog(ctx, r.log, s.actor, p.ProjectID, domain.ActionCreated,
			"phase."+p.Title, "", p.Title, impact, "")
	})
}

func (s *wbsService) ListPhases(ctx context.Context, projectID string) ([]*domain.Phase, error) {
	return s.phases.ListByProject(ctx, projectID)
}

// DeletePhase removes the phase and its deliverables. Predecessor links from
// other phases into the deleted deliverables are cleared first so no edge
// dangles.
func (s *wbsService) DeletePhase(ctx context.Context, id string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		p, err := r.phases.GetByID(ctx, id)
		if err != nil {
			return err
		}
		items, err := r.deliverables.ListByPhase(ctx, id)
		if err != nil {
			return err
		}
		for _, d := range items {
			if _, err := r.deliverables.ClearPredecessorsOf(ctx, d.ID); err != nil {
				return err
			}
		}
		if err := r.phases.Delete(ctx, id); err != nil {
			return err
		}
		impact, err := markStructuralChange(ctx, r, p.ProjectID)
		if err != nil {
			return err
		}
		return appendLog(ctx, r.log, s.actor, p.ProjectID, domain.ActionDeleted,
			"phase."+p.Title, p.Title, "", impact, "")
	})
}

func (s *wbsService) AddDeliverable(ctx context.Context, d *domain.Deliverable) (contract.SaveOutcome, error) {
	var outcome contract.SaveOutcome
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		phase, err := r.phases.GetByID(ctx, d.PhaseID)
		if err != nil {
			return err
		}
		if err := d.ValidateDeliverable(phase); err != nil {
			outcome = contract.Blocked(err)
			return nil
		}
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		now := nowUTC()
		d.CreatedAt = now
		d.UpdatedAt = now

		if d.PredecessorID != "" {
			if _, err := r.deliverables.GetByID(ctx, d.PredecessorID); err != nil {
				return fmt.Errorf("predecessor: %w", err)
			}
		}
		if err := r.deliverables.Create(ctx, d); err != nil {
			return err
		}
		if d.PredecessorID != "" {
			if err := checkDeliverableGraph(ctx, r.deliverables, d.ProjectID); err != nil {
				outcome = contract.Blocked(err)
				return err // roll the insert back
			}
		}
		impact, err := markStructuralChange(ctx, r, d.ProjectID)
		if err != nil {
			return err
		}
		if err := appendLog(ctx, r.log, s.actor, d.ProjectID, domain.ActionCreated,
			"deliverable."+d.Title, "", d.Title, impact, ""); err != nil {
			return err
		}
		outcome = contract.Applied()
		return nil
	})
	if outcome.Kind == contract.OutcomeBlocked {
		return outcome, nil
	}
	if err != nil {
		return contract.SaveOutcome{}, err
	}
	return outcome, nil
}

func (s *wbsService) ListDeliverables(ctx context.Context, projectID string) ([]*domain.Deliverable, error) {
	return s.deliverables.ListByProject(ctx, projectID)
}

// SetPredecessor links a deliverable to its predecessor. The prospective
// edge is checked for a cycle before anything is written, so a bad link
// gives fast feedback and never lands in the store.
func (s *wbsService) SetPredecessor(ctx context.Context, deliverableID, predecessorID string, relation domain.RelationType) (contract.SaveOutcome, error) {
	if !domain.ValidRelationTypes[string(relation)] {
		return contract.SaveOutcome{}, fmt.Errorf("unknown relation type %q", relation)
	}
	if deliverableID == predecessorID {
		return contract.Blocked(&domain.StructuralConflictError{Path: []string{deliverableID, deliverableID}}), nil
	}

	var outcome contract.SaveOutcome
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		d, err := r.deliverables.GetByID(ctx, deliverableID)
		if err != nil {
			return err
		}
		if _, err := r.deliverables.GetByID(ctx, predecessorID); err != nil {
			return fmt.Errorf("predecessor: %w", err)
		}

		items, err := r.deliverables.ListByProject(ctx, d.ProjectID)
		if err != nil {
			return err
		}
		byID := make(map[string]*domain.Deliverable, len(items))
		for _, item := range items {
			byID[item.ID] = item
		}
		// Overlay the prospective edge on the stored graph.
		pred := func(id string) (string, bool) {
			if id == deliverableID {
				return predecessorID, true
			}
			item, ok := byID[id]
			if !ok || item.PredecessorID == "" {
				return "", false
			}
			return item.PredecessorID, true
		}
		if cycle := graph.DetectCycle(deliverableID, pred); cycle != nil {
			titles := make([]string, len(cycle))
			for i, id := range cycle {
				if item, ok := byID[id]; ok {
					titles[i] = item.Title
				} else {
					titles[i] = id
				}
			}
			outcome = contract.Blocked(&domain.StructuralConflictError{Path: titles})
			return nil
		}

		old := d.PredecessorID
		d.PredecessorID = predecessorID
		d.RelationType = relation
		d.UpdatedAt = nowUTC()
		if err := r.deliverables.Update(ctx, d); err != nil {
			return err
		}
		impact, err := markStructuralChange(ctx, r, d.ProjectID)
		if err != nil {
			return err
		}
		if err := appendLog(ctx, r.log, s.actor, d.ProjectID, domain.ActionModified,
			"deliverable."+d.Title+".predecessor", old, predecessorID, impact, ""); err != nil {
			return err
		}
		outcome = contract.Applied()
		return nil
	})
	if err != nil {
		return contract.SaveOutcome{}, err
	}
	return outcome, nil
}

func (s *wbsService) ClearPredecessor(ctx context.Context, deliverableID string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		d, err := r.deliverables.GetByID(ctx, deliverableID)
		if err != nil {
			return err
		}
		old := d.PredecessorID
		d.PredecessorID = ""
		d.RelationType = ""
		d.UpdatedAt = nowUTC()
		if err := r.deliverables.Update(ctx, d); err != nil {
			return err
		}
		impact, err := markStructuralChange(ctx, r, d.ProjectID)
		if err != nil {
			return err
		}
		return appendLog(ctx, r.log, s.actor, d.ProjectID, domain.ActionModified,
			"deliverable."+d.Title+".predecessor", old, "", impact, "")
	})
}

// DeleteDeliverable removes the deliverable and detaches every dependent
// pointing at it, so the deletion never leaves a dangling edge.
func (s *wbsService) DeleteDeliverable(ctx context.Context, id string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		d, err := r.deliverables.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := r.deliverables.ClearPredecessorsOf(ctx, id); err != nil {
			return err
		}
		if err := r.deliverables.Delete(ctx, id); err != nil {
			return err
		}
		impact, err := markStructuralChange(ctx, r, d.ProjectID)
		if err != nil {
			return err
		}
		return appendLog(ctx, r.log, s.actor, d.ProjectID, domain.ActionDeleted,
			"deliverable."+d.Title, d.Title, "", impact, "")
	})
}

func (s *wbsService) CheckGraph(ctx context.Context, projectID string) error {
	return checkDeliverableGraph(ctx, s.deliverables, projectID)
}
