package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/repository"
	"github.com/google/uuid"
)

type changeRequestService struct {
	requests repository.ChangeRequestRepo
	uow      db.UnitOfWork
	auth     AuthorizationPort
	actor    Actor
	policy   VersionPolicy
}

func NewChangeRequestService(requests repository.ChangeRequestRepo, uow db.UnitOfWork, auth AuthorizationPort, actor Actor, policy VersionPolicy) ChangeRequestService {
	return &changeRequestService{
		requests: requests,
		uow:      uow,
		auth:     auth,
		actor:    actor,
		policy:   policy,
	}
}

// createRequest allocates the next per-project request number and inserts a
// Pending request. Old values are taken from the fields as passed; callers
// capture them from the stored project in the same tx.
func createRequest(ctx context.Context, r *txRepos, p *domain.Project, actor Actor, fields []domain.AffectedField, description string, changeType domain.RequestChangeType, timeline string, risk int) (*domain.ChangeRequest, error) {
	number, err := r.sequences.NextRequestNumber(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	var budgetImpact *int64
	for _, f := range fields {
		if f.Field != domain.FieldTotalBudget {
			continue
		}
		delta, err := budgetDelta(f.OldValue, f.NewValue)
		if err != nil {
			return nil, err
		}
		budgetImpact = &delta
	}

	req := &domain.ChangeRequest{
		ID:             uuid.New().String(),
		ProjectID:      p.ID,
		RequestNumber:  number,
		RequestDate:    nowUTC(),
		Requestor:      actor.Name,
		ChangeType:     changeType,
		Description:    description,
		Status:         domain.RequestPending,
		AffectedFields: fields,
		BudgetImpact:   budgetImpact,
		TimelineImpact: timeline,
		RiskLevel:      risk,
	}
	if err := r.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func budgetDelta(oldValue, newValue string) (int64, error) {
	var oldN, newN int64
	if _, err := fmt.Sscanf(oldValue, "%d", &oldN); err != nil {
		return 0, fmt.Errorf("invalid budget %q: %w", oldValue, err)
	}
	if _, err := fmt.Sscanf(newValue, "%d", &newN); err != nil {
		return 0, fmt.Errorf("invalid budget %q: %w", newValue, err)
	}
	return newN - oldN, nil
}

// Submit files a change request against a validated baseline directly, the
// multi-field counterpart of the single-field edit routing.
func (s *changeRequestService) Submit(ctx context.Context, projectID string, fields []domain.AffectedField, description string, changeType domain.RequestChangeType, justification, timeline string, risk int) (*domain.ChangeRequest, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("a change request needs at least one affected field")
	}
	if description == "" {
		return nil, fmt.Errorf("a change request needs a description")
	}
	if !domain.ValidRequestChangeTypes[string(changeType)] {
		return nil, fmt.Errorf("unknown change type %q", changeType)
	}
	if risk < 0 || risk > 10 {
		return nil, fmt.Errorf("risk level %d is outside 0-10", risk)
	}

	var req *domain.ChangeRequest
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		p, err := r.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if p.BaselineStatus != domain.BaselineValidated {
			return fmt.Errorf("change requests require a validated baseline: %w", domain.ErrInvalidState)
		}

		resolved := make([]domain.AffectedField, len(fields))
		for i, f := range fields {
			if !domain.EditableFields[f.Field] {
				return fmt.Errorf("unknown project field %q", f.Field)
			}
			oldValue, err := p.FieldValue(f.Field)
			if err != nil {
				return err
			}
			state, err := protectionOrDefault(ctx, r.protections, p.ID, f.Field)
			if err != nil {
				return err
			}
			if state.IsPending {
				return fmt.Errorf("field %q already has a pending change request: %w",
					f.Field, domain.ErrInvalidState)
			}
			resolved[i] = domain.AffectedField{Field: f.Field, OldValue: oldValue, NewValue: f.NewValue}
		}

		req, err = createRequest(ctx, r, p, s.actor, resolved, description, changeType, timeline, risk)
		if err != nil {
			return err
		}

		for _, f := range resolved {
			state, err := protectionOrDefault(ctx, r.protections, p.ID, f.Field)
			if err != nil {
				return err
			}
			state.IsPending = true
			state.PendingValue = f.NewValue
			if err := r.protections.Upsert(ctx, state); err != nil {
				return err
			}
		}

		return appendLog(ctx, r.log, s.actor, p.ID, domain.ActionCreated,
			fmt.Sprintf("change_request.%d", req.RequestNumber), "", description, true, justification)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Approve resolves a pending request and, in the same transaction, mints the
// next baseline version and applies the pending values. Any failure rolls
// everything back.
func (s *changeRequestService) Approve(ctx context.Context, requestID, comments, expectedVersion string) error {
	if !s.auth.CheckPermission(CapApproveChange) {
		return fmt.Errorf("approving requires %s: %w", CapApproveChange, ErrPermissionDenied)
	}
	if comments == "" {
		return fmt.Errorf("approval comments are required")
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		req, err := r.requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.IsResolved() {
			return fmt.Errorf("request #%d is already %s: %w",
				req.RequestNumber, req.Status, domain.ErrInvalidState)
		}

		p, err := r.projects.GetByID(ctx, req.ProjectID)
		if err != nil {
			return err
		}
		if err := checkExpectedVersion(p, expectedVersion); err != nil {
			return err
		}

		items := make([]domain.VersionItem, len(req.AffectedFields))
		for i, f := range req.AffectedFields {
			if err := p.SetField(f.Field, f.NewValue); err != nil {
				return err
			}
			items[i] = domain.VersionItem{
				Element:  projectElement(f.Field),
				OldValue: f.OldValue,
				NewValue: f.NewValue,
			}

			state, err := protectionOrDefault(ctx, r.protections, p.ID, f.Field)
			if err != nil {
				return err
			}
			state.IsPending = false
			state.PendingValue = ""
			if err := r.protections.Upsert(ctx, state); err != nil {
				return err
			}
		}

		if _, err := mintVersion(ctx, r, p, s.actor, s.policy.Step(req.ChangeType),
			classifyChange(req.AffectedFields), items, req.Description, req.RiskLevel); err != nil {
			return err
		}

		p.UpdatedAt = nowUTC()
		if err := r.projects.Update(ctx, p); err != nil {
			return err
		}

		now := nowUTC()
		req.Status = domain.RequestApproved
		req.Approver = s.actor.Name
		req.Resolution = comments
		req.ResolvedAt = &now
		if err := r.requests.Update(ctx, req); err != nil {
			return err
		}

		return appendLog(ctx, r.log, s.actor, p.ID, domain.ActionValidated,
			fmt.Sprintf("change_request.%d", req.RequestNumber),
			string(domain.RequestPending), string(domain.RequestApproved), true, comments)
	})
}

// Reject resolves a pending request without touching project data; the
// pending values are discarded.
func (s *changeRequestService) Reject(ctx context.Context, requestID, reason, expectedVersion string) error {
	if !s.auth.CheckPermission(CapRejectChange) {
		return fmt.Errorf("rejecting requires %s: %w", CapRejectChange, ErrPermissionDenied)
	}
	if reason == "" {
		return fmt.Errorf("a rejection reason is required")
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		req, err := r.requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.IsResolved() {
			return fmt.Errorf("request #%d is already %s: %w",
				req.RequestNumber, req.Status, domain.ErrInvalidState)
		}

		p, err := r.projects.GetByID(ctx, req.ProjectID)
		if err != nil {
			return err
		}
		if err := checkExpectedVersion(p, expectedVersion); err != nil {
			return err
		}

		for _, f := range req.AffectedFields {
			state, err := protectionOrDefault(ctx, r.protections, p.ID, f.Field)
			if err != nil {
				return err
			}
			state.IsPending = false
			state.PendingValue = ""
			if err := r.protections.Upsert(ctx, state); err != nil {
				return err
			}
		}

		now := nowUTC()
		req.Status = domain.RequestRejected
		req.Approver = s.actor.Name
		req.Resolution = reason
		req.ResolvedAt = &now
		if err := r.requests.Update(ctx, req); err != nil {
			return err
		}

		return appendLog(ctx, r.log, s.actor, p.ID, domain.ActionRejected,
			fmt.Sprintf("change_request.%d", req.RequestNumber),
			string(domain.RequestPending), string(domain.RequestRejected), false, reason)
	})
}

func (s *changeRequestService) GetByID(ctx context.Context, requestID string) (*domain.ChangeRequest, error) {
	return s.requests.GetByID(ctx, requestID)
}

func (s *changeRequestService) ListByProject(ctx context.Context, projectID string) ([]*domain.ChangeRequest, error) {
	return s.requests.ListByProject(ctx, projectID)
}

func (s *changeRequestService) ListPending(ctx context.Context, projectID string) ([]*domain.ChangeRequest, error) {
	return s.requests.ListPending(ctx, projectID)
}
