package service

import (
	"context"
	"io"

	"github.com/alexanderramin/baseline/internal/contract"
	"github.com/alexanderramin/baseline/internal/domain"
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// BaselineService owns the project baseline state machine and the single
// field-edit routing decision.
type BaselineService interface {
	Validate(ctx context.Context, projectID string) error
	EditField(ctx context.Context, projectID, field, newValue, justification string) (contract.EditOutcome, error)
	ToggleProtection(ctx context.Context, projectID, field string, on bool) error
	ListProtections(ctx context.Context, projectID string) ([]*domain.FieldProtectionState, error)
}

type ChangeRequestService interface {
	Submit(ctx context.Context, projectID string, fields []domain.AffectedField, description string, changeType domain.RequestChangeType, justification, timeline string, risk int) (*domain.ChangeRequest, error)
	// Approve and Reject take an optional expected project version ("" skips
	// the check) as the optimistic-concurrency precondition.
	Approve(ctx context.Context, requestID, comments, expectedVersion string) error
	Reject(ctx context.Context, requestID, reason, expectedVersion string) error
	GetByID(ctx context.Context, requestID string) (*domain.ChangeRequest, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.ChangeRequest, error)
	ListPending(ctx context.Context, projectID string) ([]*domain.ChangeRequest, error)
}

type VersionService interface {
	ListByProject(ctx context.Context, projectID string) ([]*domain.BaselineVersion, error)
	// Compare returns the real before/after pairs recorded with a version.
	Compare(ctx context.Context, versionID string) ([]domain.VersionItem, error)
	Restore(ctx context.Context, versionID, justification, expectedVersion string) error
	Export(ctx context.Context, versionID, format string, w io.Writer) error
}

type LogService interface {
	Query(ctx context.Context, projectID string, f domain.LogFilter) ([]*domain.ModificationLogEntry, error)
}

type WBSService interface {
	AddPhase(ctx context.Context, p *domain.Phase) error
	ListPhases(ctx context.Context, projectID string) ([]*domain.Phase, error)
	DeletePhase(ctx context.Context, id string) error
	AddDeliverable(ctx context.Context, d *domain.Deliverable) (contract.SaveOutcome, error)
	ListDeliverables(ctx context.Context, projectID string) ([]*domain.Deliverable, error)
	// SetPredecessor links a deliverable to its predecessor and runs the
	// fast cycle check on the touched chain.
	SetPredecessor(ctx context.Context, deliverableID, predecessorID string, relation domain.RelationType) (contract.SaveOutcome, error)
	ClearPredecessor(ctx context.Context, deliverableID string) error
	DeleteDeliverable(ctx context.Context, id string) error
	// CheckGraph sweeps every deliverable before a save; assignments made
	// one at a time can close a cycle through edges set earlier.
	CheckGraph(ctx context.Context, projectID string) error
}

type BudgetService interface {
	// SaveEnvelopes replaces the project's envelope set after reconciling
	// the sum against the total budget.
	SaveEnvelopes(ctx context.Context, projectID string, envelopes []*domain.BudgetEnvelope, justification string) (contract.SaveOutcome, error)
	ListEnvelopes(ctx context.Context, projectID string) ([]*domain.BudgetEnvelope, error)
	SaveMonthly(ctx context.Context, projectID string, months []*domain.MonthlyBudget, justification string) (contract.SaveOutcome, error)
	ListMonthly(ctx context.Context, projectID string) ([]*domain.MonthlyBudget, error)
	// Check reconciles the stored allocations against the total budget
	// without saving anything.
	Check(ctx context.Context, projectID string) (*contract.BudgetCheck, error)
}

type TeamService interface {
	Add(ctx context.Context, projectID, employeeID, role, justification string) (contract.SaveOutcome, error)
	Remove(ctx context.Context, projectID, employeeID, justification string) (contract.SaveOutcome, error)
	List(ctx context.Context, projectID string) ([]*domain.TeamMember, error)
}

type MasterDataService interface {
	ListKind(ctx context.Context, kind string) ([]*domain.MasterDataRef, error)
	// Seed inserts reference rows, ignoring ids already present.
	Seed(ctx context.Context, kind string, refs []domain.MasterDataRef) error
}
