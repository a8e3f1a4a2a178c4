package repository

import (
	"context"

	"github.com/alexanderramin/baseline/internal/domain"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByCode(ctx context.Context, code string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

type VersionRepo interface {
	Create(ctx context.Context, v *domain.BaselineVersion) error
	GetByID(ctx context.Context, id string) (*domain.BaselineVersion, error)
	GetActive(ctx context.Context, projectID string) (*domain.BaselineVersion, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.BaselineVersion, error)
	SetStatus(ctx context.Context, id string, status domain.VersionStatus) error
	SaveSnapshot(ctx context.Context, versionID string, fields map[string]string) error
	Snapshot(ctx context.Context, versionID string) (map[string]string, error)
}

type ChangeRequestRepo interface {
	Create(ctx context.Context, r *domain.ChangeRequest) error
	GetByID(ctx context.Context, id string) (*domain.ChangeRequest, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.ChangeRequest, error)
	ListPending(ctx context.Context, projectID string) ([]*domain.ChangeRequest, error)
	Update(ctx context.Context, r *domain.ChangeRequest) error
}

// RequestSequenceRepo allocates per-project monotonically increasing request
// numbers atomically.
type RequestSequenceRepo interface {
	NextRequestNumber(ctx context.Context, projectID string) (int, error)
}

type ModificationLogRepo interface {
	Append(ctx context.Context, e *domain.ModificationLogEntry) error
	Query(ctx context.Context, projectID string, f domain.LogFilter) ([]*domain.ModificationLogEntry, error)
}

type ProtectionRepo interface {
	Upsert(ctx context.Context, s *domain.FieldProtectionState) error
	Get(ctx context.Context, projectID, field string) (*domain.FieldProtectionState, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.FieldProtectionState, error)
}

type PhaseRepo interface {
	Create(ctx context.Context, p *domain.Phase) error
	GetByID(ctx context.Context, id string) (*domain.Phase, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error)
	Update(ctx context.Context, p *domain.Phase) error
	Delete(ctx context.Context, id string) error
}

type DeliverableRepo interface {
	Create(ctx context.Context, d *domain.Deliverable) error
	GetByID(ctx context.Context, id string) (*domain.Deliverable, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Deliverable, error)
	ListByPhase(ctx context.Context, phaseID string) ([]*domain.Deliverable, error)
	Update(ctx context.Context, d *domain.Deliverable) error
	Delete(ctx context.Context, id string) error
	// ClearPredecessorsOf detaches every deliverable pointing at the given
	// id, returning how many rows changed.
	ClearPredecessorsOf(ctx context.Context, predecessorID string) (int, error)
}

type BudgetRepo interface {
	CreateEnvelope(ctx context.Context, e *domain.BudgetEnvelope) error
	ListEnvelopes(ctx context.Context, projectID string) ([]*domain.BudgetEnvelope, error)
	UpdateEnvelope(ctx context.Context, e *domain.BudgetEnvelope) error
	DeleteEnvelope(ctx context.Context, id string) error
	UpsertMonthly(ctx context.Context, m *domain.MonthlyBudget) error
	ListMonthly(ctx context.Context, projectID string) ([]*domain.MonthlyBudget, error)
}

type TeamRepo interface {
	Add(ctx context.Context, m *domain.TeamMember) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.TeamMember, error)
	Remove(ctx context.Context, id string) error
	SnapshotBaseline(ctx context.Context, projectID string, employeeIDs []string) error
	BaselineEmployees(ctx context.Context, projectID string) ([]string, error)
}

// MasterDataRepo is the lookup port for reference data. The engine only
// compares ids; codes and labels are display material.
type MasterDataRepo interface {
	Lookup(ctx context.Context, kind, id string) (*domain.MasterDataRef, error)
	ListKind(ctx context.Context, kind string) ([]*domain.MasterDataRef, error)
	Seed(ctx context.Context, kind string, refs []domain.MasterDataRef) error
}

// Master-data kinds the engine consults.
const (
	KindEmployee      = "employee"
	KindBudgetType    = "budget_type"
	KindEnvelopeType  = "envelope_type"
	KindFundingSource = "funding_source"
)
