package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/repository"
	"github.com/google/uuid"
)

// VersionPolicy sets the version-number increment, in tenths, per request
// change type. Critical requests take the major step.
type VersionPolicy struct {
	MinorStep domain.VersionNumber
	MajorStep domain.VersionNumber
}

func DefaultVersionPolicy() VersionPolicy {
	return VersionPolicy{MinorStep: 1, MajorStep: 10}
}

// Step returns the increment for the given request change type.
func (p VersionPolicy) Step(t domain.RequestChangeType) domain.VersionNumber {
	if t == domain.RequestCritical {
		return p.MajorStep
	}
	return p.MinorStep
}

// txRepos bundles tx-scoped repositories so multi-table operations read and
// write through the same transaction.
type txRepos struct {
	projects     repository.ProjectRepo
	versions     repository.VersionRepo
	requests     repository.ChangeRequestRepo
	sequences    repository.RequestSequenceRepo
	log          repository.ModificationLogRepo
	protections  repository.ProtectionRepo
	phases       repository.PhaseRepo
	deliverables repository.DeliverableRepo
	budgets      repository.BudgetRepo
	team         repository.TeamRepo
	masterData   repository.MasterDataRepo
}

func newTxRepos(tx db.DBTX) *txRepos {
	return &txRepos{
		projects:     repository.NewSQLiteProjectRepo(tx),
		versions:     repository.NewSQLiteVersionRepo(tx),
		requests:     repository.NewSQLiteChangeRequestRepo(tx),
		sequences:    repository.NewSQLiteRequestSequenceRepo(tx),
		log:          repository.NewSQLiteModificationLogRepo(tx),
		protections:  repository.NewSQLiteProtectionRepo(tx),
		phases:       repository.NewSQLitePhaseRepo(tx),
		deliverables: repository.NewSQLiteDeliverableRepo(tx),
		budgets:      repository.NewSQLiteBudgetRepo(tx),
		team:         repository.NewSQLiteTeamRepo(tx),
		masterData:   repository.NewSQLiteMasterDataRepo(tx),
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// projectElement builds the dotted element path recorded in log entries.
func projectElement(field string) string {
	return "project." + field
}

// appendLog writes one audit entry attributed to the actor.
func appendLog(ctx context.Context, log repository.ModificationLogRepo, actor Actor, projectID string, action domain.ActionType, element, oldValue, newValue string, baselineImpact bool, justification string) error {
	return log.Append(ctx, &domain.ModificationLogEntry{
		ID:                uuid.New().String(),
		ProjectID:         projectID,
		Timestamp:         nowUTC(),
		ChangedBy:         actor.Name,
		ChangedByRole:     actor.Role,
		ActionType:        action,
		ModifiedElement:   element,
		OldValue:          oldValue,
		NewValue:          newValue,
		HasBaselineImpact: baselineImpact,
		Justification:     justification,
	})
}

// markModified flags uncommitted drift on the project. The baseline status
// only moves off Validated through a restore, never through an edit.
func markModified(p *domain.Project) {
	p.HasModifications = true
	if p.BaselineStatus != domain.BaselineValidated {
		p.BaselineStatus = domain.BaselineModified
	}
}

// classifyChange maps the affected fields onto a version change type. Fields
// from more than one category yield Mixed.
func classifyChange(fields []domain.AffectedField) domain.VersionChangeType {
	var kind domain.VersionChangeType
	for _, f := range fields {
		var k domain.VersionChangeType
		switch f.Field {
		case domain.FieldTotalBudget:
			k = domain.ChangeBudgetary
		case domain.FieldStartDate, domain.FieldEndDate:
			k = domain.ChangePlanning
		case domain.FieldProjectManager, domain.FieldSponsor:
			k = domain.ChangeGovernance
		default:
			k = domain.ChangeStructural
		}
		if kind == "" {
			kind = k
		} else if kind != k {
			return domain.ChangeMixed
		}
	}
	if kind == "" {
		return domain.ChangeStructural
	}
	return kind
}

// snapshotFields captures the full editable field set of the project, the
// state a later restore copies back.
func snapshotFields(p *domain.Project) map[string]string {
	snap := make(map[string]string, len(domain.EditableFields))
	for field := range domain.EditableFields {
		v, err := p.FieldValue(field)
		if err != nil {
			continue
		}
		snap[field] = v
	}
	return snap
}

// mintVersion archives the previously Active version, advances the project's
// version number by step and inserts the new Active version with its field
// snapshot. The caller persists the project afterwards in the same tx.
func mintVersion(ctx context.Context, r *txRepos, p *domain.Project, actor Actor, step domain.VersionNumber, changeType domain.VersionChangeType, items []domain.VersionItem, justification string, businessImpact int) (*domain.BaselineVersion, error) {
	prev, err := r.versions.GetActive(ctx, p.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if prev != nil {
		if err := r.versions.SetStatus(ctx, prev.ID, domain.VersionArchived); err != nil {
			return nil, err
		}
	}

	p.CurrentVersion += step
	v := &domain.BaselineVersion{
		ID:             uuid.New().String(),
		ProjectID:      p.ID,
		VersionNumber:  p.CurrentVersion,
		CreatedAt:      nowUTC(),
		CreatedBy:      actor.Name,
		ChangeType:     changeType,
		ModifiedItems:  items,
		Justification:  justification,
		Status:         domain.VersionActive,
		BusinessImpact: businessImpact,
	}
	if err := r.versions.Create(ctx, v); err != nil {
		return nil, err
	}
	if err := r.versions.SaveSnapshot(ctx, v.ID, snapshotFields(p)); err != nil {
		return nil, err
	}
	return v, nil
}

// protectionOrDefault resolves the stored protection state for a field,
// falling back to the unstored default (auto fields protected, the rest not).
func protectionOrDefault(ctx context.Context, protections repository.ProtectionRepo, projectID, field string) (*domain.FieldProtectionState, error) {
	state, err := protections.Get(ctx, projectID, field)
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.FieldProtectionState{
			ProjectID: projectID,
			FieldName: field,
			IsAuto:    domain.AutoProtectedFields[field],
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// checkExpectedVersion enforces the optimistic-concurrency precondition.
// An empty expectation skips the check.
func checkExpectedVersion(p *domain.Project, expected string) error {
	if expected == "" {
		return nil
	}
	want, err := domain.ParseVersionNumber(expected)
	if err != nil {
		return fmt.Errorf("invalid expected version %q: %w", expected, err)
	}
	if want != p.CurrentVersion {
		return fmt.Errorf("expected version %s but project is at %s: %w",
			want, p.CurrentVersion, domain.ErrConcurrencyConflict)
	}
	return nil
}
