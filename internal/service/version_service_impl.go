package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/repository"
	"gopkg.in/yaml.v3"
)

type versionService struct {
	versions repository.VersionRepo
	uow      db.UnitOfWork
	auth     AuthorizationPort
	actor    Actor
	policy   VersionPolicy
}

func NewVersionService(versions repository.VersionRepo, uow db.UnitOfWork, auth AuthorizationPort, actor Actor, policy VersionPolicy) VersionService {
	return &versionService{
		versions: versions,
		uow:      uow,
		auth:     auth,
		actor:    actor,
		policy:   policy,
	}
}

func (s *versionService) ListByProject(ctx context.Context, projectID string) ([]*domain.BaselineVersion, error) {
	return s.versions.ListByProject(ctx, projectID)
}

func (s *versionService) Compare(ctx context.Context, versionID string) ([]domain.VersionItem, error) {
	v, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	return v.ModifiedItems, nil
}

// Restore copies a past version's field snapshot back onto the project and
// mints a new version recording the rollback. The baseline drops back to
// Modified: a restore is a structural change that needs re-validation.
func (s *versionService) Restore(ctx context.Context, versionID, justification, expectedVersion string) error {
	if !s.auth.CheckPermission(CapRestoreBaseline) {
		return fmt.Errorf("restoring requires %s: %w", CapRestoreBaseline, ErrPermissionDenied)
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := newTxRepos(tx)

		v, err := r.versions.GetByID(ctx, versionID)
		if err != nil {
			return err
		}
		if v.Status == domain.VersionActive {
			return fmt.Errorf("version %s is already active: %w", v.VersionNumber, domain.ErrInvalidState)
		}

		p, err := r.projects.GetByID(ctx, v.ProjectID)
		if err != nil {
			return err
		}
		if err := checkExpectedVersion(p, expectedVersion); err != nil {
			return err
		}

		snap, err := r.versions.Snapshot(ctx, versionID)
		if err != nil {
			return err
		}

		fields := make([]string, 0, len(snap))
		for field := range snap {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		var items []domain.VersionItem
		for _, field := range fields {
			restored := snap[field]
			current, err := p.FieldValue(field)
			if err != nil {
				return err
			}
			if current == restored {
				continue
			}
			if err := p.SetField(field, restored); err != nil {
				return err
			}
			items = append(items, domain.VersionItem{
				Element:  projectElement(field),
				OldValue: current,
				NewValue: restored,
			})
		}

		if justification == "" {
			justification = fmt.Sprintf("restored from version %s", v.VersionNumber)
		}
		restoredFrom := v.VersionNumber
		if _, err := mintVersion(ctx, r, p, s.actor, s.policy.MinorStep,
			domain.ChangeStructural, items, justification, v.BusinessImpact); err != nil {
			return err
		}

		p.BaselineStatus = domain.BaselineModified
		p.HasModifications = true
		p.UpdatedAt = nowUTC()
		if err := r.projects.Update(ctx, p); err != nil {
			return err
		}

		return appendLog(ctx, r.log, s.actor, p.ID, domain.ActionModified,
			"project.baseline_version", restoredFrom.String(), p.CurrentVersion.String(),
			true, justification)
	})
}

// versionExport is the yaml document shape for an exported version.
type versionExport struct {
	Version        string               `yaml:"version"`
	ProjectID      string               `yaml:"project_id"`
	CreatedAt      string               `yaml:"created_at"`
	CreatedBy      string               `yaml:"created_by"`
	ChangeType     string               `yaml:"change_type"`
	Status         string               `yaml:"status"`
	Justification  string               `yaml:"justification,omitempty"`
	BusinessImpact int                  `yaml:"business_impact"`
	ModifiedItems  []versionExportItem  `yaml:"modified_items"`
	Snapshot       map[string]string    `yaml:"snapshot"`
}

type versionExportItem struct {
	Element  string `yaml:"element"`
	OldValue string `yaml:"old_value"`
	NewValue string `yaml:"new_value"`
}

func (s *versionService) Export(ctx context.Context, versionID, format string, w io.Writer) error {
	v, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return err
	}
	snap, err := s.versions.Snapshot(ctx, versionID)
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"element", "old_value", "new_value"}); err != nil {
			return err
		}
		for _, item := range v.ModifiedItems {
			if err := cw.Write([]string{item.Element, item.OldValue, item.NewValue}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()

	case "yaml":
		doc := versionExport{
			Version:        v.VersionNumber.String(),
			ProjectID:      v.ProjectID,
			CreatedAt:      v.CreatedAt.Format("2006-01-02 15:04:05"),
			CreatedBy:      v.CreatedBy,
			ChangeType:     string(v.ChangeType),
			Status:         string(v.Status),
			Justification:  v.Justification,
			BusinessImpact: v.BusinessImpact,
			Snapshot:       snap,
		}
		for _, item := range v.ModifiedItems {
			doc.ModifiedItems = append(doc.ModifiedItems, versionExportItem{
				Element:  item.Element,
				OldValue: item.OldValue,
				NewValue: item.NewValue,
			})
		}
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()

	default:
		return fmt.Errorf("unsupported export format %q (supported: csv, yaml)", format)
	}
}
