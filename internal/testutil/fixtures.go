package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/google/uuid"
)

var testCodeCounter atomic.Int64

// ProjectOption mutates a fixture project before it is returned.
type ProjectOption func(*domain.Project)

func WithBudget(total int64) ProjectOption {
	return func(p *domain.Project) {
		p.TotalBudget = total
	}
}

func WithBaselineStatus(s domain.BaselineStatus) ProjectOption {
	return func(p *domain.Project) {
		p.BaselineStatus = s
	}
}

func WithCode(code string) ProjectOption {
	return func(p *domain.Project) {
		p.Code = code
	}
}

func WithDates(start, end time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.StartDate = start
		p.EndDate = end
	}
}

// NewTestProject returns a project that passes mandatory-field validation.
func NewTestProject(title string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:               uuid.New().String(),
		Code:             fmt.Sprintf("PRJ-%03d", testCodeCounter.Add(1)),
		Title:            title,
		ShortTitle:       "short-title",
		StartDate:        time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC),
		TotalBudget:      100_000_000,
		ProjectManagerID: "emp-pm",
		SponsorID:        "emp-sponsor",
		BaselineStatus:   domain.BaselineDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewTestPhase returns a phase inside the given project's plan year.
func NewTestPhase(projectID, title string) *domain.Phase {
	now := time.Now().UTC()
	return &domain.Phase{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Title:       title,
		StartDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Coefficient: 10,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestDeliverable returns a deliverable due inside the fixture phase range.
func NewTestDeliverable(projectID, phaseID, title string) *domain.Deliverable {
	now := time.Now().UTC()
	return &domain.Deliverable{
		ID:           uuid.New().String(),
		ProjectID:    projectID,
		PhaseID:      phaseID,
		Title:        title,
		DurationDays: 10,
		DeliveryDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Coefficient:  5,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestEnvelope returns a budget envelope for the project.
func NewTestEnvelope(projectID, typeID string, amount int64) *domain.BudgetEnvelope {
	now := time.Now().UTC()
	return &domain.BudgetEnvelope{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		TypeID:    typeID,
		Amount:    amount,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestMember returns a team member assignment.
func NewTestMember(projectID, employeeID string) *domain.TeamMember {
	return &domain.TeamMember{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		EmployeeID: employeeID,
		Role:       "contributor",
		AddedAt:    time.Now().UTC(),
	}
}
