package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"
)

var (
	codePattern       = regexp.MustCompile(`^[A-Z0-9-]{1,15}$`)
	shortTitlePattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,30}$`)
)

// minPlanSpan is the smallest allowed distance between project start and end.
const minPlanSpan = 7 * 24 * time.Hour

// Project is the root aggregate of the planning workspace. CurrentVersion
// advances only through validation, approved change requests and restores.
type Project struct {
	ID               string
	Code             string
	Title            string
	ShortTitle       string
	StartDate        time.Time
	EndDate          time.Time
	TotalBudget      int64
	InitialBudget    int64 // total budget captured at first validation
	ProjectManagerID string
	SponsorID        string
	BaselineStatus   BaselineStatus
	CurrentVersion   VersionNumber
	HasModifications bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Field identifiers used by the protection registry, the modification log
// (as "project.<field>" paths) and the CLI `project set` command.
const (
	FieldTitle          = "title"
	FieldShortTitle     = "short_title"
	FieldCode           = "code"
	FieldStartDate      = "start_date"
	FieldEndDate        = "end_date"
	FieldTotalBudget    = "total_budget"
	FieldProjectManager = "project_manager"
	FieldSponsor        = "sponsor"
)

// AutoProtectedFields are baseline-flagged at validation and can never be
// toggled off.
var AutoProtectedFields = map[string]bool{
	FieldTitle:       true,
	FieldStartDate:   true,
	FieldEndDate:     true,
	FieldTotalBudget: true,
}

// EditableFields is the set of project fields reachable through the
// field-edit routing path.
var EditableFields = map[string]bool{
	FieldTitle: true, FieldShortTitle: true, FieldCode: true,
	FieldStartDate: true, FieldEndDate: true, FieldTotalBudget: true,
	FieldProjectManager: true, FieldSponsor: true,
}

const dateLayout = "2006-01-02"

// FieldValue returns the string form of the named field, the same form
// recorded in log entries and pending change requests.
func (p *Project) FieldValue(name string) (string, error) {
	switch name {
	case FieldTitle:
		return p.Title, nil
	case FieldShortTitle:
		return p.ShortTitle, nil
	case FieldCode:
		return p.Code, nil
	case FieldStartDate:
		return p.StartDate.Format(dateLayout), nil
	case FieldEndDate:
		return p.EndDate.Format(dateLayout), nil
	case FieldTotalBudget:
		return strconv.FormatInt(p.TotalBudget, 10), nil
	case FieldProjectManager:
		return p.ProjectManagerID, nil
	case FieldSponsor:
		return p.SponsorID, nil
	}
	return "", fmt.Errorf("unknown project field %q", name)
}

// SetField parses value and assigns it to the named field.
func (p *Project) SetField(name, value string) error {
	switch name {
	case FieldTitle:
		p.Title = value
	case FieldShortTitle:
		p.ShortTitle = value
	case FieldCode:
		p.Code = value
	case FieldStartDate:
		t, err := time.Parse(dateLayout, value)
		if err != nil {
			return fmt.Errorf("invalid start date %q: %w", value, err)
		}
		p.StartDate = t
	case FieldEndDate:
		t, err := time.Parse(dateLayout, value)
		if err != nil {
			return fmt.Errorf("invalid end date %q: %w", value, err)
		}
		p.EndDate = t
	case FieldTotalBudget:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid budget %q: %w", value, err)
		}
		p.TotalBudget = n
	case FieldProjectManager:
		p.ProjectManagerID = value
	case FieldSponsor:
		p.SponsorID = value
	default:
		return fmt.Errorf("unknown project field %q", name)
	}
	return nil
}

// ValidateMandatory runs the full mandatory-field set required before the
// plan can be validated as a baseline. All failures are collected so the
// caller can report them per field.
func (p *Project) ValidateMandatory() error {
	verr := &ValidationError{}

	if p.Title == "" {
		verr.Add(FieldTitle, "title is required")
	} else if utf8.RuneCountInString(p.Title) > 250 {
		verr.Add(FieldTitle, "title must be at most 250 characters")
	}

	if p.ShortTitle == "" {
		verr.Add(FieldShortTitle, "short title is required")
	} else if !shortTitlePattern.MatchString(p.ShortTitle) {
		verr.Add(FieldShortTitle, "short title must be at most 30 letters, digits or hyphens")
	}

	if p.Code == "" {
		verr.Add(FieldCode, "code is required")
	} else if !codePattern.MatchString(p.Code) {
		verr.Add(FieldCode, "code must be at most 15 uppercase letters, digits or hyphens")
	}

	if p.StartDate.IsZero() {
		verr.Add(FieldStartDate, "start date is required")
	}
	if p.EndDate.IsZero() {
		verr.Add(FieldEndDate, "end date is required")
	}
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() && p.EndDate.Sub(p.StartDate) < minPlanSpan {
		verr.Add(FieldEndDate, "end date must be at least 7 days after start date")
	}

	if p.TotalBudget <= 0 {
		verr.Add(FieldTotalBudget, "total budget must be positive")
	}

	if p.ProjectManagerID == "" {
		verr.Add(FieldProjectManager, "project manager is required")
	}
	if p.SponsorID == "" {
		verr.Add(FieldSponsor, "sponsor is required")
	}

	return verr.OrNil()
}

// DisplayID returns the best short identifier for display: the code when
// set, otherwise the uuid truncated to 8 characters.
func (p *Project) DisplayID() string {
	if p.Code != "" {
		return p.Code
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}
