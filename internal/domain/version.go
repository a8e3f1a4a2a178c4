package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VersionNumber counts baseline versions in tenths (11 renders as "1.1").
// Storing tenths as an integer keeps increments exact.
type VersionNumber int

func (v VersionNumber) String() string {
	return fmt.Sprintf("%d.%d", int(v)/10, int(v)%10)
}

// ParseVersionNumber parses a "major.minor" string into tenths.
func ParseVersionNumber(s string) (VersionNumber, error) {
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		minor = "0"
	}
	maj, err := strconv.Atoi(major)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q", s)
	}
	min, err := strconv.Atoi(minor)
	if err != nil || min < 0 || min > 9 {
		return 0, fmt.Errorf("invalid version %q", s)
	}
	return VersionNumber(maj*10 + min), nil
}

// VersionItem is one before/after snapshot inside a baseline version.
// Real values are persisted so Compare can render true diffs.
type VersionItem struct {
	Element  string // dotted path, e.g. "project.total_budget"
	OldValue string
	NewValue string
}

// BaselineVersion is an immutable record of one minted baseline. Exactly one
// version per project is Active at a time.
type BaselineVersion struct {
	ID             string
	ProjectID      string
	VersionNumber  VersionNumber
	CreatedAt      time.Time
	CreatedBy      string
	ChangeType     VersionChangeType
	ModifiedItems  []VersionItem
	Justification  string
	Status         VersionStatus
	BusinessImpact int // 0-10
}
