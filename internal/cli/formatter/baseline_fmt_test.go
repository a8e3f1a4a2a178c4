package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{100_000_000, "100,000,000"},
		{-2500, "-2,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(tt.in))
	}
}

func TestFormatProjectListColumns(t *testing.T) {
	out := FormatProjectList([]*domain.Project{
		{
			Code:           "PRJ-001",
			Title:          "Data Platform",
			BaselineStatus: domain.BaselineValidated,
			CurrentVersion: 11,
			TotalBudget:    100_000_000,
		},
	})
	assert.Contains(t, out, "PRJ-001")
	assert.Contains(t, out, "Data Platform")
	assert.Contains(t, out, "1.1")
	assert.Contains(t, out, "100,000,000")
}

func TestFormatRequestShowsFieldDiffs(t *testing.T) {
	impact := int64(5_000_000)
	out := FormatRequest(&domain.ChangeRequest{
		RequestNumber: 3,
		RequestDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Requestor:     "alice",
		ChangeType:    domain.RequestMinor,
		Description:   "budget raise",
		Status:        domain.RequestPending,
		AffectedFields: []domain.AffectedField{
			{Field: "total_budget", OldValue: "100", NewValue: "105"},
		},
		BudgetImpact: &impact,
	})
	assert.Contains(t, out, "CR-3")
	assert.Contains(t, out, "total_budget")
	assert.Contains(t, out, "+5000000")
}

func TestFormatVersionDiffEmpty(t *testing.T) {
	out := FormatVersionDiff(&domain.BaselineVersion{VersionNumber: 10}, nil)
	assert.Contains(t, out, "no recorded changes")
}

func TestFormatProtectionListModes(t *testing.T) {
	out := FormatProtectionList([]*domain.FieldProtectionState{
		{FieldName: "title", IsAuto: true, IsBaseline: true},
		{FieldName: "sponsor", IsBaseline: true, IsPending: true, PendingValue: "emp-x"},
		{FieldName: "code"},
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 5) // header + separator + 3 rows
	assert.Contains(t, out, "auto")
	assert.Contains(t, out, "pending → emp-x")
	assert.Contains(t, out, "open")
}
