package domain

import "time"

// TeamMember is one assignment of an employee to the project team.
// Employee ids are unique within the team; the team never drops below one
// member.
type TeamMember struct {
	ID         string
	ProjectID  string
	EmployeeID string
	Role       string
	AddedAt    time.Time
}

// DuplicateEmployee returns the first employee id appearing more than once,
// or "" when the set is unique.
func DuplicateEmployee(members []*TeamMember) string {
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m.EmployeeID] {
			return m.EmployeeID
		}
		seen[m.EmployeeID] = true
	}
	return ""
}

// SymmetricDifferencePercent measures team composition drift between the
// validated baseline set and the current set, as the symmetric set
// difference over the baseline size in percent. A baseline of zero members
// yields 0.
func SymmetricDifferencePercent(baseline, current []string) float64 {
	if len(baseline) == 0 {
		return 0
	}
	base := make(map[string]bool, len(baseline))
	for _, id := range baseline {
		base[id] = true
	}
	cur := make(map[string]bool, len(current))
	for _, id := range current {
		cur[id] = true
	}
	diff := 0
	for id := range base {
		if !cur[id] {
			diff++
		}
	}
	for id := range cur {
		if !base[id] {
			diff++
		}
	}
	return float64(diff) / float64(len(base)) * 100
}

// MasterDataRef is the read-only keyed tuple supplied by master-data
// lookups. The engine compares only ids and never interprets labels.
type MasterDataRef struct {
	ID    string
	Code  string
	Label string
}
