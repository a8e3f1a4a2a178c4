package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/baseline/internal/contract"
	"github.com/alexanderramin/baseline/internal/domain"
)

const dateLayout = "2006-01-02"

// Money renders a whole-unit amount with thousands separators.
func Money(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

// FormatProjectList renders a project overview table.
func FormatProjectList(projects []*domain.Project) string {
	rows := make([][]string, len(projects))
	for i, p := range projects {
		version := p.CurrentVersion.String()
		if p.CurrentVersion == 0 {
			version = Dim("—")
		}
		rows[i] = []string{
			Bold(p.DisplayID()),
			p.Title,
			BaselineIndicator(p.BaselineStatus),
			version,
			Money(p.TotalBudget),
		}
	}
	return RenderTable([]string{"CODE", "TITLE", "BASELINE", "VERSION", "BUDGET"}, rows)
}

// FormatProject renders the single-project inspect view.
func FormatProject(p *domain.Project) string {
	var b strings.Builder
	b.WriteString(Header(p.Title) + "\n")
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("Code:"), p.Code))
	b.WriteString(fmt.Sprintf("%s  %s (%s)\n", Dim("Baseline:"), BaselineIndicator(p.BaselineStatus), p.CurrentVersion))
	if p.HasModifications {
		b.WriteString(StyleYellow.Render("  uncommitted modifications") + "\n")
	}
	b.WriteString(fmt.Sprintf("%s  %s → %s\n", Dim("Dates:"),
		p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout)))
	b.WriteString(fmt.Sprintf("%s  %s", Dim("Budget:"), Money(p.TotalBudget)))
	if p.InitialBudget > 0 && p.InitialBudget != p.TotalBudget {
		b.WriteString(Dim(fmt.Sprintf(" (validated at %s)", Money(p.InitialBudget))))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s / %s\n", Dim("PM/Sponsor:"), p.ProjectManagerID, p.SponsorID))
	return b.String()
}

// FormatRequestList renders change requests newest first.
func FormatRequestList(requests []*domain.ChangeRequest) string {
	rows := make([][]string, len(requests))
	for i, r := range requests {
		fields := make([]string, len(r.AffectedFields))
		for j, f := range r.AffectedFields {
			fields[j] = f.Field
		}
		rows[i] = []string{
			Bold(fmt.Sprintf("CR-%d", r.RequestNumber)),
			r.RequestDate.Format(dateLayout),
			string(r.ChangeType),
			strings.Join(fields, ","),
			RequestIndicator(r.Status),
			r.Requestor,
		}
	}
	return RenderTable([]string{"REQUEST", "DATE", "TYPE", "FIELDS", "STATUS", "REQUESTOR"}, rows)
}

// FormatRequest renders the single-request inspect view.
func FormatRequest(r *domain.ChangeRequest) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("CR-%d %s", r.RequestNumber, RequestIndicator(r.Status))) + "\n")
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("Requested:"), r.RequestDate.Format(dateLayout)))
	b.WriteString(fmt.Sprintf("%s  %s (%s)\n", Dim("Requestor:"), r.Requestor, r.ChangeType))
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("Description:"), r.Description))
	for _, f := range r.AffectedFields {
		b.WriteString(fmt.Sprintf("  %s: %s → %s\n", Bold(f.Field), f.OldValue, StyleBlue.Render(f.NewValue)))
	}
	if r.BudgetImpact != nil {
		b.WriteString(fmt.Sprintf("%s  %+d\n", Dim("Budget impact:"), *r.BudgetImpact))
	}
	if r.TimelineImpact != "" {
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim("Timeline impact:"), r.TimelineImpact))
	}
	if r.RiskLevel > 0 {
		b.WriteString(fmt.Sprintf("%s  %d/10\n", Dim("Risk:"), r.RiskLevel))
	}
	if r.IsResolved() {
		b.WriteString(fmt.Sprintf("%s  %s by %s: %s\n", Dim("Resolved:"),
			r.ResolvedAt.Format(dateLayout), r.Approver, r.Resolution))
	}
	return b.String()
}

// FormatVersionList renders baseline versions.
func FormatVersionList(versions []*domain.BaselineVersion) string {
	rows := make([][]string, len(versions))
	for i, v := range versions {
		rows[i] = []string{
			Bold(v.VersionNumber.String()),
			v.CreatedAt.Format(dateLayout),
			string(v.ChangeType),
			VersionIndicator(v.Status),
			v.CreatedBy,
			v.Justification,
		}
	}
	return RenderTable([]string{"VERSION", "DATE", "CHANGE", "STATUS", "BY", "JUSTIFICATION"}, rows)
}

// FormatVersionDiff renders the before/after pairs of a version.
func FormatVersionDiff(v *domain.BaselineVersion, items []domain.VersionItem) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("version %s (%s)", v.VersionNumber, v.ChangeType)) + "\n")
	if len(items) == 0 {
		b.WriteString(Dim("no recorded changes") + "\n")
		return b.String()
	}
	for _, item := range items {
		b.WriteString(fmt.Sprintf("  %s: %s → %s\n",
			Bold(item.Element), item.OldValue, StyleBlue.Render(item.NewValue)))
	}
	return b.String()
}

// FormatProtectionList renders per-field protection states.
func FormatProtectionList(states []*domain.FieldProtectionState) string {
	rows := make([][]string, len(states))
	for i, st := range states {
		mode := Dim("open")
		switch {
		case st.IsAuto:
			mode = StyleRed.Render("auto")
		case st.IsBaseline:
			mode = StyleYellow.Render("baseline")
		}
		pending := ""
		if st.IsPending {
			pending = StyleYellow.Render("pending → " + st.PendingValue)
		}
		rows[i] = []string{st.FieldName, mode, pending}
	}
	return RenderTable([]string{"FIELD", "PROTECTION", "PENDING"}, rows)
}

// FormatBudgetCheck renders the reconciliation report for both allocation
// sets against the total budget.
func FormatBudgetCheck(c *contract.BudgetCheck) string {
	var b strings.Builder
	b.WriteString(Header("Budget reconciliation"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total budget: %s\n\n", Bold(Money(c.Target)))

	writeLine := func(name string, count int, sum int64, ok bool) {
		if count == 0 {
			fmt.Fprintf(&b, "%-10s %s\n", name, Dim("no rows"))
			return
		}
		verdict := StyleGreen.Render("reconciled")
		if !ok {
			verdict = StyleRed.Render(fmt.Sprintf("off by %s", Money(sum-c.Target)))
		}
		fmt.Fprintf(&b, "%-10s %s across %d rows  %s\n", name, Money(sum), count, verdict)
	}
	writeLine("Envelopes", c.EnvelopeCount, c.EnvelopeSum, c.EnvelopesOK)
	writeLine("Monthly", c.MonthCount, c.MonthlySum, c.MonthlyOK)

	for _, w := range c.Warnings {
		fmt.Fprintf(&b, "%s %s\n", StyleYellow.Render("warning:"), w.Message)
	}
	return b.String()
}

// FormatRefList renders reference-data entries.
func FormatRefList(refs []*domain.MasterDataRef) string {
	rows := make([][]string, len(refs))
	for i, ref := range refs {
		rows[i] = []string{ref.ID, ref.Code, ref.Label}
	}
	return RenderTable([]string{"ID", "CODE", "LABEL"}, rows)
}

// FormatLogEntries renders modification log entries newest first.
func FormatLogEntries(entries []*domain.ModificationLogEntry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		change := ""
		if e.OldValue != "" || e.NewValue != "" {
			change = fmt.Sprintf("%s → %s", e.OldValue, e.NewValue)
		}
		impact := ""
		if e.HasBaselineImpact {
			impact = StyleYellow.Render("!")
		}
		rows[i] = []string{
			Dim(e.Timestamp.Format("2006-01-02 15:04")),
			string(e.ActionType),
			e.ModifiedElement,
			change,
			e.ChangedBy,
			impact,
		}
	}
	return RenderTable([]string{"WHEN", "ACTION", "ELEMENT", "CHANGE", "BY", ""}, rows)
}

// FormatSaveOutcome renders a save result with its warnings.
func FormatSaveOutcome(out contract.SaveOutcome) string {
	var b strings.Builder
	switch out.Kind {
	case contract.OutcomeApplied:
		b.WriteString(StyleGreen.Render("saved"))
	case contract.OutcomeBlocked:
		b.WriteString(StyleRed.Render("blocked: ") + out.Reason.Error())
	case contract.OutcomeNeedsJustification:
		b.WriteString(StyleYellow.Render("justification required"))
	}
	for _, w := range out.Warnings {
		b.WriteString("\n" + StyleYellow.Render("warning: ") + w.Message)
	}
	return b.String()
}
