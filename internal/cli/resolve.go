package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/baseline/internal/domain"
)

// resolveProjectID accepts a project code, a full uuid or a uuid prefix.
func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("project is required")
	}

	projects, err := app.Projects.List(ctx)
	if err != nil {
		return "", err
	}

	// 1. Exact code match (case-insensitive)
	for _, p := range projects {
		if strings.EqualFold(p.Code, input) {
			return p.ID, nil
		}
	}

	// 2. Exact UUID match
	for _, p := range projects {
		if p.ID == input {
			return p.ID, nil
		}
	}

	// 3. UUID prefix match
	var matches []string
	for _, p := range projects {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveVersion accepts a version number ("1.1") or a version id prefix
// within the given project.
func resolveVersion(ctx context.Context, app *App, project, input string) (*domain.BaselineVersion, error) {
	projectID, err := resolveProjectID(ctx, app, project)
	if err != nil {
		return nil, err
	}
	versions, err := app.Versions.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for _, v := range versions {
		if v.VersionNumber.String() == input {
			return v, nil
		}
	}

	var matches []*domain.BaselineVersion
	for _, v := range versions {
		if strings.HasPrefix(v.ID, input) {
			matches = append(matches, v)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("version not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("version %q is ambiguous (%d matches)", input, len(matches))
	}
}
