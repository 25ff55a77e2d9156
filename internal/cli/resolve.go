package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/repository"
)

// resolveProjectID accepts a full ID, a unique ID prefix or an exact
// (case-insensitive) project name.
func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("project ID is required")
	}

	projects, err := app.Projects.List(ctx, "", true)
	if err != nil {
		return "", err
	}

	var byPrefix, byName []string
	for _, p := range projects {
		if p.ID == input {
			return p.ID, nil
		}
		if strings.HasPrefix(p.ID, input) {
			byPrefix = append(byPrefix, p.ID)
		}
		if strings.EqualFold(p.Name, input) {
			byName = append(byName, p.ID)
		}
	}
	return pickOne("project", input, byPrefix, byName)
}

// resolveTaskID accepts a full task ID or a unique ID prefix.
func resolveTaskID(ctx context.Context, app *App, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("task ID is required")
	}

	t, err := app.Tasks.GetByID(ctx, input)
	if err == nil {
		return t.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	projects, err := app.Projects.List(ctx, "", true)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, p := range projects {
		tasks, err := app.Tasks.ListByProject(ctx, p.ID)
		if err != nil {
			return "", err
		}
		for _, t := range tasks {
			if strings.HasPrefix(t.ID, input) {
				matches = append(matches, t.ID)
			}
		}
	}
	return pickOne("task", input, matches, nil)
}

func pickOne(kind, input string, primary, fallback []string) (string, error) {
	for _, ids := range [][]string{primary, fallback} {
		switch len(ids) {
		case 0:
			continue
		case 1:
			return ids[0], nil
		default:
			return "", fmt.Errorf("%s %q is ambiguous (%d matches)", kind, input, len(ids))
		}
	}
	return "", fmt.Errorf("%s not found: %q: %w", kind, input, repository.ErrNotFound)
}

// parseDateFlag parses a YYYY-MM-DD flag value; empty yields the zero time.
func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: use YYYY-MM-DD", name, value)
	}
	return d, nil
}
