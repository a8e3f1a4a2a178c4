package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// promptText asks for a single line of text when the value was not supplied
// as a flag and the session is interactive. Returns the value as-is
// otherwise.
func promptText(app *App, title, value string) (string, error) {
	if value != "" || app.IsInteractive == nil || !app.IsInteractive() {
		return value, nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&value).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("a value is required")
					}
					return nil
				}),
		),
	).WithShowHelp(false)

	if err := form.Run(); err != nil {
		return "", err
	}
	return value, nil
}
