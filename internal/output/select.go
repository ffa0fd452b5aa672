package output

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// SelectOption is one choice of a Select prompt.
type SelectOption struct {
	Label string
	Value string
}

// Select asks the user to pick one of options. A single option is returned
// without prompting. Prompting fails in non-interactive mode (CI or piped output).
func (w *Writer) Select(title string, options []SelectOption) (string, error) {
	switch {
	case len(options) == 1:
		return options[0].Value, nil
	case !w.interactive:
		return "", fmt.Errorf("cannot prompt for %q in non-interactive mode", title)
	case len(options) == 0:
		return "", fmt.Errorf("no options to select for %q", title)
	}

	choices := make([]huh.Option[string], 0, len(options))
	for _, opt := range options {
		choices = append(choices, huh.NewOption(opt.Label, opt.Value))
	}

	var value string
	if err := huh.NewSelect[string]().Title(title).Options(choices...).Value(&value).Run(); err != nil {
		return "", fmt.Errorf("selection prompt failed: %w", err)
	}
	return value, nil
}
