// Package prompt abstracts the interactive questions the pipelines ask: a
// multi-select over resolved asset URLs and a free-text confirm/override for
// author names. Production code talks to a terminal; tests inject scripted
// answers.
package prompt

import "errors"

// ErrNonInteractive is returned when a prompt would be required but stdin is
// not a terminal and interactive mode was not forced. Callers treat it as a
// per-item skip, not a failure.
var ErrNonInteractive = errors.New("interactive prompt unavailable")

// Prompter asks the user questions during a run.
type Prompter interface {
	// MultiSelect presents choices and returns the selected subset in
	// choice order. An empty selection is valid.
	MultiSelect(message string, choices []string) ([]string, error)
	// Input asks for a free-text value, showing recommended as the default.
	// An empty reply accepts the recommendation verbatim.
	Input(message, recommended string) (string, error)
}
