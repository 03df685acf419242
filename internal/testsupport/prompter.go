// Package testsupport provides shared fixtures: a scripted prompter, a fake
// process executor, and config/file helpers for package tests.
package testsupport

import "fmt"

// ScriptExhaustedError reports a prompt the script did not anticipate.
type ScriptExhaustedError struct {
	Kind string
}

func (e *ScriptExhaustedError) Error() string {
	return fmt.Sprintf("scripted prompter: no %s answer left", e.Kind)
}

// ScriptedPrompter returns pre-recorded answers in order, tracking call
// counts so tests can assert whether prompting happened at all.
type ScriptedPrompter struct {
	// Inputs are consumed by Input calls; an empty string means "accept the
	// recommendation" just like an empty terminal reply.
	Inputs []string
	// Selections are consumed by MultiSelect calls.
	Selections [][]string

	InputCalls  int
	SelectCalls int
}

func (p *ScriptedPrompter) Input(message, recommended string) (string, error) {
	p.InputCalls++
	if len(p.Inputs) == 0 {
		return "", &ScriptExhaustedError{Kind: "input"}
	}
	reply := p.Inputs[0]
	p.Inputs = p.Inputs[1:]
	if reply == "" {
		return recommended, nil
	}
	return reply, nil
}

func (p *ScriptedPrompter) MultiSelect(message string, choices []string) ([]string, error) {
	p.SelectCalls++
	if len(p.Selections) == 0 {
		return nil, &ScriptExhaustedError{Kind: "selection"}
	}
	selected := p.Selections[0]
	p.Selections = p.Selections[1:]
	return selected, nil
}
