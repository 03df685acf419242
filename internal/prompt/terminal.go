package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

// Terminal prompts on stdin/stdout. Unless interactive mode is forced it
// refuses to prompt when stdin is not a TTY, so batch runs never hang
// waiting for input.
type Terminal struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	isTerminal  func() bool
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithStreams overrides the input and output streams (used in tests).
func WithStreams(in io.Reader, out io.Writer) TerminalOption {
	return func(t *Terminal) {
		t.in = bufio.NewReader(in)
		t.out = out
		t.isTerminal = func() bool { return true }
	}
}

// NewTerminal builds a terminal prompter. When interactive is true, prompts
// are issued even if stdin does not look like a TTY.
func NewTerminal(interactive bool, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		interactive: interactive,
		isTerminal: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Terminal) available() bool {
	return t.interactive || t.isTerminal()
}

// MultiSelect lists the choices numbered and reads a comma or space
// separated list of indices. "all" selects everything, an empty reply
// selects nothing.
func (t *Terminal) MultiSelect(message string, choices []string) ([]string, error) {
	if !t.available() {
		return nil, ErrNonInteractive
	}
	fmt.Fprintln(t.out, message)
	for i, choice := range choices {
		fmt.Fprintf(t.out, "  [%d] %s\n", i+1, choice)
	}
	fmt.Fprint(t.out, "Select (e.g. 1,3 or all, empty for none): ")

	reply, err := t.in.ReadString('\n')
	if err != nil && reply == "" {
		return nil, fmt.Errorf("read selection: %w", err)
	}
	indices, err := parseSelection(reply, len(choices))
	if err != nil {
		return nil, err
	}
	selected := make([]string, 0, len(indices))
	for _, idx := range indices {
		selected = append(selected, choices[idx])
	}
	return selected, nil
}

// Input shows the recommended value in brackets and reads one line. An empty
// reply accepts the recommendation.
func (t *Terminal) Input(message, recommended string) (string, error) {
	if !t.available() {
		return "", ErrNonInteractive
	}
	fmt.Fprintf(t.out, "%s [%s]: ", message, recommended)

	reply, err := t.in.ReadString('\n')
	if err != nil && reply == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return recommended, nil
	}
	return reply, nil
}

// parseSelection turns a reply like "1,3 4" into zero-based indices,
// deduplicated and ordered. "all" selects every choice.
func parseSelection(reply string, count int) ([]int, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, nil
	}
	if strings.EqualFold(reply, "all") {
		indices := make([]int, count)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	seen := make(map[int]struct{}, len(fields))
	indices := make([]int, 0, len(fields))
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", field)
		}
		if n < 1 || n > count {
			return nil, fmt.Errorf("selection %d out of range 1..%d", n, count)
		}
		if _, ok := seen[n-1]; ok {
			continue
		}
		seen[n-1] = struct{}{}
		indices = append(indices, n-1)
	}
	return indices, nil
}
