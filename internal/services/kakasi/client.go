// Package kakasi wraps the external transliteration collaborator. Given a
// non-ASCII author name it returns JSON segments, each carrying a romanized
// (hepburn) form; the concatenation of those forms is the recommended
// ASCII name used in folder names.
package kakasi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/text/width"

	"artfiler/internal/services"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps the transliteration CLI.
type Client struct {
	binary string
	exec   services.Executor
}

// New constructs a transliteration client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("transliteration binary required")
	}
	client := &Client{binary: binary, exec: services.NewExecutor()}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type segment struct {
	Hepburn string `json:"hepburn"`
}

// Romanize converts text to its romanized form. Fullwidth characters are
// width-folded first so names mixing fullwidth Latin with kana normalize
// cleanly.
func (c *Client) Romanize(ctx context.Context, text string) (string, error) {
	folded := width.Fold.String(text)

	var out bytes.Buffer
	if err := c.exec.Run(ctx, c.binary, []string{"--json", folded}, &out, nil); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "transliteration", "romanize", "transliteration call failed", err)
	}

	var segments []segment
	if err := json.Unmarshal(out.Bytes(), &segments); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "transliteration", "romanize", "parse transliteration output", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Hepburn)
	}
	romanized := strings.TrimSpace(b.String())
	if romanized == "" {
		return "", services.Wrap(services.ErrNotFound, "transliteration", "romanize", "empty romanization result", nil)
	}
	return romanized, nil
}
