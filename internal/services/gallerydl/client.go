// Package gallerydl wraps the external gallery resolver. Two modes exist:
// metadata (-j) returns a JSON blob searched recursively for the author and
// tag list, and resolve (-g) returns candidate asset URLs one per line,
// where a leading "|" marks a lower-quality duplicate to skip.
package gallerydl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"artfiler/internal/services"
)

// Metadata is the author identity extracted from a resolver metadata blob.
type Metadata struct {
	Author string
	Tags   []string
}

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

// WithToolOutput directs the resolver's stderr chatter to w instead of
// discarding it.
func WithToolOutput(w io.Writer) Option {
	return func(c *Client) {
		if w != nil {
			c.toolOutput = w
		}
	}
}

// Client wraps gallery-dl CLI interactions.
type Client struct {
	binary     string
	exec       services.Executor
	toolOutput io.Writer
}

// New constructs a resolver client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("resolver binary required")
	}
	client := &Client{
		binary:     binary,
		exec:       services.NewExecutor(),
		toolOutput: io.Discard,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Probe checks that the resolver is callable at all. Callers log a probe
// failure and continue degraded; the per-link calls will fail on their own.
func (c *Client) Probe(ctx context.Context) error {
	if err := c.exec.Run(ctx, c.binary, []string{"--version"}, c.toolOutput, c.toolOutput); err != nil {
		return services.Wrap(services.ErrExternalTool, "resolver", "probe", "resolver unavailable", err)
	}
	return nil
}

// Metadata runs the resolver in metadata mode and extracts the first
// username and tag list found anywhere in the blob. A blob without a
// username yields ErrNotFound; that link is skipped, not the run.
func (c *Client) Metadata(ctx context.Context, link string) (Metadata, error) {
	var out bytes.Buffer
	if err := c.exec.Run(ctx, c.binary, []string{link, "-j"}, &out, c.toolOutput); err != nil {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "resolver", "metadata", "resolver metadata call failed", err)
	}

	meta, err := extractMetadata(out.Bytes())
	if err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// Resolve runs the resolver in URL mode and returns the candidate asset
// URLs with lower-quality duplicates filtered out.
func (c *Client) Resolve(ctx context.Context, link string) ([]string, error) {
	var out bytes.Buffer
	if err := c.exec.Run(ctx, c.binary, []string{link, "-g"}, &out, c.toolOutput); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "resolver", "resolve", "resolver URL listing failed", err)
	}

	var candidates []string
	for _, line := range strings.Split(out.String(), "\n") {
		candidate := strings.TrimSpace(line)
		if candidate == "" || strings.HasPrefix(candidate, "|") {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}
