// Package transfer wraps the external download tool (wget-shaped: the
// asset URL is fetched to an explicit output path, non-zero exit is a hard
// failure for that file).
package transfer

import (
	"context"
	"errors"
	"io"
	"strings"

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

// WithToolOutput directs the tool's progress chatter to w instead of
// discarding it.
func WithToolOutput(w io.Writer) Option {
	return func(c *Client) {
		if w != nil {
			c.toolOutput = w
		}
	}
}

// Client wraps transfer tool CLI interactions.
type Client struct {
	binary     string
	exec       services.Executor
	toolOutput io.Writer
}

// New constructs a transfer client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("transfer binary required")
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

// Fetch downloads url to outPath. The caller owns outPath's directory; on
// failure any partial file is discarded together with its staging
// directory.
func (c *Client) Fetch(ctx context.Context, url, outPath string) error {
	args := []string{"-O", outPath, url}
	if err := c.exec.Run(ctx, c.binary, args, c.toolOutput, c.toolOutput); err != nil {
		return services.Wrap(services.ErrExternalTool, "transfer", "fetch", "download failed", err)
	}
	return nil
}
