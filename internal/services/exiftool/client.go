// Package exiftool wraps the metadata tool used after placement: one call
// clears a fixed list of editing-history fields, another writes the tag
// list into the subject field. Both operate in place. A failure here is
// surfaced distinctly from transfer failures: the file is already placed
// correctly, only its metadata is stale.
package exiftool

import (
	"context"
	"errors"
	"io"
	"strings"

	"artfiler/internal/services"
)

// scrubArgs clears the editing-history fields left behind by image editors.
var scrubArgs = []string{
	"-overwrite_original",
	"-XMP-xmpMM:History=",
	"-XMP-xmpMM:DocumentAncestors=",
	"-XMP-xmpMM:DerivedFrom=",
	"-XMP-xmpMM:InstanceID=",
	"-CreatorTool=",
	"-Software=",
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

// Client wraps exiftool CLI interactions.
type Client struct {
	binary string
	exec   services.Executor
}

// New constructs a metadata tool client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("metadata binary required")
	}
	client := &Client{binary: binary, exec: services.NewExecutor()}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Scrub removes the editing-history metadata fields from the file in place.
func (c *Client) Scrub(ctx context.Context, path string) error {
	args := append(append([]string{}, scrubArgs...), path)
	if err := c.exec.Run(ctx, c.binary, args, io.Discard, io.Discard); err != nil {
		return services.Wrap(services.ErrMetadataTool, "metadata", "scrub", "clear editing history", err)
	}
	return nil
}

// WriteSubject sets the subject/keyword field to the joined tag list. A nil
// or empty tag list is a no-op.
func (c *Client) WriteSubject(ctx context.Context, path string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	args := []string{
		"-overwrite_original",
		"-XMP-dc:Subject=" + strings.Join(tags, ", "),
		path,
	}
	if err := c.exec.Run(ctx, c.binary, args, io.Discard, io.Discard); err != nil {
		return services.Wrap(services.ErrMetadataTool, "metadata", "tag", "write subject tags", err)
	}
	return nil
}
