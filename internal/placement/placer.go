// Package placement moves downloaded or staged assets into their final
// library location. It is the only code path allowed to rename an asset
// into the destination tree. Name collisions are resolved by content hash:
// identical bytes are discarded as duplicates, differing bytes get a
// numeric suffix on the filename stem until a free or matching slot is
// found.
package placement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"artfiler/internal/fileutil"
	"artfiler/internal/logging"
	"artfiler/internal/services"
)

// Request describes one asset to place. It is consumed exactly once.
type Request struct {
	SourcePath string
	TargetDir  string
	Filename   string
	Tags       []string
}

// Outcome reports how a placement concluded.
type Outcome int

const (
	// OutcomeMoved means the asset now lives at FinalPath.
	OutcomeMoved Outcome = iota
	// OutcomeDuplicate means identical bytes already existed at FinalPath
	// and the source was discarded. This is a deliberate dedup policy, not
	// an error.
	OutcomeDuplicate
)

func (o Outcome) String() string {
	if o == OutcomeDuplicate {
		return "duplicate"
	}
	return "moved"
}

// Result is the final location and outcome of a placement.
type Result struct {
	FinalPath string
	Outcome   Outcome
	// SHA256 is the content digest, populated whenever a hash was computed
	// during collision handling. Empty for uncontested placements.
	SHA256 string
}

// MetadataWriter is the post-placement metadata collaborator.
type MetadataWriter interface {
	Scrub(ctx context.Context, path string) error
	WriteSubject(ctx context.Context, path string, tags []string) error
}

// Option configures a Placer.
type Option func(*Placer)

// WithMetadata enables the post-placement exiftool steps.
func WithMetadata(writer MetadataWriter, scrub, writeTags bool) Option {
	return func(p *Placer) {
		p.meta = writer
		p.scrub = scrub
		p.writeTags = writeTags
	}
}

// Placer implements the safe placement algorithm.
type Placer struct {
	meta      MetadataWriter
	scrub     bool
	writeTags bool
	logger    *slog.Logger
}

// New constructs a Placer. Without WithMetadata the exiftool steps are
// skipped entirely.
func New(logger *slog.Logger, opts ...Option) *Placer {
	p := &Placer{logger: logging.NewComponentLogger(logger, "placement")}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

const maxSuffixAttempts = 10000

// Place moves req.SourcePath into req.TargetDir under req.Filename,
// deduplicating by content hash. On a Moved outcome the metadata steps run
// if configured; their failure is fatal to the run (the file is placed, but
// corrupting metadata silently would be worse). A Duplicate outcome skips
// the metadata steps: the surviving file was deliberately left untouched.
func (p *Placer) Place(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.SourcePath) == "" || strings.TrimSpace(req.TargetDir) == "" || strings.TrimSpace(req.Filename) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "placement", "validate request", "source, target directory, and filename are required", nil)
	}
	if err := os.MkdirAll(req.TargetDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "placement", "ensure target directory", req.TargetDir, err)
	}

	ext := filepath.Ext(req.Filename)
	stem := strings.TrimSuffix(req.Filename, ext)

	var sourceHash string
	for attempt := 0; attempt <= maxSuffixAttempts; attempt++ {
		name := req.Filename
		if attempt > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, attempt, ext)
		}
		target := filepath.Join(req.TargetDir, name)

		_, err := os.Stat(target)
		if errors.Is(err, os.ErrNotExist) {
			if err := moveFile(req.SourcePath, target); err != nil {
				return Result{}, services.Wrap(services.ErrTransient, "placement", "move into library", target, err)
			}
			p.logger.Info("placed",
				logging.String("from", req.SourcePath),
				logging.String("to", target),
			)
			result := Result{FinalPath: target, Outcome: OutcomeMoved, SHA256: sourceHash}
			if err := p.applyMetadata(ctx, target, req.Tags); err != nil {
				return result, err
			}
			return result, nil
		}
		if err != nil {
			return Result{}, services.Wrap(services.ErrTransient, "placement", "stat target", target, err)
		}

		p.logger.Warn("target already exists", logging.String("target", target))

		if sourceHash == "" {
			sourceHash, err = fileutil.HashFile(req.SourcePath)
			if err != nil {
				return Result{}, services.Wrap(services.ErrTransient, "placement", "hash source", req.SourcePath, err)
			}
		}
		targetHash, err := fileutil.HashFile(target)
		if err != nil {
			return Result{}, services.Wrap(services.ErrTransient, "placement", "hash target", target, err)
		}
		if targetHash == sourceHash {
			p.logger.Warn("hashes match, not moving", logging.String("target", target))
			if err := os.Remove(req.SourcePath); err != nil {
				return Result{}, services.Wrap(services.ErrTransient, "placement", "discard duplicate source", req.SourcePath, err)
			}
			return Result{FinalPath: target, Outcome: OutcomeDuplicate, SHA256: sourceHash}, nil
		}
		p.logger.Warn("hashes differ, adding suffix", logging.String("target", target))
	}

	return Result{}, services.Wrap(services.ErrTransient, "placement", "allocate filename",
		fmt.Sprintf("exhausted suffix slots for %s in %s", req.Filename, req.TargetDir), nil)
}

func (p *Placer) applyMetadata(ctx context.Context, path string, tags []string) error {
	if p.meta == nil {
		return nil
	}
	if p.scrub {
		if err := p.meta.Scrub(ctx, path); err != nil {
			return err
		}
	}
	if p.writeTags && len(tags) > 0 {
		if err := p.meta.WriteSubject(ctx, path, tags); err != nil {
			return err
		}
	}
	return nil
}

// moveFile renames src to dst, falling back to a verified copy plus remove
// when the rename crosses filesystem boundaries.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if copyErr := fileutil.CopyFileVerified(src, dst); copyErr != nil {
			return copyErr
		}
		return os.Remove(src)
	}
	return err
}
