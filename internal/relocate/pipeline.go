// Package relocate moves staged per-author folders into the destination
// library. Folder names of the form <name><separator><id> are parsed, the
// author display name is resolved through the mapping store (with a
// romanized recommendation for non-ASCII names), and every file is placed
// individually so an interrupted run never loses what already moved.
package relocate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"artfiler/internal/config"
	"artfiler/internal/history"
	"artfiler/internal/logging"
	"artfiler/internal/mapping"
	"artfiler/internal/placement"
	"artfiler/internal/prompt"
	"artfiler/internal/services"
	"artfiler/internal/textutil"
)

// Transliterator converts a non-ASCII name into a romanized form.
type Transliterator interface {
	Romanize(ctx context.Context, text string) (string, error)
}

// Placer moves a single file into its final location.
type Placer interface {
	Place(ctx context.Context, req placement.Request) (placement.Result, error)
}

// Recorder appends placement entries to the history ledger.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

// Pipeline wires the relocation run together.
type Pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	placer    Placer
	authors   *mapping.Store
	prompter  prompt.Prompter
	romanizer Transliterator
	ledger    Recorder
}

// Option adjusts optional pipeline collaborators.
type Option func(*Pipeline)

// WithLedger records every placement in the history ledger.
func WithLedger(ledger Recorder) Option {
	return func(p *Pipeline) {
		p.ledger = ledger
	}
}

// New constructs a relocation pipeline.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	placer Placer,
	authors *mapping.Store,
	prompter prompt.Prompter,
	romanizer Transliterator,
	opts ...Option,
) *Pipeline {
	pipeline := &Pipeline{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "relocate"),
		placer:    placer,
		authors:   authors,
		prompter:  prompter,
		romanizer: romanizer,
	}
	for _, opt := range opts {
		opt(pipeline)
	}
	return pipeline
}

// Summary reports what a run accomplished.
type Summary struct {
	Folders    int
	Moved      int
	Duplicates int
	Skipped    int
	Failed     int
}

// folderName is a parsed <name><separator><id> source folder.
type folderName struct {
	Name string
	ID   string
}

// parseFolderName splits raw on sep, taking the last segment as the id and
// rejoining the rest as the name. A single segment has no id and cannot be
// relocated.
func parseFolderName(raw, sep string) (folderName, bool) {
	segments := strings.Split(raw, sep)
	if len(segments) < 2 {
		return folderName{}, false
	}
	id := segments[len(segments)-1]
	name := strings.Join(segments[:len(segments)-1], sep)
	if id == "" || name == "" {
		return folderName{}, false
	}
	return folderName{Name: name, ID: id}, true
}

// Run relocates every parseable subfolder of the configured source
// directory. Per-folder failures are logged and skipped; fatal errors abort
// the run.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	entries, err := os.ReadDir(p.cfg.Paths.SourceDir)
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "relocate", "scan source", "source folder unreadable", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		summary.Folders++

		parsed, ok := parseFolderName(entry.Name(), p.cfg.Behavior.Separator)
		if !ok {
			p.logger.Warn("folder name not in <name><sep><id> form, skipping",
				logging.String("folder", entry.Name()))
			summary.Skipped++
			continue
		}

		if err := p.relocateFolder(ctx, entry.Name(), parsed, &summary); err != nil {
			if services.Fatal(err) || errors.Is(err, prompt.ErrNonInteractive) {
				return summary, err
			}
			p.logger.Error("folder failed, leaving remainder in place",
				logging.String("folder", entry.Name()), logging.Error(err))
			summary.Failed++
		}
	}

	p.logger.Info("run complete",
		logging.Int("folders", summary.Folders),
		logging.Int("moved", summary.Moved),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (p *Pipeline) relocateFolder(ctx context.Context, rawName string, parsed folderName, summary *Summary) error {
	sourceDir := filepath.Join(p.cfg.Paths.SourceDir, rawName)
	logger := p.logger.With(logging.String("folder", rawName))

	targetDir, err := p.resolveTargetDir(ctx, logger, parsed)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return fmt.Errorf("read source folder: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		result, err := p.placer.Place(ctx, placement.Request{
			SourcePath: filepath.Join(sourceDir, entry.Name()),
			TargetDir:  targetDir,
			Filename:   entry.Name(),
		})
		if err != nil {
			return err
		}
		switch result.Outcome {
		case placement.OutcomeDuplicate:
			summary.Duplicates++
		default:
			summary.Moved++
		}
		p.record(ctx, history.Entry{
			Pipeline:   "move",
			Author:     parsed.Name,
			SourcePath: filepath.Join(sourceDir, entry.Name()),
			FinalPath:  result.FinalPath,
			SHA256:     result.SHA256,
			Outcome:    result.Outcome.String(),
		})
	}

	// Remove the source folder only once it is fully drained of files.
	if remaining, err := os.ReadDir(sourceDir); err == nil && len(remaining) == 0 {
		if err := os.Remove(sourceDir); err != nil {
			logger.Warn("could not remove drained source folder", logging.Error(err))
		}
	}
	logger.Info("folder relocated", logging.String("target", targetDir))
	return nil
}

// resolveTargetDir picks the destination folder for a parsed source folder.
// An existing destination folder whose name contains id<id> is reused
// without prompting, continuing a previously started author folder.
func (p *Pipeline) resolveTargetDir(ctx context.Context, logger *slog.Logger, parsed folderName) (string, error) {
	marker := "id" + parsed.ID

	if entries, err := os.ReadDir(p.cfg.Paths.DestinationDir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() && strings.Contains(entry.Name(), marker) {
				logger.Info("reusing existing destination folder",
					logging.String("target", entry.Name()))
				return filepath.Join(p.cfg.Paths.DestinationDir, entry.Name()), nil
			}
		}
	}

	recommended := parsed.Name
	if !textutil.IsASCII(parsed.Name) {
		romanized, err := p.romanizer.Romanize(ctx, parsed.Name)
		if err != nil {
			logger.Warn("romanization failed, recommending the raw name",
				logging.String(logging.FieldAuthor, parsed.Name), logging.Error(err))
		} else {
			recommended = romanized
		}
	}

	author, err := p.authors.ResolveOrPrompt(parsed.Name, recommended, p.prompter)
	if err != nil {
		return "", err
	}

	folder := fmt.Sprintf("%s_%s_%s",
		textutil.SanitizeFileName(author), marker, p.cfg.Behavior.MovePostfix)
	return filepath.Join(p.cfg.Paths.DestinationDir, folder), nil
}

func (p *Pipeline) record(ctx context.Context, entry history.Entry) {
	if p.ledger == nil {
		return
	}
	if err := p.ledger.Record(ctx, entry); err != nil {
		p.logger.Warn("history record failed", logging.Error(err))
	}
}
