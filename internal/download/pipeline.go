// Package download orchestrates the link-list pipeline: classify links,
// resolve artwork pages, pick assets, fetch them into a staging directory,
// and place them into per-author folders. The links file is rewritten at
// the end of a run to hold only what still needs attention.
package download

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"

	"artfiler/internal/config"
	"artfiler/internal/history"
	"artfiler/internal/links"
	"artfiler/internal/logging"
	"artfiler/internal/mapping"
	"artfiler/internal/placement"
	"artfiler/internal/prompt"
	"artfiler/internal/selection"
	"artfiler/internal/services"
	"artfiler/internal/services/gallerydl"
	"artfiler/internal/textutil"
)

// Resolver turns artwork page links into author metadata and asset URLs.
type Resolver interface {
	Probe(ctx context.Context) error
	Metadata(ctx context.Context, link string) (gallerydl.Metadata, error)
	Resolve(ctx context.Context, link string) ([]string, error)
}

// Fetcher downloads a single URL to a local path.
type Fetcher interface {
	Fetch(ctx context.Context, url, outPath string) error
}

// Placer moves a staged file into its final location.
type Placer interface {
	Place(ctx context.Context, req placement.Request) (placement.Result, error)
}

// Recorder appends placement entries to the history ledger.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

// Pipeline wires the download run together.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	resolver Resolver
	fetcher  Fetcher
	placer   Placer
	authors  *mapping.Store
	prompter prompt.Prompter
	ledger   Recorder
}

// Option adjusts optional pipeline collaborators.
type Option func(*Pipeline)

// WithLedger records every placement in the history ledger.
func WithLedger(ledger Recorder) Option {
	return func(p *Pipeline) {
		p.ledger = ledger
	}
}

// New constructs a download pipeline.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	resolver Resolver,
	fetcher Fetcher,
	placer Placer,
	authors *mapping.Store,
	prompter prompt.Prompter,
	opts ...Option,
) *Pipeline {
	pipeline := &Pipeline{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "download"),
		resolver: resolver,
		fetcher:  fetcher,
		placer:   placer,
		authors:  authors,
		prompter: prompter,
	}
	for _, opt := range opts {
		opt(pipeline)
	}
	return pipeline
}

// Summary reports what a run accomplished.
type Summary struct {
	Total      int
	Unknown    int
	Pages      int
	Downloaded int
	Duplicates int
	Skipped    int
	Failed     int
	Remaining  int
}

// Run processes the configured links file once. Per-link failures are
// logged and the link is carried over to the rewritten file; fatal errors
// (configuration, metadata tooling) abort the run with the links file left
// untouched so nothing is lost.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	if err := p.resolver.Probe(ctx); err != nil {
		p.logger.Warn("resolver probe failed, page links may not resolve",
			logging.Error(err))
	}

	set, err := links.Load(p.cfg.Paths.LinksFile)
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "download", "load links", "links file unreadable", err)
	}
	summary.Total = set.Total()
	summary.Unknown = len(set.Unknown)
	summary.Pages = len(set.Pages)

	if summary.Total == 0 {
		p.logger.Info("links file is empty, nothing to do")
		return summary, nil
	}
	if summary.Unknown > 0 {
		p.logger.Warn("unclassified links will be kept for the next run",
			logging.Int("count", summary.Unknown))
	}

	// Stripped direct links the selection engine may consume; whatever is
	// left unconsumed goes back into the links file.
	consumed := make(map[string]bool, len(set.Direct))

	remaining := append([]string(nil), set.Unknown...)

	for _, page := range set.Pages {
		outcome, err := p.processPage(ctx, page, set.Direct, consumed, &summary)
		if err != nil {
			return summary, err
		}
		if !outcome {
			remaining = append(remaining, page)
		}
	}

	for _, direct := range set.Direct {
		if !consumed[direct] {
			remaining = append(remaining, direct)
		}
	}

	if err := links.Rewrite(p.cfg.Paths.LinksFile, remaining); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "download", "rewrite links", "links file unwritable", err)
	}
	summary.Remaining = len(remaining)

	p.logger.Info("run complete",
		logging.Int("downloaded", summary.Downloaded),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("failed", summary.Failed),
		logging.Int("remaining", summary.Remaining),
	)
	return summary, nil
}

// processPage handles one artwork page link. It returns true when the link
// is finished (downloaded or deliberately skipped) and false when it should
// stay in the links file. Fatal errors are returned to abort the run.
func (p *Pipeline) processPage(ctx context.Context, page string, direct []string, consumed map[string]bool, summary *Summary) (bool, error) {
	logger := p.logger.With(logging.String(logging.FieldLink, page))

	meta, err := p.resolver.Metadata(ctx, page)
	if err != nil {
		logger.Error("metadata lookup failed, keeping link", logging.Error(err))
		summary.Failed++
		return false, nil
	}

	author, err := p.authors.ResolveOrPrompt(meta.Author, meta.Author, p.prompter)
	if err != nil {
		if errors.Is(err, prompt.ErrNonInteractive) {
			logger.Warn("author needs a mapping but prompting is unavailable, keeping link",
				logging.String(logging.FieldAuthor, meta.Author))
			summary.Failed++
			return false, nil
		}
		return false, err
	}

	candidates, err := p.resolver.Resolve(ctx, page)
	if err != nil {
		logger.Error("resolution failed, keeping link", logging.Error(err))
		summary.Failed++
		return false, nil
	}

	selected, err := selection.Select(page, candidates, direct, p.prompter, p.logger)
	if err != nil {
		if errors.Is(err, prompt.ErrNonInteractive) {
			logger.Warn("selection needs a prompt but prompting is unavailable, keeping link")
			summary.Failed++
			return false, nil
		}
		return false, err
	}
	if len(selected) == 0 {
		logger.Info("no assets selected, dropping link")
		summary.Skipped++
		return true, nil
	}

	targetDir := filepath.Join(
		p.cfg.Paths.DestinationDir,
		textutil.SanitizeFileName(author)+"_"+p.cfg.Behavior.DownloadPostfix,
	)

	failed := false
	for _, assetURL := range selected {
		if err := p.fetchAndPlace(ctx, logger, page, author, assetURL, targetDir, meta.Tags, summary); err != nil {
			if services.Fatal(err) {
				return false, err
			}
			logger.Error("asset failed, keeping link", logging.Error(err),
				logging.String("url", assetURL))
			failed = true
			continue
		}
		consumed[links.Strip(assetURL)] = true
	}
	if failed {
		summary.Failed++
		return false, nil
	}
	return true, nil
}

func (p *Pipeline) fetchAndPlace(ctx context.Context, logger *slog.Logger, page, author, assetURL, targetDir string, tags []string, summary *Summary) error {
	filename := assetFilename(assetURL)

	staging, cleanup, err := placement.NewStagingDir(p.cfg.Paths.StagingDir)
	if err != nil {
		return err
	}
	defer cleanup()

	stagedPath := filepath.Join(staging, filename)
	if err := p.fetcher.Fetch(ctx, assetURL, stagedPath); err != nil {
		return err
	}

	result, err := p.placer.Place(ctx, placement.Request{
		SourcePath: stagedPath,
		TargetDir:  targetDir,
		Filename:   filename,
		Tags:       tags,
	})
	if err != nil {
		return err
	}

	switch result.Outcome {
	case placement.OutcomeDuplicate:
		summary.Duplicates++
	default:
		summary.Downloaded++
	}
	p.record(ctx, history.Entry{
		Pipeline:   "download",
		Link:       page,
		Author:     author,
		SourcePath: stagedPath,
		FinalPath:  result.FinalPath,
		SHA256:     result.SHA256,
		Outcome:    result.Outcome.String(),
	})
	logger.Info("asset filed",
		logging.String(logging.FieldFilename, filepath.Base(result.FinalPath)),
		logging.String("outcome", result.Outcome.String()),
	)
	return nil
}

func (p *Pipeline) record(ctx context.Context, entry history.Entry) {
	if p.ledger == nil {
		return
	}
	if err := p.ledger.Record(ctx, entry); err != nil {
		p.logger.Warn("history record failed", logging.Error(err))
	}
}

// assetFilename derives the local filename from the URL path's last segment.
func assetFilename(assetURL string) string {
	if parsed, err := url.Parse(assetURL); err == nil && parsed.Path != "" {
		if name := path.Base(parsed.Path); name != "." && name != "/" {
			return name
		}
	}
	return path.Base(links.Strip(assetURL))
}
