package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"artfiler/internal/config"
	"artfiler/internal/history"
	"artfiler/internal/logging"
	"artfiler/internal/mapping"
	"artfiler/internal/prompt"
)

// runtime bundles the collaborators both pipelines share for one command
// invocation.
type runtime struct {
	logger   *slog.Logger
	authors  *mapping.Store
	prompter prompt.Prompter
	ledger   *history.Store
}

func newRuntime(cfg *config.Config) (*runtime, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	authors, err := mapping.Open(cfg.Paths.MappingFile, logger)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		logger:   logger,
		authors:  authors,
		prompter: prompt.NewTerminal(cfg.Behavior.Interactive),
	}

	// The ledger is convenience, not correctness; a broken database must
	// never block a run.
	if strings.TrimSpace(cfg.Paths.HistoryDB) != "" {
		ledger, err := history.Open(cfg.Paths.HistoryDB)
		if err != nil {
			logger.Warn("history ledger unavailable", logging.Error(err))
		} else {
			rt.ledger = ledger
		}
	}

	return rt, nil
}

func (r *runtime) Close() {
	if r.ledger != nil {
		_ = r.ledger.Close()
	}
	_ = r.authors.Close()
}

// toolOutput picks where external tool chatter goes.
func toolOutput(cfg *config.Config) io.Writer {
	if cfg.Behavior.SuppressToolOutput {
		return io.Discard
	}
	return os.Stderr
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
