// Package selection decides which resolved asset URLs to download for one
// artwork page. A single candidate is taken as-is, candidates matching
// links the user already supplied directly short-circuit the prompt, and
// anything still ambiguous goes to an interactive multi-select.
package selection

import (
	"fmt"
	"log/slog"

	"artfiler/internal/links"
	"artfiler/internal/logging"
	"artfiler/internal/prompt"
)

// Select returns the subset of candidates to download for pageLink.
// knownDirect holds the stripped direct-asset links from the original input
// list; a candidate matching one of them is preferred without prompting.
// The returned list may be empty, which callers log as a no-op.
func Select(pageLink string, candidates []string, knownDirect []string, prompter prompt.Prompter, logger *slog.Logger) ([]string, error) {
	logger = logging.NewComponentLogger(logger, "selection")

	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return candidates[:1], nil
	}

	if matched := matchKnown(candidates, knownDirect); len(matched) > 0 {
		logger.Info("candidates matched supplied direct links, skipping prompt",
			logging.String(logging.FieldLink, pageLink),
			logging.Int("matched", len(matched)),
		)
		return matched, nil
	}

	message := fmt.Sprintf("Multiple images found at %s. Select images to download", pageLink)
	selected, err := prompter.MultiSelect(message, candidates)
	if err != nil {
		return nil, err
	}
	logger.Info("selection made",
		logging.String(logging.FieldLink, pageLink),
		logging.Int("selected", len(selected)),
		logging.Int("candidates", len(candidates)),
	)
	return selected, nil
}

// matchKnown returns the candidates whose stripped form appears in known,
// preserving candidate order.
func matchKnown(candidates []string, known []string) []string {
	if len(known) == 0 {
		return nil
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, link := range known {
		knownSet[links.Strip(link)] = struct{}{}
	}
	var matched []string
	for _, candidate := range candidates {
		if _, ok := knownSet[links.Strip(candidate)]; ok {
			matched = append(matched, candidate)
		}
	}
	return matched
}
