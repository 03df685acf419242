package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks failures of a collaborator process (resolver,
	// transfer tool) where the run can usually continue with the next item.
	ErrExternalTool = errors.New("external tool error")
	// ErrMetadataTool marks exiftool failures after a file was already
	// placed. Kept distinct from ErrExternalTool so operators know the file
	// exists but may carry stale metadata.
	ErrMetadataTool = errors.New("metadata tool error")
	ErrValidation   = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound     = errors.New("not found")
	ErrTransient    = errors.New("transient failure")
)

// Wrap builds an error message that includes pipeline context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, pipeline, operation, message string, err error) error {
	detail := buildDetail(pipeline, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error must abort the whole run instead of being
// logged and skipped at the per-link or per-file scope. Store-level,
// configuration, and post-placement metadata failures are fatal.
func Fatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrMetadataTool)
}

func buildDetail(pipeline, operation, message string) string {
	parts := make([]string, 0, 3)
	if pipeline = strings.TrimSpace(pipeline); pipeline != "" {
		parts = append(parts, pipeline)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
