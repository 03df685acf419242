package placement

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// NewStagingDir creates a unique temporary directory for one file transfer.
// The returned cleanup removes the directory with whatever it still
// contains; callers defer it so a failed transfer never leaves a partial
// file behind. An empty root falls back to the system temp directory.
func NewStagingDir(root string) (string, func(), error) {
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, "artfiler-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create staging directory: %w", err)
	}
	cleanup := func() {
		_ = os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}
