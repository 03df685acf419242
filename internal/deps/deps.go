// Package deps probes the external binaries the tool shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"artfiler/internal/config"
)

// Requirement defines an external binary the tool relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external tools the configured pipelines use.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "gallery-dl",
			Command:     cfg.Tools.GalleryDL,
			Description: "Resolves gallery pages to asset URLs",
		},
		{
			Name:        "wget",
			Command:     cfg.Tools.Wget,
			Description: "Downloads resolved asset URLs",
		},
		{
			Name:        "exiftool",
			Command:     cfg.Tools.Exiftool,
			Description: "Scrubs and writes image metadata",
			Optional:    !cfg.Behavior.ScrubMetadata && !cfg.Behavior.WriteTags,
		},
		{
			Name:        "kakasi",
			Command:     cfg.Tools.Kakasi,
			Description: "Romanizes non-ASCII author names",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional requirements.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
