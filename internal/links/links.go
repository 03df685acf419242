// Package links classifies raw gallery links and manages the links file
// that feeds the download pipeline.
package links

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Class is the category a stripped link falls into. Every non-empty link is
// classified into exactly one class.
type Class int

const (
	// ClassDirectAsset is a URL pointing straight at an image resource.
	ClassDirectAsset Class = iota
	// ClassIndirectPage is an artwork page URL that needs resolving.
	ClassIndirectPage
	// ClassUnknown matches neither pattern and is preserved for the next run.
	ClassUnknown
)

func (c Class) String() string {
	switch c {
	case ClassDirectAsset:
		return "direct"
	case ClassIndirectPage:
		return "page"
	default:
		return "unknown"
	}
}

// The CDN serves assets from per-shard hosts (cdna, cdnb, ...), hence the
// single wildcard character after "cdn".
var (
	directAssetPattern = regexp.MustCompile(`^https://cdn.\.artstation\.com/p/assets/images/images.*$`)
	artworkPagePattern = regexp.MustCompile(`^https://.*?artstation\.com/artwork/.+$`)
)

// Strip trims whitespace and drops the query string. Comparisons between
// links always happen on the stripped form.
func Strip(link string) string {
	link = strings.TrimSpace(link)
	if idx := strings.IndexByte(link, '?'); idx >= 0 {
		link = link[:idx]
	}
	return link
}

// Classify assigns a stripped link to exactly one class. The direct-asset
// pattern takes priority if the patterns ever overlap.
func Classify(link string) Class {
	switch {
	case directAssetPattern.MatchString(link):
		return ClassDirectAsset
	case artworkPagePattern.MatchString(link):
		return ClassIndirectPage
	default:
		return ClassUnknown
	}
}

// Set partitions a link list. The three slices together contain every
// non-empty stripped input line exactly once.
type Set struct {
	Direct  []string
	Pages   []string
	Unknown []string
}

// Total returns the number of classified links.
func (s Set) Total() int {
	return len(s.Direct) + len(s.Pages) + len(s.Unknown)
}

// Partition strips and classifies each line, discarding empties.
func Partition(lines []string) Set {
	var set Set
	for _, line := range lines {
		link := Strip(line)
		if link == "" {
			continue
		}
		switch Classify(link) {
		case ClassDirectAsset:
			set.Direct = append(set.Direct, link)
		case ClassIndirectPage:
			set.Pages = append(set.Pages, link)
		default:
			set.Unknown = append(set.Unknown, link)
		}
	}
	return set
}

// Load reads and partitions the newline-delimited links file.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read links file: %w", err)
	}
	return Partition(strings.Split(string(data), "\n")), nil
}

// Rewrite replaces the links file with the remaining unresolved links, one
// per line. This is the recovery mechanism: whatever is left gets retried on
// the next run.
func Rewrite(path string, remaining []string) error {
	content := strings.Join(remaining, "\n")
	if len(remaining) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("rewrite links file: %w", err)
	}
	return nil
}
