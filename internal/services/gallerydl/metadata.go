package gallerydl

import (
	"encoding/json"
	"sort"

	"artfiler/internal/services"
)

// extractMetadata decodes a metadata blob and pulls out the first username
// and tags values found by a depth-first search in document order for
// arrays. Object keys are visited sorted so the search is deterministic.
func extractMetadata(blob []byte) (Metadata, error) {
	var doc any
	if err := json.Unmarshal(blob, &doc); err != nil {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "resolver", "metadata", "parse resolver output", err)
	}

	var meta Metadata
	var foundAuthor, foundTags bool
	walk(doc, func(key string, value any) bool {
		switch key {
		case "username":
			if !foundAuthor {
				if s, ok := value.(string); ok && s != "" {
					meta.Author = s
					foundAuthor = true
				}
			}
		case "tags":
			if !foundTags {
				if tags := stringList(value); tags != nil {
					meta.Tags = tags
					foundTags = true
				}
			}
		}
		return foundAuthor && foundTags
	})

	if !foundAuthor {
		return Metadata{}, services.Wrap(services.ErrNotFound, "resolver", "metadata", "username not found in resolver metadata", nil)
	}
	return meta, nil
}

// walk visits every key/value pair in the decoded document. visit returns
// true to stop early.
func walk(node any, visit func(key string, value any) bool) bool {
	switch typed := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if visit(key, typed[key]) {
				return true
			}
		}
		for _, key := range keys {
			if walk(typed[key], visit) {
				return true
			}
		}
	case []any:
		for _, item := range typed {
			if walk(item, visit) {
				return true
			}
		}
	}
	return false
}

func stringList(value any) []string {
	switch typed := value.(type) {
	case string:
		if typed == "" {
			return nil
		}
		return []string{typed}
	case []any:
		list := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok && s != "" {
				list = append(list, s)
			}
		}
		if len(list) == 0 {
			return nil
		}
		return list
	default:
		return nil
	}
}
