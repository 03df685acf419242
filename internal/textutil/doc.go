// Package textutil provides small text helpers shared across the tool:
// filesystem-safe name sanitization and ASCII detection for author names.
package textutil
