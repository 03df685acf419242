// Package mapping persists the source-author-id to display-name cache
// shared by both pipelines. The store is a flat string-to-string JSON
// object, loaded lazily once per run and written through on every new
// resolution so a crash loses at most the in-flight entry.
package mapping

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"artfiler/internal/logging"
	"artfiler/internal/prompt"
	"artfiler/internal/services"
)

// Store owns the mapping file for the lifetime of one run. A sibling lock
// file guards against concurrent invocations sharing the same mapping.
type Store struct {
	path    string
	lock    *flock.Flock
	entries map[string]string
	logger  *slog.Logger
}

// Open acquires the run lock for the mapping file. The file itself is
// created and read lazily on first access.
func Open(path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "mapping", "open", "mapping file path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "mapping", "open", "create mapping directory", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "mapping", "lock", "acquire mapping lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConfiguration, "mapping", "lock",
			fmt.Sprintf("mapping file %s is in use by another invocation", path), nil)
	}

	return &Store{
		path:   path,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "mapping"),
	}, nil
}

// Close releases the run lock.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Path returns the mapping file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensureLoaded() error {
	if s.entries != nil {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		if writeErr := os.WriteFile(s.path, []byte("{}"), 0o644); writeErr != nil {
			return services.Wrap(services.ErrConfiguration, "mapping", "create", "initialize mapping file", writeErr)
		}
		s.entries = map[string]string{}
		return nil
	}
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "mapping", "load", "read mapping file", err)
	}
	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return services.Wrap(services.ErrConfiguration, "mapping", "load", "parse mapping file", err)
	}
	s.entries = entries
	return nil
}

// Lookup returns the stored display name for a source author id.
func (s *Store) Lookup(key string) (string, bool, error) {
	if err := s.ensureLoaded(); err != nil {
		return "", false, err
	}
	name, ok := s.entries[key]
	return name, ok, nil
}

// ResolveOrPrompt returns the mapped name for key, prompting with the
// recommendation on first encounter. Every new resolution is persisted
// immediately.
func (s *Store) ResolveOrPrompt(key, recommended string, prompter prompt.Prompter) (string, error) {
	name, ok, err := s.Lookup(key)
	if err != nil {
		return "", err
	}
	if ok {
		return name, nil
	}

	message := fmt.Sprintf("%s has no mapping. Enter a new name or accept", key)
	reply, err := prompter.Input(message, recommended)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = recommended
	}

	if err := s.set(key, reply); err != nil {
		return "", err
	}
	s.logger.Info("author mapping stored",
		logging.String("key", key),
		logging.String(logging.FieldAuthor, reply),
	)
	return reply, nil
}

func (s *Store) set(key, value string) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.entries[key] = value
	data, err := json.Marshal(s.entries)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "mapping", "save", "encode mapping", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "mapping", "save", "write mapping file", err)
	}
	return nil
}
