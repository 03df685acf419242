package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Environment variables honored when the corresponding flag is absent.
const (
	EnvLinksFile      = "TOOL_LINKS_FILE"
	EnvDestinationDir = "TOOL_DESTINATION_FOLDER"
	EnvSourceDir      = "TOOL_SOURCE_FOLDER"
	EnvSeparator      = "TOOL_SEPARATOR"
)

// Paths contains file and directory configuration.
type Paths struct {
	LinksFile      string `toml:"links_file"`
	DestinationDir string `toml:"destination_dir"`
	SourceDir      string `toml:"source_dir"`
	StagingDir     string `toml:"staging_dir"`
	LogDir         string `toml:"log_dir"`
	MappingFile    string `toml:"mapping_file"`
	HistoryDB      string `toml:"history_db"`
}

// Tools names the external collaborator binaries looked up in PATH.
type Tools struct {
	GalleryDL string `toml:"gallery_dl"`
	Wget      string `toml:"wget"`
	Exiftool  string `toml:"exiftool"`
	Kakasi    string `toml:"kakasi"`
}

// Behavior contains pipeline behavior toggles.
type Behavior struct {
	// Separator splits author folder names into <name><sep><id>.
	Separator string `toml:"separator"`
	// DownloadPostfix tags folders created by the download pipeline.
	DownloadPostfix string `toml:"download_postfix"`
	// MovePostfix tags folders created by the relocation pipeline.
	MovePostfix string `toml:"move_postfix"`
	// Interactive permits prompting even when stdin looks like a pipe.
	Interactive bool `toml:"interactive"`
	// SuppressToolOutput silences wget and gallery-dl chatter.
	SuppressToolOutput bool `toml:"suppress_tool_output"`
	// ScrubMetadata runs the exiftool editing-history scrub after placement.
	ScrubMetadata bool `toml:"scrub_metadata"`
	// WriteTags writes the resolved tag list into the placed file's subject.
	WriteTags bool `toml:"write_tags"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for artfiler.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Tools    Tools    `toml:"tools"`
	Behavior Behavior `toml:"behavior"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/artfiler/config.toml")
}

// Load locates, parses, and validates a configuration file, then applies
// TOOL_* environment overrides. The returned config has all path fields
// expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	// A .env in the working directory supplies TOOL_* defaults; absence is
	// not an error.
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvironment()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnvironment() {
	if v, ok := os.LookupEnv(EnvLinksFile); ok && strings.TrimSpace(v) != "" {
		c.Paths.LinksFile = v
	}
	if v, ok := os.LookupEnv(EnvDestinationDir); ok && strings.TrimSpace(v) != "" {
		c.Paths.DestinationDir = v
	}
	if v, ok := os.LookupEnv(EnvSourceDir); ok && strings.TrimSpace(v) != "" {
		c.Paths.SourceDir = v
	}
	if v, ok := os.LookupEnv(EnvSeparator); ok && v != "" {
		c.Behavior.Separator = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("artfiler.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.LinksFile,
		&c.Paths.DestinationDir,
		&c.Paths.SourceDir,
		&c.Paths.StagingDir,
		&c.Paths.LogDir,
		&c.Paths.MappingFile,
		&c.Paths.HistoryDB,
	} {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.Tools.GalleryDL = strings.TrimSpace(c.Tools.GalleryDL)
	c.Tools.Wget = strings.TrimSpace(c.Tools.Wget)
	c.Tools.Exiftool = strings.TrimSpace(c.Tools.Exiftool)
	c.Tools.Kakasi = strings.TrimSpace(c.Tools.Kakasi)
	return nil
}

// EnsureDirectories creates the directories a run depends on. The
// destination tree is created by the pipelines on demand.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
