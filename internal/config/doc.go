// Package config loads the TOML configuration file, layers TOOL_*
// environment defaults on top, and normalizes all paths. Precedence is
// command flag > environment variable > config file > built-in default; the
// flag layer is applied by the commands themselves.
package config
