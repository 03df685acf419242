// Package logging constructs the slog loggers used across the tool and
// provides typed attribute helpers plus the standardized field keys for
// structured output. Two formats exist: a human console handler for
// interactive runs and a JSON handler for log files and scripting.
package logging
