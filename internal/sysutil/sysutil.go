// Package sysutil holds small process-level helpers shared by the server
// entrypoint: mapping the LOG_LEVEL setting onto zerolog's global level,
// interpreting boolean-ish environment values, and picking the first
// configured value from a fallback chain (used for DSN and listen-address
// defaulting).
package sysutil

import (
	"strings"

	"github.com/rs/zerolog"
)

// levelNames maps accepted LOG_LEVEL spellings onto zerolog levels.
// "warning" is accepted as an alias because config normalization and
// operator habits both produce it.
var levelNames = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"":        zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
	"panic":   zerolog.PanicLevel,
}

// SetLogLevel configures the global zerolog level from a LOG_LEVEL string
// (case-insensitive, whitespace tolerated) and returns the level that was
// applied. Unrecognized values fall back to info.
func SetLogLevel(lvl string) zerolog.Level {
	applied, found := levelNames[strings.ToLower(strings.TrimSpace(lvl))]
	if !found {
		applied = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(applied)
	return applied
}

// IsTruthy reports whether an environment variable string should be
// considered true. Accepted values (case-insensitive): "1", "true", "yes",
// "y", "on".
func IsTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// FirstNonEmpty returns the first value in the list whose trimmed form is
// non-empty, or "" when every value is blank.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
