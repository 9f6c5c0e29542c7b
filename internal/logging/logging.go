// Package logging builds the hclog loggers used by the driver, watcher and CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "EQLINT_LOG_LEVEL"

// Options configure New.
type Options struct {
	// Level is the configured level name; empty means warn.
	Level  string
	JSON   bool
	Output io.Writer
}

// New returns a named logger. The EQLINT_LOG_LEVEL environment variable has
// priority over opts.Level.
func New(name string, opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		JSONFormat:  opts.JSON,
		Output:      out,
		Level:       Level(opts.Level),
	})
}

// Level resolves the effective level from the environment and configured.
// Unrecognized names fall back to warn.
func Level(configured string) hclog.Level {
	if env := strings.TrimSpace(os.Getenv(EnvLevel)); env != "" {
		if lvl := hclog.LevelFromString(env); lvl != hclog.NoLevel {
			return lvl
		}
	}
	if lvl := hclog.LevelFromString(configured); lvl != hclog.NoLevel {
		return lvl
	}
	return hclog.Warn
}

// Discard returns a logger that drops everything.
func Discard() hclog.Logger { return hclog.NewNullLogger() }
