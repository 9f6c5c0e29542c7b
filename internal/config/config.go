// Package config loads eqlint.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"

	"eqlint/internal/classify"
	"eqlint/internal/diag"
)

// FileName is the configuration file looked up from the target directory upwards.
const FileName = "eqlint.toml"

// ErrNotFound is returned by Discover when no eqlint.toml exists above the start directory.
var ErrNotFound = errors.New("no " + FileName + " found")

// Config is the decoded configuration.
type Config struct {
	// Path is the file the configuration was read from; empty for defaults.
	Path string `toml:"-"`

	Rules    Rules           `toml:"rules"`
	Classify classify.Tables `toml:"classify"`
	Files    Files           `toml:"files"`
	Log      Log             `toml:"log"`
	Run      Run             `toml:"run"`
}

// Rules selects and reconfigures the equality rules.
type Rules struct {
	Disable  []string          `toml:"disable"`
	Severity map[string]string `toml:"severity"`
}

// Files filters the source files a run reports on. Patterns are globs
// matched against slash separated paths relative to the config directory.
type Files struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Log configures the CLI logger.
type Log struct {
	Level string `toml:"level"`
}

// Run tunes the driver.
type Run struct {
	Jobs           int    `toml:"jobs"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	Format         string `toml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Log: Log{Level: "warn"}}
}

// Find walks up from startDir to locate eqlint.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the configuration governing startDir.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return Load(path)
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("log") && !meta.IsDefined("log", "level") {
		return nil, fmt.Errorf("%s: [log] requires level", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Dir is the directory relative file patterns are resolved against.
func (c *Config) Dir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// Validate checks rule codes, severities, the log level and run limits.
func (c *Config) Validate() error {
	if _, err := c.DisabledCodes(); err != nil {
		return err
	}
	if _, err := c.SeverityOverrides(); err != nil {
		return err
	}
	if c.Log.Level != "" && hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		return fmt.Errorf("[log].level: unknown level %q", c.Log.Level)
	}
	if c.Run.Jobs < 0 {
		return fmt.Errorf("[run].jobs must not be negative")
	}
	if c.Run.MaxDiagnostics < 0 {
		return fmt.Errorf("[run].max_diagnostics must not be negative")
	}
	return nil
}

// DisabledCodes resolves [rules].disable.
func (c *Config) DisabledCodes() ([]diag.Code, error) {
	out := make([]diag.Code, 0, len(c.Rules.Disable))
	for _, id := range c.Rules.Disable {
		code, ok := diag.ParseCode(id)
		if !ok {
			return nil, fmt.Errorf("[rules].disable: unknown rule %q", id)
		}
		out = append(out, code)
	}
	return out, nil
}

// SeverityOverrides resolves [rules.severity].
func (c *Config) SeverityOverrides() (map[diag.Code]diag.Severity, error) {
	if len(c.Rules.Severity) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(c.Rules.Severity))
	for id := range c.Rules.Severity {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make(map[diag.Code]diag.Severity, len(ids))
	for _, id := range ids {
		code, ok := diag.ParseCode(id)
		if !ok {
			return nil, fmt.Errorf("[rules.severity]: unknown rule %q", id)
		}
		sev, err := diag.ParseSeverity(c.Rules.Severity[id])
		if err != nil {
			return nil, fmt.Errorf("[rules.severity].%s: %w", id, err)
		}
		out[code] = sev
	}
	return out, nil
}

// Tables returns the built-in classifier tables extended with [classify].
func (c *Config) Tables() classify.Tables {
	return classify.DefaultTables().Merge(c.Classify)
}
