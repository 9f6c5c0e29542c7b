package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"eqlint/internal/config"
	"eqlint/internal/driver"
	"eqlint/internal/logging"
)

// cliEnv holds what every command derives from the global flags.
type cliEnv struct {
	cfg      *config.Config
	log      hclog.Logger
	color    bool
	quiet    bool
	timings  bool
	maxDiags int
}

func loadEnv(cmd *cobra.Command, target string) (*cliEnv, error) {
	flags := cmd.Root().PersistentFlags()
	cfgPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cfgPath, target)
	if err != nil {
		return nil, err
	}

	level, err := flags.GetString("log-level")
	if err != nil {
		return nil, err
	}
	level = logLevel(level, cfg.Log.Level)
	logJSON, err := flags.GetBool("log-json")
	if err != nil {
		return nil, err
	}
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, err
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return nil, err
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, err
	}
	maxDiags, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return nil, err
	}

	log := logging.New("eqlint", logging.Options{Level: level, JSON: logJSON, Output: cmd.ErrOrStderr()})
	if cfg.Path != "" {
		log.Debug("using config", "path", cfg.Path)
	}
	return &cliEnv{
		cfg:      cfg,
		log:      log,
		color:    useColor(colorFlag),
		quiet:    quiet,
		timings:  timings,
		maxDiags: maxDiags,
	}, nil
}

// loadConfig reads an explicit config file or discovers one from target.
func loadConfig(explicit, target string) (*config.Config, error) {
	if explicit != "" {
		return config.Load(explicit)
	}
	cfg, err := config.Discover(startDir(target))
	if errors.Is(err, config.ErrNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

// startDir maps a CLI target to the directory config discovery starts from.
// Package patterns that are not paths start from the working directory.
func startDir(target string) string {
	target = strings.TrimSuffix(target, "...")
	target = strings.TrimSuffix(target, "/")
	if target == "" {
		return "."
	}
	info, err := os.Stat(target)
	if err != nil {
		return "."
	}
	if info.IsDir() {
		return target
	}
	return filepath.Dir(target)
}

func useColor(flag string) bool {
	switch strings.ToLower(flag) {
	case "on", "always", "true":
		return true
	case "off", "never", "false":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

func (e *cliEnv) driverOptions() driver.DiagnoseOptions {
	return driver.DiagnoseOptions{
		Config:         e.cfg,
		MaxDiagnostics: e.maxDiags,
		EnableTimings:  e.timings,
		Logger:         e.log,
	}
}

// targetsOf defaults an empty argument list to the current package tree.
func targetsOf(args []string) []string {
	if len(args) == 0 {
		return []string{"./..."}
	}
	return args
}

// logLevel prefers the --log-level flag over the config file. The
// EQLINT_LOG_LEVEL variable still wins over both in logging.Level.
func logLevel(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}
