package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eqlint/internal/diag"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
[rules]
disable = ["GE003"]

[rules.severity]
GE001 = "error"

[classify]
value_types = ["example.com/money.Amount"]
set_types = ["example.com/sets.Set"]

[files]
exclude = ["**/*_gen.go"]

[log]
level = "debug"

[run]
jobs = 4
max_diagnostics = 50
`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, root, cfg.Dir())
	assert.Equal(t, 4, cfg.Run.Jobs)
	assert.Equal(t, 50, cfg.Run.MaxDiagnostics)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"**/*_gen.go"}, cfg.Files.Exclude)

	codes, err := cfg.DisabledCodes()
	require.NoError(t, err)
	assert.Equal(t, []diag.Code{diag.EqElementNeedsEquatable}, codes)

	sev, err := cfg.SeverityOverrides()
	require.NoError(t, err)
	assert.Equal(t, map[diag.Code]diag.Severity{diag.EqCollectionNeedsStrategy: diag.SevError}, sev)

	tables := cfg.Tables()
	assert.Contains(t, tables.ValueTypes, "example.com/money.Amount")
	assert.Contains(t, tables.ValueTypes, "time.Time")
	assert.Contains(t, tables.Set, "example.com/sets.Set")
}

func TestDiscoverNotFound(t *testing.T) {
	_, err := Discover(t.TempDir())
	if err != nil && !errors.Is(err, ErrNotFound) {
		t.Skipf("a %s above the temp dir interferes: %v", FileName, err)
	}
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindFromFile(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "")
	file := filepath.Join(root, "shop.go")
	require.NoError(t, os.WriteFile(file, []byte("package shop\n"), 0o600))

	got, ok, err := Find(file)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, path, got)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "[rules]\nenable = [\"GE001\"]\n",
		"unknown rule":     "[rules]\ndisable = [\"GE404\"]\n",
		"bad severity":     "[rules.severity]\nGE002 = \"fatal\"\n",
		"bad level":        "[log]\nlevel = \"loud\"\n",
		"missing level":    "[log]\n",
		"negative jobs":    "[run]\njobs = -1\n",
		"malformed toml":   "[rules\n",
		"severity unknown": "[rules.severity]\nGE999 = \"error\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".", cfg.Dir())
	sev, err := cfg.SeverityOverrides()
	require.NoError(t, err)
	assert.Nil(t, sev)
	assert.Equal(t, "warn", cfg.Log.Level)
}
