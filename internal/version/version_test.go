package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestGetUsesOverrides(t *testing.T) {
	orig := [3]string{Version, GitCommit, BuildDate}
	t.Cleanup(func() { Version, GitCommit, BuildDate = orig[0], orig[1], orig[2] })

	Version, GitCommit, BuildDate = "1.2.3", "abc123def4567890", "2024-01-15T10:30:00Z"
	info := Get()
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123def456", info.Short())
	assert.Equal(t, "eqlint 1.2.3 (abc123def456) built 2024-01-15T10:30:00Z", info.String())
}

func TestInfoStringOmitsEmpty(t *testing.T) {
	assert.Equal(t, "eqlint 0.1.0", Info{Version: "0.1.0"}.String())
}

func TestColored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	cases := map[string]string{
		"0.1.0-dev":     "0.1.0-dev",
		"1.2.3+build.5": "1.2.3+build.5",
		"devel":         "devel",
		"1.2":           "1.2",
	}
	for in, want := range cases {
		assert.Equal(t, want, Colored(in), in)
	}
}
