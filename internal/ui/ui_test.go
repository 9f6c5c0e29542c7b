package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eqlint/internal/driver"
)

func pickerItems() []FixItem {
	return []FixItem{
		{ID: "f1", Group: "items", Title: "Add [OrderedEquality]", Location: "shop.go:4:8", Preferred: true},
		{ID: "f2", Group: "items", Title: "Add [UnorderedEquality]", Location: "shop.go:4:8"},
		{ID: "f3", Group: "tags", Title: "Add [SetEquality]", Location: "shop.go:5:7", Preferred: true},
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func send(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func TestFixPickerToggleKeepsOnePerGroup(t *testing.T) {
	p := NewFixPicker("fixes", pickerItems())
	send(p,
		tea.WindowSizeMsg{Width: 100, Height: 30},
		tea.KeyMsg{Type: tea.KeySpace},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeySpace},
	)
	assert.Equal(t, []string{"f2"}, p.Selected())

	send(p, tea.KeyMsg{Type: tea.KeySpace})
	assert.Empty(t, p.Selected())
}

func TestFixPickerSelectPreferredAndConfirm(t *testing.T) {
	p := NewFixPicker("fixes", pickerItems())
	_, cmd := p.Update(runes("a"))
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"f1", "f3"}, p.Selected())
	assert.Contains(t, p.View(), "2 selected")

	_, cmd = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, p.Cancelled())
	assert.Empty(t, p.View())
}

func TestFixPickerClearAndCancel(t *testing.T) {
	p := NewFixPicker("fixes", pickerItems())
	send(p, runes("a"), runes("n"))
	assert.Empty(t, p.Selected())

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.True(t, p.Cancelled())
}

func TestProgressModelTracksPhases(t *testing.T) {
	events := make(chan driver.PhaseEvent)
	m := NewProgressModel("eqlint diag", []string{"load", "evaluate"}, events).(*progressModel)

	send(m,
		eventMsg{Name: "load", Status: driver.PhaseStart},
		eventMsg{Name: "load", Status: driver.PhaseEnd, Note: "3 decls"},
		eventMsg{Name: "report", Status: driver.PhaseStart},
	)
	require.Len(t, m.phases, 3)
	assert.Equal(t, phaseRow{name: "load", status: "done", note: "3 decls"}, m.phases[0])
	assert.Equal(t, "queued", m.phases[1].status)
	assert.Equal(t, "running", m.phases[2].status)
	assert.Contains(t, m.View(), "3 decls")

	send(m, doneMsg{})
	assert.True(t, m.done)
	assert.Contains(t, m.View(), "done: eqlint diag")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abcdefgh", truncate("abcdefgh", 0))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
