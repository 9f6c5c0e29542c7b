package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user leaves the picker without confirming.
var ErrCancelled = errors.New("selection cancelled")

// FixItem is one fix offered in the picker. Items sharing a Group belong to
// the same diagnostic; at most one of them can be selected.
type FixItem struct {
	ID        string
	Group     string
	Title     string
	Location  string
	Message   string
	Preferred bool
}

type pickerEntry struct {
	idx  int
	item FixItem
}

func (e pickerEntry) FilterValue() string { return e.item.Title + " " + e.item.Location }

var (
	keyToggle    = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	keyPreferred = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "preferred"))
	keyClear     = key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "clear"))
	keyConfirm   = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply"))
	keyCancel    = key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel"))

	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	checkedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	messageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Faint(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(2)
)

// FixPicker is a Bubble Tea model for choosing which fixes to apply.
type FixPicker struct {
	list      list.Model
	items     []FixItem
	selected  map[int]bool
	done      bool
	cancelled bool
}

type pickerDelegate struct {
	selected map[int]bool
}

func (d pickerDelegate) Height() int                         { return 2 }
func (d pickerDelegate) Spacing() int                        { return 0 }
func (d pickerDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d pickerDelegate) Render(w io.Writer, m list.Model, index int, it list.Item) {
	e, ok := it.(pickerEntry)
	if !ok {
		return
	}
	cursor := "  "
	if index == m.Index() {
		cursor = cursorStyle.Render("> ")
	}
	box := "[ ]"
	if d.selected[e.idx] {
		box = checkedStyle.Render("[x]")
	}
	title := e.item.Title
	if e.item.Preferred {
		title += " *"
	}
	width := m.Width() - 8
	fmt.Fprintf(w, "%s%s %s  %s\n", cursor, box, title, locationStyle.Render(e.item.Location))
	fmt.Fprintf(w, "      %s", messageStyle.Render(truncate(e.item.Message, width)))
}

// NewFixPicker builds a picker over items with nothing selected.
func NewFixPicker(title string, items []FixItem) *FixPicker {
	selected := make(map[int]bool)
	entries := make([]list.Item, len(items))
	for i, it := range items {
		entries[i] = pickerEntry{idx: i, item: it}
	}
	l := list.New(entries, pickerDelegate{selected: selected}, 80, 20)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("fix", "fixes")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keyToggle, keyPreferred, keyConfirm, keyCancel}
	}
	return &FixPicker{list: l, items: items, selected: selected}
}

func (m *FixPicker) Init() tea.Cmd { return nil }

func (m *FixPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, max(msg.Height-2, 4))
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyCancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, keyConfirm):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, keyToggle):
			m.toggle(m.list.Index())
			return m, nil
		case key.Matches(msg, keyPreferred):
			m.selectPreferred()
			return m, nil
		case key.Matches(msg, keyClear):
			clear(m.selected)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *FixPicker) View() string {
	if m.done || m.cancelled {
		return ""
	}
	footer := fmt.Sprintf("%d selected · space toggle · a preferred · n clear · enter apply · q cancel", len(m.selected))
	return m.list.View() + "\n" + footerStyle.Render(footer)
}

// toggle flips item i and deselects the other fixes of its diagnostic.
func (m *FixPicker) toggle(i int) {
	if i < 0 || i >= len(m.items) {
		return
	}
	if m.selected[i] {
		delete(m.selected, i)
		return
	}
	for j := range m.selected {
		if m.items[j].Group == m.items[i].Group {
			delete(m.selected, j)
		}
	}
	m.selected[i] = true
}

// selectPreferred picks the preferred fix of every group, or its first fix
// when none is preferred.
func (m *FixPicker) selectPreferred() {
	clear(m.selected)
	chosen := make(map[string]int)
	for i, it := range m.items {
		prev, ok := chosen[it.Group]
		if !ok || (it.Preferred && !m.items[prev].Preferred) {
			chosen[it.Group] = i
		}
	}
	for _, i := range chosen {
		m.selected[i] = true
	}
}

// Selected returns the chosen fix IDs in list order.
func (m *FixPicker) Selected() []string {
	var ids []string
	for i, it := range m.items {
		if m.selected[i] {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// Cancelled reports whether the picker was left without confirming.
func (m *FixPicker) Cancelled() bool { return m.cancelled }

// RunFixPicker shows the picker and returns the confirmed fix IDs.
func RunFixPicker(ctx context.Context, title string, items []FixItem, opts ...tea.ProgramOption) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(NewFixPicker(title, items), opts...).Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(*FixPicker)
	if !ok || m.Cancelled() {
		return nil, ErrCancelled
	}
	return m.Selected(), nil
}

// GroupKey builds a FixItem group from a diagnostic identity.
func GroupKey(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, ":")
}
