// Package tui implements the Bubble Tea review interface: the document is
// rendered with its pending suggestions inline, and the reviewer steps
// through hunks resolving them one at a time or all at once.
package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"redline/engine"
	"redline/text"
	"redline/types"
)

type keyMap struct {
	Next      key.Binding
	Prev      key.Binding
	Accept    key.Binding
	Reject    key.Binding
	AcceptAll key.Binding
	RejectAll key.Binding
	Undo      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Next:      key.NewBinding(key.WithKeys("n", "tab"), key.WithHelp("n", "next")),
	Prev:      key.NewBinding(key.WithKeys("p", "shift+tab"), key.WithHelp("p", "prev")),
	Accept:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
	Reject:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reject")),
	AcceptAll: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "accept all")),
	RejectAll: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reject all")),
	Undo:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo batch")),
	Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the top-level Bubble Tea model for the review session.
type Model struct {
	eng *engine.Engine

	// How close the proposed text is to the original, shown in the header
	// so the reviewer knows whether this is a touch-up or a full rewrite.
	similarity float64

	width  int
	height int
	status string
}

// New creates a review model over an engine with an active batch built from
// the original/proposed rewrite pair.
func New(eng *engine.Engine, original, proposed string) Model {
	return Model{
		eng:        eng,
		similarity: text.Similarity(original, proposed),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Next):
			m.eng.Next()

		case key.Matches(msg, keys.Prev):
			m.eng.Prev()

		case key.Matches(msg, keys.Accept):
			if err := m.eng.AcceptCurrent(); err != nil {
				m.status = err.Error()
			} else {
				m.status = "accepted"
			}

		case key.Matches(msg, keys.Reject):
			if err := m.eng.RejectCurrent(); err != nil {
				m.status = err.Error()
			} else {
				m.status = "rejected"
			}

		case key.Matches(msg, keys.AcceptAll):
			if err := m.eng.AcceptAll(); err != nil {
				m.status = err.Error()
			} else {
				m.status = "accepted all"
			}

		case key.Matches(msg, keys.RejectAll):
			if err := m.eng.RejectAll(); err != nil {
				m.status = err.Error()
			} else {
				m.status = "rejected all"
			}

		case key.Matches(msg, keys.Undo):
			if m.eng.Undo() {
				m.status = "batch undone"
			} else {
				m.status = "nothing to undo"
			}
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("redline review · %.0f%% similar", m.similarity*100)))
	b.WriteString("\n")
	b.WriteString(docStyle.Width(max(20, m.width-4)).Render(m.renderDocument()))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.progressLine()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("n/p move · a/r resolve · A/R all · u undo · q quit"))
	return b.String()
}

// renderDocument renders the document runs, styling pending suggestions and
// highlighting the hunk under the review cursor.
func (m Model) renderDocument() string {
	current := m.eng.Current()

	var b strings.Builder
	for _, r := range m.eng.Document().Runs() {
		if r.Ann == nil {
			b.WriteString(plainStyle.Render(r.Text))
			continue
		}
		isCurrent := current != nil && r.Ann.HunkID == current.ID
		switch {
		case r.Ann.Kind == types.Insert && isCurrent:
			b.WriteString(currentInsertStyle.Render(r.Text))
		case r.Ann.Kind == types.Insert:
			b.WriteString(insertStyle.Render(r.Text))
		case isCurrent:
			b.WriteString(currentDeleteStyle.Render(r.Text))
		default:
			b.WriteString(deleteStyle.Render(r.Text))
		}
	}
	return b.String()
}

func (m Model) progressLine() string {
	if m.eng.State() != engine.StateReviewing {
		if m.status != "" {
			return "review complete · " + m.status
		}
		return "review complete"
	}
	p := m.eng.Progress()
	line := fmt.Sprintf("suggestion %d of %d pending (%d total)",
		p.CurrentIndex+1, p.PendingInGroup, p.TotalInGroup)
	if h := m.eng.Current(); h != nil {
		line += fmt.Sprintf(" · %s %q", h.Kind, truncate(h.Text, 40))
	}
	if m.status != "" {
		line += " · " + m.status
	}
	return line
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	// Cut on a rune boundary; a byte slice can split a multi-byte character.
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
