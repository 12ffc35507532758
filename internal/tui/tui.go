// Package tui is an interactive terminal front end for the salary dashboard.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"salaryboard/internal/engine"
	"salaryboard/internal/models"
	"salaryboard/internal/render"
)

var (
	sidebarStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginRight(2)
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model holds the selection and the last computed dashboard.
type Model struct {
	store     *engine.ColumnStore
	positions []models.Position
	posIdx    int
	sel       models.Selection
	data      *models.Dashboard
	err       error
}

func New(store *engine.ColumnStore, sel models.Selection) Model {
	m := Model{store: store, positions: models.Positions(), sel: sel}
	for i, p := range m.positions {
		if p.Code == sel.Position {
			m.posIdx = i
		}
	}
	m.recompute()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) recompute() {
	m.sel.Position = m.positions[m.posIdx].Code
	m.data, m.err = engine.Compute(m.store, m.sel)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.posIdx = (m.posIdx - 1 + len(m.positions)) % len(m.positions)
	case "down", "j":
		m.posIdx = (m.posIdx + 1) % len(m.positions)
	case "left", "h":
		if m.sel.MinYear > models.MinYear {
			m.sel.MinYear--
		}
	case "right", "l":
		if m.sel.MinYear < m.sel.MaxYear {
			m.sel.MinYear++
		}
	case "shift+left", "H":
		if m.sel.MaxYear > m.sel.MinYear {
			m.sel.MaxYear--
		}
	case "shift+right", "L":
		if m.sel.MaxYear < models.MaxYear {
			m.sel.MaxYear++
		}
	default:
		return m, nil
	}
	m.recompute()
	return m, nil
}

func (m Model) sidebar() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Years: %d-%d\n\n", m.sel.MinYear, m.sel.MaxYear)
	for i, p := range m.positions {
		if i == m.posIdx {
			b.WriteString(activeStyle.Render("> " + p.Label))
		} else {
			b.WriteString("  " + p.Label)
		}
		b.WriteByte('\n')
	}
	return sidebarStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) View() string {
	var body string
	if m.err != nil {
		body = errStyle.Render(m.err.Error())
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left,
			activeStyle.Render(m.data.Title),
			render.PercentileTable(m.data),
			"",
			activeStyle.Render(m.data.Heading),
			render.TopTable(m.data),
		)
	}
	help := helpStyle.Render("↑/↓ position • ←/→ first year • shift+←/→ last year • q quit")
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar(), body) + "\n" + help + "\n"
}

// Dashboard returns the most recent pipeline output.
func (m Model) Dashboard() *models.Dashboard {
	return m.data
}

// Run starts the interactive program and blocks until the user quits.
func Run(store *engine.ColumnStore, sel models.Selection) error {
	_, err := tea.NewProgram(New(store, sel), tea.WithAltScreen()).Run()
	return err
}
