package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listDetailStyle = lipgloss.NewStyle().Foreground(colorWhite).PaddingLeft(2)
)

// =============================================================================
// DiagnosticListModel - Interactive diagnostics browser
// =============================================================================

// DiagnosticListModel is the bubbletea model behind "analyze --interactive".
// It pages through the diagnostics of one report; "i" toggles the info
// annotations (resolved formats) in and out of the list.
type DiagnosticListModel struct {
	All      []diagnostics.Diagnostic
	Visible  []diagnostics.Diagnostic
	ShowInfo bool
	Cursor   int
	Height   int
	Offset   int
}

// NewDiagnosticListModel creates a browser over ds in recording order. Info
// annotations start hidden.
func NewDiagnosticListModel(ds []diagnostics.Diagnostic) DiagnosticListModel {
	m := DiagnosticListModel{All: ds, Height: 15}
	m.filter()
	return m
}

func (m *DiagnosticListModel) filter() {
	m.Visible = nil
	for _, d := range m.All {
		if m.ShowInfo || d.Severity != diagnostics.SeverityInfo {
			m.Visible = append(m.Visible, d)
		}
	}
	m.Cursor = 0
	m.Offset = 0
}

func (m DiagnosticListModel) Init() tea.Cmd {
	return nil
}

func (m DiagnosticListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "i":
			m.ShowInfo = !m.ShowInfo
			m.filter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m DiagnosticListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Diagnostics"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  i toggle info  q quit"))
	b.WriteString("\n\n")

	if len(m.Visible) == 0 {
		b.WriteString(StyleSuccess.Render("  no diagnostics"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, d.Severity.String(), d.NodeID, truncate(d.Message, 60)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Severity", "Node", "Message").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Visible) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 1 {
				base = severityStyle(m.Visible[idx].Severity)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	cur := m.Visible[m.Cursor]
	detail := cur.Message
	if cur.Code != "" {
		detail = fmt.Sprintf("[%s] %s", cur.Code, cur.Message)
	}
	b.WriteString(listDetailStyle.Render(detail))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
