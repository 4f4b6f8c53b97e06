package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/depscope/depscope/pkg/subproject"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// subprojectListModel is the bubbletea model for picking which resolved
// subproject to render.
type subprojectListModel struct {
	subprojects []subproject.Resolved
	cursor      int
	selected    *subproject.Resolved
}

func newSubprojectListModel(subprojects []subproject.Resolved) subprojectListModel {
	return subprojectListModel{subprojects: subprojects}
}

func (m subprojectListModel) Init() tea.Cmd {
	return nil
}

func (m subprojectListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.subprojects)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = &m.subprojects[m.cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m subprojectListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Subproject"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := [][]string{}
	for i, r := range m.subprojects {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			r.Source.DisplayPaths()[0],
			string(r.Ecosystem),
			string(r.Method),
			fmt.Sprintf("%d", r.Graph.Count()),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Source", "Ecosystem", "Method", "Deps").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.subprojects))))

	return b.String()
}
