package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/boycaught/eleventy/pkg/templatemap"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// orderRow is one line of the order browser: either a template entry or a
// collection-complete marker.
type orderRow struct {
	id     string
	entry  *templatemap.MapEntry
	marker string // collection name when this row is a completion marker
}

// orderModel is the bubbletea model browsing the computed render order.
type orderModel struct {
	rows   []orderRow
	cursor int
	offset int
	height int
}

func newOrderModel(m *templatemap.Map) orderModel {
	rows := make([]orderRow, 0, len(m.TemplateOrder()))
	for _, id := range m.TemplateOrder() {
		row := orderRow{id: id}
		if templatemap.IsNodeID(id) {
			row.marker = templatemap.NameFromNodeID(id)
		} else {
			row.entry, _ = m.Entry(id)
		}
		rows = append(rows, row)
	}
	return orderModel{rows: rows, height: 15}
}

func (m orderModel) Init() tea.Cmd {
	return nil
}

func (m orderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m orderModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Render Order"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		r := m.rows[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		name := r.id
		writes := "—"
		reads := "—"
		if r.marker != "" {
			name = fmt.Sprintf("[%s complete]", r.marker)
		} else if r.entry != nil {
			if w := r.entry.Writes(); len(w) > 0 {
				writes = strings.Join(w, ", ")
			}
			if rd := r.entry.Reads(); len(rd) > 0 {
				reads = strings.Join(rd, ", ")
			}
		}

		rows = append(rows, []string{cursor, fmt.Sprintf("%d", i+1), name, writes, reads})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Template", "Writes", "Reads").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.offset + row
			if actualIdx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			r := m.rows[actualIdx]
			isCurrent := actualIdx == m.cursor

			if r.marker != "" {
				if isCurrent {
					return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
				}
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			if isCurrent {
				return listSelectedStyle
			}
			if col == 3 || col == 4 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))

	return b.String()
}
