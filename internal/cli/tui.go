package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/intentflow/intentflow/pkg/backend"
)

// listDimStyle renders picker chrome (hints, counters).
var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// ConversationListModel - Interactive conversation selection
// =============================================================================

// ConversationListModel is the bubbletea model for interactive conversation selection.
type ConversationListModel struct {
	Conversations []backend.ConversationSummary
	Cursor        int
	Selected      *backend.ConversationSummary
	Height        int
	Offset        int
}

// NewConversationListModel creates a new conversation list model.
func NewConversationListModel(conversations []backend.ConversationSummary) ConversationListModel {
	return ConversationListModel{
		Conversations: conversations,
		Cursor:        0,
		Height:        15,
		Offset:        0,
	}
}

func (m ConversationListModel) Init() tea.Cmd {
	return nil
}

func (m ConversationListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Conversations)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			conv := m.Conversations[m.Cursor]
			m.Selected = &conv
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ConversationListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Conversation"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Conversations) {
		end = len(m.Conversations)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		conv := m.Conversations[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		title := conv.Title
		if title == "" {
			title = "(untitled)"
		}

		version := "—"
		if conv.GraphVersion > 0 {
			version = fmt.Sprintf("v%d", conv.GraphVersion)
		}

		created := formatRelativeTime(conv.CreatedAt)
		rows = append(rows, []string{cursor, title, version, created, conv.ConversationID})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Title", "Graph", "Created", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Conversations) {
				return lipgloss.NewStyle()
			}
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorDim)
				if isCurrent {
					base = base.Foreground(colorGray)
				}
			}

			if isCurrent {
				if col < 2 {
					return base.Foreground(colorCyan).Bold(true)
				}
				return base.Bold(true)
			}
			if col < 2 {
				return base.Foreground(colorWhite)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Conversations))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}

	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
