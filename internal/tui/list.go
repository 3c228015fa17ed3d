package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/asbjornb/spool/internal/cache"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
	}

	var lines []string
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatResultLine(r, width, i == m.cursor)...)
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// formatResultLine formats one search hit as two lines:
//
//	line 1: [>] vendor  date  type
//	line 2:    snippet (dimmed)
func formatResultLine(r cache.SearchHit, width int, selected bool) []string {
	var vendor string
	switch r.Agent {
	case "claude":
		vendor = styleVendorClaude.Render("claude")
	case "codex":
		vendor = styleVendorCodex.Render("codex")
	default:
		vendor = r.Agent
	}

	date := r.RecordedAt
	if len(date) >= 10 {
		date = date[5:10] // MM-DD
	}

	typeLabel := r.Type
	typeMax := width - 2 - 7 - 6 - 2
	if typeMax < 0 {
		typeMax = 0
	}
	if runewidth.StringWidth(typeLabel) > typeMax {
		typeLabel = runewidth.Truncate(typeLabel, typeMax, "")
	}

	line1 := fmt.Sprintf("%s %s %s", vendor, date, typeLabel)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	snippet := strings.ReplaceAll(r.Snippet, "\n", " ")
	snippet = strings.ReplaceAll(snippet, "\t", " ")
	snippetMax := width - 4
	if snippetMax < 0 {
		snippetMax = 0
	}
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(snippet)

	return []string{line1, line2}
}

func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
