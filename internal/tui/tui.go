// Package tui implements spool's interactive browse view, adapted
// from the teacher's internal/tui package: the same two-panel
// bubbletea layout (filterable list + async preview viewport), the
// same debounced incremental search, retargeted from the teacher's
// sqlite chunk index to spool's cache.DB and render.RenderWindow.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/asbjornb/spool/internal/cache"
	"github.com/asbjornb/spool/internal/view"
)

const debounceDelay = 200 * time.Millisecond

type searchResultMsg struct {
	query   string
	results []cache.SearchHit
	err     error
}

type debounceTickMsg struct {
	query string
}

type model struct {
	db          *cache.DB
	mode        string // "search" or "list"
	query       string
	results     []cache.SearchHit
	cursor      int
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewKey  string
	width       int
	height      int
	ready       bool
	quitting    bool
	copied      *cache.SearchHit
	opened      *cache.SearchHit
}

func newFilterInput(placeholder, initial string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.SetValue(initial)
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256
	return ti
}

// Run starts the browse TUI in search mode with an initial query.
func Run(db *cache.DB, query string) error {
	m := model{
		db:          db,
		mode:        "search",
		query:       query,
		filterInput: newFilterInput("Search...", query),
		preview:     viewport.New(0, 0),
	}
	return run(m, db)
}

// RunList starts the browse TUI in list-all mode, sorted by recorded_at.
func RunList(db *cache.DB) error {
	m := model{
		db:          db,
		mode:        "list",
		filterInput: newFilterInput("Filter...", ""),
		preview:     viewport.New(0, 0),
	}
	return run(m, db)
}

func run(m model, db *cache.DB) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	fm := finalModel.(model)
	if fm.copied != nil {
		return copyEntryID(*fm.copied)
	}
	if fm.opened != nil {
		return view.OpenEntry(db, fm.opened.SessionKey, fm.opened.Seq)
	}
	return nil
}

func copyEntryID(r cache.SearchHit) error {
	if err := clipboard.WriteAll(r.EntryID); err != nil {
		fmt.Printf("%s\n", r.EntryID)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", r.EntryID)
	return nil
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.mode == "list" {
		cmds = append(cmds, m.doListAll(""))
	} else if m.query != "" {
		cmds = append(cmds, m.doSearch(m.query))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		if len(m.results) > 0 && m.cursor < len(m.results) {
			cmds = append(cmds, loadPreviewCmd(m.db, m.results[m.cursor], m.query, m.previewWidth()))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			if len(m.results) > 0 && m.cursor < len(m.results) {
				r := m.results[m.cursor]
				m.copied = &r
				m.quitting = true
				return m, tea.Quit
			}

		case key.Matches(msg, keys.Open):
			if len(m.results) > 0 && m.cursor < len(m.results) {
				r := m.results[m.cursor]
				m.opened = &r
				m.quitting = true
				return m, tea.Quit
			}

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.results)-1 {
				m.cursor++
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil
		}

		var tiCmd tea.Cmd
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		cmds = append(cmds, tiCmd)

		newQuery := m.filterInput.Value()
		if newQuery != m.query {
			m.query = newQuery
			cmds = append(cmds, m.scheduleDebouncedSearch(newQuery))
		}
		return m, tea.Batch(cmds...)

	case debounceTickMsg:
		if msg.query == m.query {
			if m.mode == "list" {
				cmds = append(cmds, m.doListAll(msg.query))
			} else {
				cmds = append(cmds, m.doSearch(msg.query))
			}
		}
		return m, tea.Batch(cmds...)

	case searchResultMsg:
		if msg.query != m.query {
			return m, nil
		}
		if msg.err != nil {
			m.results = nil
			m.cursor = 0
			m.listOffset = 0
			m.preview.SetContent("Error: " + msg.err.Error())
			m.previewKey = ""
			return m, nil
		}
		m.results = msg.results
		m.cursor = 0
		m.listOffset = 0
		if len(m.results) > 0 {
			cmds = append(cmds, m.loadCurrentPreview())
		} else {
			m.preview.SetContent("")
			m.previewKey = ""
		}
		return m, tea.Batch(cmds...)

	case previewRenderedMsg:
		k := previewCacheKey(msg.sessionKey, msg.seq)
		if k == m.previewKey {
			return m, nil
		}
		if len(m.results) > 0 && m.cursor < len(m.results) {
			r := m.results[m.cursor]
			if k != previewCacheKey(r.SessionKey, r.Seq) {
				return m, nil // stale preview
			}
		}
		if msg.err != nil {
			m.preview.SetContent("Preview error: " + msg.err.Error())
		} else {
			m.preview.SetContent(msg.content)
			if msg.hitLine > 0 {
				m.preview.SetYOffset(msg.hitLine)
			} else {
				m.preview.GotoTop()
			}
		}
		m.previewKey = k
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	inputRow := m.filterInput.View()

	listContent := m.renderList(listW, panelH)
	listPanel := stylePanelBorder.Width(listW).Height(panelH).Render(listContent)

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.Width(previewW).Height(panelH).Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)
	status := m.statusBar()

	return lipgloss.JoinVertical(lipgloss.Left, inputRow, panels, status)
}

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	w := m.width*40/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	w := m.width*60/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

func (m model) statusBar() string {
	count := len(m.results)
	parts := []string{
		fmt.Sprintf("%d results", count),
		"up/dn navigate",
		"C-u/C-d preview",
		"enter copy id",
		"o open in $EDITOR",
		"esc quit",
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) doSearch(query string) tea.Cmd {
	db := m.db
	return func() tea.Msg {
		if query == "" {
			return searchResultMsg{query: query}
		}
		hits, err := db.Search(cache.SearchOptions{Query: query})
		return searchResultMsg{query: query, results: hits, err: err}
	}
}

func (m model) doListAll(filter string) tea.Cmd {
	db := m.db
	return func() tea.Msg {
		if filter == "" {
			rows, err := db.ListSessions()
			if err != nil {
				return searchResultMsg{query: filter, err: err}
			}
			var hits []cache.SearchHit
			for _, r := range rows {
				hits = append(hits, cache.SearchHit{
					SessionKey: r.SessionKey, Seq: 0, Type: "session",
					Agent: r.Vendor, RecordedAt: r.RecordedAt, Snippet: r.FilePath,
				})
			}
			return searchResultMsg{query: filter, results: hits}
		}
		hits, err := db.Search(cache.SearchOptions{Query: filter})
		return searchResultMsg{query: filter, results: hits, err: err}
	}
}

func (m model) scheduleDebouncedSearch(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m model) loadCurrentPreview() tea.Cmd {
	if len(m.results) == 0 || m.cursor >= len(m.results) {
		return nil
	}
	r := m.results[m.cursor]
	k := previewCacheKey(r.SessionKey, r.Seq)
	if k == m.previewKey {
		return nil
	}
	return loadPreviewCmd(m.db, r, m.query, m.previewWidth())
}

func previewCacheKey(sessionKey string, seq int) string {
	return fmt.Sprintf("%s:%d", sessionKey, seq)
}
