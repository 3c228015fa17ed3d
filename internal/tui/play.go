package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/asbjornb/spool/internal/format"
	"github.com/asbjornb/spool/internal/playback"
	"github.com/asbjornb/spool/internal/render"
)

const tickInterval = 100 * time.Millisecond

type playTickMsg time.Time

type playModel struct {
	player *playback.Player
	width  int
	height int
}

var playKeys = struct {
	PlayPause key.Binding
	Forward   key.Binding
	Backward  key.Binding
	SpeedUp   key.Binding
	SpeedDown key.Binding
	Quit      key.Binding
}{
	PlayPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	Forward:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "step forward")),
	Backward:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "step backward")),
	SpeedUp:   key.NewBinding(key.WithKeys("+", "=")),
	SpeedDown: key.NewBinding(key.WithKeys("-", "_")),
	Quit:      key.NewBinding(key.WithKeys("esc", "ctrl+c", "q")),
}

// RunPlay drives an interactive playback TUI over session.
func RunPlay(session *format.Session) error {
	m := playModel{player: playback.New(session)}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (m playModel) Init() tea.Cmd {
	m.player.Play()
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return playTickMsg(t) })
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case playTickMsg:
		m.player.Advance(tickInterval.Milliseconds())
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, playKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, playKeys.PlayPause):
			if m.player.State() == playback.Playing {
				m.player.Pause()
			} else {
				m.player.Play()
			}
		case key.Matches(msg, playKeys.Forward):
			m.player.StepForward()
		case key.Matches(msg, playKeys.Backward):
			m.player.StepBackward()
		case key.Matches(msg, playKeys.SpeedUp):
			m.player.SetSpeed(nextSpeed(m.player.Speed(), 1))
		case key.Matches(msg, playKeys.SpeedDown):
			m.player.SetSpeed(nextSpeed(m.player.Speed(), -1))
		}
		return m, nil
	}
	return m, nil
}

func nextSpeed(cur float64, dir int) float64 {
	idx := 2 // default to 1x
	for i, s := range playback.Speeds {
		if s == cur {
			idx = i
			break
		}
	}
	idx += dir
	if idx < 0 {
		idx = 0
	}
	if idx >= len(playback.Speeds) {
		idx = len(playback.Speeds) - 1
	}
	return playback.Speeds[idx]
}

func (m playModel) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.height - 2
	if height <= 0 {
		height = 20
	}

	out, _, err := render.RenderWindow(sessionOf(m.player), render.Options{
		CursorIndex: m.player.CursorIndex(),
		Context:     5,
		Width:       width,
	})
	if err != nil {
		out = err.Error()
	}

	status := fmt.Sprintf("%s | %.2fx | %d%% | space play/pause, ←/→ step, +/- speed, q quit",
		stateLabel(m.player.State()), m.player.Speed(), int(m.player.Progress()*100))

	return lipgloss.JoinVertical(lipgloss.Left, out, styleStatusBar.Width(width).Render(status))
}

func stateLabel(s playback.State) string {
	switch s {
	case playback.Playing:
		return "playing"
	case playback.Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// sessionOf recovers the *format.Session a Player was loaded with.
// Player does not expose it directly since its public surface is
// deliberately limited to the playback contract; VisibleEntries plus
// the header is enough context to reconstruct a renderable window.
func sessionOf(p *playback.Player) *format.Session {
	entries := p.VisibleEntries()
	if len(entries) == 0 {
		return nil
	}
	// VisibleEntries always starts at the session's own Entries[0],
	// so cloning the slice header is enough; RenderWindow only reads.
	return &format.Session{Entries: entries}
}
