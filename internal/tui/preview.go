package tui

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/asbjornb/spool/internal/adapter"
	"github.com/asbjornb/spool/internal/cache"
	"github.com/asbjornb/spool/internal/format"
	"github.com/asbjornb/spool/internal/render"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	sessionKey string
	seq        int
	content    string
	hitLine    int
	err        error
}

// loadSession reads and, if needed, converts the file backing a cached
// session row into a *format.Session.
func loadSession(db *cache.DB, sessionKey string) (*format.Session, error) {
	row, err := db.GetSessionByKey(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("session not found: %s", sessionKey)
	}
	raw, err := os.ReadFile(row.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", row.FilePath, err)
	}
	if row.Vendor == "spool" {
		return format.Read(bytes.NewReader(raw), format.ReadOptions{Strict: false})
	}
	_, session, err := adapter.DetectAndConvert(raw)
	return session, err
}

// loadPreviewCmd returns a tea.Cmd that renders the conversation preview async.
func loadPreviewCmd(db *cache.DB, r cache.SearchHit, query string, width int) tea.Cmd {
	return func() tea.Msg {
		session, err := loadSession(db, r.SessionKey)
		if err != nil {
			return previewRenderedMsg{sessionKey: r.SessionKey, seq: r.Seq, err: err}
		}
		content, hitLine, err := render.RenderWindow(session, render.Options{
			CursorIndex: r.Seq,
			Context:     -1,
			Width:       width,
			Query:       query,
		})
		return previewRenderedMsg{
			sessionKey: r.SessionKey,
			seq:        r.Seq,
			content:    content,
			hitLine:    hitLine,
			err:        err,
		}
	}
}

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
