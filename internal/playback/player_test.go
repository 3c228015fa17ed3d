package playback

import (
	"testing"

	"github.com/asbjornb/spool/internal/format"
)

// sessionWithTimestamps builds a session whose Entries line up
// index-for-index with types and ts: index 0 is the session header
// (types[0] is TypeSession, ts[0] is 0), the rest follow in order.
func sessionWithTimestamps(types []string, ts []int64) *format.Session {
	s := format.New(&format.SessionEntry{
		Common: format.Common{ID: "h"}, Version: "1.0", Agent: "test", RecordedAt: "2025-01-01T00:00:00Z",
	})
	for i, t := range ts {
		if i == 0 {
			continue // Entries[0] is the header built above
		}
		typ := types[i]
		switch typ {
		case format.TypePrompt:
			s.AddEntry(&format.PromptEntry{Common: format.Common{ID: idFor(i), Ts: t, Type: typ}, Content: "x"})
		case format.TypeThinking:
			s.AddEntry(&format.ThinkingEntry{Common: format.Common{ID: idFor(i), Ts: t, Type: typ}, Content: "x"})
		default:
			s.AddEntry(&format.ResponseEntry{Common: format.Common{ID: idFor(i), Ts: t, Type: typ}, Content: "x"})
		}
	}
	return s
}

func idFor(i int) string {
	return string(rune('a' + i))
}

func TestIdleGapCompression(t *testing.T) {
	s := sessionWithTimestamps(
		[]string{format.TypeSession, format.TypeResponse, format.TypePrompt},
		[]int64{0, 100, 60000},
	)
	p := New(s)
	want := []int64{0, 100, 2100}
	got := p.FrameTimes()
	if len(got) != len(want) {
		t.Fatalf("frame_times len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame_times[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestThinkingGapCompression(t *testing.T) {
	s := sessionWithTimestamps(
		[]string{format.TypeSession, format.TypeThinking, format.TypeResponse},
		[]int64{0, 100, 50100},
	)
	p := New(s)
	got := p.FrameTimes()
	if got[2] != got[1]+MaxThinkingGapMs {
		t.Fatalf("frame_times[2] = %d, want %d", got[2], got[1]+MaxThinkingGapMs)
	}
}

func TestAdvanceAndStop(t *testing.T) {
	s := sessionWithTimestamps(
		[]string{format.TypeSession, format.TypeResponse, format.TypeResponse},
		[]int64{0, 1000, 2000},
	)
	p := New(s)
	p.Play()
	p.Advance(2500)
	if p.State() != Paused {
		t.Fatalf("state = %v, want Paused at end", p.State())
	}
	if p.CursorIndex() != len(s.Entries)-1 {
		t.Fatalf("cursor = %d, want %d", p.CursorIndex(), len(s.Entries)-1)
	}
}

func TestSeek(t *testing.T) {
	s := sessionWithTimestamps(
		[]string{format.TypeSession, format.TypeResponse, format.TypeResponse},
		[]int64{0, 1000, 2000},
	)
	p := New(s)
	p.Seek(0.5)
	if p.CursorIndex() != 1 {
		t.Fatalf("cursor = %d, want 1", p.CursorIndex())
	}
}

func TestStepForwardBackward(t *testing.T) {
	s := sessionWithTimestamps(
		[]string{format.TypeSession, format.TypeResponse},
		[]int64{0, 500},
	)
	p := New(s)
	p.StepForward()
	if p.CursorIndex() != 1 {
		t.Fatalf("cursor = %d, want 1", p.CursorIndex())
	}
	p.StepForward() // clamped
	if p.CursorIndex() != 1 {
		t.Fatalf("cursor = %d, want 1 (clamped)", p.CursorIndex())
	}
	p.StepBackward()
	if p.CursorIndex() != 0 {
		t.Fatalf("cursor = %d, want 0", p.CursorIndex())
	}
}
