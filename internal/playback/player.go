// Package playback implements the format's time-compressed step-through
// state machine: a pure value advanced by an externally supplied clock
// signal, with idle-gap and thinking-gap compression precomputed once
// at load time.
package playback

import (
	"github.com/asbjornb/spool/internal/format"
)

// MaxIdleGapMs bounds the compressed gap before a prompt entry.
const MaxIdleGapMs = 2000

// MaxThinkingGapMs bounds the compressed gap after a thinking entry.
const MaxThinkingGapMs = 2000

// Speeds is the recommended playback speed preset ladder.
var Speeds = []float64{0.25, 0.5, 1, 2, 4, 8, 16}

// State is the playback engine's run state.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// Player is the playback state machine. Zero value is unusable; use
// New.
type Player struct {
	session     *format.Session
	cursorIndex int
	elapsedMs   int64
	speed       float64
	state       State
	frameTimes  []int64
}

// New constructs a Player over session, with frame_times precomputed.
func New(session *format.Session) *Player {
	p := &Player{speed: 1}
	p.Load(session)
	return p
}

// Load stops playback, rebuilds frame_times for the given session, and
// resets cursor and elapsed time to zero.
func (p *Player) Load(session *format.Session) {
	p.session = session
	p.state = Stopped
	p.cursorIndex = 0
	p.elapsedMs = 0
	p.frameTimes = computeFrameTimes(session)
}

// computeFrameTimes applies the idle-gap and thinking-gap compression
// rules to the session's vendor timestamps, producing the compressed
// wall-clock offset at which each entry becomes visible.
func computeFrameTimes(session *format.Session) []int64 {
	entries := session.Entries
	if len(entries) == 0 {
		return nil
	}
	frames := make([]int64, len(entries))
	frames[0] = 0
	for i := 1; i < len(entries); i++ {
		gap := entries[i].Timestamp() - entries[i-1].Timestamp()
		if gap < 0 {
			gap = 0
		}
		if entries[i].EntryType() == format.TypePrompt && gap > MaxIdleGapMs {
			gap = MaxIdleGapMs
		}
		if entries[i-1].EntryType() == format.TypeThinking && gap > MaxThinkingGapMs {
			gap = MaxThinkingGapMs
		}
		frames[i] = frames[i-1] + gap
	}
	return frames
}

// Play resumes from the stopped-at-end state by rewinding to the start,
// then transitions to Playing.
func (p *Player) Play() {
	if p.state == Stopped && p.atEnd() {
		p.cursorIndex = 0
		p.elapsedMs = 0
	}
	p.state = Playing
}

// Pause transitions to Paused without altering cursor or elapsed time.
func (p *Player) Pause() {
	p.state = Paused
}

func (p *Player) atEnd() bool {
	return len(p.frameTimes) == 0 || p.cursorIndex >= len(p.frameTimes)-1
}

// Advance moves the clock forward by dtWallMs of real time, scaled by
// speed, and walks the cursor forward over every frame_time now in the
// past. If playback reaches the last entry, state transitions to
// Paused.
func (p *Player) Advance(dtWallMs int64) {
	if p.state != Playing {
		return
	}
	advance := int64(float64(dtWallMs) * p.speed)
	p.elapsedMs += advance
	for p.cursorIndex+1 < len(p.frameTimes) && p.frameTimes[p.cursorIndex+1] <= p.elapsedMs {
		p.cursorIndex++
	}
	if p.atEnd() {
		p.state = Paused
		if last := p.lastFrameTime(); p.elapsedMs > last {
			p.elapsedMs = last
		}
	}
}

func (p *Player) lastFrameTime() int64 {
	if len(p.frameTimes) == 0 {
		return 0
	}
	return p.frameTimes[len(p.frameTimes)-1]
}

// StepForward moves the cursor one entry ahead, clamped at the end, and
// snaps elapsed to that entry's frame time.
func (p *Player) StepForward() {
	if p.cursorIndex+1 < len(p.frameTimes) {
		p.cursorIndex++
		p.elapsedMs = p.frameTimes[p.cursorIndex]
	}
}

// StepBackward moves the cursor one entry back, clamped at the start.
func (p *Player) StepBackward() {
	if p.cursorIndex > 0 {
		p.cursorIndex--
		p.elapsedMs = p.frameTimes[p.cursorIndex]
	}
}

// Seek jumps to a fractional position in [0,1] of the total duration.
func (p *Player) Seek(progress float64) {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	target := int64(progress * float64(p.lastFrameTime()))
	p.elapsedMs = target
	idx := 0
	for i, ft := range p.frameTimes {
		if ft <= target {
			idx = i
		} else {
			break
		}
	}
	p.cursorIndex = idx
}

// SetSpeed sets the playback speed multiplier. Values are not
// restricted to Speeds; that slice is only a UI preset ladder.
func (p *Player) SetSpeed(s float64) {
	if s <= 0 {
		return
	}
	p.speed = s
}

func (p *Player) Speed() float64      { return p.speed }
func (p *Player) State() State        { return p.state }
func (p *Player) CursorIndex() int    { return p.cursorIndex }
func (p *Player) ElapsedMs() int64    { return p.elapsedMs }
func (p *Player) FrameTimes() []int64 { return p.frameTimes }

// VisibleEntries returns entries[0..=cursorIndex].
func (p *Player) VisibleEntries() []format.Entry {
	if p.session == nil || len(p.session.Entries) == 0 {
		return nil
	}
	return p.session.Entries[:p.cursorIndex+1]
}

// Progress is elapsed/total, clamped to [0,1].
func (p *Player) Progress() float64 {
	last := p.lastFrameTime()
	if last == 0 {
		return 0
	}
	prog := float64(p.elapsedMs) / float64(last)
	if prog > 1 {
		return 1
	}
	if prog < 0 {
		return 0
	}
	return prog
}
