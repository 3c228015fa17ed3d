// Package render formats a window of session entries as ANSI-colored,
// terminal-wrapped text, for `spool play` and `spool browse`'s preview
// pane. Grounded on the teacher's internal/render/render.go: same ANSI
// palette, same CJK-safe wrapLine via go-runewidth, same keyword
// highlighter, retargeted from sqlite chunk rows to format.Entry values.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/asbjornb/spool/internal/format"
)

const (
	colorReset   = "\033[0m"
	colorUser    = "\033[1;34m" // bold blue, prompt
	colorAssist  = "\033[1;32m" // bold green, response
	colorThink   = "\033[2;35m" // dim magenta, thinking
	colorTool    = "\033[1;36m" // bold cyan, tool_call/tool_result
	colorError   = "\033[1;31m" // bold red, error
	colorSub     = "\033[1;33m" // bold yellow, subagent boundary
	colorDim     = "\033[2m"
	colorHit     = "\033[43m" // yellow background, cursor entry
	colorKeyword = "\033[1;31m"
)

// Options controls one RenderWindow call.
type Options struct {
	CursorIndex int    // index into Entries to highlight as "current"
	Context     int    // entries before/after cursor to include; <0 means unlimited
	Width       int    // wrap width in columns; 0 means no wrap
	Query       string // search term to highlight within text payloads
}

var ftsOperators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	var terms []string
	for _, t := range strings.Fields(query) {
		if !ftsOperators[t] {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return text
	}
	for _, term := range terms {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorKeyword + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within
// maxWidth visible columns, skipping ANSI escape sequences when
// measuring width and treating wide runes (CJK) as two columns.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}
	if len(result) == 0 {
		return []string{""}
	}
	return result
}

func textPayload(e format.Entry) (label, color string, text string, isText bool) {
	switch v := e.(type) {
	case *format.PromptEntry:
		return "PROMPT", colorUser, v.Content, true
	case *format.ThinkingEntry:
		return "THINK", colorThink, v.Content, true
	case *format.ResponseEntry:
		return "RESPONSE", colorAssist, v.Content, true
	case *format.ErrorEntry:
		return "ERROR", colorError, v.Message, true
	case *format.AnnotationEntry:
		return "NOTE", colorDim, v.Content, true
	case *format.ToolCallEntry:
		return "TOOL_CALL:" + v.Tool, colorTool, string(v.Input), true
	case *format.ToolResultEntry:
		if v.Output != nil && !v.Output.IsBinary() {
			return "TOOL_RESULT", colorTool, v.Output.Text, true
		}
		if v.Error != nil {
			return "TOOL_RESULT", colorTool, *v.Error, true
		}
		return "TOOL_RESULT", colorTool, "(binary)", true
	case *format.SubagentStartEntry:
		return "SUBAGENT_START", colorSub, v.Context, true
	case *format.SubagentEndEntry:
		return "SUBAGENT_END", colorSub, string(v.Status), true
	default:
		return strings.ToUpper(e.EntryType()), colorDim, "", false
	}
}

// RenderWindow renders entries[max(cursor-context,1):min(cursor+context+1,len)]
// (the header at index 0 is never included in the window) and returns the
// content plus the 0-based output line number of the cursor entry.
func RenderWindow(s *format.Session, opts Options) (string, int, error) {
	if s == nil || len(s.Entries) == 0 {
		return "", -1, fmt.Errorf("render: empty session")
	}
	if opts.Context == 0 {
		opts.Context = 10
	}
	if opts.Context < 0 {
		opts.Context = len(s.Entries)
	}

	start := opts.CursorIndex - opts.Context
	if start < 1 {
		start = 1
	}
	end := opts.CursorIndex + opts.Context + 1
	if end > len(s.Entries) {
		end = len(s.Entries)
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := colorDim + strings.Repeat("-", 50) + colorReset

	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	header := s.Header()
	if header != nil {
		writeLine(fmt.Sprintf("%s--- %s [%s] ---%s", colorDim, header.EntryID(), header.Agent, colorReset))
	} else {
		writeLine(fmt.Sprintf("%s--- (missing or misplaced header) ---%s", colorDim, colorReset))
	}

	if start > 1 {
		writeLine(fmt.Sprintf("%s... (%d entries before) ...%s", colorDim, start-1, colorReset))
	}

	for i := start; i < end; i++ {
		e := s.Entries[i]
		isHit := i == opts.CursorIndex

		if i > start {
			writeLine(separator)
		}
		if isHit {
			hitLine = lineCount
		}

		label, color, text, isText := textPayload(e)
		if isHit {
			writeLine(fmt.Sprintf("%s>> %s <<%s", colorHit, label, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s >%s %s%dms%s", color, label, colorReset, colorDim, e.Timestamp(), colorReset))
		}

		if isText && text != "" {
			text = highlightKeywords(text, opts.Query)
			text = indentLines(text, "  ")
			for _, tl := range strings.Split(text, "\n") {
				writeLine(tl)
			}
		}
		writeLine("")
	}

	if end < len(s.Entries) {
		writeLine(fmt.Sprintf("%s... (%d entries after) ...%s", colorDim, len(s.Entries)-end, colorReset))
	}

	return b.String(), hitLine, nil
}
