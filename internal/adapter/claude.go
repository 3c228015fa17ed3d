package adapter

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/asbjornb/spool/internal/format"
)

// Claude is the adapter for Claude Code's JSONL session transcripts,
// grounded on the chunk-extraction shape of the teacher's
// internal/parse/claude.go, generalized from "extract searchable text"
// to "emit a full typed Entry sequence" per the format's adapter
// algorithm.
type Claude struct{}

type claudeRecord struct {
	Type      string          `json:"type"`
	IsMeta    bool            `json:"isMeta"`
	Timestamp string          `json:"timestamp"`
	Cwd       string          `json:"cwd"`
	Message   json.RawMessage `json:"message"`
	Summary   string          `json:"summary"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
	Usage   *claudeUsage    `json:"usage"`
}

type claudeUsage struct {
	InputTokens              int64  `json:"input_tokens"`
	OutputTokens             int64  `json:"output_tokens"`
	CacheReadInputTokens     *int64 `json:"cache_read_input_tokens"`
	CacheCreationInputTokens *int64 `json:"cache_creation_input_tokens"`
}

type claudeContentBlock struct {
	Type string `json:"type"`

	// text / thinking
	Text     string `json:"text"`
	Thinking string `json:"thinking"`

	// tool_use
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`

	// tool_result (appears inside a user message's content array)
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	IsError   bool            `json:"is_error"`
}

func (Claude) Sniff(firstLine []byte) bool {
	var rec claudeRecord
	if err := json.Unmarshal(firstLine, &rec); err != nil {
		return false
	}
	switch rec.Type {
	case "user", "assistant", "summary", "system":
		return true
	default:
		return rec.IsMeta
	}
}

var systemReminderRe = regexp.MustCompile(`(?s)<system-reminder>.*?</system-reminder>`)

var syntheticCommandTags = []string{"<command-name>", "<local-command-stdout>", "<local-command-caveat>"}

func stripSystemTags(s string) string {
	return strings.TrimSpace(systemReminderRe.ReplaceAllString(s, ""))
}

func isSyntheticCommand(s string) bool {
	trimmed := strings.TrimSpace(s)
	for _, tag := range syntheticCommandTags {
		if strings.HasPrefix(trimmed, tag) {
			return true
		}
	}
	return false
}

func (Claude) Convert(data []byte) (*format.Session, error) {
	lines := splitLines(data)
	if len(lines) == 0 {
		return nil, &ErrNoRecognizableLines{Vendor: "claude"}
	}

	records := make([]claudeRecord, 0, len(lines))
	for _, line := range lines {
		var rec claudeRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, &ErrNoRecognizableLines{Vendor: "claude"}
	}

	// Pass 1: metadata sweep.
	var sessionStart time.Time
	var summaryFromRecord, firstPrompt, firstModel, title string
	var cwd string
	for _, rec := range records {
		if rec.Cwd != "" && cwd == "" {
			cwd = rec.Cwd
		}
		if rec.Type == "summary" && rec.Summary != "" && summaryFromRecord == "" {
			summaryFromRecord = rec.Summary
			continue
		}
		if rec.IsMeta || (rec.Type != "user" && rec.Type != "assistant") {
			continue
		}
		ts := parseClaudeTimestamp(rec.Timestamp)
		if sessionStart.IsZero() && !ts.IsZero() {
			sessionStart = ts
		}
		var msg claudeMessage
		if err := json.Unmarshal(rec.Message, &msg); err != nil {
			continue
		}
		if rec.Type == "assistant" && firstModel == "" {
			firstModel = msg.Model
		}
		if rec.Type == "user" && firstPrompt == "" {
			text, _, _ := extractClaudeContent(msg.Content)
			text = stripSystemTags(text)
			if text != "" && !isSyntheticCommand(text) {
				firstPrompt = computeFirstPrompt(text)
				title = deriveTitle(text)
			}
		}
	}

	session := format.New(&format.SessionEntry{
		Common:     format.Common{ID: format.NewID()},
		Version:    "1.0",
		Agent:      "claude-code",
		RecordedAt: sessionStart.UTC().Format(time.RFC3339),
	})
	header := session.Header()
	if summaryFromRecord != "" {
		header.Title = summaryFromRecord
	} else if title != "" {
		header.Title = title
	}
	if firstPrompt != "" {
		header.FirstPrompt = firstPrompt
	}
	if firstModel != "" {
		setExtra(&header.Common, "x_model", firstModel)
	}
	if cwd != "" {
		setExtra(&header.Common, "x_cwd", cwd)
	}

	corr := newCorrelator()
	sawAnyEntry := false

	for _, rec := range records {
		if rec.IsMeta || (rec.Type != "user" && rec.Type != "assistant") {
			continue
		}
		ts := relMs(sessionStart, parseClaudeTimestamp(rec.Timestamp))
		var msg claudeMessage
		if err := json.Unmarshal(rec.Message, &msg); err != nil {
			continue
		}

		if rec.Type == "user" {
			emitClaudeUserLine(session, corr, msg, ts)
		} else {
			emitClaudeAssistantLine(session, corr, msg, ts)
		}
		sawAnyEntry = true
	}
	if !sawAnyEntry {
		return nil, &ErrNoRecognizableLines{Vendor: "claude"}
	}

	finalizeHeader(session, format.EndedCompleted)
	return session, nil
}

func emitClaudeUserLine(session *format.Session, corr *correlator, msg claudeMessage, ts int64) {
	text, _, blocks := extractClaudeContent(msg.Content)
	text = stripSystemTags(text)
	if text != "" && !isSyntheticCommand(text) {
		session.AddEntry(&format.PromptEntry{
			Common:  format.Common{ID: format.NewID(), Ts: ts, Type: format.TypePrompt},
			Content: text,
		})
	}
	for _, b := range blocks {
		if b.Type != "tool_result" {
			continue
		}
		callID, ok := corr.toolCallID[b.ToolUseID]
		if !ok {
			continue
		}
		resultText := extractToolResultText(b.Content)
		entry := &format.ToolResultEntry{
			Common: format.Common{ID: format.NewID(), Ts: ts, Type: format.TypeToolResult},
			CallID: callID,
		}
		if b.IsError {
			entry.Error = &resultText
		} else {
			entry.Output = &format.ToolOutput{Text: resultText}
		}
		session.AddEntry(entry)

		if startID, ok := corr.subagentStartID[b.ToolUseID]; ok {
			status := format.SubagentCompleted
			if b.IsError {
				status = format.SubagentFailed
			}
			session.AddEntry(&format.SubagentEndEntry{
				Common:  format.Common{ID: format.NewID(), Ts: ts, Type: format.TypeSubagentEnd},
				StartID: startID,
				Status:  status,
			})
		}
	}
}

func emitClaudeAssistantLine(session *format.Session, corr *correlator, msg claudeMessage, ts int64) {
	text, thinking, blocks := extractClaudeContent(msg.Content)
	first := true

	if thinking != "" {
		session.AddEntry(&format.ThinkingEntry{
			Common:  format.Common{ID: format.NewID(), Ts: ts, Type: format.TypeThinking},
			Content: thinking,
		})
	}
	if text != "" {
		resp := &format.ResponseEntry{
			Common:  format.Common{ID: format.NewID(), Ts: ts, Type: format.TypeResponse},
			Content: text,
		}
		attachResponseMeta(resp, msg, &first)
		session.AddEntry(resp)
	}

	for _, b := range blocks {
		if b.Type != "tool_use" {
			continue
		}
		callID := format.NewID()
		corr.toolCallID[b.ID] = callID

		if b.Name == "Task" {
			startID := format.NewID()
			corr.subagentStartID[b.ID] = startID
			session.AddEntry(&format.SubagentStartEntry{
				Common: format.Common{ID: startID, Ts: ts, Type: format.TypeSubagentStart},
				Agent:  "claude-code",
			})
		}

		session.AddEntry(&format.ToolCallEntry{
			Common: format.Common{ID: callID, Ts: ts, Type: format.TypeToolCall},
			Tool:   b.Name,
			Input:  rawOrEmptyObject(b.Input),
		})
	}
}

func attachResponseMeta(resp *format.ResponseEntry, msg claudeMessage, first *bool) {
	if !*first {
		return
	}
	*first = false
	resp.Model = msg.Model
	if msg.Usage == nil {
		return
	}
	if msg.Usage.InputTokens == 0 && msg.Usage.OutputTokens == 0 {
		return
	}
	resp.TokenUsage = &format.TokenUsage{
		InputTokens:         msg.Usage.InputTokens,
		OutputTokens:        msg.Usage.OutputTokens,
		CacheReadTokens:     msg.Usage.CacheReadInputTokens,
		CacheCreationTokens: msg.Usage.CacheCreationInputTokens,
	}
}

// extractClaudeContent handles both shapes of a Claude message's
// "content" field: a bare string, or an array of typed content blocks.
func extractClaudeContent(raw json.RawMessage) (text, thinking string, blocks []claudeContentBlock) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), "", nil
	}

	if err := json.Unmarshal(raw, &blocks); err == nil {
		var textParts, thinkParts []string
		for _, b := range blocks {
			switch b.Type {
			case "text":
				if b.Text != "" {
					textParts = append(textParts, b.Text)
				}
			case "thinking":
				if b.Thinking != "" {
					thinkParts = append(thinkParts, b.Thinking)
				}
			}
		}
		return strings.TrimSpace(strings.Join(textParts, "\n")),
			strings.TrimSpace(strings.Join(thinkParts, "\n")),
			blocks
	}
	return "", "", nil
}

// extractToolResultText flattens a tool_result content field, which may
// be a bare string or an array of {type:"text", text:...} blocks.
func extractToolResultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []claudeContentBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var parts []string
		for _, b := range blocks {
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func parseClaudeTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

func rawOrEmptyObject(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	return raw
}

func setExtra(c *format.Common, key, value string) {
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	if c.Extra == nil {
		c.Extra = map[string]json.RawMessage{}
	}
	c.Extra[key] = b
}
