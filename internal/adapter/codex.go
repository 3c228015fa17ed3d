package adapter

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/asbjornb/spool/internal/format"
)

// Codex is the adapter for Codex CLI's JSONL session rollouts, grounded
// on the teacher's internal/parse/codex.go record shapes, generalized
// to emit a full typed Entry sequence and extended with the tool-call
// correlation, turn_context model tracking, and apply_patch
// files-modified scanning documented in the original Rust codex
// adapter.
type Codex struct{}

type codexRecord struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type codexSessionMeta struct {
	Cwd        string `json:"cwd"`
	Originator string `json:"originator"`
	Source     string `json:"source"`
	Git        *struct {
		Branch        string `json:"branch"`
		RepositoryURL string `json:"repository_url"`
	} `json:"git"`
}

type codexEventPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Text    string `json:"text"`
}

type codexTurnContext struct {
	Model         string `json:"model"`
	ModelProvider string `json:"model_provider"`
}

type codexContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type codexResponseItem struct {
	Type      string             `json:"type"`
	Role      string             `json:"role"`
	Content   []codexContentPart `json:"content"`
	CallID    string             `json:"call_id"`
	Name      string             `json:"name"`
	Arguments string             `json:"arguments"`
	Input     string             `json:"input"`
	Output    string             `json:"output"`
	Action    json.RawMessage    `json:"action"`
}

func (Codex) Sniff(firstLine []byte) bool {
	var rec codexRecord
	if err := json.Unmarshal(firstLine, &rec); err != nil {
		return false
	}
	return rec.Type == "session_meta" || rec.Type == "event_msg" || rec.Type == "response_item" || rec.Type == "turn_context"
}

func (Codex) Convert(data []byte) (*format.Session, error) {
	lines := splitLines(data)
	if len(lines) == 0 {
		return nil, &ErrNoRecognizableLines{Vendor: "codex"}
	}
	records := make([]codexRecord, 0, len(lines))
	for _, line := range lines {
		var rec codexRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, &ErrNoRecognizableLines{Vendor: "codex"}
	}

	var sessionStart, sessionEnd time.Time
	observe := func(t time.Time) {
		if t.IsZero() {
			return
		}
		if sessionStart.IsZero() || t.Before(sessionStart) {
			sessionStart = t
		}
		if t.After(sessionEnd) {
			sessionEnd = t
		}
	}
	for _, rec := range records {
		observe(parseCodexTimestamp(rec.Timestamp))
	}

	session := format.New(&format.SessionEntry{
		Common:     format.Common{ID: format.NewID()},
		Version:    "1.0",
		Agent:      "codex",
		RecordedAt: sessionStart.UTC().Format(time.RFC3339),
	})
	header := session.Header()

	corr := newCorrelator()
	var currentModel string
	patchPaths := map[string]struct{}{}
	sawAnyEntry := false
	var firstPrompt, title string

	for _, rec := range records {
		ts := relMs(sessionStart, parseCodexTimestamp(rec.Timestamp))

		switch rec.Type {
		case "session_meta":
			var meta codexSessionMeta
			if err := json.Unmarshal(rec.Payload, &meta); err == nil {
				if meta.Cwd != "" {
					setExtra(&header.Common, "x_cwd", meta.Cwd)
				}
				if meta.Originator != "" {
					setExtra(&header.Common, "x_originator", meta.Originator)
				}
				if meta.Source != "" {
					setExtra(&header.Common, "x_source", meta.Source)
				}
				if meta.Git != nil && meta.Git.RepositoryURL != "" {
					setExtra(&header.Common, "x_git", meta.Git.RepositoryURL)
				}
			}

		case "turn_context":
			var tc codexTurnContext
			if err := json.Unmarshal(rec.Payload, &tc); err == nil && tc.Model != "" {
				currentModel = tc.Model
				setExtra(&header.Common, "x_model", tc.Model)
				if tc.ModelProvider != "" {
					setExtra(&header.Common, "x_model_provider", tc.ModelProvider)
				}
			}

		case "event_msg":
			var evt codexEventPayload
			if err := json.Unmarshal(rec.Payload, &evt); err != nil {
				continue
			}
			switch evt.Type {
			case "user_message":
				text := strings.TrimSpace(evt.Message)
				if text == "" {
					continue
				}
				if firstPrompt == "" {
					firstPrompt = computeFirstPrompt(text)
					title = deriveTitle(text)
				}
				session.AddEntry(&format.PromptEntry{
					Common:  format.Common{ID: format.NewID(), Ts: ts, Type: format.TypePrompt},
					Content: text,
				})
				sawAnyEntry = true
			case "agent_message":
				text := strings.TrimSpace(evt.Message)
				if text == "" {
					continue
				}
				session.AddEntry(&format.ResponseEntry{
					Common:  format.Common{ID: format.NewID(), Ts: ts, Type: format.TypeResponse},
					Content: text,
					Model:   currentModel,
				})
				sawAnyEntry = true
			case "agent_reasoning":
				text := strings.TrimSpace(evt.Text)
				if text == "" {
					continue
				}
				session.AddEntry(&format.ThinkingEntry{
					Common:  format.Common{ID: format.NewID(), Ts: ts, Type: format.TypeThinking},
					Content: text,
				})
				sawAnyEntry = true
			}

		case "response_item":
			var item codexResponseItem
			if err := json.Unmarshal(rec.Payload, &item); err != nil {
				continue
			}
			switch item.Type {
			case "message":
				role := item.Role
				if role == "" {
					role = "assistant"
				}
				var parts []string
				for _, c := range item.Content {
					if (c.Type == "input_text" || c.Type == "output_text" || c.Type == "text") && c.Text != "" {
						parts = append(parts, c.Text)
					}
				}
				text := strings.TrimSpace(strings.Join(parts, "\n"))
				if text == "" {
					continue
				}
				if role == "user" {
					if firstPrompt == "" {
						firstPrompt = computeFirstPrompt(text)
						title = deriveTitle(text)
					}
					session.AddEntry(&format.PromptEntry{
						Common:  format.Common{ID: format.NewID(), Ts: ts, Type: format.TypePrompt},
						Content: text,
					})
				} else {
					session.AddEntry(&format.ResponseEntry{
						Common:  format.Common{ID: format.NewID(), Ts: ts, Type: format.TypeResponse},
						Content: text,
						Model:   currentModel,
					})
				}
				sawAnyEntry = true

			case "reasoning":
				var parts []string
				for _, c := range item.Content {
					if c.Text != "" {
						parts = append(parts, c.Text)
					}
				}
				text := strings.TrimSpace(strings.Join(parts, "\n"))
				if text == "" {
					continue
				}
				session.AddEntry(&format.ThinkingEntry{
					Common:  format.Common{ID: format.NewID(), Ts: ts, Type: format.TypeThinking},
					Content: text,
				})
				sawAnyEntry = true

			case "function_call", "custom_tool_call":
				callID := format.NewID()
				corr.toolCallID[item.CallID] = callID
				argsRaw := item.Arguments
				if argsRaw == "" {
					argsRaw = item.Input
				}
				session.AddEntry(&format.ToolCallEntry{
					Common: format.Common{ID: callID, Ts: ts, Type: format.TypeToolCall},
					Tool:   item.Name,
					Input:  parseArguments(argsRaw),
				})
				if item.Name == "apply_patch" {
					collectPatchPaths(argsRaw, patchPaths)
				}
				sawAnyEntry = true

			case "function_call_output", "custom_tool_call_output":
				callID, ok := corr.toolCallID[item.CallID]
				if !ok {
					continue
				}
				out := item.Output
				session.AddEntry(&format.ToolResultEntry{
					Common: format.Common{ID: format.NewID(), Ts: ts, Type: format.TypeToolResult},
					CallID: callID,
					Output: &format.ToolOutput{Text: out},
				})
				sawAnyEntry = true

			case "web_search_call":
				callID := format.NewID()
				session.AddEntry(&format.ToolCallEntry{
					Common: format.Common{ID: callID, Ts: ts, Type: format.TypeToolCall},
					Tool:   "web_search",
					Input:  rawOrEmptyObject(item.Action),
				})
				sawAnyEntry = true
			}
		}
	}

	if !sawAnyEntry {
		return nil, &ErrNoRecognizableLines{Vendor: "codex"}
	}
	if firstPrompt != "" {
		header.FirstPrompt = firstPrompt
	}
	if title != "" {
		header.Title = title
	}

	extraFiles := make([]string, 0, len(patchPaths))
	for p := range patchPaths {
		extraFiles = append(extraFiles, p)
	}
	finalizeHeader(session, format.EndedUnknown)
	collectFilesModified(session, extraFiles)
	return session, nil
}

// collectPatchPaths scans an apply_patch body for the hunk-header lines
// that name a touched file.
func collectPatchPaths(patchBody string, into map[string]struct{}) {
	prefixes := []string{"*** Update File: ", "*** Add File: ", "*** Delete File: "}
	for _, line := range strings.Split(patchBody, "\n") {
		for _, prefix := range prefixes {
			if strings.HasPrefix(line, prefix) {
				path := strings.TrimSpace(strings.TrimPrefix(line, prefix))
				if path != "" {
					into[path] = struct{}{}
				}
			}
		}
	}
}

func parseCodexTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}
