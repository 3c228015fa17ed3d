// Package redact implements the format's secret detection and
// destructive redaction: a fixed, ordered table of regular expressions,
// overlap resolution over the matches for a single text payload, and
// in-place substitution plus marker emission across a whole session.
package redact

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/asbjornb/spool/internal/format"
)

// Category is one of the twelve authoritative secret categories for
// this version of the format. This enumeration is more granular than
// the original Rust detector's nine-category SecretCategory enum
// (ApiKey/Password/Email/Phone/IpAddress/PrivateKey/AwsKey/GitHubToken/
// JwtToken) — the finer split here is mandated by the specification
// and takes precedence.
type Category string

const (
	AnthropicAPIKey Category = "anthropic_api_key"
	OpenAIAPIKey    Category = "openai_api_key"
	GenericKeyValue Category = "generic_keyvalue"
	Email           Category = "email"
	PhoneUS         Category = "phone_us"
	PhoneIntl       Category = "phone_intl"
	IPv4            Category = "ipv4"
	PrivateKey      Category = "private_key"
	AWSAccessKey    Category = "aws_access_key"
	GitHubClassic   Category = "github_classic_pat"
	GitHubFinePAT   Category = "github_fine_pat"
	JWT             Category = "jwt"
)

type pattern struct {
	re       *regexp.Regexp
	category Category
}

// patterns is applied in this fixed order, the order of the format's
// category table. The order does not decide overlaps: overlap
// resolution keeps the longer of two overlapping matches whichever
// pattern produced it.
var patterns = []pattern{
	{regexp.MustCompile(`sk-ant-api\d{2}-[A-Za-z0-9_-]{40,}`), AnthropicAPIKey},
	{regexp.MustCompile(`sk-[A-Za-z0-9]{32,}`), OpenAIAPIKey},
	{regexp.MustCompile(`(?i)['"]((api[_-]?)?key)['"]?\s*[:=]\s*['"][A-Za-z0-9_-]{20,}['"]`), GenericKeyValue},
	{regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`), Email},
	{regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`), PhoneUS},
	{regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{1,14}`), PhoneIntl},
	{regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`), IPv4},
	{regexp.MustCompile(`-----BEGIN [A-Z ]+ PRIVATE KEY-----`), PrivateKey},
	{regexp.MustCompile(`AKIA[0-9A-Z]{16}`), AWSAccessKey},
	{regexp.MustCompile(`ghp_[A-Za-z0-9]{36}`), GitHubClassic},
	{regexp.MustCompile(`github_pat_[A-Za-z0-9]{22}_[A-Za-z0-9]{59}`), GitHubFinePAT},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), JWT},
}

// Replacement returns the category's fixed redaction placeholder.
func (c Category) Replacement() string { return fmt.Sprintf("[REDACTED:%s]", c) }

// Finding is one detected secret within one entry's text payload.
type Finding struct {
	EntryIndex int
	Start      int
	End        int
	Matched    string
	Category   Category
	Confirmed  bool
}

func (f Finding) Replacement() string { return f.Category.Replacement() }

// payloadText extracts the single text payload a given entry type
// exposes for scanning, per the format's payload table. Entries with no
// textual payload (or a binary tool_result.output) are skipped.
func payloadText(e format.Entry) (string, bool) {
	switch v := e.(type) {
	case *format.PromptEntry:
		return v.Content, true
	case *format.ResponseEntry:
		return v.Content, true
	case *format.ThinkingEntry:
		return v.Content, true
	case *format.ToolResultEntry:
		if v.Output != nil && !v.Output.IsBinary() {
			return v.Output.Text, true
		}
		if v.Error != nil {
			return *v.Error, true
		}
		return "", false
	case *format.ErrorEntry:
		return v.Message, true
	case *format.AnnotationEntry:
		return v.Content, true
	default:
		return "", false
	}
}

func setPayloadText(e format.Entry, text string) {
	switch v := e.(type) {
	case *format.PromptEntry:
		v.Content = text
	case *format.ResponseEntry:
		v.Content = text
	case *format.ThinkingEntry:
		v.Content = text
	case *format.ToolResultEntry:
		if v.Output != nil && !v.Output.IsBinary() {
			v.Output.Text = text
		} else if v.Error != nil {
			v.Error = &text
		}
	case *format.ErrorEntry:
		v.Message = text
	case *format.AnnotationEntry:
		v.Content = text
	}
}

// Detect scans every text-bearing entry in the session and returns a
// disjoint, sorted set of findings per entry.
func Detect(s *format.Session) []Finding {
	var findings []Finding
	for i, e := range s.Entries {
		text, ok := payloadText(e)
		if !ok || text == "" {
			continue
		}
		findings = append(findings, detectInText(i, text)...)
	}
	return findings
}

func detectInText(entryIndex int, text string) []Finding {
	var raw []Finding
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			raw = append(raw, Finding{
				EntryIndex: entryIndex,
				Start:      loc[0],
				End:        loc[1],
				Matched:    text[loc[0]:loc[1]],
				Category:   p.category,
				Confirmed:  true,
			})
		}
	}
	sort.Slice(raw, func(i, j int) bool { return raw[i].Start < raw[j].Start })
	return deduplicateOverlapping(raw)
}

// deduplicateOverlapping walks a start-ascending list and, for each
// adjacent overlapping pair, drops the shorter match; ties favor the
// earlier (left) match.
func deduplicateOverlapping(findings []Finding) []Finding {
	if len(findings) < 2 {
		return findings
	}
	out := make([]Finding, 0, len(findings))
	out = append(out, findings[0])
	for i := 1; i < len(findings); i++ {
		last := &out[len(out)-1]
		cur := findings[i]
		if cur.Start >= last.End {
			out = append(out, cur)
			continue
		}
		lastLen := last.End - last.Start
		curLen := cur.End - cur.Start
		if curLen > lastLen {
			out[len(out)-1] = cur
		}
		// tie or shorter: keep last (the earlier-starting match)
	}
	return out
}

// ApplyRedactions rewrites every confirmed finding's matched text with
// its category placeholder and inserts a redaction_marker after each
// affected entry. Redaction is destructive: the returned Session is new
// and the input is left as observed by the caller (though the
// implementation mutates entry copies for efficiency, per the format's
// value-semantics design note).
func ApplyRedactions(s *format.Session, confirmed []Finding) *format.Session {
	byEntry := map[int][]Finding{}
	for _, f := range confirmed {
		if !f.Confirmed {
			continue
		}
		byEntry[f.EntryIndex] = append(byEntry[f.EntryIndex], f)
	}

	out := &format.Session{Entries: append([]format.Entry(nil), s.Entries...)}

	// Process entries back-to-front so inserting markers doesn't
	// perturb indices of entries not yet processed.
	indices := make([]int, 0, len(byEntry))
	for idx := range byEntry {
		indices = append(indices, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))

	for _, idx := range indices {
		group := byEntry[idx]
		// Descending start order so earlier offsets are not shifted
		// by a later substitution, per the format's apply() step 1.
		sort.Slice(group, func(i, j int) bool { return group[i].Start > group[j].Start })

		entry := out.Entries[idx]
		text, ok := payloadText(entry)
		if !ok {
			continue
		}
		dominant := group[0].Category
		counts := map[Category]int{}
		for _, f := range group {
			if f.Start < 0 || f.End > len(text) || f.Start > f.End {
				continue
			}
			text = text[:f.Start] + f.Replacement() + text[f.End:]
			counts[f.Category]++
		}
		setPayloadText(entry, text)

		best := dominant
		bestCount := 0
		for cat, n := range counts {
			if n > bestCount {
				best, bestCount = cat, n
			}
		}
		total := len(group)

		marker := &format.RedactionMarkerEntry{
			Common: format.Common{
				ID:   format.NewID(),
				Ts:   entry.Timestamp(),
				Type: format.TypeRedactionMarker,
			},
			TargetID: entry.EntryID(),
			Reason:   format.RedactionReason(best),
			Count:    intPtr(total),
		}
		out.InsertAfter(idx, marker)
	}

	format.Recompute(out)
	return out
}

func intPtr(n int) *int { return &n }
