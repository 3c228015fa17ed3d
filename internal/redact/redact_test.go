package redact

import (
	"strings"
	"testing"

	"github.com/asbjornb/spool/internal/format"
)

func sessionWithPrompt(content string) *format.Session {
	s := format.New(&format.SessionEntry{
		Common:     format.Common{ID: "h"},
		Version:    "1.0",
		Agent:      "test",
		RecordedAt: "2025-01-01T00:00:00Z",
	})
	s.AddEntry(&format.PromptEntry{
		Common:  format.Common{ID: "p1", Ts: 100, Type: format.TypePrompt},
		Content: content,
	})
	return s
}

func TestDetectAnthropicKey(t *testing.T) {
	s := sessionWithPrompt("key=sk-ant-api01-" + strings.Repeat("a", 45))
	findings := Detect(s)
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	if findings[0].Category != AnthropicAPIKey {
		t.Fatalf("category = %s", findings[0].Category)
	}
}

func TestDetectGenericKeyValue(t *testing.T) {
	cases := []string{
		`"api_key": "` + strings.Repeat("a", 24) + `"`,
		`"key": "` + strings.Repeat("a", 24) + `"`,
	}
	for _, c := range cases {
		s := sessionWithPrompt(c)
		findings := Detect(s)
		if len(findings) != 1 {
			t.Fatalf("%q: findings = %d, want 1", c, len(findings))
		}
		if findings[0].Category != GenericKeyValue {
			t.Fatalf("%q: category = %s, want %s", c, findings[0].Category, GenericKeyValue)
		}
	}
}

func TestApplyRedactionsDestructive(t *testing.T) {
	secret := "sk-ant-api01-" + strings.Repeat("a", 45)
	s := sessionWithPrompt("key=" + secret)
	findings := Detect(s)
	out := ApplyRedactions(s, findings)

	prompt := out.Entries[1].(*format.PromptEntry)
	if strings.Contains(prompt.Content, secret) {
		t.Fatal("matched secret text still present after redaction")
	}
	if !strings.Contains(prompt.Content, "[REDACTED:anthropic_api_key]") {
		t.Fatalf("missing replacement marker in %q", prompt.Content)
	}

	marker, ok := out.Entries[2].(*format.RedactionMarkerEntry)
	if !ok {
		t.Fatalf("entries[2] = %T, want *RedactionMarkerEntry", out.Entries[2])
	}
	if marker.TargetID != "p1" {
		t.Fatalf("marker target = %s", marker.TargetID)
	}
	if marker.Count == nil || *marker.Count != 1 {
		t.Fatalf("marker count = %v", marker.Count)
	}
}

func TestApplyRedactionsIdempotent(t *testing.T) {
	secret := "sk-ant-api01-" + strings.Repeat("a", 45)
	s := sessionWithPrompt("key=" + secret)
	once := ApplyRedactions(s, Detect(s))
	twice := ApplyRedactions(once, Detect(once))

	p1 := once.Entries[1].(*format.PromptEntry).Content
	p2 := twice.Entries[1].(*format.PromptEntry).Content
	if p1 != p2 {
		t.Fatalf("redaction not idempotent: %q != %q", p1, p2)
	}
	if len(Detect(once)) != 0 {
		t.Fatal("replacement marker should not itself match a pattern")
	}
}

func TestNonOverlappingMatchesBothSurvive(t *testing.T) {
	// An email and an API key in separate spans of one payload do not
	// overlap, so overlap resolution keeps both findings.
	s := sessionWithPrompt("Email: test@example.com, Key: sk-ant-api01-" + strings.Repeat("b", 45))
	findings := Detect(s)
	if len(findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(findings))
	}
}

func TestNoSecrets(t *testing.T) {
	s := sessionWithPrompt("This is just regular text with no secrets.")
	if len(Detect(s)) != 0 {
		t.Fatal("expected no findings")
	}
}
