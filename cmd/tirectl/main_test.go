package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tire-backend/internal/tires"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScoreJSON(t *testing.T) {
	out, err := run(t, "score", "--type", "summer", "--year", "2014", "--mileage", "120.000",
		"--tag", "crack=0.9", "--tag", "bald=0.95", "--date", "2026-01-15", "-o", "json")
	if err != nil {
		t.Fatalf("score: %v\n%s", err, out)
	}
	var res tires.AnalysisResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if res.Facts.AgeYears != 12 || res.SafetyScore >= 40 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Problems) < 2 {
		t.Fatalf("expected crack and bald problems, got %+v", res.Problems)
	}
}

func TestScoreHuman(t *testing.T) {
	out, err := run(t, "score", "-t", "winter", "-y", "2025", "--date", "2026-01-15")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	for _, want := range []string{"SAFETY SCORE:", "seasonal  100", "Recommendations"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestScoreYAML(t *testing.T) {
	out, err := run(t, "score", "-t", "summer", "-y", "2024", "--date", "2026-07-01", "-o", "yaml")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !strings.Contains(out, "safetyScore:") {
		t.Fatalf("yaml should use API field names:\n%s", out)
	}
}

func TestScoreRejectsBadTag(t *testing.T) {
	if _, err := run(t, "score", "--tag", "crack"); err == nil {
		t.Fatalf("expected error for tag without confidence")
	}
	if _, err := run(t, "score", "--tag", "crack=2"); err == nil {
		t.Fatalf("expected error for confidence above 1")
	}
	if _, err := run(t, "score", "-o", "xml"); err == nil {
		t.Fatalf("expected error for unknown output format")
	}
}

func TestPromptsRenderAllPlaceholders(t *testing.T) {
	out, err := run(t, "prompts", "--brand", "Michelin", "-y", "2020", "--date", "2026-01-15", "--tag", "tire=0.9")
	if err != nil {
		t.Fatalf("prompts: %v", err)
	}
	for _, name := range []string{"analysis", "problems", "brand", "technical"} {
		if !strings.Contains(out, "===== "+name+" =====") {
			t.Fatalf("missing prompt %s", name)
		}
	}
	if strings.Contains(out, "{{") {
		t.Fatalf("unrendered placeholder in output:\n%s", out)
	}
	if !strings.Contains(out, "Michelin") {
		t.Fatalf("brand not rendered")
	}

	if _, err := run(t, "prompts", "--only", "nope"); err == nil {
		t.Fatalf("expected error for unknown prompt")
	}
}
