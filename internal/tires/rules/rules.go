// Package rules holds the keyword tables that drive visual scoring and
// problem extraction. Every entry is keyed by (keyword, language); the tables
// are loaded once from the embedded rules.yaml.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"

	"tire-backend/internal/tires"
)

//go:embed rules.yaml
var defaultRules []byte

const (
	LangEN = "en"
	LangTR = "tr"
)

// Keyword is one (keyword, language) key. A keyword matches text words that
// start with it; Whole restricts it to the entire word. Multi-word keywords
// match consecutive words, with only the last one matched as a prefix.
type Keyword struct {
	Keyword string `yaml:"keyword"`
	Lang    string `yaml:"lang"`
	Whole   bool   `yaml:"whole"`
}

type Impact struct {
	Keyword `yaml:",inline"`
	Impact  float64 `yaml:"impact"`
}

type PartWeight struct {
	Keyword `yaml:",inline"`
	Weight  float64 `yaml:"weight"`
}

// CaptionImpact is a keyword group scanned against the caption. A group applies at most once.
type CaptionImpact struct {
	Name     string    `yaml:"name"`
	Impact   float64   `yaml:"impact"`
	Keywords []Keyword `yaml:"keywords"`
}

// Template is a canned problem description.
type Template struct {
	Type            string    `yaml:"type"`
	Severity        string    `yaml:"severity"`
	Confidence      float64   `yaml:"confidence"`
	Description     string    `yaml:"description"`
	SuggestedAction string    `yaml:"suggested_action"`
	Urgency         string    `yaml:"urgency"`
	EstimatedCost   string    `yaml:"estimated_cost"`
	SafetyImpact    string    `yaml:"safety_impact"`
	MaintenanceType string    `yaml:"maintenance_type"`
	Keywords        []Keyword `yaml:"keywords"`
}

// CaptionProblem maps a caption keyword onto a template type.
type CaptionProblem struct {
	Keyword `yaml:",inline"`
	Type    string `yaml:"type"`
}

// Table is the full rule set.
type Table struct {
	VisualImpacts   []Impact         `yaml:"visual_impacts"`
	PartWeights     []PartWeight     `yaml:"part_weights"`
	CaptionImpacts  []CaptionImpact  `yaml:"caption_impacts"`
	Templates       []Template       `yaml:"problem_templates"`
	CaptionProblems []CaptionProblem `yaml:"caption_problems"`
	AgeKeywords     []Keyword        `yaml:"age_keywords"`
	BreakIn         Template         `yaml:"break_in"`
	Detection       []Keyword        `yaml:"detection"`

	byType map[string]int
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded rule table. It panics if the embedded file is invalid,
// which the package tests guard against.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(defaultRules)
		if err != nil {
			panic(fmt.Sprintf("rules: embedded table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Parse decodes and validates a YAML rule table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	t.normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) normalize() {
	lower := func(ks []Keyword) {
		for i := range ks {
			ks[i].Keyword = strings.ToLower(strings.TrimSpace(ks[i].Keyword))
			ks[i].Lang = strings.ToLower(strings.TrimSpace(ks[i].Lang))
		}
	}
	for i := range t.VisualImpacts {
		t.VisualImpacts[i].Keyword = normKeyword(t.VisualImpacts[i].Keyword)
	}
	for i := range t.PartWeights {
		t.PartWeights[i].Keyword = normKeyword(t.PartWeights[i].Keyword)
	}
	for i := range t.CaptionImpacts {
		lower(t.CaptionImpacts[i].Keywords)
	}
	for i := range t.Templates {
		lower(t.Templates[i].Keywords)
	}
	for i := range t.CaptionProblems {
		t.CaptionProblems[i].Keyword = normKeyword(t.CaptionProblems[i].Keyword)
	}
	lower(t.AgeKeywords)
	lower(t.Detection)

	t.byType = make(map[string]int, len(t.Templates))
	for i, tpl := range t.Templates {
		key := strings.ToLower(strings.TrimSpace(tpl.Type))
		if _, dup := t.byType[key]; !dup {
			t.byType[key] = i
		}
	}
}

func normKeyword(k Keyword) Keyword {
	return Keyword{
		Keyword: strings.ToLower(strings.TrimSpace(k.Keyword)),
		Lang:    strings.ToLower(strings.TrimSpace(k.Lang)),
		Whole:   k.Whole,
	}
}

// Validate checks that every entry is usable.
func (t *Table) Validate() error {
	var errs []error
	checkKeyword := func(where string, k Keyword) {
		if k.Keyword == "" {
			errs = append(errs, fmt.Errorf("%s: empty keyword", where))
		}
		if k.Lang != LangEN && k.Lang != LangTR {
			errs = append(errs, fmt.Errorf("%s: keyword %q has unsupported lang %q", where, k.Keyword, k.Lang))
		}
	}
	for _, imp := range t.VisualImpacts {
		checkKeyword("visual_impacts", imp.Keyword)
	}
	for _, pw := range t.PartWeights {
		checkKeyword("part_weights", pw.Keyword)
		if pw.Weight <= 0 {
			errs = append(errs, fmt.Errorf("part_weights: %q weight must be positive", pw.Keyword.Keyword))
		}
	}
	for _, ci := range t.CaptionImpacts {
		if len(ci.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("caption_impacts: group %q has no keywords", ci.Name))
		}
		for _, k := range ci.Keywords {
			checkKeyword("caption_impacts", k)
		}
	}
	seen := map[string]bool{}
	for _, tpl := range t.Templates {
		key := strings.ToLower(strings.TrimSpace(tpl.Type))
		if seen[key] {
			errs = append(errs, fmt.Errorf("problem_templates: duplicate type %q", tpl.Type))
		}
		seen[key] = true
		errs = append(errs, validateTemplate("problem_templates", tpl)...)
		for _, k := range tpl.Keywords {
			checkKeyword("problem_templates", k)
		}
	}
	for _, cp := range t.CaptionProblems {
		checkKeyword("caption_problems", cp.Keyword)
		if !seen[strings.ToLower(cp.Type)] {
			errs = append(errs, fmt.Errorf("caption_problems: %q references unknown type %q", cp.Keyword.Keyword, cp.Type))
		}
	}
	for _, k := range t.AgeKeywords {
		checkKeyword("age_keywords", k)
	}
	for _, k := range t.Detection {
		checkKeyword("detection", k)
	}
	errs = append(errs, validateTemplate("break_in", t.BreakIn)...)
	return errors.Join(errs...)
}

func validateTemplate(where string, tpl Template) []error {
	var errs []error
	if strings.TrimSpace(tpl.Type) == "" {
		errs = append(errs, fmt.Errorf("%s: empty type", where))
	}
	if _, ok := tires.ParseSeverity(tpl.Severity); !ok {
		errs = append(errs, fmt.Errorf("%s: %q has invalid severity %q", where, tpl.Type, tpl.Severity))
	}
	if _, ok := tires.ParseUrgency(tpl.Urgency); !ok {
		errs = append(errs, fmt.Errorf("%s: %q has invalid urgency %q", where, tpl.Type, tpl.Urgency))
	}
	if _, ok := tires.ParseCost(tpl.EstimatedCost); !ok {
		errs = append(errs, fmt.Errorf("%s: %q has invalid estimated_cost %q", where, tpl.Type, tpl.EstimatedCost))
	}
	if _, ok := tires.ParseSafetyImpact(tpl.SafetyImpact); !ok {
		errs = append(errs, fmt.Errorf("%s: %q has invalid safety_impact %q", where, tpl.Type, tpl.SafetyImpact))
	}
	if _, ok := tires.ParseMaintenanceType(tpl.MaintenanceType); !ok {
		errs = append(errs, fmt.Errorf("%s: %q has invalid maintenance_type %q", where, tpl.Type, tpl.MaintenanceType))
	}
	if tpl.Confidence < 0 || tpl.Confidence > 1 {
		errs = append(errs, fmt.Errorf("%s: %q confidence out of range", where, tpl.Type))
	}
	return errs
}

// VisualImpact returns the impact of the first entry whose keyword occurs in tag.
func (t *Table) VisualImpact(tag string) (float64, bool) {
	words := splitWords(tag)
	for _, imp := range t.VisualImpacts {
		if imp.Keyword.matches(words) {
			return imp.Impact, true
		}
	}
	return 0, false
}

// PartWeight returns the weight of the first tire part named as a whole word in tag, or 1.
func (t *Table) PartWeight(tag string) float64 {
	words := splitWords(tag)
	for _, pw := range t.PartWeights {
		for _, w := range words {
			if w == pw.Keyword.Keyword {
				return pw.Weight
			}
		}
	}
	return 1
}

// CaptionHits returns every caption group with at least one keyword in text.
func (t *Table) CaptionHits(text string) []CaptionImpact {
	words := splitWords(text)
	var out []CaptionImpact
	for _, ci := range t.CaptionImpacts {
		if containsAny(words, ci.Keywords) {
			out = append(out, ci)
		}
	}
	return out
}

// MatchTemplate returns the first template with a keyword occurring in tag.
func (t *Table) MatchTemplate(tag string) (Template, bool) {
	words := splitWords(tag)
	for _, tpl := range t.Templates {
		if containsAny(words, tpl.Keywords) {
			return tpl, true
		}
	}
	return Template{}, false
}

// TemplateFor returns the template for a problem type.
func (t *Table) TemplateFor(problemType string) (Template, bool) {
	i, ok := t.byType[strings.ToLower(strings.TrimSpace(problemType))]
	if !ok {
		return Template{}, false
	}
	return t.Templates[i], true
}

// CaptionProblemTypes returns the problem types whose caption keyword occurs in text, in table order.
func (t *Table) CaptionProblemTypes(text string) []string {
	words := splitWords(text)
	var out []string
	seen := map[string]bool{}
	for _, cp := range t.CaptionProblems {
		if seen[cp.Type] || !cp.Keyword.matches(words) {
			continue
		}
		seen[cp.Type] = true
		out = append(out, cp.Type)
	}
	return out
}

// MentionsAge reports whether text contains an age-related keyword.
func (t *Table) MentionsAge(text string) bool {
	return containsAny(splitWords(text), t.AgeKeywords)
}

// NamesTire reports whether a tag name refers to a tire or wheel.
func (t *Table) NamesTire(name string) bool {
	return containsAny(splitWords(name), t.Detection)
}

// Problem builds a problem from the template with the invariant enforced.
func (tpl Template) Problem(confidence float64) tires.Problem {
	sev, _ := tires.ParseSeverity(tpl.Severity)
	urg, _ := tires.ParseUrgency(tpl.Urgency)
	cost, _ := tires.ParseCost(tpl.EstimatedCost)
	impact, _ := tires.ParseSafetyImpact(tpl.SafetyImpact)
	mt, _ := tires.ParseMaintenanceType(tpl.MaintenanceType)
	return tires.Problem{
		Type:            tpl.Type,
		Severity:        sev,
		Confidence:      confidence,
		Description:     tpl.Description,
		SuggestedAction: tpl.SuggestedAction,
		Urgency:         urg,
		EstimatedCost:   cost,
		SafetyImpact:    impact,
		MaintenanceType: mt,
	}.NormalizeInvariant()
}

func containsAny(words []string, ks []Keyword) bool {
	for _, k := range ks {
		if k.matches(words) {
			return true
		}
	}
	return false
}

func (k Keyword) matches(words []string) bool {
	parts := splitWords(k.Keyword)
	if len(parts) == 0 {
		return false
	}
	last := len(parts) - 1
	for i := 0; i+len(parts) <= len(words); i++ {
		hit := true
		for j, part := range parts {
			w := words[i+j]
			if w == part || (j == last && !k.Whole && strings.HasPrefix(w, part)) {
				continue
			}
			hit = false
			break
		}
		if hit {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
