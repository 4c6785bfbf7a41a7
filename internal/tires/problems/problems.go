// Package problems builds the structured problem list of an analysis, either
// from vision tags (fast path) or from the narrative service's detailed reply.
package problems

import (
	"math"
	"strings"

	"tire-backend/internal/tires"
	"tire-backend/internal/tires/rules"
)

// FastPathMinConfidence is the lowest tag confidence the fast path acts on.
const FastPathMinConfidence = 0.4

// CaptionPrefix marks descriptions derived from the image caption rather than a tag.
const CaptionPrefix = "Görüntü açıklamasına göre: "

type Extractor struct {
	rules *rules.Table
}

// New returns an Extractor over table; a nil table means rules.Default().
func New(table *rules.Table) *Extractor {
	if table == nil {
		table = rules.Default()
	}
	return &Extractor{rules: table}
}

// FastPath derives problems from the vision signal alone.
func (e *Extractor) FastPath(sig tires.VisionSignal) []tires.Problem {
	var l list
	for _, tag := range sig.Tags {
		if tag.Confidence < FastPathMinConfidence {
			continue
		}
		tpl, ok := e.rules.MatchTemplate(tag.Name)
		if !ok {
			continue
		}
		p := tpl.Problem(clampUnit(tag.Confidence))
		p.VisualSigns = []string{tag.Name}
		l.add(p)
	}

	if sig.Caption != nil {
		for _, typ := range e.rules.CaptionProblemTypes(sig.Caption.Text) {
			if l.has(typ) {
				continue
			}
			tpl, ok := e.rules.TemplateFor(typ)
			if !ok {
				continue
			}
			p := tpl.Problem(clampUnit(sig.Caption.Confidence))
			p.Description = CaptionPrefix + p.Description
			l.add(p)
		}
	}
	return l.items
}

// Normalize validates problems returned by the narrative service: entries
// without a type are dropped, unknown enum values take their defaults,
// confidence is clamped to [0,1], the urgency/maintenance invariant is
// enforced and duplicate types are removed (first wins).
func (e *Extractor) Normalize(raw []tires.Problem) []tires.Problem {
	var l list
	for _, p := range raw {
		p.Type = strings.TrimSpace(p.Type)
		if p.Type == "" {
			continue
		}
		p.Severity, _ = tires.ParseSeverity(string(p.Severity))
		p.Urgency, _ = tires.ParseUrgency(string(p.Urgency))
		p.EstimatedCost, _ = tires.ParseCost(string(p.EstimatedCost))
		p.SafetyImpact, _ = tires.ParseSafetyImpact(string(p.SafetyImpact))
		p.MaintenanceType, _ = tires.ParseMaintenanceType(string(p.MaintenanceType))
		p.Confidence = clampUnit(p.Confidence)
		p.Description = strings.TrimSpace(p.Description)
		p.SuggestedAction = strings.TrimSpace(p.SuggestedAction)
		l.add(p.NormalizeInvariant())
	}
	return l.items
}

// FilterForAge removes age-related findings from the list of a brand-new tire.
// If nothing remains, the list becomes the single break-in advisory.
func (e *Extractor) FilterForAge(in []tires.Problem, facts tires.Facts) []tires.Problem {
	if !facts.BrandNew {
		return in
	}
	out := make([]tires.Problem, 0, len(in))
	for _, p := range in {
		if e.rules.MentionsAge(p.Type + " " + p.Description) {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return []tires.Problem{e.BreakIn()}
	}
	return out
}

// BreakIn returns the canned advisory for a tire in its break-in period.
func (e *Extractor) BreakIn() tires.Problem {
	tpl := e.rules.BreakIn
	return tpl.Problem(tpl.Confidence)
}

// Dedupe keeps the first problem of each type.
func Dedupe(in []tires.Problem) []tires.Problem {
	var l list
	for _, p := range in {
		l.add(p)
	}
	return l.items
}

// list is an insertion-ordered problem list keyed by type.
type list struct {
	items []tires.Problem
	seen  map[string]bool
}

func (l *list) has(typ string) bool {
	return l.seen[strings.ToLower(strings.TrimSpace(typ))]
}

func (l *list) add(p tires.Problem) bool {
	if l.seen == nil {
		l.seen = map[string]bool{}
	}
	k := p.Key()
	if l.seen[k] {
		return false
	}
	l.seen[k] = true
	l.items = append(l.items, p)
	return true
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
