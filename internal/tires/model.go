package tires

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// TireType is the declared seasonal category of a tire.
type TireType string

const (
	TypeSummer    TireType = "summer"
	TypeWinter    TireType = "winter"
	TypeAllSeason TireType = "all-season"
	TypeUnknown   TireType = "unknown"
)

// ParseTireType normalizes a declared tire type. Unrecognized values map to TypeUnknown.
func ParseTireType(raw string) TireType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "summer", "yaz", "yazlık", "yazlik":
		return TypeSummer
	case "winter", "kış", "kis", "kışlık", "kislik":
		return TypeWinter
	case "all-season", "all_season", "allseason", "all season", "dört mevsim", "dort mevsim", "4 mevsim":
		return TypeAllSeason
	default:
		return TypeUnknown
	}
}

// Attributes are the user-declared facts about the tire.
type Attributes struct {
	TireType       TireType `json:"tireType"`
	Brand          string   `json:"brand"`
	Model          string   `json:"model"`
	Size           string   `json:"size"`
	ProductionYear int      `json:"productionYear"`
	MileageRaw     string   `json:"mileage"`
}

// Tag is a single label emitted by the image tagging service.
type Tag struct {
	Name       string          `json:"name"`
	Confidence float64         `json:"confidence"`
	Region     json.RawMessage `json:"region,omitempty"`
}

// Caption is the free-text description emitted by the image tagging service.
type Caption struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// VisionSignal is the read-only output of the vision adapter for one photo.
type VisionSignal struct {
	Tags    []Tag    `json:"tags"`
	Caption *Caption `json:"caption,omitempty"`
}

// CaptionText returns the lower-cased caption text, or "" when there is no caption.
func (v VisionSignal) CaptionText() string {
	if v.Caption == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(v.Caption.Text))
}

// ScoreComponents holds the five sub-scores, each in [0,100].
type ScoreComponents struct {
	Age      int `json:"age"`
	Usage    int `json:"usage"`
	Seasonal int `json:"seasonal"`
	Brand    int `json:"brand"`
	Visual   int `json:"visual"`
}

// Season is a bucket of the canonical calendar.
type Season string

const (
	SeasonWinter     Season = "winter"
	SeasonTransition Season = "transition"
	SeasonSummer     Season = "summer"
)

// Facts are the values derived from the request that every component reads.
type Facts struct {
	Now      time.Time `json:"-"`
	AgeYears int       `json:"ageYears"`
	Month    int       `json:"month"`
	Season   Season    `json:"season"`
	// BrandNew is set when the production year is in the future or the tire is under a year old.
	BrandNew bool `json:"brandNew"`
}

// Lifespan is the estimated remaining service life.
type Lifespan struct {
	Months     int     `json:"months"`
	Confidence float64 `json:"confidence"`
}

// MaintenanceNeeds buckets recommended actions by when they should happen.
type MaintenanceNeeds struct {
	Immediate []string `json:"immediate"`
	Soon      []string `json:"soon"`
	Future    []string `json:"future"`
}

// AnalysisResult is the composite output of one analysis.
type AnalysisResult struct {
	ScoreComponents
	SafetyScore       int              `json:"safetyScore"`
	Summary           string           `json:"summary"`
	Problems          []Problem        `json:"problems"`
	Recommendations   []string         `json:"recommendations"`
	MaintenanceNeeds  MaintenanceNeeds `json:"maintenanceNeeds"`
	EstimatedLifespan Lifespan         `json:"estimatedLifespan"`
	Narrative         json.RawMessage  `json:"narrative,omitempty"`
	Facts             Facts            `json:"facts"`
	Degraded          bool             `json:"degraded"`
	Warnings          []string         `json:"warnings,omitempty"`
}

// Clone returns a copy that shares no slices with r. Nil and empty slices are preserved as such.
func (r AnalysisResult) Clone() AnalysisResult {
	out := r
	out.Problems = slices.Clone(r.Problems)
	for i := range out.Problems {
		out.Problems[i].VisualSigns = slices.Clone(r.Problems[i].VisualSigns)
	}
	out.Recommendations = slices.Clone(r.Recommendations)
	out.MaintenanceNeeds = MaintenanceNeeds{
		Immediate: slices.Clone(r.MaintenanceNeeds.Immediate),
		Soon:      slices.Clone(r.MaintenanceNeeds.Soon),
		Future:    slices.Clone(r.MaintenanceNeeds.Future),
	}
	out.Narrative = slices.Clone(r.Narrative)
	out.Warnings = slices.Clone(r.Warnings)
	return out
}
