package tires

import "strings"

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencySoon      Urgency = "soon"
	UrgencyMonitor   Urgency = "monitor"
	UrgencyOptional  Urgency = "optional"
)

type Cost string

const (
	CostLow    Cost = "low"
	CostMedium Cost = "medium"
	CostHigh   Cost = "high"
)

type SafetyImpact string

const (
	ImpactMinor       SafetyImpact = "minor"
	ImpactModerate    SafetyImpact = "moderate"
	ImpactSignificant SafetyImpact = "significant"
	ImpactCritical    SafetyImpact = "critical"
)

type MaintenanceType string

const (
	MaintenanceMonitoring  MaintenanceType = "monitoring"
	MaintenanceAdjustment  MaintenanceType = "adjustment"
	MaintenanceRepair      MaintenanceType = "repair"
	MaintenanceReplacement MaintenanceType = "replacement"
)

// Problem is one structured finding about the tire. A list of problems holds at most one entry per Type.
type Problem struct {
	Type            string          `json:"type"`
	Severity        Severity        `json:"severity"`
	Confidence      float64         `json:"confidence"`
	Location        string          `json:"location,omitempty"`
	Description     string          `json:"description"`
	SuggestedAction string          `json:"suggestedAction"`
	Urgency         Urgency         `json:"urgency"`
	EstimatedCost   Cost            `json:"estimatedCost"`
	SafetyImpact    SafetyImpact    `json:"safetyImpact"`
	MaintenanceType MaintenanceType `json:"maintenanceType"`
	VisualSigns     []string        `json:"visualSigns,omitempty"`
	ProblemOrigin   string          `json:"problemOrigin,omitempty"`
}

// Key is the identity used for de-duplication.
func (p Problem) Key() string {
	return strings.ToLower(strings.TrimSpace(p.Type))
}

// NormalizeInvariant enforces urgency=monitor <=> maintenanceType=monitoring.
// A monitoring-only action pins the urgency to monitor; a monitor urgency on a
// corrective action is raised to soon.
func (p Problem) NormalizeInvariant() Problem {
	switch {
	case p.MaintenanceType == MaintenanceMonitoring && p.Urgency != UrgencyMonitor:
		p.Urgency = UrgencyMonitor
	case p.Urgency == UrgencyMonitor && p.MaintenanceType != MaintenanceMonitoring:
		p.Urgency = UrgencySoon
	}
	return p
}

// ParseSeverity returns the severity and whether raw was a known value.
func ParseSeverity(raw string) (Severity, bool) {
	switch s := Severity(strings.ToLower(strings.TrimSpace(raw))); s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return s, true
	}
	return SeverityMedium, false
}

func ParseUrgency(raw string) (Urgency, bool) {
	switch u := Urgency(strings.ToLower(strings.TrimSpace(raw))); u {
	case UrgencyImmediate, UrgencySoon, UrgencyMonitor, UrgencyOptional:
		return u, true
	}
	return UrgencySoon, false
}

func ParseCost(raw string) (Cost, bool) {
	switch c := Cost(strings.ToLower(strings.TrimSpace(raw))); c {
	case CostLow, CostMedium, CostHigh:
		return c, true
	}
	return CostMedium, false
}

func ParseSafetyImpact(raw string) (SafetyImpact, bool) {
	switch s := SafetyImpact(strings.ToLower(strings.TrimSpace(raw))); s {
	case ImpactMinor, ImpactModerate, ImpactSignificant, ImpactCritical:
		return s, true
	}
	return ImpactModerate, false
}

func ParseMaintenanceType(raw string) (MaintenanceType, bool) {
	switch m := MaintenanceType(strings.ToLower(strings.TrimSpace(raw))); m {
	case MaintenanceMonitoring, MaintenanceAdjustment, MaintenanceRepair, MaintenanceReplacement:
		return m, true
	}
	return MaintenanceMonitoring, false
}
