package model

// RecommendationType is the concrete action a recommendation proposes
type RecommendationType string

const (
	RecTerminateIdle RecommendationType = "terminate_idle"
	RecSwitchToSpot  RecommendationType = "switch_to_spot"
	RecResizeGPU     RecommendationType = "resize_gpu"
	RecConsolidate   RecommendationType = "consolidate"
)

// Priority orders recommendations by urgency
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns the priority as an orderable integer, critical highest
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Effort classifies how much work acting on a recommendation takes
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// Recommendation is one prioritized optimization action
type Recommendation struct {
	Type              RecommendationType
	Priority          Priority
	Title             string
	Description       string
	MonthlySavings    float64
	Effort            Effort
	Provider          string
	TargetInstanceIDs []string
}

// IsQuickWin reports whether the recommendation is low effort and
// high priority, suitable for immediate action
func (r Recommendation) IsQuickWin() bool {
	return r.Effort == EffortLow &&
		(r.Priority == PriorityCritical || r.Priority == PriorityHigh)
}

// RecommendationReport is the deterministic output of one recommender pass
type RecommendationReport struct {
	CycleID string

	// Recommendations ordered by priority desc, savings desc, instance id
	Recommendations []Recommendation

	// QuickWins is the low-effort, critical/high-priority subset of
	// Recommendations, in the same relative order
	QuickWins []Recommendation

	TotalMonthlySavings float64
	TotalAnnualSavings  float64
}
