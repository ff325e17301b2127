package model

// Severity ranks how urgently a waste alert should be acted on
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the severity as an orderable integer, critical highest
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// MaxSeverity returns the higher of two severities
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// WasteAlert is one rule firing for one instance. Alerts are recomputed
// fresh on every analysis run and never persisted.
type WasteAlert struct {
	InstanceID            string
	Provider              string
	GPUType               GPUType
	Severity              Severity
	RuleName              string
	Reason                string
	EstimatedMonthlyWaste float64
	Window                TimeWindow
}

// WasteReport is the result of one waste-detection pass over a snapshot
type WasteReport struct {
	CycleID           string
	InstancesAnalyzed int

	// Alerts ordered by severity desc, monthly waste desc, instance id
	Alerts []WasteAlert

	// WindowedWaste is each instance's hourly_rate × union of its
	// alerts' covered windows. The union guarantees waste never
	// exceeds the instance's actual cost for the overlapping span.
	WindowedWaste map[string]float64

	// Waste totals capped per instance at a fully wasted month, so
	// overlapping rules never double-count the same hour
	DailyWaste   float64
	MonthlyWaste float64
	AnnualWaste  float64
}

// AlertsFor returns the alerts raised against one instance
func (r WasteReport) AlertsFor(instanceID string) []WasteAlert {
	var out []WasteAlert
	for _, a := range r.Alerts {
		if a.InstanceID == instanceID {
			out = append(out, a)
		}
	}
	return out
}

// InstanceSeverity returns max(severities) across an instance's alerts
func (r WasteReport) InstanceSeverity(instanceID string) Severity {
	sev := Severity("")
	for _, a := range r.AlertsFor(instanceID) {
		sev = MaxSeverity(sev, a.Severity)
	}
	return sev
}
