package response

// Instance represents one normalized GPU instance
type Instance struct {
	ID             string   `json:"id"`
	Provider       string   `json:"provider"`
	InstanceType   string   `json:"instance_type"`
	GPUType        string   `json:"gpu_type"`
	GPUCount       int      `json:"gpu_count"`
	Status         string   `json:"status"`
	HourlyRate     float64  `json:"hourly_rate"`
	PricingModel   string   `json:"pricing_model"`
	Region         string   `json:"region"`
	LaunchTime     string   `json:"launch_time,omitempty"`
	UtilizationPct *float64 `json:"utilization_pct,omitempty"`
	PriceFallback  bool     `json:"price_fallback,omitempty"`
}

// Fleet represents a full snapshot of instances
type Fleet struct {
	CycleID         string     `json:"cycle_id"`
	TakenAt         string     `json:"taken_at"`
	Instances       []Instance `json:"instances"`
	FailedProviders []string   `json:"failed_providers,omitempty"`
}

// SpendSummary aggregates fleet spend over a period
type SpendSummary struct {
	StartDate         string             `json:"start_date"`
	EndDate           string             `json:"end_date"`
	TotalCost         float64            `json:"total_cost"`
	GPUHours          float64            `json:"gpu_hours"`
	RunningCount      int                `json:"running_count"`
	IdleInstances     int                `json:"idle_instances"`
	EstimatedWaste    float64            `json:"estimated_waste"`
	DailyRunRate      float64            `json:"daily_run_rate"`
	MonthlyProjection float64            `json:"monthly_projection"`
	ByProvider        map[string]float64 `json:"by_provider"`
	FailedProviders   []string           `json:"failed_providers,omitempty"`
}

// WasteAlert represents one fired waste rule
type WasteAlert struct {
	InstanceID   string  `json:"instance_id"`
	Provider     string  `json:"provider"`
	GPUType      string  `json:"gpu_type"`
	Severity     string  `json:"severity"`
	Rule         string  `json:"rule"`
	Reason       string  `json:"reason"`
	MonthlyWaste float64 `json:"estimated_monthly_waste"`
	WindowStart  string  `json:"window_start,omitempty"`
	WindowEnd    string  `json:"window_end,omitempty"`
}

// WasteReport aggregates alerts with overlap-safe totals
type WasteReport struct {
	CycleID           string       `json:"cycle_id"`
	InstancesAnalyzed int          `json:"instances_analyzed"`
	Alerts            []WasteAlert `json:"alerts"`
	DailyWaste        float64      `json:"daily_waste"`
	MonthlyWaste      float64      `json:"monthly_waste"`
	AnnualWaste       float64      `json:"annual_waste"`
}

// Recommendation represents one prioritized action
type Recommendation struct {
	Type           string   `json:"type"`
	Priority       string   `json:"priority"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	MonthlySavings float64  `json:"monthly_savings"`
	Effort         string   `json:"effort"`
	Provider       string   `json:"provider"`
	Targets        []string `json:"target_instance_ids"`
}

// RecommendationReport bundles recommendations with quick wins
type RecommendationReport struct {
	CycleID             string           `json:"cycle_id"`
	Recommendations     []Recommendation `json:"recommendations"`
	QuickWins           []Recommendation `json:"quick_wins"`
	TotalMonthlySavings float64          `json:"total_monthly_savings"`
	TotalAnnualSavings  float64          `json:"total_annual_savings"`
}

// Forecast represents a spend projection with its confidence interval
type Forecast struct {
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	PredictedCost  float64 `json:"predicted_cost"`
	ConfidenceLow  float64 `json:"confidence_low"`
	ConfidenceHigh float64 `json:"confidence_high"`
	SampleSizeUsed int     `json:"sample_size_used"`
	Degraded       bool    `json:"degraded"`
}
