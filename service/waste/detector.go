package waste

import (
	"sort"

	"github.com/elC0mpa/gpu-doctor/config"
	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/elC0mpa/gpu-doctor/pricing"
)

func NewDetector(cfg *config.Config, book *pricing.Book) *detectorService {
	if book == nil {
		book = pricing.DefaultBook()
	}
	return &detectorService{rules: DefaultRules(cfg, book)}
}

// NewDetectorWithRules builds a detector over a custom rule set
func NewDetectorWithRules(rules []Rule) *detectorService {
	return &detectorService{rules: rules}
}

type detectorService struct {
	rules []Rule
}

// DetectorService evaluates waste rules against immutable snapshots
type DetectorService interface {
	Analyze(snap *model.Snapshot) model.WasteReport
}

// Analyze runs every rule against every instance of the snapshot.
// Evaluation is deterministic and side-effect free: rules are
// independent, so their order never changes which alerts fire, and
// identical snapshots always produce identical reports.
func (d *detectorService) Analyze(snap *model.Snapshot) model.WasteReport {
	report := model.WasteReport{
		CycleID:           snap.CycleID,
		InstancesAnalyzed: len(snap.Instances),
		WindowedWaste:     make(map[string]float64),
	}

	for _, inst := range snap.Instances {
		samples := snap.Samples[inst.ID]

		var alerts []model.WasteAlert
		var windows []model.TimeWindow
		monthly := 0.0
		for _, rule := range d.rules {
			alert := rule.Evaluate(inst, samples, snap)
			if alert == nil {
				continue
			}
			alerts = append(alerts, *alert)
			windows = append(windows, alert.Window)
			monthly += alert.EstimatedMonthlyWaste
		}
		if len(alerts) == 0 {
			continue
		}

		report.Alerts = append(report.Alerts, alerts...)

		// Union, not sum: overlapping rule windows count each wasted
		// hour once, bounding waste by the window's actual cost
		report.WindowedWaste[inst.ID] = inst.HourlyRate * model.CoveredDuration(windows).Hours()

		// A single instance cannot waste more than a fully idle month
		if ceiling := inst.HourlyRate * hoursPerMonth; monthly > ceiling {
			monthly = ceiling
		}
		report.MonthlyWaste += monthly
	}

	report.DailyWaste = report.MonthlyWaste / 30
	report.AnnualWaste = report.MonthlyWaste * 12

	sortAlerts(report.Alerts)
	return report
}

func sortAlerts(alerts []model.WasteAlert) {
	sort.Slice(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.EstimatedMonthlyWaste != b.EstimatedMonthlyWaste {
			return a.EstimatedMonthlyWaste > b.EstimatedMonthlyWaste
		}
		if a.InstanceID != b.InstanceID {
			return a.InstanceID < b.InstanceID
		}
		return a.RuleName < b.RuleName
	})
}
