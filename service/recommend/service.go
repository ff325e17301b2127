package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/elC0mpa/gpu-doctor/model"
)

func NewService() *recommenderService {
	return &recommenderService{}
}

type recommenderService struct{}

// RecommenderService converts waste alerts into prioritized actions
type RecommenderService interface {
	Generate(alerts []model.WasteAlert, snap *model.Snapshot) model.RecommendationReport
}

// Generate is a pure function of (alerts, snapshot): no randomness, no
// state carried between calls. Identical input yields byte-identical
// ordered output.
func (s *recommenderService) Generate(alerts []model.WasteAlert, snap *model.Snapshot) model.RecommendationReport {
	var candidates []model.Recommendation

	for _, alert := range alerts {
		inst, _ := snap.Instance(alert.InstanceID)
		for _, act := range actionTable[alert.RuleName] {
			savings := act.savings(alert, inst)
			candidates = append(candidates, model.Recommendation{
				Type:              act.recType,
				Priority:          tier(alert.Severity, savings),
				Title:             act.title(alert, inst),
				Description:       act.describe(alert, inst),
				MonthlySavings:    savings,
				Effort:            act.effort,
				Provider:          alert.Provider,
				TargetInstanceIDs: []string{alert.InstanceID},
			})
		}
	}

	candidates = append(candidates, consolidationCandidates(alerts, snap)...)

	sortRecommendations(candidates)
	recommendations := dedup(candidates)

	report := model.RecommendationReport{
		CycleID:         snap.CycleID,
		Recommendations: recommendations,
	}
	for _, rec := range recommendations {
		report.TotalMonthlySavings += rec.MonthlySavings
		if rec.IsQuickWin() {
			report.QuickWins = append(report.QuickWins, rec)
		}
	}
	report.TotalAnnualSavings = report.TotalMonthlySavings * 12

	return report
}

// consolidationCandidates proposes merging a provider's
// over-provisioned instances onto fewer machines when two or more
// qualify
func consolidationCandidates(alerts []model.WasteAlert, snap *model.Snapshot) []model.Recommendation {
	byProvider := make(map[string][]model.WasteAlert)
	for _, alert := range alerts {
		if alert.RuleName == "OverProvisionedCount" {
			byProvider[alert.Provider] = append(byProvider[alert.Provider], alert)
		}
	}

	providers := make([]string, 0, len(byProvider))
	for provider := range byProvider {
		providers = append(providers, provider)
	}
	sort.Strings(providers)

	var out []model.Recommendation
	for _, provider := range providers {
		group := byProvider[provider]
		if len(group) < 2 {
			continue
		}

		ids := make([]string, 0, len(group))
		savings := 0.0
		severity := model.Severity("")
		for _, alert := range group {
			ids = append(ids, alert.InstanceID)
			// Consolidation frees most but not all of the idle
			// capacity; keep headroom for the merged workload
			savings += alert.EstimatedMonthlyWaste * 0.8
			severity = model.MaxSeverity(severity, alert.Severity)
		}
		sort.Strings(ids)

		out = append(out, model.Recommendation{
			Type:              model.RecConsolidate,
			Priority:          tier(severity, savings),
			Title:             fmt.Sprintf("Consolidate %d under-used instances on %s", len(ids), provider),
			Description:       fmt.Sprintf("Instances %s each keep a minority of GPUs busy; merging their workloads frees whole machines", strings.Join(ids, ", ")),
			MonthlySavings:    savings,
			Effort:            model.EffortHigh,
			Provider:          provider,
			TargetInstanceIDs: ids,
		})
	}

	return out
}

// tier scores priority from alert severity and savings magnitude,
// whichever argues for more urgency
func tier(severity model.Severity, monthlySavings float64) model.Priority {
	rank := severity.Rank()

	savingsRank := 0
	switch {
	case monthlySavings >= 5000:
		savingsRank = 3
	case monthlySavings >= 1000:
		savingsRank = 2
	case monthlySavings >= 100:
		savingsRank = 1
	}
	if savingsRank > rank {
		rank = savingsRank
	}

	switch rank {
	case 3:
		return model.PriorityCritical
	case 2:
		return model.PriorityHigh
	case 1:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// sortRecommendations orders by priority desc, savings desc, then
// first target instance id so equal inputs produce identical output
func sortRecommendations(recs []model.Recommendation) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if a.MonthlySavings != b.MonthlySavings {
			return a.MonthlySavings > b.MonthlySavings
		}
		if firstTarget(a) != firstTarget(b) {
			return firstTarget(a) < firstTarget(b)
		}
		return a.Type < b.Type
	})
}

// dedup keeps the first (highest ranked) recommendation per
// (target set, type) pair
func dedup(recs []model.Recommendation) []model.Recommendation {
	seen := make(map[string]struct{}, len(recs))
	out := recs[:0:0]
	for _, rec := range recs {
		key := string(rec.Type) + "|" + strings.Join(rec.TargetInstanceIDs, ",")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func firstTarget(rec model.Recommendation) string {
	if len(rec.TargetInstanceIDs) == 0 {
		return ""
	}
	return rec.TargetInstanceIDs[0]
}
