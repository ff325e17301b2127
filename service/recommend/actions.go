package recommend

import (
	"fmt"

	"github.com/elC0mpa/gpu-doctor/model"
)

// action is one candidate entry of the rule → action table: which
// recommendation a firing rule can turn into, how much work it takes,
// and how its savings derive from the alert
type action struct {
	recType  model.RecommendationType
	effort   model.Effort
	savings  func(alert model.WasteAlert, inst model.Instance) float64
	title    func(alert model.WasteAlert, inst model.Instance) string
	describe func(alert model.WasteAlert, inst model.Instance) string
}

// actionTable maps waste rule names to their candidate actions. A rule
// may fan out to several candidates; dedup happens after scoring.
var actionTable = map[string][]action{
	"IdleInstance": {
		{
			recType: model.RecTerminateIdle,
			effort:  model.EffortLow,
			savings: func(alert model.WasteAlert, _ model.Instance) float64 {
				return alert.EstimatedMonthlyWaste
			},
			title: func(alert model.WasteAlert, _ model.Instance) string {
				return fmt.Sprintf("Terminate idle %s on %s", alert.GPUType, alert.Provider)
			},
			describe: func(alert model.WasteAlert, _ model.Instance) string {
				return alert.Reason
			},
		},
	},
	"WrongPricingModel": {
		{
			recType: model.RecSwitchToSpot,
			effort:  model.EffortMedium,
			savings: func(alert model.WasteAlert, _ model.Instance) float64 {
				return alert.EstimatedMonthlyWaste
			},
			title: func(alert model.WasteAlert, _ model.Instance) string {
				return fmt.Sprintf("Switch %s on %s to spot pricing", alert.GPUType, alert.Provider)
			},
			describe: func(alert model.WasteAlert, _ model.Instance) string {
				return alert.Reason
			},
		},
	},
	"OversizedGPU": {
		{
			recType: model.RecResizeGPU,
			effort:  model.EffortMedium,
			savings: func(alert model.WasteAlert, _ model.Instance) float64 {
				return alert.EstimatedMonthlyWaste
			},
			title: func(alert model.WasteAlert, _ model.Instance) string {
				return fmt.Sprintf("Resize oversized %s on %s", alert.GPUType, alert.Provider)
			},
			describe: func(alert model.WasteAlert, _ model.Instance) string {
				return alert.Reason
			},
		},
	},
	"OverProvisionedCount": {
		{
			recType: model.RecResizeGPU,
			effort:  model.EffortMedium,
			savings: func(alert model.WasteAlert, _ model.Instance) float64 {
				return alert.EstimatedMonthlyWaste
			},
			title: func(alert model.WasteAlert, inst model.Instance) string {
				return fmt.Sprintf("Reduce GPU count of %dx %s on %s", inst.GPUCount, alert.GPUType, alert.Provider)
			},
			describe: func(alert model.WasteAlert, _ model.Instance) string {
				return alert.Reason
			},
		},
	},
}
