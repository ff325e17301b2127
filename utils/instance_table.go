package utils

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DrawInstanceTable displays the fleet from the latest snapshot
func DrawInstanceTable(snap *model.Snapshot) {
	fmt.Printf("\n%s\n", text.FgHiWhite.Sprint(" 🏥  GPU DOCTOR FLEET"))
	fmt.Printf(" Cycle: %s\n", text.FgBlue.Sprint(snap.CycleID))
	fmt.Println(text.FgHiBlue.Sprint(" ------------------------------------------------"))

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Provider", "Instance", "Type", "GPU", "Count", "Status", "$/hr", "Util %"})
	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	for _, inst := range snap.Instances {
		util := "-"
		if inst.UtilizationKnown {
			util = fmt.Sprintf("%.1f", inst.UtilizationPct)
		}

		rate := fmt.Sprintf("%.2f", inst.HourlyRate)
		if inst.PriceFallback {
			rate += " *"
		}

		tw.AppendRow(table.Row{
			inst.Provider,
			inst.ID,
			inst.InstanceType,
			inst.GPUType,
			inst.GPUCount,
			colorStatus(inst.Status),
			rate,
			util,
		})
	}

	fmt.Println(tw.Render())
	fmt.Println(text.FgHiBlack.Sprint("  * rate is a fallback estimate, no exact pricing entry matched"))

	drawFailedProviders(snap.FailedProviders)
}

// DrawSummaryTable displays an aggregated spend summary
func DrawSummaryTable(summary model.SpendSummary) {
	fmt.Printf("\n%s\n", text.FgHiWhite.Sprint(" 💰 SPEND SUMMARY"))
	fmt.Printf(" Period: %s → %s\n",
		text.FgBlue.Sprint(summary.Period.Start.Format("2006-01-02")),
		text.FgBlue.Sprint(summary.Period.End.Format("2006-01-02")))
	fmt.Println(text.FgHiBlue.Sprint(" ------------------------------------------------"))

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})

	tw.AppendRows([]table.Row{
		{"Total cost", fmt.Sprintf("$%.2f", summary.TotalCost)},
		{"GPU hours", fmt.Sprintf("%.1f", summary.GPUHours)},
		{"Running instances", summary.RunningCount},
		{"Idle instances", colorCount(summary.IdleInstances)},
		{"Estimated waste", text.FgHiRed.Sprintf("$%.2f", summary.EstimatedWaste)},
		{"Daily run rate", fmt.Sprintf("$%.2f", summary.DailyRunRate())},
		{"Monthly projection", fmt.Sprintf("$%.2f", summary.MonthlyProjection())},
	})

	providers := make([]string, 0, len(summary.ByProvider))
	for provider := range summary.ByProvider {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	for _, provider := range providers {
		tw.AppendRow(table.Row{"  " + provider, fmt.Sprintf("$%.2f", summary.ByProvider[provider])})
	}

	fmt.Println(tw.Render())

	drawFailedProviders(summary.FailedProviders)
}

func drawFailedProviders(failed []string) {
	for _, provider := range failed {
		fmt.Printf(" %s %s: %s\n",
			text.FgHiRed.Sprint("⚠"),
			text.FgHiYellow.Sprint(strings.ToUpper(provider)),
			text.FgRed.Sprint("connector failed, data missing from this cycle"))
	}
}

func colorStatus(status model.InstanceStatus) string {
	switch status {
	case model.StatusRunning:
		return text.FgGreen.Sprint(status)
	case model.StatusIdle:
		return text.FgHiYellow.Sprint(status)
	case model.StatusTerminated:
		return text.FgHiBlack.Sprint(status)
	default:
		return string(status)
	}
}

func colorCount(n int) string {
	if n > 0 {
		return text.FgHiYellow.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d", n)
}
