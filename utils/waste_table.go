package utils

import (
	"fmt"
	"os"

	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DrawWasteTable displays the waste report, alerts first, totals last
func DrawWasteTable(report model.WasteReport) {
	fmt.Printf("\n%s\n", text.FgHiWhite.Sprint(" 🔍 GPU WASTE DIAGNOSIS"))
	fmt.Printf(" Instances analyzed: %s\n", text.FgBlue.Sprintf("%d", report.InstancesAnalyzed))
	fmt.Println(text.FgHiBlue.Sprint(" ------------------------------------------------"))

	if len(report.Alerts) == 0 {
		fmt.Println(text.FgGreen.Sprint(" No waste detected 🎉"))
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Severity", "Rule", "Provider", "Instance", "GPU", "Monthly $", "Why"})
	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 7, WidthMax: 60},
	})

	for _, alert := range report.Alerts {
		tw.AppendRow(table.Row{
			colorSeverity(alert.Severity),
			alert.RuleName,
			alert.Provider,
			alert.InstanceID,
			alert.GPUType,
			fmt.Sprintf("%.2f", alert.EstimatedMonthlyWaste),
			alert.Reason,
		})
	}

	tw.AppendFooter(table.Row{"", "", "", "", "Monthly", fmt.Sprintf("%.2f", report.MonthlyWaste), ""})
	tw.AppendFooter(table.Row{"", "", "", "", "Annual", fmt.Sprintf("%.2f", report.AnnualWaste), ""})

	fmt.Println(tw.Render())
}

func colorSeverity(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return text.FgHiRed.Sprint(severity)
	case model.SeverityHigh:
		return text.FgRed.Sprint(severity)
	case model.SeverityMedium:
		return text.FgHiYellow.Sprint(severity)
	default:
		return text.FgHiBlack.Sprint(severity)
	}
}
