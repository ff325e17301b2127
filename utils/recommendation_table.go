package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DrawRecommendationTable displays prioritized recommendations with
// quick wins called out first
func DrawRecommendationTable(report model.RecommendationReport) {
	fmt.Printf("\n%s\n", text.FgHiWhite.Sprint(" 💡 OPTIMIZATION PRESCRIPTION"))
	fmt.Println(text.FgHiBlue.Sprint(" ------------------------------------------------"))

	if len(report.Recommendations) == 0 {
		fmt.Println(text.FgGreen.Sprint(" Nothing to optimize 🎉"))
		return
	}

	if len(report.QuickWins) > 0 {
		fmt.Printf(" %s\n", text.FgHiGreen.Sprintf("⚡ %d quick wins (low effort, high priority)", len(report.QuickWins)))
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Priority", "Action", "Effort", "Monthly $", "Targets", "Detail"})
	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 6, WidthMax: 60},
	})

	for _, rec := range report.Recommendations {
		tw.AppendRow(table.Row{
			colorPriority(rec.Priority),
			rec.Title,
			rec.Effort,
			fmt.Sprintf("%.2f", rec.MonthlySavings),
			strings.Join(rec.TargetInstanceIDs, ", "),
			rec.Description,
		})
	}

	tw.AppendFooter(table.Row{"", "", "Monthly", fmt.Sprintf("%.2f", report.TotalMonthlySavings), "", ""})
	tw.AppendFooter(table.Row{"", "", "Annual", fmt.Sprintf("%.2f", report.TotalAnnualSavings), "", ""})

	fmt.Println(tw.Render())
}

func colorPriority(priority model.Priority) string {
	switch priority {
	case model.PriorityCritical:
		return text.FgHiRed.Sprint(priority)
	case model.PriorityHigh:
		return text.FgRed.Sprint(priority)
	case model.PriorityMedium:
		return text.FgHiYellow.Sprint(priority)
	default:
		return text.FgHiBlack.Sprint(priority)
	}
}
