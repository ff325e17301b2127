package utils

import (
	"fmt"
	"sort"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/elC0mpa/gpu-doctor/model"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	ColorRank1 = "#d73027"
	ColorRank2 = "#f46d43"
	ColorRank3 = "#fee08b"
	ColorRank4 = "#abdda4"
	ColorRank5 = "#66c2a5"
	ColorRank6 = "#1a9850"
)

var defaultStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("#F4D060"))

// DrawForecastChart displays recent daily spend as a barchart followed
// by the forecast interval for the target period
func DrawForecastChart(history []model.SpendRecord, result model.ForecastResult) {
	fmt.Printf("\n%s\n", text.FgHiWhite.Sprint(" 📈 GPU SPEND FORECAST"))
	fmt.Println(text.FgHiBlue.Sprint(" ------------------------------------------------"))

	days := lastDays(history, 14)
	if len(days) > 0 {
		bc := barchart.New(130, 20)
		indexedColors := assignRankedColors(days)

		for idx, day := range days {
			bc.Push(barchart.BarData{
				Label: fmt.Sprintf("%s: %.2f", day.date.Format("Jan 02"), day.cost),
				Values: []barchart.BarValue{
					{
						Value: day.cost,
						Style: lipgloss.NewStyle().Foreground(lipgloss.Color(indexedColors[idx])),
					},
				},
			})
		}

		fmt.Println()
		bc.Draw()
		fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, defaultStyle.Render(bc.View())))
	}

	confidence := "95% interval"
	if result.Degraded {
		confidence = text.FgHiYellow.Sprint("low confidence, sparse history")
	}

	fmt.Printf(" Period:    %s → %s\n",
		result.Period.Start.Format("2006-01-02"), result.Period.End.Format("2006-01-02"))
	fmt.Printf(" Predicted: %s\n", text.FgHiWhite.Sprintf("$%.2f", result.PredictedCost))
	fmt.Printf(" Range:     $%.2f – $%.2f (%s, %d samples)\n",
		result.ConfidenceLow, result.ConfidenceHigh, confidence, result.SampleSizeUsed)
}

type chartDay struct {
	date time.Time
	cost float64
}

func lastDays(history []model.SpendRecord, n int) []chartDay {
	totals := make(map[time.Time]float64)
	for _, record := range history {
		day := record.PeriodStart.UTC().Truncate(24 * time.Hour)
		totals[day] += record.Cost
	}

	days := make([]chartDay, 0, len(totals))
	for date, cost := range totals {
		days = append(days, chartDay{date: date, cost: cost})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })

	if len(days) > n {
		days = days[len(days)-n:]
	}
	return days
}

// assignRankedColors colors each bar by its rank among the displayed
// days, most expensive first
func assignRankedColors(days []chartDay) []string {
	palette := []string{ColorRank1, ColorRank2, ColorRank3, ColorRank4, ColorRank5, ColorRank6}

	type ranked struct {
		index int
		cost  float64
	}
	order := make([]ranked, len(days))
	for i, day := range days {
		order[i] = ranked{index: i, cost: day.cost}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].cost > order[j].cost })

	colors := make([]string, len(days))
	for rank, entry := range order {
		color := palette[len(palette)-1]
		if rank < len(palette) {
			color = palette[rank]
		}
		colors[entry.index] = color
	}
	return colors
}
