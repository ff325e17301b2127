package model

// ForecastResult is a projected spend figure for a future period with
// a 95% confidence interval
type ForecastResult struct {
	Period         Period
	PredictedCost  float64
	ConfidenceLow  float64
	ConfidenceHigh float64
	SampleSizeUsed int

	// Degraded is set when history was below the minimum sample
	// threshold and the interval was widened instead of failing
	Degraded bool
}

// IntervalWidth returns the absolute width of the confidence interval
func (f ForecastResult) IntervalWidth() float64 {
	return f.ConfidenceHigh - f.ConfidenceLow
}
