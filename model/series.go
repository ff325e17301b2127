package model

import (
	"sort"
	"time"
)

// IdleWindows extracts maximal spans where the utilization series stays
// below thresholdPct for at least minWindow. Consecutive samples are
// treated as continuous coverage; a span's duration runs from its first
// to its last qualifying sample.
func IdleWindows(samples []UtilizationSample, thresholdPct float64, minWindow time.Duration) []TimeWindow {
	var windows []TimeWindow
	var start, last time.Time
	open := false

	flush := func() {
		if open && last.Sub(start) >= minWindow {
			windows = append(windows, TimeWindow{Start: start, End: last})
		}
		open = false
	}

	for _, s := range samples {
		if s.UtilizationPct < thresholdPct {
			if !open {
				start = s.Timestamp
				open = true
			}
			last = s.Timestamp
			continue
		}
		flush()
	}
	flush()

	return windows
}

// UnionWindows merges overlapping or touching windows so the covered
// time is counted once. Input order does not matter.
func UnionWindows(windows []TimeWindow) []TimeWindow {
	if len(windows) == 0 {
		return nil
	}

	sorted := make([]TimeWindow, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []TimeWindow{sorted[0]}
	for _, w := range sorted[1:] {
		top := &merged[len(merged)-1]
		if !w.Start.After(top.End) {
			if w.End.After(top.End) {
				top.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}

	return merged
}

// CoveredDuration is the total time spanned by a set of windows after
// overlap deduplication
func CoveredDuration(windows []TimeWindow) time.Duration {
	var total time.Duration
	for _, w := range UnionWindows(windows) {
		total += w.Duration()
	}
	return total
}
