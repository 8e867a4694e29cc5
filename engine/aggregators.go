package engine

import (
	"sort"
	"time"
)

// ============================================================================
// AGGREGATORS — KPI Scalars and Grouped Summaries
// ============================================================================
// All functions are pure projections of a (filtered) View. Events with
// unknown downtime are excluded from sum/average/max but always counted.
// Every function degrades to zero values / empty slices on an empty view.
// ============================================================================

// DefaultTopWells is the N for the default "top wells by downtime" view.
const DefaultTopWells = 10

// MaxDistributionSlices caps distribution cardinality before the long tail
// collapses into a single overflow row. Reason recovery can mint arbitrarily
// many distinct reason strings; this keeps legends bounded.
const MaxDistributionSlices = 12

// OverflowLabel is the synthetic category absorbing collapsed tail values.
const OverflowLabel = "Others"

// weekdayOrder fixes Monday-first ordering for chronological chart axes.
var weekdayOrder = [...]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// ============================================================================
// KPI SCALARS
// ============================================================================

// ComputeKPIs computes the scalar indicators for a view.
func ComputeKPIs(v View) KPISet {
	var k KPISet
	k.Shutdowns = v.Len()

	wells := make(map[string]bool)
	known := 0
	for i := 0; i < v.Len(); i++ {
		e := v.At(i)
		wells[e.Well] = true
		if e.DowntimeHours == nil {
			continue
		}
		h := *e.DowntimeHours
		known++
		k.TotalDowntime += h
		if h > k.LongestHours {
			k.LongestHours = h
		}
		if h > 24 {
			k.Over24h++
		}
	}
	if known > 0 {
		k.AvgDowntime = k.TotalDowntime / float64(known)
	}
	if v.Len() > 0 {
		k.AffectedWells = len(wells)
	}
	return k
}

// ============================================================================
// TOP-N BY METRIC
// ============================================================================

// TopWellsByDowntime groups by well, sums downtime hours, and returns the
// top limit wells in descending order. Ties keep first-appearance order.
func TopWellsByDowntime(v View, limit int) []Group {
	groups := sumByKey(v, func(e Event) string { return e.Well })
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// ============================================================================
// DISTRIBUTIONS WITH OVERFLOW BUCKET
// ============================================================================

// CountDistribution counts events per category value, descending, with the
// tail beyond max collapsed into one overflow row. max <= 0 applies the
// default cap.
func CountDistribution(v View, key func(Event) string, max int) []Group {
	groups := countByKey(v, key)
	return rankWithOverflow(groups, max)
}

// DowntimeDistribution sums downtime hours per category value, descending,
// with the same overflow behavior as CountDistribution.
func DowntimeDistribution(v View, key func(Event) string, max int) []Group {
	groups := sumByKey(v, key)
	return rankWithOverflow(groups, max)
}

// rankWithOverflow sorts descending by value and folds everything ranked
// beyond max into a single overflow group carrying the tail's sums.
func rankWithOverflow(groups []Group, max int) []Group {
	if max <= 0 {
		max = MaxDistributionSlices
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	if len(groups) <= max {
		return groups
	}

	overflow := Group{Key: OverflowLabel}
	for _, g := range groups[max:] {
		overflow.Value += g.Value
		overflow.Count += g.Count
	}
	return append(groups[:max:max], overflow)
}

// ============================================================================
// TIME SERIES
// ============================================================================

// MonthlyCounts counts events per month key, in chronological order.
// "YYYY-MM" keys sort lexically, which is already chronological.
func MonthlyCounts(v View) []Group {
	groups := countByKey(v, func(e Event) string { return e.MonthKey })
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// DayHourMatrix counts events per (weekday, hour) cell. Cells are emitted
// Monday-first, then by hour; empty cells are omitted.
func DayHourMatrix(v View) []MatrixCell {
	counts := make(map[time.Weekday]map[int]int)
	for i := 0; i < v.Len(); i++ {
		e := v.At(i)
		if counts[e.Weekday] == nil {
			counts[e.Weekday] = make(map[int]int)
		}
		counts[e.Weekday][e.Hour]++
	}

	var cells []MatrixCell
	for _, day := range weekdayOrder {
		hours := counts[day]
		if len(hours) == 0 {
			continue
		}
		for hour := 0; hour < 24; hour++ {
			if c := hours[hour]; c > 0 {
				cells = append(cells, MatrixCell{Day: day.String(), Hour: hour, Count: c})
			}
		}
	}
	return cells
}

// ============================================================================
// SELECTOR OPTION LISTS
// ============================================================================

// UniqueValues returns the sorted distinct values of a dimension across a
// view. Used to populate filter dropdowns.
func UniqueValues(v View, key func(Event) string) []string {
	seen := make(map[string]bool)
	var values []string
	for i := 0; i < v.Len(); i++ {
		val := key(v.At(i))
		if val != "" && !seen[val] {
			seen[val] = true
			values = append(values, val)
		}
	}
	sort.Strings(values)
	return values
}

// DateBounds returns the earliest and latest shutdown timestamps in a view.
// ok is false for an empty view.
func DateBounds(v View) (min, max time.Time, ok bool) {
	for i := 0; i < v.Len(); i++ {
		t := v.At(i).ShutdownAt
		if !ok {
			min, max, ok = t, t, true
			continue
		}
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	return min, max, ok
}

// ============================================================================
// GROUPING HELPERS
// ============================================================================

// countByKey counts events per key value, first-appearance order.
func countByKey(v View, key func(Event) string) []Group {
	index := make(map[string]int)
	var groups []Group
	for i := 0; i < v.Len(); i++ {
		k := key(v.At(i))
		pos, seen := index[k]
		if !seen {
			pos = len(groups)
			index[k] = pos
			groups = append(groups, Group{Key: k})
		}
		groups[pos].Count++
		groups[pos].Value++
	}
	return groups
}

// sumByKey sums downtime hours per key value, first-appearance order.
// Events with unknown downtime contribute to Count but not Value.
func sumByKey(v View, key func(Event) string) []Group {
	index := make(map[string]int)
	var groups []Group
	for i := 0; i < v.Len(); i++ {
		e := v.At(i)
		k := key(e)
		pos, seen := index[k]
		if !seen {
			pos = len(groups)
			index[k] = pos
			groups = append(groups, Group{Key: k})
		}
		groups[pos].Count++
		if e.DowntimeHours != nil {
			groups[pos].Value += *e.DowntimeHours
		}
	}
	return groups
}
