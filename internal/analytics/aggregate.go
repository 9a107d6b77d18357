// Package analytics turns job lists into count series for the dashboard
// charts: counts per category/site/type, top locations, a per-location
// category breakdown, and a daily time series with cumulative totals.
package analytics

import (
	"sort"

	"jobpulse/board-service/internal/ingest"
)

// Unknown is the bucket label for jobs missing a field value.
const Unknown = "Unknown"

// Dimension names a groupable job field.
type Dimension string

const (
	ByCategory Dimension = "category"
	BySite     Dimension = "site"
	ByJobType  Dimension = "job_type"
	ByLocation Dimension = "location"
	ByDate     Dimension = "date_posted"
)

// LabelCount is one bar or slice of a chart.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TimePoint is one day of the posting time series.
type TimePoint struct {
	Date       string `json:"date"`
	Count      int    `json:"count"`
	Cumulative int    `json:"cumulative"`
}

// LocationBreakdown ranks the categories within one location.
type LocationBreakdown struct {
	Location   string       `json:"location"`
	Count      int          `json:"count"`
	Categories []LabelCount `json:"categories"`
}

// CountBy groups jobs by the given dimension. Missing values land in the
// Unknown bucket. Labels appear in first-seen order.
func CountBy(jobs []ingest.Job, dim Dimension) []LabelCount {
	counts := make(map[string]int, len(jobs))
	order := make([]string, 0)

	for _, j := range jobs {
		label := fieldValue(j, dim)
		if label == "" {
			label = Unknown
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	out := make([]LabelCount, 0, len(order))
	for _, label := range order {
		out = append(out, LabelCount{Label: label, Count: counts[label]})
	}
	return out
}

// TopLocations returns the n locations with the most jobs, descending by
// count. Jobs without a location are excluded from the ranking rather than
// bucketed. Ties keep first-seen order.
func TopLocations(jobs []ingest.Job, n int) []LabelCount {
	ranked := make([]LabelCount, 0)
	for _, lc := range CountBy(jobs, ByLocation) {
		if lc.Label == Unknown {
			continue
		}
		ranked = append(ranked, lc)
	}

	sort.SliceStable(ranked, func(i, k int) bool {
		return ranked[i].Count > ranked[k].Count
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// LocationCategories breaks the top-n locations down by category, each
// location's categories sorted descending by count. Jobs without a category
// are left out of the breakdown.
func LocationCategories(jobs []ingest.Job, n int) []LocationBreakdown {
	top := TopLocations(jobs, n)

	out := make([]LocationBreakdown, 0, len(top))
	for _, loc := range top {
		var inLocation []ingest.Job
		for _, j := range jobs {
			if j.Location == loc.Label {
				inLocation = append(inLocation, j)
			}
		}

		categories := make([]LabelCount, 0)
		for _, lc := range CountBy(inLocation, ByCategory) {
			if lc.Label == Unknown {
				continue
			}
			categories = append(categories, lc)
		}
		sort.SliceStable(categories, func(i, k int) bool {
			return categories[i].Count > categories[k].Count
		})

		out = append(out, LocationBreakdown{
			Location:   loc.Label,
			Count:      loc.Count,
			Categories: categories,
		})
	}
	return out
}

// DailySeries buckets jobs by posting day in ascending date order and
// carries a cumulative running total. Jobs without a posting date are
// skipped.
func DailySeries(jobs []ingest.Job) []TimePoint {
	counts := make(map[string]int)
	for _, j := range jobs {
		if j.DatePosted == "" {
			continue
		}
		counts[j.DatePosted]++
	}

	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]TimePoint, 0, len(days))
	total := 0
	for _, d := range days {
		total += counts[d]
		out = append(out, TimePoint{Date: d, Count: counts[d], Cumulative: total})
	}
	return out
}

func fieldValue(j ingest.Job, dim Dimension) string {
	switch dim {
	case ByCategory:
		return j.Category
	case BySite:
		return j.Site
	case ByJobType:
		return j.JobType
	case ByLocation:
		return j.Location
	case ByDate:
		return j.DatePosted
	}
	return ""
}
