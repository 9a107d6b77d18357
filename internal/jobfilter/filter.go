// Package jobfilter narrows job lists by user-selected criteria.
//
// Filtering is pure: the input slice is never mutated and relative order is
// preserved, so it is safe to re-run on every render.
package jobfilter

import (
	"strings"

	"jobpulse/board-service/internal/ingest"
)

// Any is the dropdown sentinel meaning "no constraint".
const Any = "all"

// Criteria is a set of optional predicates. An empty field (or the Any
// sentinel) leaves that dimension unconstrained.
type Criteria struct {
	Search     string `json:"search"`
	JobType    string `json:"jobType"`
	Location   string `json:"location"`
	Category   string `json:"category"`
	Site       string `json:"site"`
	DatePosted string `json:"datePosted"`
}

// Apply returns the jobs matching every non-empty criterion, in input order.
func Apply(jobs []ingest.Job, c Criteria) []ingest.Job {
	out := make([]ingest.Job, 0, len(jobs))
	for _, j := range jobs {
		if Matches(j, c) {
			out = append(out, j)
		}
	}
	return out
}

// Matches reports whether a single job satisfies the criteria.
func Matches(j ingest.Job, c Criteria) bool {
	if s := constraint(c.Search); s != "" {
		if !containsFold(j.Title, s) && !containsFold(j.Company, s) {
			return false
		}
	}
	if v := constraint(c.JobType); v != "" && j.JobType != v {
		return false
	}
	if v := constraint(c.Location); v != "" && !containsFold(j.Location, v) {
		return false
	}
	if v := constraint(c.Category); v != "" && j.Category != v {
		return false
	}
	if v := constraint(c.Site); v != "" && j.Site != v {
		return false
	}
	if v := constraint(c.DatePosted); v != "" && j.DatePosted != v {
		return false
	}
	return true
}

// constraint maps the Any sentinel to "no constraint".
func constraint(v string) string {
	if v == Any {
		return ""
	}
	return v
}

// containsFold is a case-insensitive substring check.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
