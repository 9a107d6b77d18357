// Package ingest assembles pages of valid job postings from the document
// store.
//
// The store may contain malformed records (scraped documents missing a
// company or title). Page assembly therefore over-fetches, purges invalid
// documents as it encounters them, and retries until the page is full or the
// attempt budget runs out. A short page is a valid outcome, not an error.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jobpulse/board-service/internal/jobstore"
)

const (
	// maxAttempts bounds the fetch-validate loop for one page.
	maxAttempts = 5
	// overfetch is added to every batch request so that a sprinkling of
	// invalid documents does not cost an extra round trip.
	overfetch = 5
)

// Store is the slice of the document store the ingest service needs.
type Store interface {
	FetchAfter(ctx context.Context, cur *jobstore.Cursor, limit int) ([]jobstore.Document, error)
	FetchAll(ctx context.Context) ([]jobstore.Document, error)
	Delete(ctx context.Context, id string) error
}

// Job is the API-facing shape of a valid posting. DatePosted is normalized
// to YYYY-MM-DD; documents without a posted date carry an empty string.
type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	JobType     string `json:"job_type"`
	Category    string `json:"category"`
	Site        string `json:"site"`
	DatePosted  string `json:"date_posted"`
	Description string `json:"description"`
	JobURL      string `json:"job_url"`
	CompanyURL  string `json:"company_url"`
}

// Page is a batch of jobs plus the facet lists derived from that batch only.
type Page struct {
	Jobs        []Job    `json:"jobs"`
	Categories  []string `json:"categories"`
	Locations   []string `json:"locations"`
	JobTypes    []string `json:"jobTypes"`
	Sites       []string `json:"sites"`
	DateOptions []string `json:"dateOptions"`
}

// Service assembles pages from the document store, tracking per-page cursors
// so sequential access does not re-scan earlier pages.
type Service struct {
	store   Store
	cursors CursorStore
}

// NewService returns a configured Service.
func NewService(store Store, cursors CursorStore) *Service {
	return &Service{store: store, cursors: cursors}
}

// FetchValidPage returns up to pageSize valid jobs for the 1-based
// pageNumber. Invalid documents encountered along the way are deleted from
// the store and never returned. The result is shorter than pageSize when the
// collection is exhausted or the attempt budget runs out.
func (s *Service) FetchValidPage(ctx context.Context, pageNumber, pageSize int) ([]Job, error) {
	if pageNumber < 1 {
		return nil, fmt.Errorf("page number must be >= 1, got %d", pageNumber)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("page size must be >= 1, got %d", pageSize)
	}

	cur, ok, err := s.startCursor(ctx, pageNumber, pageSize)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Earlier pages already drained the collection.
		return []Job{}, nil
	}

	jobs := make([]Job, 0, pageSize)
	for attempt := 1; attempt <= maxAttempts && len(jobs) < pageSize; attempt++ {
		batch, err := s.store.FetchAfter(ctx, cur, pageSize-len(jobs)+overfetch)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break // end of collection
		}

		for _, doc := range batch {
			if len(jobs) == pageSize {
				// Over-fetched remainder: leave it for the next page.
				break
			}
			if doc.Company == "" || doc.Title == "" {
				// Lazy cleanup: purge the malformed document so no
				// future fetch sees it again.
				if err := s.store.Delete(ctx, doc.ID); err != nil {
					return nil, err
				}
			} else {
				jobs = append(jobs, fromDocument(doc))
			}
			// Advance past every document processed, valid or not, so the
			// loop makes progress even through a run of invalid records.
			// Unprocessed over-fetch stays ahead of the cursor.
			cur = &jobstore.Cursor{PostedAt: doc.PostedAt, ID: doc.ID}
		}
	}

	if cur != nil {
		if err := s.cursors.Put(ctx, pageNumber, *cur); err != nil {
			slog.Warn("caching page cursor failed", "page", pageNumber, "err", err)
		}
	}
	return jobs, nil
}

// AssemblePage fetches a page and derives its facet lists.
func (s *Service) AssemblePage(ctx context.Context, pageNumber, pageSize int) (*Page, error) {
	jobs, err := s.FetchValidPage(ctx, pageNumber, pageSize)
	if err != nil {
		return nil, err
	}
	return buildPage(jobs), nil
}

// AllJobs returns the entire collection with the same facet-list shape as a
// page. No validity purge happens here — cleanup is the paginated path's job.
func (s *Service) AllJobs(ctx context.Context) (*Page, error) {
	docs, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(docs))
	for _, d := range docs {
		jobs = append(jobs, fromDocument(d))
	}
	return buildPage(jobs), nil
}

// startCursor resolves the cursor to read pageNumber from. For page 1 that
// is the top of the collection. Deeper pages reuse the cached cursor of the
// preceding page, falling back to sequential discovery when it is unknown.
// ok is false when the collection ends before pageNumber starts.
func (s *Service) startCursor(ctx context.Context, pageNumber, pageSize int) (*jobstore.Cursor, bool, error) {
	if pageNumber == 1 {
		return nil, true, nil
	}

	prev, known, err := s.cursors.Get(ctx, pageNumber-1)
	if err != nil {
		slog.Warn("reading page cursor failed, rediscovering", "page", pageNumber-1, "err", err)
		known = false
	}
	if !known {
		if _, err := s.FetchValidPage(ctx, pageNumber-1, pageSize); err != nil {
			return nil, false, err
		}
		prev, known, err = s.cursors.Get(ctx, pageNumber-1)
		if err != nil {
			return nil, false, err
		}
		if !known {
			return nil, false, nil
		}
	}
	return &prev, true, nil
}

func fromDocument(d jobstore.Document) Job {
	return Job{
		ID:          d.ID,
		Title:       d.Title,
		Company:     d.Company,
		Location:    d.Location,
		JobType:     d.JobType,
		Category:    d.Category,
		Site:        d.Site,
		DatePosted:  formatDate(d.PostedAt),
		Description: d.Description,
		JobURL:      d.JobURL,
		CompanyURL:  d.CompanyURL,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func buildPage(jobs []Job) *Page {
	return &Page{
		Jobs:        jobs,
		Categories:  facetValues(jobs, func(j Job) string { return j.Category }),
		Locations:   facetValues(jobs, func(j Job) string { return j.Location }),
		JobTypes:    facetValues(jobs, func(j Job) string { return j.JobType }),
		Sites:       facetValues(jobs, func(j Job) string { return j.Site }),
		DateOptions: facetValues(jobs, func(j Job) string { return j.DatePosted }),
	}
}

// facetValues collects the distinct non-empty values of one field in
// first-seen order.
func facetValues(jobs []Job, field func(Job) string) []string {
	seen := make(map[string]bool, len(jobs))
	values := make([]string, 0)
	for _, j := range jobs {
		v := field(j)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}
