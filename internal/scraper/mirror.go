// Package scraper synchronizes the local jobs table with the upstream
// scraper API: it walks the API's pages, normalizes each posting, strips
// unsafe HTML from descriptions, and inserts rows that are not already
// present (deduplicated by job_url).
package scraper

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/microcosm-cc/bluemonday"

	"jobpulse/board-service/internal/jobstore"
)

// Store is the subset of the document store the mirror writes through.
type Store interface {
	Insert(ctx context.Context, doc jobstore.Document) (bool, error)
}

// Mirror runs the full sync cycle against the scraper API.
type Mirror struct {
	store     Store
	fetcher   *Fetcher
	sanitizer *bluemonday.Policy
}

// NewMirror constructs a Mirror.
func NewMirror(store Store, fetcher *Fetcher) *Mirror {
	return &Mirror{
		store:     store,
		fetcher:   fetcher,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Run executes one sync cycle. It walks pages until the upstream collection
// is exhausted (or maxPages is hit) and inserts every new posting. A failed
// page aborts the cycle; already-inserted rows stay.
func (m *Mirror) Run(ctx context.Context) error {
	log.Println("[mirror] Sync cycle started")

	var totalInserted, totalDuplicate int

	for page := 1; page <= maxPages; page++ {
		batch, err := m.fetcher.FetchPage(ctx, page)
		if err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break // upstream exhausted
		}

		inserted, dupes, err := m.insertBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
		totalInserted += inserted
		totalDuplicate += dupes
	}

	log.Printf("[mirror] Sync cycle done — inserted=%d duplicates=%d", totalInserted, totalDuplicate)
	return nil
}

func (m *Mirror) insertBatch(ctx context.Context, batch []Posting) (inserted, dupes int, err error) {
	for _, p := range batch {
		doc := m.normalize(p)

		ok, err := m.store.Insert(ctx, doc)
		if err != nil {
			return inserted, dupes, fmt.Errorf("insert %q: %w", doc.JobURL, err)
		}
		if ok {
			inserted++
		} else {
			dupes++
		}
	}
	return inserted, dupes, nil
}

// normalize maps a raw posting to a stored document. Descriptions arrive as
// provider HTML; they are stripped to text and entity-decoded.
func (m *Mirror) normalize(p Posting) jobstore.Document {
	id := p.ID
	if id == "" {
		id = p.JobURL
	}

	return jobstore.Document{
		ID:          id,
		Title:       p.Title,
		Company:     p.Company,
		Location:    p.Location,
		JobType:     p.JobType,
		Category:    p.Category,
		Site:        p.Site,
		PostedAt:    parsePostedAt(p.DatePosted),
		Description: html.UnescapeString(m.sanitizer.Sanitize(p.Description)),
		JobURL:      p.JobURL,
		CompanyURL:  p.CompanyURL,
	}
}
