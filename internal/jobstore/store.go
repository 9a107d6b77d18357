// Package jobstore is the adapter over the "jobs" document collection.
//
// Reads are keyset-paginated: callers hand back the cursor of the last
// document they saw and receive the next batch in (posted_at DESC, id DESC)
// order. There is no random access into the collection — cursor chains are
// discovered sequentially by the ingest service.
package jobstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Document is one raw job record as stored. Validity (non-empty company and
// title) is the ingest service's concern, not the store's.
type Document struct {
	ID          string
	Title       string
	Company     string
	Location    string
	JobType     string
	Category    string
	Site        string
	PostedAt    time.Time
	Description string
	JobURL      string
	CompanyURL  string
}

// Cursor points at the last document observed in the (posted_at DESC,
// id DESC) ordering. The id component breaks ties between documents posted
// at the same instant.
type Cursor struct {
	PostedAt time.Time `json:"posted_at"`
	ID       string    `json:"id"`
}

// StoreError wraps any failure reaching the database. Callers surface it as
// a generic 500; this layer never retries.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("jobstore: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// Store issues queries against the jobs table.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const docColumns = `id, title, company, location, job_type, category, site,
	posted_at, description, job_url, company_url`

// FetchAfter returns up to limit documents strictly after cur in descending
// posted-date order. A nil cursor starts from the most recent document.
func (s *Store) FetchAfter(ctx context.Context, cur *Cursor, limit int) ([]Document, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if cur == nil {
		rows, err = s.pool.Query(ctx,
			`SELECT `+docColumns+`
			 FROM jobs
			 ORDER BY posted_at DESC, id DESC
			 LIMIT $1`,
			limit,
		)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT `+docColumns+`
			 FROM jobs
			 WHERE (posted_at, id) < ($1, $2)
			 ORDER BY posted_at DESC, id DESC
			 LIMIT $3`,
			cur.PostedAt, cur.ID, limit,
		)
	}
	if err != nil {
		return nil, &StoreError{Op: "fetch batch", Err: err}
	}
	defer rows.Close()

	docs := make([]Document, 0, limit)
	for rows.Next() {
		var d Document
		if err := rows.Scan(
			&d.ID, &d.Title, &d.Company, &d.Location, &d.JobType, &d.Category,
			&d.Site, &d.PostedAt, &d.Description, &d.JobURL, &d.CompanyURL,
		); err != nil {
			return nil, &StoreError{Op: "scan document", Err: err}
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "fetch batch", Err: err}
	}
	return docs, nil
}

// FetchAll returns the entire collection in descending posted-date order.
// Used by the analytics endpoint.
func (s *Store) FetchAll(ctx context.Context) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+docColumns+`
		 FROM jobs
		 ORDER BY posted_at DESC, id DESC`,
	)
	if err != nil {
		return nil, &StoreError{Op: "fetch all", Err: err}
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var d Document
		if err := rows.Scan(
			&d.ID, &d.Title, &d.Company, &d.Location, &d.JobType, &d.Category,
			&d.Site, &d.PostedAt, &d.Description, &d.JobURL, &d.CompanyURL,
		); err != nil {
			return nil, &StoreError{Op: "scan document", Err: err}
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "fetch all", Err: err}
	}
	return docs, nil
}

// Delete removes a single document by identifier. Deleting a document that
// no longer exists is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id); err != nil {
		return &StoreError{Op: "delete document", Err: err}
	}
	return nil
}

// Insert stores doc unless a document with the same job_url already exists.
// Reports whether a row was actually inserted.
func (s *Store) Insert(ctx context.Context, doc Document) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (`+docColumns+`)
		 SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		 WHERE NOT EXISTS (
		   SELECT 1 FROM jobs WHERE job_url = $10
		 )`,
		doc.ID, doc.Title, doc.Company, doc.Location, doc.JobType, doc.Category,
		doc.Site, doc.PostedAt, doc.Description, doc.JobURL, doc.CompanyURL,
	)
	if err != nil {
		return false, &StoreError{Op: "insert document", Err: err}
	}
	return tag.RowsAffected() > 0, nil
}
