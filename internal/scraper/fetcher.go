package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	maxPages    = 20 // safety cap per sync cycle
	httpTimeout = 30 * time.Second
)

// Fetcher pulls job postings from the upstream scraper API, one page at a
// time via GET {base}/paginated-jobs?page_number=N.
type Fetcher struct {
	baseURL string
	client  *http.Client
}

// NewFetcher constructs a fetcher with a shared HTTP client.
func NewFetcher(baseURL string) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// pageResponse mirrors the top-level scraper API JSON response.
type pageResponse struct {
	Jobs []Posting `json:"jobs"`
}

// Posting mirrors a single raw job posting as the scraper API returns it.
// DatePosted is kept raw because providers disagree on its shape; see
// parsePostedAt.
type Posting struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	Location    string          `json:"location"`
	JobType     string          `json:"job_type"`
	Category    string          `json:"category"`
	Site        string          `json:"site"`
	DatePosted  json.RawMessage `json:"date_posted"`
	Description string          `json:"description"`
	JobURL      string          `json:"job_url"`
	CompanyURL  string          `json:"company_url"`
}

// FetchPage retrieves one page of postings. An empty slice means the
// upstream collection is exhausted.
func (f *Fetcher) FetchPage(ctx context.Context, page int) ([]Posting, error) {
	reqURL := f.baseURL + "/paginated-jobs?page_number=" + strconv.Itoa(page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scraper API returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp pageResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	return apiResp.Jobs, nil
}

// parsePostedAt normalizes the provider-dependent date_posted field to a
// UTC instant. Accepted shapes: a {"seconds": N} object, a bare epoch
// number, an RFC 3339 string, or a plain YYYY-MM-DD string. Anything else
// yields the zero time, which downstream renders as an unknown date.
func parsePostedAt(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}

	var obj struct {
		Seconds int64 `json:"seconds"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Seconds > 0 {
		return time.Unix(obj.Seconds, 0).UTC()
	}

	var epoch int64
	if err := json.Unmarshal(raw, &epoch); err == nil && epoch > 0 {
		return time.Unix(epoch, 0).UTC()
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC()
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t.UTC()
		}
	}

	return time.Time{}
}
