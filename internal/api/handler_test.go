package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobpulse/board-service/internal/api"
	"jobpulse/board-service/internal/cache"
	"jobpulse/board-service/internal/ingest"
	"jobpulse/board-service/internal/match"
)

type fakePager struct {
	page         *ingest.Page
	all          *ingest.Page
	err          error
	assembleCall int
	allCalls     int
}

func (f *fakePager) AssemblePage(_ context.Context, _, _ int) (*ingest.Page, error) {
	f.assembleCall++
	return f.page, f.err
}

func (f *fakePager) AllJobs(_ context.Context) (*ingest.Page, error) {
	f.allCalls++
	return f.all, f.err
}

type fakeScorer struct {
	rec *match.Record
	err error
}

func (f *fakeScorer) Score(_ context.Context, _, _, _ string) (*match.Record, error) {
	return f.rec, f.err
}

func job(id, category, location, date string) ingest.Job {
	return ingest.Job{
		ID: id, Title: "Engineer " + id, Company: "Acme",
		Category: category, Location: location, DatePosted: date,
	}
}

func newServer(pager api.Pager, scorer api.Scorer) *httptest.Server {
	h := api.NewHandler(pager, scorer, cache.NewMemory(time.Now), 10)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode
}

func TestJobsEndpoint(t *testing.T) {
	pager := &fakePager{page: &ingest.Page{
		Jobs:       []ingest.Job{job("a", "IT", "Lagos", "2024-01-01")},
		Categories: []string{"IT"},
	}}
	srv := newServer(pager, &fakeScorer{})
	defer srv.Close()

	var page ingest.Page
	if code := getJSON(t, srv.URL+"/api/jobs?page=1", &page); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if len(page.Jobs) != 1 || page.Jobs[0].ID != "a" {
		t.Fatalf("page = %+v, want the assembled page", page)
	}
}

func TestJobsEndpoint_SecondRequestServedFromCache(t *testing.T) {
	pager := &fakePager{page: &ingest.Page{Jobs: []ingest.Job{job("a", "IT", "", "")}}}
	srv := newServer(pager, &fakeScorer{})
	defer srv.Close()

	var page ingest.Page
	getJSON(t, srv.URL+"/api/jobs?page=1", &page)
	getJSON(t, srv.URL+"/api/jobs?page=1", &page)

	if pager.assembleCall != 1 {
		t.Fatalf("AssemblePage called %d times, want 1 (second hit cached)", pager.assembleCall)
	}
	if len(page.Jobs) != 1 {
		t.Fatalf("cached page = %+v, want the original page", page)
	}
}

func TestJobsEndpoint_BadPageNumber(t *testing.T) {
	srv := newServer(&fakePager{}, &fakeScorer{})
	defer srv.Close()

	for _, raw := range []string{"0", "-1", "abc"} {
		var body map[string]string
		if code := getJSON(t, srv.URL+"/api/jobs?page="+raw, &body); code != http.StatusBadRequest {
			t.Errorf("page=%q: status = %d, want 400", raw, code)
		}
	}
}

func TestAllJobsEndpoint(t *testing.T) {
	pager := &fakePager{all: &ingest.Page{Jobs: []ingest.Job{
		job("a", "IT", "Lagos", "2024-01-01"),
		job("b", "Sales", "Abuja", "2024-01-02"),
	}}}
	srv := newServer(pager, &fakeScorer{})
	defer srv.Close()

	var page ingest.Page
	if code := getJSON(t, srv.URL+"/api/alljobs", &page); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if len(page.Jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(page.Jobs))
	}

	getJSON(t, srv.URL+"/api/alljobs", &page)
	if pager.allCalls != 1 {
		t.Fatalf("AllJobs called %d times, want 1", pager.allCalls)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	pager := &fakePager{all: &ingest.Page{Jobs: []ingest.Job{
		job("a", "IT", "Lagos", "2024-01-01"),
		job("b", "IT", "Abuja", "2024-01-01"),
		job("c", "Sales", "Lagos", "2024-01-02"),
	}}}
	srv := newServer(pager, &fakeScorer{})
	defer srv.Close()

	var resp struct {
		Total      int `json:"total"`
		ByCategory []struct {
			Label string `json:"label"`
			Count int    `json:"count"`
		} `json:"byCategory"`
		Daily []struct {
			Date       string `json:"date"`
			Cumulative int    `json:"cumulative"`
		} `json:"daily"`
	}
	if code := getJSON(t, srv.URL+"/api/analytics", &resp); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.Total != 3 {
		t.Fatalf("total = %d, want 3", resp.Total)
	}
	if len(resp.ByCategory) != 2 || resp.ByCategory[0].Label != "IT" || resp.ByCategory[0].Count != 2 {
		t.Fatalf("byCategory = %+v, want IT first with count 2", resp.ByCategory)
	}
	if len(resp.Daily) != 2 || resp.Daily[1].Cumulative != 3 {
		t.Fatalf("daily = %+v, want cumulative reaching 3", resp.Daily)
	}
}

func TestAnalyticsEndpoint_Filtered(t *testing.T) {
	pager := &fakePager{all: &ingest.Page{Jobs: []ingest.Job{
		job("a", "IT", "Lagos", "2024-01-01"),
		job("b", "Sales", "Abuja", "2024-01-01"),
	}}}
	srv := newServer(pager, &fakeScorer{})
	defer srv.Close()

	var resp struct {
		Total int `json:"total"`
	}
	getJSON(t, srv.URL+"/api/analytics?category=IT", &resp)
	if resp.Total != 1 {
		t.Fatalf("total = %d, want 1 after category filter", resp.Total)
	}

	getJSON(t, srv.URL+"/api/analytics?category=all", &resp)
	if resp.Total != 2 {
		t.Fatalf(`total = %d, want 2 for category "all"`, resp.Total)
	}
}

func postScore(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+"/api/resume-score", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, out
}

func TestResumeScoreEndpoint(t *testing.T) {
	scorer := &fakeScorer{rec: &match.Record{Score: 72, Feedback: []string{"solid"}}}
	srv := newServer(&fakePager{}, scorer)
	defer srv.Close()

	code, out := postScore(t, srv.URL, `{"job_description":"Go role","user_id":"u1","job_id":"j1"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if out["match_score"].(float64) != 72 {
		t.Fatalf("match_score = %v, want 72", out["match_score"])
	}
}

func TestResumeScoreEndpoint_MissingFields(t *testing.T) {
	srv := newServer(&fakePager{}, &fakeScorer{})
	defer srv.Close()

	for _, body := range []string{
		`{}`,
		`{"job_description":"x","user_id":"u1"}`,
		`not json`,
	} {
		if code, _ := postScore(t, srv.URL, body); code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, code)
		}
	}
}

func TestResumeScoreEndpoint_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"unknown user", match.ErrUserNotFound, http.StatusNotFound, "not found"},
		{"garbage verdict", &match.PayloadError{Reason: "no fence"}, http.StatusInternalServerError, "invalid response from external API"},
		{"evaluator down", match.ErrUnavailable, http.StatusInternalServerError, "unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(&fakePager{}, &fakeScorer{err: tc.err})
			defer srv.Close()

			code, out := postScore(t, srv.URL, `{"job_description":"x","user_id":"u1","job_id":"j1"}`)
			if code != tc.wantCode {
				t.Fatalf("status = %d, want %d", code, tc.wantCode)
			}
			if msg, _ := out["error"].(string); !strings.Contains(msg, tc.wantMsg) {
				t.Fatalf("error = %q, want it to mention %q", msg, tc.wantMsg)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newServer(&fakePager{}, &fakeScorer{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/jobs", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/resume-score")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}
