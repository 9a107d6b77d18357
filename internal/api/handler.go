// Package api implements the HTTP handlers for the board service.
//
// Routes:
//
//	GET  /api/jobs?page={n}     → one assembled page of jobs + facets
//	GET  /api/alljobs           → the full valid collection + facets
//	GET  /api/analytics         → aggregated stats over the (filtered) collection
//	POST /api/resume-score      → memoized AI match verdict for (user, job)
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"jobpulse/board-service/internal/analytics"
	"jobpulse/board-service/internal/cache"
	"jobpulse/board-service/internal/ingest"
	"jobpulse/board-service/internal/jobfilter"
	"jobpulse/board-service/internal/jobstore"
	"jobpulse/board-service/internal/match"
)

// Pager assembles job pages. Implemented by ingest.Service.
type Pager interface {
	AssemblePage(ctx context.Context, pageNumber, pageSize int) (*ingest.Page, error)
	AllJobs(ctx context.Context) (*ingest.Page, error)
}

// Scorer computes match verdicts. Implemented by match.Service.
type Scorer interface {
	Score(ctx context.Context, userID, jobID, jobDescription string) (*match.Record, error)
}

// Handler holds shared dependencies.
type Handler struct {
	pager    Pager
	scorer   Scorer
	cache    cache.Cache
	pageSize int
}

// NewHandler returns a configured Handler.
func NewHandler(pager Pager, scorer Scorer, c cache.Cache, pageSize int) *Handler {
	return &Handler{pager: pager, scorer: scorer, cache: c, pageSize: pageSize}
}

// RegisterRoutes mounts all board-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/jobs", h.handleJobs)
	mux.HandleFunc("/api/alljobs", h.handleAllJobs)
	mux.HandleFunc("/api/analytics", h.handleAnalytics)
	mux.HandleFunc("/api/resume-score", h.handleResumeScore)
}

// ─── Job pages ───────────────────────────────────────────────────────────────

// handleJobs handles GET /api/jobs?page={n}. Pages are cached for
// cache.PageTTL; a cached page is served without touching the store.
func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			jsonError(w, "page must be a positive integer", http.StatusBadRequest)
			return
		}
		page = n
	}

	key := cache.PageKey(page)
	if cached, ok := h.cachedBytes(r.Context(), key); ok {
		writeCachedJSON(w, cached)
		return
	}

	result, err := h.pager.AssemblePage(r.Context(), page, h.pageSize)
	if err != nil {
		log.Printf("[board] assemble page %d error: %v", page, err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	h.cacheAndWrite(r.Context(), w, key, cache.PageTTL, result)
}

// handleAllJobs handles GET /api/alljobs. The full collection is cached for
// cache.DatasetTTL and invalidated after each sync cycle.
func (h *Handler) handleAllJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if cached, ok := h.cachedBytes(r.Context(), cache.DatasetKey); ok {
		writeCachedJSON(w, cached)
		return
	}

	result, err := h.pager.AllJobs(r.Context())
	if err != nil {
		log.Printf("[board] all jobs error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	h.cacheAndWrite(r.Context(), w, cache.DatasetKey, cache.DatasetTTL, result)
}

// ─── Analytics ───────────────────────────────────────────────────────────────

const topLocationCount = 10

// analyticsResponse is the JSON shape of GET /api/analytics.
type analyticsResponse struct {
	Total              int                           `json:"total"`
	ByCategory         []analytics.LabelCount        `json:"byCategory"`
	BySite             []analytics.LabelCount        `json:"bySite"`
	ByJobType          []analytics.LabelCount        `json:"byJobType"`
	TopLocations       []analytics.LabelCount        `json:"topLocations"`
	LocationCategories []analytics.LocationBreakdown `json:"locationCategories"`
	Daily              []analytics.TimePoint         `json:"daily"`
}

// handleAnalytics handles GET /api/analytics. Filter criteria arrive as
// query params (search, jobType, location, category, site, datePosted);
// absent params and the literal "all" impose no constraint.
func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dataset, err := h.dataset(r.Context())
	if err != nil {
		log.Printf("[board] analytics dataset error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	jobs := jobfilter.Apply(dataset.Jobs, jobfilter.Criteria{
		Search:     q.Get("search"),
		JobType:    q.Get("jobType"),
		Location:   q.Get("location"),
		Category:   q.Get("category"),
		Site:       q.Get("site"),
		DatePosted: q.Get("datePosted"),
	})

	jsonOK(w, analyticsResponse{
		Total:              len(jobs),
		ByCategory:         analytics.CountBy(jobs, analytics.ByCategory),
		BySite:             analytics.CountBy(jobs, analytics.BySite),
		ByJobType:          analytics.CountBy(jobs, analytics.ByJobType),
		TopLocations:       analytics.TopLocations(jobs, topLocationCount),
		LocationCategories: analytics.LocationCategories(jobs, topLocationCount),
		Daily:              analytics.DailySeries(jobs),
	})
}

// dataset returns the full collection, going through the same cache entry
// as /api/alljobs.
func (h *Handler) dataset(ctx context.Context) (*ingest.Page, error) {
	if cached, ok := h.cachedBytes(ctx, cache.DatasetKey); ok {
		var page ingest.Page
		if err := json.Unmarshal(cached, &page); err == nil {
			return &page, nil
		}
		// Corrupt entry: fall through to the store.
	}

	page, err := h.pager.AllJobs(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(page); err == nil {
		if err := h.cache.Put(ctx, cache.DatasetKey, encoded, cache.DatasetTTL); err != nil {
			log.Printf("[board] cache put %s failed: %v", cache.DatasetKey, err)
		}
	}
	return page, nil
}

// ─── Resume scoring ──────────────────────────────────────────────────────────

// handleResumeScore handles POST /api/resume-score.
func (h *Handler) handleResumeScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		JobDescription string `json:"job_description"`
		UserID         string `json:"user_id"`
		JobID          string `json:"job_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if body.JobDescription == "" || body.UserID == "" || body.JobID == "" {
		jsonError(w, "body must contain job_description, user_id and job_id", http.StatusBadRequest)
		return
	}

	rec, err := h.scorer.Score(r.Context(), body.UserID, body.JobID, body.JobDescription)
	if err != nil {
		h.writeScoreError(w, body.UserID, body.JobID, err)
		return
	}

	jsonOK(w, map[string]any{
		"match_score": rec.Score,
		"feedback":    rec.Feedback,
	})
}

func (h *Handler) writeScoreError(w http.ResponseWriter, userID, jobID string, err error) {
	var payloadErr *match.PayloadError
	switch {
	case errors.Is(err, match.ErrUserNotFound):
		jsonError(w, fmt.Sprintf("user %s not found", userID), http.StatusNotFound)
	case errors.As(err, &payloadErr):
		log.Printf("[board] resume score (%s, %s): %v", userID, jobID, err)
		jsonError(w, "invalid response from external API", http.StatusInternalServerError)
	case errors.Is(err, match.ErrUnavailable):
		log.Printf("[board] resume score (%s, %s): %v", userID, jobID, err)
		jsonError(w, "resume evaluation service unavailable", http.StatusInternalServerError)
	default:
		var storeErr *jobstore.StoreError
		if errors.As(err, &storeErr) {
			log.Printf("[board] resume score (%s, %s) store error: %v", userID, jobID, err)
			jsonError(w, "database error", http.StatusInternalServerError)
			return
		}
		log.Printf("[board] resume score (%s, %s) error: %v", userID, jobID, err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// cachedBytes reads a cache entry, treating backend errors as misses.
func (h *Handler) cachedBytes(ctx context.Context, key string) ([]byte, bool) {
	cached, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		log.Printf("[board] cache get %s failed: %v", key, err)
		return nil, false
	}
	return cached, ok
}

// cacheAndWrite serializes v once, stores the bytes under key, and writes
// them as the response.
func (h *Handler) cacheAndWrite(ctx context.Context, w http.ResponseWriter, key string, ttl time.Duration, v any) {
	encoded, err := json.Marshal(v)
	if err != nil {
		log.Printf("[board] marshal %s error: %v", key, err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := h.cache.Put(ctx, key, encoded, ttl); err != nil {
		log.Printf("[board] cache put %s failed: %v", key, err)
	}
	writeCachedJSON(w, encoded)
}

func writeCachedJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
