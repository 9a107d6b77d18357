// Package match produces resume-to-job match scores. Scoring is delegated
// to the external evaluation API and memoized per (user, job) pair, so each
// pair is evaluated at most once.
package match

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable marks transport-level failures reaching the evaluation
// service, as opposed to an unparseable payload (PayloadError).
var ErrUnavailable = errors.New("evaluation service unavailable")

// Evaluation is the unwrapped evaluator verdict.
type Evaluation struct {
	Score  float64
	Review []string
}

// Evaluator scores a resume against a job description.
type Evaluator interface {
	Evaluate(ctx context.Context, jobDescription, resumeText string) (*Evaluation, error)
}

// Evaluations can take a while — the external service runs an LLM pass.
const evaluateTimeout = 90 * time.Second

// HTTPEvaluator calls the external evaluation endpoint.
type HTTPEvaluator struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEvaluator constructs an evaluator for {baseURL}/evaluate-resume.
func NewHTTPEvaluator(baseURL string) *HTTPEvaluator {
	return &HTTPEvaluator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: evaluateTimeout},
	}
}

type evaluateRequest struct {
	JobDescription string `json:"job_description"`
	ResumeText     string `json:"resume_text"`
}

// Evaluate posts the pair to the evaluation API and unwraps its payload.
func (e *HTTPEvaluator) Evaluate(ctx context.Context, jobDescription, resumeText string) (*Evaluation, error) {
	body, err := json.Marshal(evaluateRequest{
		JobDescription: jobDescription,
		ResumeText:     resumeText,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal evaluate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/evaluate-resume", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: evaluator returned %d: %s", ErrUnavailable, resp.StatusCode, raw)
	}

	// The evaluator responds with a JSON-encoded string whose content is
	// the actual verdict. Some deployments skip the outer encoding.
	payload := string(raw)
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		payload = inner
	}

	return Unwrap(payload)
}
