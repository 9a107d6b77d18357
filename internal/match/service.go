package match

import (
	"context"
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when no resume exists for the requesting user.
var ErrUserNotFound = errors.New("user not found")

// Record is one stored match verdict.
type Record struct {
	UserID   string   `json:"user_id"`
	JobID    string   `json:"job_id"`
	Score    float64  `json:"match_score"`
	Feedback []string `json:"feedback"`
}

// Store persists match records and exposes the resume text needed to
// compute new ones.
type Store interface {
	// GetMatch returns the stored record for the pair, or nil when the
	// pair has not been evaluated yet.
	GetMatch(ctx context.Context, userID, jobID string) (*Record, error)
	PutMatch(ctx context.Context, rec Record) error
	// ResumeText returns the user's extracted resume text, or
	// ErrUserNotFound.
	ResumeText(ctx context.Context, userID string) (string, error)
}

// Service memoizes evaluator verdicts per (user, job) pair.
type Service struct {
	store     Store
	evaluator Evaluator
}

// NewService returns a configured Service.
func NewService(store Store, evaluator Evaluator) *Service {
	return &Service{store: store, evaluator: evaluator}
}

// Score returns the match verdict for the pair, evaluating and storing it
// on first request. Repeated requests never re-invoke the evaluator.
func (s *Service) Score(ctx context.Context, userID, jobID, jobDescription string) (*Record, error) {
	rec, err := s.store.GetMatch(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}

	resume, err := s.store.ResumeText(ctx, userID)
	if err != nil {
		return nil, err
	}

	eval, err := s.evaluator.Evaluate(ctx, jobDescription, resume)
	if err != nil {
		return nil, err
	}

	rec = &Record{
		UserID:   userID,
		JobID:    jobID,
		Score:    eval.Score,
		Feedback: eval.Review,
	}
	if err := s.store.PutMatch(ctx, *rec); err != nil {
		return nil, fmt.Errorf("store match verdict: %w", err)
	}
	return rec, nil
}
