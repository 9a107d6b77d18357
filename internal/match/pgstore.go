package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps match records in the job_matching table and reads resume
// text from users.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a PGStore backed by pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// matchID builds the memoization key for a pair.
func matchID(userID, jobID string) string {
	return fmt.Sprintf("%s_%s", userID, jobID)
}

func (s *PGStore) GetMatch(ctx context.Context, userID, jobID string) (*Record, error) {
	rec := Record{UserID: userID, JobID: jobID}
	err := s.pool.QueryRow(ctx,
		`SELECT match_score, feedback FROM job_matching WHERE id = $1`,
		matchID(userID, jobID),
	).Scan(&rec.Score, &rec.Feedback)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query job_matching: %w", err)
	}
	return &rec, nil
}

func (s *PGStore) PutMatch(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO job_matching (id, user_id, job_id, match_score, feedback)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		matchID(rec.UserID, rec.JobID), rec.UserID, rec.JobID, rec.Score, rec.Feedback,
	)
	if err != nil {
		return fmt.Errorf("insert job_matching: %w", err)
	}
	return nil
}

func (s *PGStore) ResumeText(ctx context.Context, userID string) (string, error) {
	var text string
	err := s.pool.QueryRow(ctx,
		`SELECT resume_text FROM users WHERE id = $1`,
		userID,
	).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query users: %w", err)
	}
	return text, nil
}
