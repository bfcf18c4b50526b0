// Package postgres provides PostgreSQL persistence for jobs, candidates
// and shortlist matches.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UveshSamol/urbench-ats/internal/shortlist"
	"github.com/UveshSamol/urbench-ats/internal/types"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// GetJob retrieves a job by ID. Returns nil without error when the job
// does not exist.
func (s *Store) GetJob(ctx context.Context, jobID uuid.UUID) (*types.JobFields, error) {
	var job types.JobFields
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, required_modules, preferred_modules, required_years,
		        required_certs, industries, visa_sponsorship, rate, auto_shortlisted
		 FROM jobs WHERE id = $1`,
		jobID,
	).Scan(&job.ID, &job.Title, &job.RequiredModules, &job.PreferredModules, &job.RequiredYears,
		&job.RequiredCerts, &job.Industries, &job.VisaSponsorship, &job.Rate, &job.AutoShortlisted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// ClaimJob flips the job's shortlisted flag if and only if it is still
// unset. The conditional update makes the claim atomic: of any number of
// concurrent claimants exactly one sees a row change.
func (s *Store) ClaimJob(ctx context.Context, jobID uuid.UUID) (bool, error) {
	result, err := s.pool.Exec(ctx,
		`UPDATE jobs SET auto_shortlisted = TRUE
		 WHERE id = $1 AND auto_shortlisted = FALSE`,
		jobID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim job: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// ReleaseClaim clears the shortlisted flag so a later run can retry.
func (s *Store) ReleaseClaim(ctx context.Context, jobID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE jobs SET auto_shortlisted = FALSE WHERE id = $1`,
		jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to release claim: %w", err)
	}
	return nil
}

// FindCandidatesByStatusAndModules selects candidates in one of the given
// statuses whose module list overlaps the given modules, capped at limit.
func (s *Store) FindCandidatesByStatusAndModules(ctx context.Context, statuses, modules []string, limit int) ([]types.CandidateFields, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, status, years_experience, sap_modules, certifications,
		        industries, visa_status, availability, rate_expectation
		 FROM candidates
		 WHERE status = ANY($1) AND sap_modules && $2
		 ORDER BY created_at ASC
		 LIMIT $3`,
		statuses, modules, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []types.CandidateFields
	for rows.Next() {
		var c types.CandidateFields
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.YearsExperience, &c.SapModules,
			&c.Certifications, &c.Industries, &c.VisaStatus, &c.Availability, &c.RateExpectation); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}
	return candidates, nil
}

// CreateMatches writes the ranked shortlist in a single transaction.
// Rank positions follow slice order starting at 1.
func (s *Store) CreateMatches(ctx context.Context, jobID uuid.UUID, matches []shortlist.Match) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, m := range matches {
		_, err := tx.Exec(ctx,
			`INSERT INTO matches (id, job_id, candidate_id, rank, overall_score,
			                      module_score, experience_score, industry_score,
			                      certification_score, strengths, gaps, recommendation,
			                      summary, next_steps, is_auto_shortlist)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, TRUE)`,
			uuid.New(), jobID, m.CandidateID, i+1, m.Result.OverallScore,
			m.Result.ModuleScore, m.Result.ExperienceScore, m.Result.IndustryScore,
			m.Result.CertificationScore, m.Result.Strengths, m.Result.Gaps,
			m.Result.Recommendation, m.Result.Summary, m.Result.NextSteps,
		)
		if err != nil {
			return fmt.Errorf("failed to insert match for candidate %s: %w", m.CandidateID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit matches: %w", err)
	}
	return nil
}
