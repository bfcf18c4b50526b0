// Package shortlist scores a pre-filtered candidate pool against a job
// and persists the top-ranked matches exactly once per job.
package shortlist

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/UveshSamol/urbench-ats/internal/types"
)

const (
	// DefaultTopN is how many matches one run persists at most.
	DefaultTopN = 5
	// DefaultPoolLimit caps the candidate pool and with it the number of
	// paid scoring calls per run.
	DefaultPoolLimit = 50
	// DefaultConcurrency keeps scoring sequential: the providers are
	// rate-limited, and a fan-out that trips the limiter falls back to
	// the secondary backend on every call, multiplying cost.
	DefaultConcurrency = 1
)

// ErrJobNotFound is returned when the job id resolves to nothing.
var ErrJobNotFound = errors.New("job not found")

// Scorer is the matching-engine surface the orchestrator depends on.
type Scorer interface {
	Score(ctx context.Context, candidate types.CandidateFields, job types.JobFields, highQuality bool) (types.MatchResult, error)
}

// Match is one persisted shortlist entry.
type Match struct {
	CandidateID uuid.UUID
	Result      types.MatchResult
}

// Store is the persistence surface the orchestrator consumes. ClaimJob
// must be an atomic conditional flip of the job's shortlisted flag: it
// returns true for exactly one of any set of concurrent claimants.
// CreateMatches must write all rows in a single transaction.
type Store interface {
	GetJob(ctx context.Context, jobID uuid.UUID) (*types.JobFields, error)
	ClaimJob(ctx context.Context, jobID uuid.UUID) (bool, error)
	ReleaseClaim(ctx context.Context, jobID uuid.UUID) error
	FindCandidatesByStatusAndModules(ctx context.Context, statuses, modules []string, limit int) ([]types.CandidateFields, error)
	CreateMatches(ctx context.Context, jobID uuid.UUID, matches []Match) error
}

// Config tunes the run. Zero values use defaults.
type Config struct {
	TopN        int
	PoolLimit   int
	Concurrency int
}

func (c *Config) withDefaults() Config {
	cfg := Config{}
	if c != nil {
		cfg = *c
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.PoolLimit <= 0 {
		cfg.PoolLimit = DefaultPoolLimit
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return cfg
}

// Orchestrator runs the auto-shortlist algorithm.
type Orchestrator struct {
	store  Store
	scorer Scorer
	cfg    Config
	logger *zap.Logger
}

// New creates an orchestrator.
func New(store Store, scorer Scorer, cfg *Config, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{store: store, scorer: scorer, cfg: cfg.withDefaults(), logger: log}
}

// Run auto-shortlists the given job. Idempotent: a job is shortlisted at
// most once, enforced by the atomic claim taken before any scoring call.
// A per-candidate scoring failure drops that candidate and never aborts
// the batch; a failure affecting the whole run releases the claim so a
// later invocation can retry.
func (o *Orchestrator) Run(ctx context.Context, jobID uuid.UUID) error {
	log := o.logger.With(zap.String("job_id", jobID.String()))

	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job == nil {
		return fmt.Errorf("load job %s: %w", jobID, ErrJobNotFound)
	}

	if job.AutoShortlisted {
		log.Info("job already auto-shortlisted, skipping")
		return nil
	}

	claimed, err := o.store.ClaimJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("claim job %s: %w", jobID, err)
	}
	if !claimed {
		log.Info("job claimed by a concurrent run, skipping")
		return nil
	}

	pool, err := o.store.FindCandidatesByStatusAndModules(ctx,
		[]string{types.StatusSourcing, types.StatusScreening},
		job.RequiredModules,
		o.cfg.PoolLimit,
	)
	if err != nil {
		o.release(context.WithoutCancel(ctx), jobID, log)
		return fmt.Errorf("select candidate pool for job %s: %w", jobID, err)
	}

	if len(pool) == 0 {
		// An empty shortlist is a valid terminal outcome; the claim stands.
		log.Info("no eligible candidates, leaving empty shortlist")
		return nil
	}

	scored := o.scorePool(ctx, pool, *job, log)

	ranked := rank(scored, o.cfg.TopN)

	if len(ranked) == 0 && ctx.Err() != nil {
		// Cancelled before anything was scored: nothing to persist, so
		// hand the job back for a future retry.
		o.release(context.WithoutCancel(ctx), jobID, log)
		return fmt.Errorf("shortlist job %s: %w", jobID, ctx.Err())
	}

	// The terminal write must not be killed by the signal that stopped
	// scoring: a partial ranking is still a valid shortlist.
	persistCtx := context.WithoutCancel(ctx)

	if len(ranked) > 0 {
		if err := o.store.CreateMatches(persistCtx, jobID, ranked); err != nil {
			o.release(persistCtx, jobID, log)
			return fmt.Errorf("persist shortlist for job %s: %w", jobID, err)
		}
	}

	log.Info("stored auto-shortlist",
		zap.Int("pool_size", len(pool)),
		zap.Int("scored", len(scored)),
		zap.Int("persisted", len(ranked)),
	)

	return nil
}

// scorePool scores every pool candidate through a bounded worker group.
// Results land at their pool index so ties later keep pool order.
func (o *Orchestrator) scorePool(ctx context.Context, pool []types.CandidateFields, job types.JobFields, log *zap.Logger) []*Match {
	results := make([]*Match, len(pool))

	var g errgroup.Group
	g.SetLimit(o.cfg.Concurrency)

	for i, candidate := range pool {
		if ctx.Err() != nil {
			log.Warn("cancelled, not issuing further scoring calls",
				zap.Int("remaining", len(pool)-i))
			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			result, err := o.scorer.Score(ctx, candidate, job, false)
			if err != nil {
				log.Warn("failed to score candidate, dropping from run",
					zap.String("candidate_id", candidate.ID.String()),
					zap.Error(err),
				)
				return nil
			}

			results[i] = &Match{CandidateID: candidate.ID, Result: result}
			return nil
		})
	}

	_ = g.Wait()

	return results
}

// rank compacts the scored results, sorts by overall score descending
// with ties keeping pool-selection order, and keeps the top n.
func rank(results []*Match, n int) []Match {
	ranked := make([]Match, 0, len(results))
	for _, r := range results {
		if r != nil {
			ranked = append(ranked, *r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.OverallScore > ranked[j].Result.OverallScore
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	return ranked
}

func (o *Orchestrator) release(ctx context.Context, jobID uuid.UUID, log *zap.Logger) {
	if err := o.store.ReleaseClaim(ctx, jobID); err != nil {
		log.Error("failed to release shortlist claim, job stays marked shortlisted",
			zap.Error(err))
	}
}
