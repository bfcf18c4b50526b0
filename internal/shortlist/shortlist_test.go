package shortlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/UveshSamol/urbench-ats/internal/types"
)

type fakeStore struct {
	mu sync.Mutex

	job        *types.JobFields
	getJobErr  error
	claimed    bool
	claimErr   error
	pool       []types.CandidateFields
	poolErr    error
	persistErr error

	claimCalls   int
	releaseCalls int
	persisted    [][]Match
	poolStatuses []string
	poolModules  []string
	poolLimit    int
}

func (s *fakeStore) GetJob(_ context.Context, _ uuid.UUID) (*types.JobFields, error) {
	return s.job, s.getJobErr
}

func (s *fakeStore) ClaimJob(_ context.Context, _ uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimErr != nil {
		return false, s.claimErr
	}
	s.claimCalls++
	if s.claimed {
		return false, nil
	}
	s.claimed = true
	return true, nil
}

func (s *fakeStore) ReleaseClaim(_ context.Context, _ uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseCalls++
	s.claimed = false
	return nil
}

func (s *fakeStore) FindCandidatesByStatusAndModules(_ context.Context, statuses, modules []string, limit int) ([]types.CandidateFields, error) {
	s.poolStatuses = statuses
	s.poolModules = modules
	s.poolLimit = limit
	return s.pool, s.poolErr
}

func (s *fakeStore) CreateMatches(_ context.Context, _ uuid.UUID, matches []Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persistErr != nil {
		return s.persistErr
	}
	s.persisted = append(s.persisted, matches)
	return nil
}

type fakeScorer struct {
	mu sync.Mutex

	scores  map[uuid.UUID]int
	failFor map[uuid.UUID]error
	calls   []uuid.UUID
	tiers   []bool
	cancel  context.CancelFunc
	after   int
}

func (f *fakeScorer) Score(_ context.Context, candidate types.CandidateFields, _ types.JobFields, highQuality bool) (types.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, candidate.ID)
	f.tiers = append(f.tiers, highQuality)
	if f.cancel != nil && len(f.calls) == f.after {
		f.cancel()
	}
	if err, ok := f.failFor[candidate.ID]; ok {
		return types.MatchResult{}, err
	}
	return types.MatchResult{
		OverallScore:   f.scores[candidate.ID],
		Recommendation: types.RecommendationGood,
	}, nil
}

func testJob() *types.JobFields {
	return &types.JobFields{
		ID:              uuid.New(),
		Title:           "SAP FICO Consultant",
		RequiredModules: []string{"SAP FICO"},
	}
}

// makePool creates n candidates with overall scores 10, 20, 30, ...
// keyed into the scorer so higher index means higher score.
func makePool(n int, scorer *fakeScorer) []types.CandidateFields {
	pool := make([]types.CandidateFields, n)
	for i := range pool {
		pool[i] = types.CandidateFields{
			ID:   uuid.New(),
			Name: fmt.Sprintf("Candidate %d", i),
		}
		scorer.scores[pool[i].ID] = (i + 1) * 10 % 101
	}
	return pool
}

func newScorer() *fakeScorer {
	return &fakeScorer{scores: map[uuid.UUID]int{}, failFor: map[uuid.UUID]error{}}
}

func TestRunPersistsTopFiveDescending(t *testing.T) {
	scorer := newScorer()
	store := &fakeStore{job: testJob()}
	store.pool = makePool(8, scorer)

	orch := New(store, scorer, nil, zap.NewNop())
	require.NoError(t, orch.Run(context.Background(), store.job.ID))

	require.Len(t, store.persisted, 1)
	matches := store.persisted[0]
	require.Len(t, matches, DefaultTopN)

	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Result.OverallScore, matches[i].Result.OverallScore)
	}
	assert.Equal(t, 80, matches[0].Result.OverallScore)
	assert.Equal(t, 40, matches[4].Result.OverallScore)
}

func TestRunScoresEveryPoolCandidateOnFastTier(t *testing.T) {
	scorer := newScorer()
	store := &fakeStore{job: testJob()}
	store.pool = makePool(8, scorer)

	orch := New(store, scorer, nil, zap.NewNop())
	require.NoError(t, orch.Run(context.Background(), store.job.ID))

	assert.Len(t, scorer.calls, 8)
	for _, highQuality := range scorer.tiers {
		assert.False(t, highQuality)
	}
}

func TestRunQueriesPoolWithJobModules(t *testing.T) {
	scorer := newScorer()
	store := &fakeStore{job: testJob()}
	store.pool = makePool(2, scorer)

	orch := New(store, scorer, nil, zap.NewNop())
	require.NoError(t, orch.Run(context.Background(), store.job.ID))

	assert.Equal(t, []string{types.StatusSourcing, types.StatusScreening}, store.poolStatuses)
	assert.Equal(t, store.job.RequiredModules, store.poolModules)
	assert.Equal(t, DefaultPoolLimit, store.poolLimit)
}

func TestRunSecondInvocationIsNoOp(t *testing.T) {
	scorer := newScorer()
	store := &fakeStore{job: testJob()}
	store.pool = makePool(4, scorer)

	orch := New(store, scorer, nil, zap.NewNop())
	require.NoError(t, orch.Run(context.Background(), store.job.ID))

	firstCalls := len(scorer.calls)
	require.NoError(t, orch.Run(context.Background(), store.job.ID))

	assert.Len(t, scorer.calls, firstCalls, "second run must not score again")
	assert.Len(t, store.persisted, 1, "second run must not persist again")
}

func TestRunSkipsAlreadyShortlistedJob(t *testing.T) {
	scorer := newScorer()
	job := testJob()
	job.AutoShortlisted = true
	store := &fakeStore{job: job}

	orch := New(store, scorer, nil, zap.NewNop())
	require.NoError(t, orch.Run(context.Background(), job.ID))

	assert.Zero(t, store.claimCalls)
	assert.Empty(t, scorer.calls)
}

func TestRunJobNotFound(t *testing.T) {
	orch := New(&fakeStore{}, newScorer(), nil, zap.NewNop())

	err := orch.Run(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestRunSkipsCandidatesThatFailToScore(t *testing.T) {
	scorer := newScorer()
	store := &fakeStore{job: testJob()}
	store.pool = makePool(8, scorer)
	scorer.failFor[store.pool[7].ID] = errors.New("model returned garbage")
	scorer.failFor[store.pool[6].ID] = errors.New("rate limited twice")

	orch := New(store, scorer, nil, zap.NewNop())
	require.NoError(t, orch.Run(context.Background(), store.job.ID))

	require.Len(t, store.persisted, 1)
	matches := store.persisted[0]
	require.Len(t, matches, DefaultTopN)
	assert.Equal(t, 60, matches[0].Result.OverallScore, "ranking must only cover scored candidates")
	assert.Zero(t, store.releaseCalls)
}

func TestRunEmptyPoolKeepsClaimAndPersistsNothing(t *testing.T) {
	store := &fakeStore{job: testJob()}

	orch := New(store, newScorer(), nil, zap.NewNop())
	require.NoError(t, orch.Run(context.Background(), store.job.ID))

	assert.True(t, store.claimed, "empty shortlist is terminal, claim stands")
	assert.Empty(t, store.persisted)
}

func TestRunPoolQueryFailureReleasesClaim(t *testing.T) {
	store := &fakeStore{job: testJob(), poolErr: errors.New("db gone")}

	orch := New(store, newScorer(), nil, zap.NewNop())
	err := orch.Run(context.Background(), store.job.ID)

	require.Error(t, err)
	assert.Equal(t, 1, store.releaseCalls)
	assert.False(t, store.claimed)
}

func TestRunPersistFailureReleasesClaim(t *testing.T) {
	scorer := newScorer()
	store := &fakeStore{job: testJob(), persistErr: errors.New("tx aborted")}
	store.pool = makePool(3, scorer)

	orch := New(store, scorer, nil, zap.NewNop())
	err := orch.Run(context.Background(), store.job.ID)

	require.Error(t, err)
	assert.Equal(t, 1, store.releaseCalls)
	assert.False(t, store.claimed, "job must be retryable after a failed persist")
}

func TestRunCancellationPersistsPartialRanking(t *testing.T) {
	scorer := newScorer()
	store := &fakeStore{job: testJob()}
	store.pool = makePool(10, scorer)

	ctx, cancel := context.WithCancel(context.Background())
	scorer.cancel = cancel
	scorer.after = 3

	orch := New(store, scorer, nil, zap.NewNop())
	require.NoError(t, orch.Run(ctx, store.job.ID))

	assert.Less(t, len(scorer.calls), 10, "cancellation must stop issuing scoring calls")
	require.Len(t, store.persisted, 1)
	assert.NotEmpty(t, store.persisted[0])
	assert.LessOrEqual(t, len(store.persisted[0]), DefaultTopN)
}

func TestRunTopNConfigurable(t *testing.T) {
	scorer := newScorer()
	store := &fakeStore{job: testJob()}
	store.pool = makePool(6, scorer)

	orch := New(store, scorer, &Config{TopN: 2}, zap.NewNop())
	require.NoError(t, orch.Run(context.Background(), store.job.ID))

	require.Len(t, store.persisted, 1)
	assert.Len(t, store.persisted[0], 2)
}

func TestRankStableForTies(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	results := []*Match{
		{CandidateID: a, Result: types.MatchResult{OverallScore: 70}},
		{CandidateID: b, Result: types.MatchResult{OverallScore: 70}},
		nil,
		{CandidateID: c, Result: types.MatchResult{OverallScore: 90}},
	}

	ranked := rank(results, 5)

	require.Len(t, ranked, 3)
	assert.Equal(t, c, ranked[0].CandidateID)
	assert.Equal(t, a, ranked[1].CandidateID, "ties keep pool order")
	assert.Equal(t, b, ranked[2].CandidateID)
}
