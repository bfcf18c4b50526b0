// Package extract turns raw résumé and job-description text into
// structured records via the provider chain, with a fingerprint cache in
// front to avoid paying for repeat extractions of identical text.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/UveshSamol/urbench-ats/internal/cache"
	"github.com/UveshSamol/urbench-ats/internal/logger"
	"github.com/UveshSamol/urbench-ats/internal/provider"
	"github.com/UveshSamol/urbench-ats/internal/textnorm"
	"github.com/UveshSamol/urbench-ats/internal/types"
)

const (
	// DefaultResumeWordLimit bounds résumé input. Résumés front-load the
	// relevant content, so a generous limit loses little.
	DefaultResumeWordLimit = 3000
	// DefaultJobWordLimit bounds job-description input. Job posts repeat
	// themselves sooner, so they tolerate a tighter cut.
	DefaultJobWordLimit = 2000

	// Job keys are namespaced so a résumé and a job description with a
	// colliding fingerprint cannot serve each other's cache entry.
	jobKeyPrefix = "jd_"

	systemPrompt = "You are an SAP recruiting expert. Return ONLY valid JSON."

	previewLen = 200
)

//go:embed prompts/resume.md
var resumePrompt string

//go:embed prompts/job.md
var jobPrompt string

// Invoker is the provider gateway surface the service depends on.
// Satisfied by *provider.Chain.
type Invoker interface {
	Invoke(ctx context.Context, prompt provider.Prompt, tier provider.Tier) (string, error)
}

// Config tunes word limits and cache policy. Zero values use defaults.
type Config struct {
	ResumeWordLimit int
	JobWordLimit    int
	CacheCapacity   int
	CacheTTL        time.Duration
}

func (c *Config) withDefaults() Config {
	cfg := Config{}
	if c != nil {
		cfg = *c
	}
	if cfg.ResumeWordLimit <= 0 {
		cfg.ResumeWordLimit = DefaultResumeWordLimit
	}
	if cfg.JobWordLimit <= 0 {
		cfg.JobWordLimit = DefaultJobWordLimit
	}
	return cfg
}

// Service is the extraction entry point consumed by the CRUD layer.
type Service struct {
	chain  Invoker
	logger *zap.Logger

	resumeLimit int
	jobLimit    int

	resumes *cache.Cache[types.ParsedResume]
	jobs    *cache.Cache[types.ParsedJob]
}

// NewService builds an extraction service with its own result caches.
func NewService(chain Invoker, cfg *Config, log *zap.Logger) *Service {
	settings := cfg.withDefaults()

	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		chain:       chain,
		logger:      log,
		resumeLimit: settings.ResumeWordLimit,
		jobLimit:    settings.JobWordLimit,
		resumes:     cache.New[types.ParsedResume](settings.CacheCapacity, settings.CacheTTL),
		jobs:        cache.New[types.ParsedJob](settings.CacheCapacity, settings.CacheTTL),
	}
}

// ExtractResume extracts a structured candidate record from résumé text.
func (s *Service) ExtractResume(ctx context.Context, text string) (types.ParsedResume, error) {
	return extractDoc(ctx, s, s.resumes, docParams[types.ParsedResume]{
		kind:      types.KindResume,
		wordLimit: s.resumeLimit,
		template:  resumePrompt,
		decode:    types.DecodeResume,
	}, text)
}

// ExtractJob extracts a structured job record from job-description text.
func (s *Service) ExtractJob(ctx context.Context, text string) (types.ParsedJob, error) {
	return extractDoc(ctx, s, s.jobs, docParams[types.ParsedJob]{
		kind:      types.KindJob,
		wordLimit: s.jobLimit,
		keyPrefix: jobKeyPrefix,
		template:  jobPrompt,
		decode:    types.DecodeJob,
	}, text)
}

// docParams is everything that differs between the two document kinds; the
// control flow is one shared operation.
type docParams[T any] struct {
	kind      string
	wordLimit int
	keyPrefix string
	template  string
	decode    func(raw string) (T, error)
}

func extractDoc[T any](ctx context.Context, s *Service, store *cache.Cache[T], p docParams[T], text string) (T, error) {
	var zero T

	truncated := textnorm.Truncate(text, p.wordLimit)
	key := p.keyPrefix + textnorm.Fingerprint(truncated)

	if record, ok := store.Get(key); ok {
		s.logger.Debug("extraction cache hit",
			zap.String("kind", p.kind),
			zap.String("cache_key", logger.TruncateForLog(key, previewLen)),
		)
		return record, nil
	}

	prompt := strings.ReplaceAll(p.template, "{{DOCUMENT}}", truncated)

	s.logger.Debug("extraction request",
		zap.String("kind", p.kind),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	raw, err := s.chain.Invoke(ctx, provider.Prompt{System: systemPrompt, User: prompt}, provider.TierFast)
	if err != nil {
		return zero, fmt.Errorf("extract %s: %w", p.kind, err)
	}

	s.logger.Debug("extraction response",
		zap.String("kind", p.kind),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, previewLen)),
	)

	record, err := p.decode(raw)
	if err != nil {
		// Malformed responses are not cached: a later attempt against the
		// provider may well produce parseable output.
		return zero, fmt.Errorf("extract %s: %w", p.kind, err)
	}

	store.Put(key, record)

	return record, nil
}
