// Package match scores one candidate against one job across weighted
// sub-scores and produces a qualitative verdict. Prompts are built from
// validated record fields only, never from raw free text.
package match

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/UveshSamol/urbench-ats/internal/logger"
	"github.com/UveshSamol/urbench-ats/internal/provider"
	"github.com/UveshSamol/urbench-ats/internal/types"
)

//go:embed prompts/system.md
var systemPrompt string

const (
	// unknownValue marks a missing scalar so the model reasons about the
	// gap explicitly instead of silently ignoring it.
	unknownValue = "unknown"
	// noneValue marks an empty list.
	noneValue = "None"

	previewLen = 200
)

// Invoker is the provider gateway surface the engine depends on.
type Invoker interface {
	Invoke(ctx context.Context, prompt provider.Prompt, tier provider.Tier) (string, error)
}

// Engine produces MatchResults via the provider chain.
type Engine struct {
	chain  Invoker
	logger *zap.Logger
}

// NewEngine creates a matching engine.
func NewEngine(chain Invoker, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{chain: chain, logger: log}
}

// Score evaluates candidate against job. This is the only caller-facing
// spot where the quality tier is selectable: highQuality trades latency
// and cost for a stronger scoring model. One attempt per pair, no
// retries; transient failures are the caller's concern.
func (e *Engine) Score(ctx context.Context, candidate types.CandidateFields, job types.JobFields, highQuality bool) (types.MatchResult, error) {
	var zero types.MatchResult

	tier := provider.TierFast
	if highQuality {
		tier = provider.TierStrong
	}

	user := buildUserPrompt(candidate, job)

	e.logger.Debug("match request",
		zap.String("candidate_id", candidate.ID.String()),
		zap.String("job_id", job.ID.String()),
		zap.String("tier", string(tier)),
		zap.Int("prompt_length", utf8.RuneCountInString(user)),
	)

	raw, err := e.chain.Invoke(ctx, provider.Prompt{System: systemPrompt, User: user}, tier)
	if err != nil {
		return zero, fmt.Errorf("score candidate %s against job %s: %w", candidate.ID, job.ID, err)
	}

	e.logger.Debug("match response",
		zap.String("candidate_id", candidate.ID.String()),
		zap.String("job_id", job.ID.String()),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, previewLen)),
	)

	result, err := types.DecodeMatchResult(raw)
	if err != nil {
		return zero, fmt.Errorf("score candidate %s against job %s: %w", candidate.ID, job.ID, err)
	}

	return result, nil
}

func buildUserPrompt(candidate types.CandidateFields, job types.JobFields) string {
	var b strings.Builder

	b.WriteString("CANDIDATE: " + valueOrUnknown(candidate.Name) + "\n")
	b.WriteString("Experience: " + intOrUnknown(candidate.YearsExperience) + "yrs\n")
	b.WriteString("SAP: " + joinOrNone(candidate.SapModules) + "\n")
	b.WriteString("Certs: " + joinOrNone(candidate.Certifications) + "\n")
	b.WriteString("Industries: " + joinOrNone(candidate.Industries) + "\n")
	b.WriteString("Visa: " + ptrOrUnknown(candidate.VisaStatus) + ", Rate: " + ptrOrUnknown(candidate.RateExpectation) + "\n")
	b.WriteString("\n")
	b.WriteString("JOB: " + valueOrUnknown(job.Title) + "\n")
	b.WriteString("Required: " + joinOrNone(job.RequiredModules) + "\n")
	b.WriteString("Preferred: " + joinOrNone(job.PreferredModules) + "\n")
	b.WriteString("Years needed: " + intOrUnknown(job.RequiredYears) + ", Visa: " + ptrOrUnknown(job.VisaSponsorship) + "\n")
	b.WriteString("Rate: " + ptrOrUnknown(job.Rate) + "\n")

	return b.String()
}

func valueOrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownValue
	}
	return strings.TrimSpace(s)
}

func ptrOrUnknown(s *string) string {
	if s == nil {
		return unknownValue
	}
	return valueOrUnknown(*s)
}

func intOrUnknown(n *int) string {
	if n == nil {
		return unknownValue
	}
	return strconv.Itoa(*n)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return noneValue
	}
	return strings.Join(items, ", ")
}
