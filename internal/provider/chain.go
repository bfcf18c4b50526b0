package provider

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Chain invokes an ordered list of providers with a single fallback hop:
// when a provider fails with anything other than a missing credential, the
// next provider in the list is tried once. Failures on the last provider
// propagate unchanged; there are no retries beyond the hop, bounding
// worst-case latency to one call per configured backend.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

// NewChain builds a fallback chain over providers, ordered primary first.
func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{providers: providers, logger: logger}
}

// Invoke walks the provider list. A KindUnconfigured failure aborts
// immediately: missing credentials are an operator problem and falling
// back would silently hide it.
func (c *Chain) Invoke(ctx context.Context, prompt Prompt, tier Tier) (string, error) {
	if len(c.providers) == 0 {
		return "", &Error{Provider: "chain", Kind: KindUnconfigured, Err: errors.New("no providers configured")}
	}

	var lastErr error
	for i, p := range c.providers {
		out, err := p.Invoke(ctx, prompt, tier)
		if err == nil {
			return out, nil
		}

		if KindOf(err) == KindUnconfigured {
			return "", err
		}

		lastErr = err

		if i < len(c.providers)-1 {
			c.logger.Warn("provider call failed, falling back",
				zap.String("provider", p.Name()),
				zap.String("next_provider", c.providers[i+1].Name()),
				zap.String("failure_kind", string(KindOf(err))),
				zap.Error(err),
			)
		}
	}

	return "", lastErr
}
