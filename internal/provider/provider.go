// Package provider defines the uniform gateway over the language-model
// backends: a common capability interface, the failure taxonomy shared by
// all backends, and the ordered fallback chain.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Tier selects between a fast/cheap and a stronger/slower model. Backends
// with a single configured model accept the tier and ignore it.
type Tier string

const (
	// TierFast is the default tier for extraction and batch scoring.
	TierFast Tier = "fast"
	// TierStrong trades latency and cost for scoring accuracy.
	TierStrong Tier = "strong"
)

// Prompt carries the instruction split expected by chat-style backends.
// Backends without a separate system channel prepend System to User.
type Prompt struct {
	System string
	User   string
}

// Kind classifies a provider failure.
type Kind string

const (
	// KindUnconfigured means credentials are missing. Fatal, never retried
	// and never a fallback trigger.
	KindUnconfigured Kind = "unconfigured"
	// KindRateLimited means the backend refused the call with a quota or
	// rate limit. Triggers the single fallback hop.
	KindRateLimited Kind = "rate_limited"
	// KindUnauthorized means the credential was rejected.
	KindUnauthorized Kind = "unauthorized"
	// KindProvider covers any other backend-reported failure; Status holds
	// the HTTP status when one exists.
	KindProvider Kind = "provider_error"
	// KindNetwork covers transport failures before a backend response.
	KindNetwork Kind = "network_error"
)

// Error is the typed failure returned by every backend.
type Error struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the failure kind of err, or an empty Kind for errors that
// did not originate from a provider.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}

// Provider is the common capability interface implemented by every
// language-model backend.
type Provider interface {
	Name() string
	Invoke(ctx context.Context, prompt Prompt, tier Tier) (string, error)
}
