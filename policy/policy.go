// Package policy provides an optional auto-decision layer consulted when a new
// approval request is registered.  It is deliberately decoupled from the store
// so that using it is entirely opt-in – services that carry no Policy keep the
// default "every request waits for a human" behaviour.

package policy

import (
	"context"
	"strings"
)

// Outcomes recognised by the service.
const (
	OutcomeReview  = "review"  // wait for a human decision (default)
	OutcomeApprove = "approve" // approve immediately
	OutcomeReject  = "reject"  // reject immediately
)

// DecideFunc is invoked for agents matched by neither list.  Returning
// OutcomeReview keeps the request pending.  Implementations MAY mutate the
// policy (for example, adding the agent to AutoApprove after the first call).
type DecideFunc func(
	ctx context.Context,
	agentName string, // requesting agent
	taskDescription string, // proposed action – may be empty
	p *Policy,
) string

// Policy represents the auto-decision settings applied to incoming requests.
//
//   - AutoApprove, AutoReject match agent names regardless of Decide.
//   - Decide is consulted only when neither list matches.
//
// A nil *Policy means "every request requires human review" and is therefore
// the zero-cost default.
type Policy struct {
	AutoApprove []string   // agents approved without review (empty => none)
	AutoReject  []string   // agents rejected outright
	Decide      DecideFunc // fallback when neither list matches
}

// ---------------------------------------------------------------------------
// Config <-> Policy converters (Config is a serialisable subset used when a
// Policy with DecideFunc cannot be persisted).
// ---------------------------------------------------------------------------

// Config represents the declarative, serialisable part of a Policy.
type Config struct {
	AutoApprove []string `json:"autoApprove,omitempty" yaml:"autoApprove,omitempty"`
	AutoReject  []string `json:"autoReject,omitempty" yaml:"autoReject,omitempty"`
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		AutoApprove: append([]string(nil), p.AutoApprove...),
		AutoReject:  append([]string(nil), p.AutoReject...),
	}
}

// FromConfig converts a stored Config back to a runtime Policy (without
// DecideFunc).
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		AutoApprove: append([]string(nil), c.AutoApprove...),
		AutoReject:  append([]string(nil), c.AutoReject...),
	}
}

// Evaluate returns the outcome for the given agent.  Both lists match by exact
// string comparison (case-insensitive) of the agent name.
func (p *Policy) Evaluate(ctx context.Context, agentName, taskDescription string) string {
	if p == nil {
		return OutcomeReview
	}

	normalized := strings.ToLower(agentName)

	// AutoReject has priority.
	for _, a := range p.AutoReject {
		if normalized == strings.ToLower(a) {
			return OutcomeReject
		}
	}

	for _, a := range p.AutoApprove {
		if normalized == strings.ToLower(a) {
			return OutcomeApprove
		}
	}

	if p.Decide != nil {
		return p.Decide(ctx, agentName, taskDescription, p)
	}
	return OutcomeReview
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts (*Policy, ok).
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
