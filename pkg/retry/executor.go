package retry

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

// Executor runs operations under a retry policy with exponential backoff.
type Executor struct {
	policy *Policy
}

// NewExecutor creates an executor for the given policy. A nil policy uses
// the defaults.
func NewExecutor(policy *Policy) *Executor {
	if policy == nil {
		policy = NewPolicy()
	}
	return &Executor{policy: policy}
}

// Execute runs op, retrying transient failures with exponential backoff
// until the policy's attempt budget is exhausted or the context is
// cancelled. The last error is returned.
func (e *Executor) Execute(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.policy.InitialInterval
	b.Multiplier = e.policy.BackoffCoefficient
	b.MaxInterval = e.policy.MaximumInterval
	b.MaxElapsedTime = 0 // attempts bound the retry loop, not wall time

	var wrapped backoff.BackOff = backoff.WithContext(b, ctx)
	if e.policy.MaximumAttempts > 0 {
		wrapped = backoff.WithMaxRetries(wrapped, uint64(e.policy.MaximumAttempts-1))
	}
	return backoff.Retry(op, wrapped)
}
