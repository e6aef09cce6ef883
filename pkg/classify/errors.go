package classify

import "fmt"

// ProviderError reports a failed provider round trip: authentication,
// rate limiting, timeout, or an unparseable response body. It is always
// surfaced to the caller; content judged safe and a failed call are distinct
// outcomes.
type ProviderError struct {
	Provider string
	Stage    string // "request" or "parse"
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s failed: %v", e.Provider, e.Stage, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
