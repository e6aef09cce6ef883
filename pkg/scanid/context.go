// Package scanid propagates the per-scan correlation id through context so
// log lines and spans from one scan can be tied together.
package scanid

import (
	"context"
	"errors"
)

type contextKey string

const scanIDKey contextKey = "scan_id"

// ErrNoScanID is returned when no scan ID is found in the context.
var ErrNoScanID = errors.New("no scan ID found in context")

// WithScanID returns a new context carrying the given scan ID.
func WithScanID(ctx context.Context, scanID string) context.Context {
	return context.WithValue(ctx, scanIDKey, scanID)
}

// GetScanID returns the scan ID from the context.
func GetScanID(ctx context.Context) (string, error) {
	scanID, ok := ctx.Value(scanIDKey).(string)
	if !ok || scanID == "" {
		return "", ErrNoScanID
	}
	return scanID, nil
}

// HasScanID returns true if the context carries a scan ID.
func HasScanID(ctx context.Context) bool {
	_, err := GetScanID(ctx)
	return err == nil
}
