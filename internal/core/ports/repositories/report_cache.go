package repositories

import (
	"context"
	"time"
)

// ReportCache stores rendered report payloads between ledger writes.
type ReportCache interface {
	// Get decodes the cached value for key into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Invalidate drops every cached report.
	Invalidate(ctx context.Context) error
}
