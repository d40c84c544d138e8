// Package mirror runs secondary writes that must never fail the primary
// operation. The applications collection is the source of truth; the
// public registry is a mirror of it. When a mirror write fails the request
// still succeeds, the failure is logged, and the reconciliation worker
// retries later using the synced flag on the application record.
package mirror

import (
	"context"

	"go.uber.org/zap"
)

// BestEffort runs fn and reports the outcome. A failure is logged at Warn
// with the operation name and swallowed so the caller's primary write
// stands. The returned bool tells the caller whether the mirror is in sync,
// for recording on the primary record.
func BestEffort(ctx context.Context, log *zap.Logger, operation string, fn func(ctx context.Context) error) bool {
	if err := fn(ctx); err != nil {
		if log != nil {
			log.Warn("mirror write failed, reconciler will retry",
				zap.String("operation", operation),
				zap.Error(err))
		}
		return false
	}
	return true
}
