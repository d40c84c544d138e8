// Package timeouts holds the deadline classes handlers attach to their
// database work.
//
// Every handler wraps r.Context() with one of these before touching a
// store, so a slow Mongo node degrades into a logged timeout instead of a
// hung request. The classes map to the shapes of work in this app:
//
//   - Ping: the health endpoint's connectivity probe
//   - Short: one-document work (load an application by user, session refresh)
//   - Medium: paged lists (review queue, institution roster, audit search)
//   - Long: decision writes that span collections (approve → provision
//     institution → promote applicant)
//   - Batch: the registry mirror sweep and OAuth state purge
//
// Values start at the defaults below and may be overridden once at startup
// via Configure.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

var (
	mu sync.RWMutex

	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	batch  = DefaultBatch
)

func get(d *time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return *d
}

// Ping returns the timeout for the health check's connectivity probe.
func Ping() time.Duration { return get(&ping) }

// Short returns the timeout for single-document reads and writes:
// loading the caller's application, a login's user lookup, one registry
// upsert.
func Short() time.Duration { return get(&short) }

// Medium returns the timeout for paged list queries: the review queue,
// institution and roster lists, audit event search.
func Medium() time.Duration { return get(&medium) }

// Long returns the timeout for decision writes that touch several
// collections, like approving an application and provisioning its
// institution.
func Long() time.Duration { return get(&long) }

// Batch returns the timeout for one pass of a background sweep: the
// registry mirror reconciler, the OAuth state purge.
func Batch() time.Duration { return get(&batch) }

// Config holds timeout overrides. Zero values keep the current setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

// Configure applies overrides. Call once at startup, before handlers are
// registered; zero fields are ignored.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	for _, o := range []struct {
		v   time.Duration
		dst *time.Duration
	}{
		{cfg.Ping, &ping},
		{cfg.Short, &short},
		{cfg.Medium, &medium},
		{cfg.Long, &long},
		{cfg.Batch, &batch},
	} {
		if o.v > 0 {
			*o.dst = o.v
		}
	}
}

// Reset restores the defaults. Tests that call Configure clean up with this.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping, short, medium, long, batch = DefaultPing, DefaultShort, DefaultMedium, DefaultLong, DefaultBatch
}

// Current returns the active values, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Medium: medium, Long: long, Batch: batch}
}

// WithTimeout wraps parent with the given deadline and returns a cancel
// function that logs when the operation ran out of time. The operation
// name is what shows up in the log line, so name the work, not the
// handler.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
