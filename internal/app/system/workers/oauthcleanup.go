// internal/app/system/workers/oauthcleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/trovehq/trovehub/internal/app/store/oauthstate"
	"go.uber.org/zap"
)

// OAuthStateCleanup is a background worker that deletes expired OAuth
// state records. The collection also carries a TTL index, so this sweep
// only tightens the window between expiry and removal.
type OAuthStateCleanup struct {
	states   *oauthstate.Store
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewOAuthStateCleanup creates a new OAuth state cleanup worker.
func NewOAuthStateCleanup(states *oauthstate.Store, logger *zap.Logger, interval time.Duration) *OAuthStateCleanup {
	return &OAuthStateCleanup{
		states:   states,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *OAuthStateCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("oauth state cleanup worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *OAuthStateCleanup) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("oauth state cleanup worker stopped")
}

func (w *OAuthStateCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *OAuthStateCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.states.CleanupExpired(ctx)
	if err != nil {
		w.log.Error("failed to clean up expired oauth states", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("removed expired oauth states", zap.Int64("count", count))
	}
}
