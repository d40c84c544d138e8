// internal/app/system/workers/registrysync.go
package workers

import (
	"context"
	"sync"
	"time"

	applicationstore "github.com/trovehq/trovehub/internal/app/store/applications"
	registrystore "github.com/trovehq/trovehub/internal/app/store/registry"
	"go.uber.org/zap"
)

// RegistrySync is a background worker that reconciles the registry mirror
// with the applications collection. Request handlers mirror best-effort;
// any application whose mirror write failed keeps synced_to_registry=false
// and is picked up here.
type RegistrySync struct {
	apps      *applicationstore.Store
	registry  *registrystore.Store
	log       *zap.Logger
	interval  time.Duration
	batchSize int64
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewRegistrySync creates a new registry reconciliation worker.
//
// Parameters:
//   - apps: the applications store (source of truth)
//   - registry: the registry store (mirror)
//   - logger: zap logger for logging
//   - interval: how often to sweep for unsynced applications (e.g., 1 minute)
//   - batchSize: max applications reconciled per sweep
func NewRegistrySync(apps *applicationstore.Store, registry *registrystore.Store, logger *zap.Logger, interval time.Duration, batchSize int64) *RegistrySync {
	return &RegistrySync{
		apps:      apps,
		registry:  registry,
		log:       logger,
		interval:  interval,
		batchSize: batchSize,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background reconciliation loop.
func (w *RegistrySync) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("registry sync worker started",
		zap.Duration("interval", w.interval),
		zap.Int64("batch_size", w.batchSize))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *RegistrySync) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("registry sync worker stopped")
}

func (w *RegistrySync) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *RegistrySync) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	synced, failed, err := w.Reconcile(ctx)
	if err != nil {
		w.log.Error("registry sweep failed", zap.Error(err))
		return
	}
	if synced > 0 || failed > 0 {
		w.log.Info("registry sweep finished",
			zap.Int("synced", synced),
			zap.Int("failed", failed))
	}
}

// Reconcile mirrors one batch of unsynced applications into the registry
// and marks them synced. A failed upsert leaves its application unsynced
// for the next sweep; the sweep keeps going through the rest of the batch.
func (w *RegistrySync) Reconcile(ctx context.Context) (synced, failed int, err error) {
	apps, err := w.apps.ListUnsynced(ctx, w.batchSize)
	if err != nil {
		return 0, 0, err
	}

	for _, app := range apps {
		if err := w.registry.Upsert(ctx, registrystore.ReferenceFor(app)); err != nil {
			failed++
			w.log.Warn("registry upsert failed",
				zap.String("application_id", app.ID.Hex()),
				zap.Error(err))
			continue
		}
		if err := w.apps.MarkSynced(ctx, app.ID); err != nil {
			failed++
			w.log.Warn("failed to mark application synced",
				zap.String("application_id", app.ID.Hex()),
				zap.Error(err))
			continue
		}
		synced++
	}
	return synced, failed, nil
}
