package daemon

import (
	"context"
	"log/slog"
	"time"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks that the attached host window still exists
// and cleans up the preview when it does not. X does not always deliver a
// destroy notification for windows owned by other clients.
type Reconciler struct {
	interval time.Duration
	sync     *HostSynchronizer
	loop     Poster
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, sync *HostSynchronizer, loop Poster) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Reconciler{
		interval: interval,
		sync:     sync,
		loop:     loop,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return nil
		case <-ticker.C:
			r.loop.Post(r.reconcile)
		}
	}
}

// reconcile performs a single pass. It runs on the loop goroutine.
func (r *Reconciler) reconcile() {
	host := r.sync.Host()
	if host == nil {
		return
	}
	if _, err := host.Bounds(); err != nil {
		r.logger.Info("reconciler: host window gone",
			"window_id", uint32(host.ID()),
			"error", err)
		r.sync.HandleWindowClosed(host.ID())
	}
}

// ReconcileNow performs a pass immediately on the calling goroutine.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
