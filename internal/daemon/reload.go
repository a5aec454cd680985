package daemon

import (
	"log/slog"

	"github.com/1broseidon/sizepeek/internal/config"
	"github.com/1broseidon/sizepeek/internal/placement"
)

// Reloadable is the part of the preview coordinator a config reload drives.
// Renderer and indicator come from the coordinator's own settings store.
type Reloadable interface {
	LoadFromSettings() bool
	SetStrategyKind(kind placement.Kind) bool
	Err() error
}

// Reloader re-reads the config file on request. Renderer, indicator and
// strategy apply immediately; overlay, placement tuning and display changes
// are only logged since they are fixed at startup. Must run on the loop
// goroutine.
type Reloader struct {
	store  *config.Store
	target Reloadable
	cur    *config.Config
	logger *slog.Logger
}

// NewReloader creates a reloader. cur is the config the daemon started with
// and is updated in place as reloads succeed.
func NewReloader(store *config.Store, target Reloadable, cur *config.Config, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reloader{store: store, target: target, cur: cur, logger: logger}
}

// Reload applies the file's current contents.
func (r *Reloader) Reload() error {
	next, err := r.store.Load()
	if err != nil {
		return err
	}
	strategy, err := next.Strategy()
	if err != nil {
		return err
	}

	if !r.target.LoadFromSettings() {
		return r.target.Err()
	}
	if !r.target.SetStrategyKind(strategy) {
		return r.target.Err()
	}

	if next.Overlay != r.cur.Overlay || placementChanged(r.cur, next) || next.Display != r.cur.Display {
		r.logger.Warn("overlay, placement tuning and display changes take effect after a daemon restart")
	}
	r.cur.Preview.Renderer = next.Preview.Renderer
	r.cur.Preview.Indicator = next.Preview.Indicator
	r.cur.Preview.Mode = next.Preview.Mode
	r.cur.Preview.Strategy = next.Preview.Strategy
	r.logger.Info("config reloaded",
		"renderer", next.Preview.Renderer,
		"indicator", next.Preview.Indicator,
		"strategy", next.Preview.Strategy)
	return nil
}

func placementChanged(cur, next *config.Config) bool {
	a, errA := cur.PlacementOptions()
	b, errB := next.PlacementOptions()
	if errA != nil || errB != nil {
		return true
	}
	return a != b
}
