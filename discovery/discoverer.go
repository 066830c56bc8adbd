// Package discovery orchestrates one concurrent discovery pass across every
// registered integration.
package discovery

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"unilight/config"
	"unilight/internal/batch"
	"unilight/lights"
)

// Discoverer runs each enabled integration's discovery concurrently and
// flattens the results. A failing integration contributes nothing but never
// fails the pass: the worst outcome of any single failure is fewer lights.
type Discoverer struct {
	cfg    *config.Config
	logger *slog.Logger
	batch  *batch.Batch[[]lights.Light]
}

// New builds a discoverer for one pass over cfg. The config snapshot is
// shared by reference with every integration and must not change until Run
// returns. A nil logger gets the default stderr handler.
func New(cfg *config.Config, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return &Discoverer{
		cfg:    cfg,
		logger: logger.With("pass", uuid.New().String()),
		batch:  batch.New[[]lights.Light](),
	}
}

// Register gates the integration through Preflight and, if it passes,
// queues its discovery. Preflight false means the integration does no
// network I/O at all this pass.
func (d *Discoverer) Register(integ lights.Integration) {
	name := integ.Name()
	if !integ.Preflight(d.cfg) {
		d.logger.Debug("integration disabled, skipping", "integration", name)
		return
	}
	d.batch.Push(func(ctx context.Context) []lights.Light {
		found, err := integ.Discover(ctx, d.cfg)
		if err != nil {
			d.logger.Error("discovery failed", "integration", name, "error", err)
			return nil
		}
		d.logger.Info("discovery finished", "integration", name, "lights", len(found))
		return found
	})
}

// Run executes every queued discovery concurrently, waits for all of them,
// and returns the aggregate: integrations in registration order, lights
// within an integration in its own enumeration order.
func (d *Discoverer) Run(ctx context.Context) []lights.Light {
	var all []lights.Light
	for _, found := range d.batch.Run(ctx) {
		all = append(all, found...)
	}
	return all
}
