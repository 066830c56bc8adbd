// Package unilight unifies heterogeneous smart-light vendor protocols
// behind one capability interface. A single discovery pass probes every
// enabled vendor concurrently and returns a flat collection of live
// lights.Light handles; the caller controls any of them without knowing
// which vendor it came from.
package unilight

import (
	"context"

	"unilight/config"
	"unilight/discovery"
	"unilight/lights"
)

// DiscoverLights runs one full discovery pass and returns every reachable
// light. Built-in integrations are registered first, then any extra ones
// the caller supplies (external vendor modules implementing
// lights.Integration); the result preserves that registration order. A nil
// cfg loads the config file from the platform config directory, falling
// back to defaults when there is none.
func DiscoverLights(ctx context.Context, cfg *config.Config, extra ...lights.Integration) ([]lights.Light, error) {
	if cfg == nil {
		loaded, err := config.LoadDefault()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	d := discovery.New(cfg, nil)
	d.Register(lights.NewGoveeIntegration())
	for _, integ := range extra {
		d.Register(integ)
	}
	return d.Run(ctx), nil
}
