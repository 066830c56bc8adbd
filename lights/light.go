// Package lights defines the capability interfaces every vendor module
// implements, the shared error taxonomy, and the built-in Govee LAN
// integration. Other vendors plug in from outside the module by satisfying
// Integration and handing themselves to the discoverer.
package lights

import (
	"context"

	"unilight/config"
)

// Light is one controllable device. The accessors read cached state and
// never touch the network; the mutators are write-through: they push the
// change to the device first and then mirror the requested value into the
// cache without re-reading the device.
type Light interface {
	// RefreshState queries the device and replaces the whole cache on
	// success. On failure the cache keeps its previous (now stale) values.
	RefreshState(ctx context.Context) error

	SetOn(ctx context.Context, on bool) error
	SetColor(ctx context.Context, red, green, blue uint8) error
	// SetBrightness takes a level in 0-100; values above 100 are clamped.
	SetBrightness(ctx context.Context, level uint8) error

	// ID is globally unique across vendors: "<vendor>::<vendor-local-id>".
	ID() string
	Name() string
	IsOn() bool
	Red() uint8
	Green() uint8
	Blue() uint8
	Brightness() uint8
	// SupportsColor reports whether SetColor has any observable effect.
	SupportsColor() bool
}

// Integration is a vendor module: a cheap synchronous gate plus an
// asynchronous discovery operation. Implementations are stateless contracts;
// all per-device state lives in the Lights they return.
type Integration interface {
	Name() string

	// Preflight decides whether Discover runs at all. It must be
	// side-effect free and must not perform I/O.
	Preflight(cfg *config.Config) bool

	// Discover returns every reachable device for this vendor. It fails
	// only when discovery cannot start at all (wrapped in ErrDiscovery);
	// individual unreachable devices are logged and skipped.
	Discover(ctx context.Context, cfg *config.Config) ([]Light, error)
}
