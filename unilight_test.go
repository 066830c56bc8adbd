package unilight

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unilight/config"
	"unilight/lights"
)

type stubIntegration struct {
	name    string
	enabled bool
	err     error
}

func (s *stubIntegration) Name() string { return s.name }

func (s *stubIntegration) Preflight(cfg *config.Config) bool { return s.enabled }

func (s *stubIntegration) Discover(ctx context.Context, cfg *config.Config) ([]lights.Light, error) {
	return nil, s.err
}

func TestDiscoverLightsWithEverythingDisabled(t *testing.T) {
	found, err := DiscoverLights(context.Background(), config.Default())
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDiscoverLightsAbsorbsExternalIntegrationFailure(t *testing.T) {
	broken := &stubIntegration{name: "broken", enabled: true, err: errors.New("bridge unreachable")}

	found, err := DiscoverLights(context.Background(), config.Default(), broken)
	require.NoError(t, err)
	assert.Empty(t, found)
}
