package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.Govee.Enabled)
	assert.Empty(t, cfg.Govee.Addresses)
	assert.False(t, cfg.Govee.Scan)
	assert.Equal(t, 5000, cfg.Govee.ScanTimeout)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[govee]
enabled = true
addresses = ["10.0.0.5", "10.0.0.6:5003"]
scan_timeout = 250
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Govee.Enabled)
	assert.Equal(t, []string{"10.0.0.5", "10.0.0.6:5003"}, cfg.Govee.Addresses)
	assert.Equal(t, 250, cfg.Govee.ScanTimeout)
	assert.False(t, cfg.Govee.Scan)
}

func TestLoadKeepsDefaultsForAbsentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[govee]\nenabled = true\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Govee.Enabled)
	assert.Equal(t, 5000, cfg.Govee.ScanTimeout)
}

func TestLoadRejectsMalformedAddresses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[govee]
enabled = true
addresses = ["10.0.0.5", "wat", "also-not-an-ip"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	require.Error(t, err)
	// Every bad address is reported, not just the first.
	assert.Contains(t, err.Error(), "wat")
	assert.Contains(t, err.Error(), "also-not-an-ip")
}

func TestTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, GoveeConfig{}.Timeout())
	assert.Equal(t, 5*time.Second, GoveeConfig{ScanTimeout: -1}.Timeout())
	assert.Equal(t, 250*time.Millisecond, GoveeConfig{ScanTimeout: 250}.Timeout())
}
