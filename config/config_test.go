package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsZeroDefaults(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Nil(t, d.Threshold)
	assert.Nil(t, d.Rho)
}

func TestLoadParsesPersistedDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 0.65\nrho: 250\nrm_dup: true\n"), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, d.Threshold)
	assert.InDelta(t, 0.65, *d.Threshold, 1e-9)
	require.NotNil(t, d.Rho)
	assert.Equal(t, 250, *d.Rho)
	require.NotNil(t, d.RemoveDup)
	assert.True(t, *d.RemoveDup)
	assert.Nil(t, d.DisableMetrics)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: [oops\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
