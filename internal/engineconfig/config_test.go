package engineconfig

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, defaultSnapshotDepth, cfg.DefaultSnapshotDepth())
	assert.Equal(t, defaultWorkerPoolSize, cfg.WorkerPoolSize())

	addr, port := cfg.ListenAddress()
	assert.Equal(t, defaultTransportAddress, addr)
	assert.Equal(t, defaultTransportPort, port)
}

func TestConfigExplicitValuesOverrideDefaults(t *testing.T) {
	cfg := Config{
		SnapshotDepth: 25,
		Transport: TransportConfig{
			Address:        "127.0.0.1",
			Port:           9500,
			WorkerPoolSize: 4,
		},
	}

	assert.Equal(t, 25, cfg.DefaultSnapshotDepth())
	assert.Equal(t, 4, cfg.WorkerPoolSize())

	addr, port := cfg.ListenAddress()
	assert.Equal(t, "127.0.0.1", addr)
	assert.Equal(t, 9500, port)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load("/nonexistent/path/vela.yaml")
	assert.NoError(t, err)
	assert.Equal(t, defaultSnapshotDepth, cfg.DefaultSnapshotDepth())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VELA_SNAPSHOT_DEPTH", "50")
	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, 50, cfg.DefaultSnapshotDepth())
	_ = os.Unsetenv("VELA_SNAPSHOT_DEPTH")
}
