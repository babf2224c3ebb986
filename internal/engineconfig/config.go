// Package engineconfig loads MatchingEngine and transport tunables via
// viper, with VELA_-prefixed environment variable overrides. A zero-value
// Config is valid (every accessor falls back to a sane default), so unit
// tests never need to touch viper at all.
package engineconfig

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level configuration, mapped directly onto a YAML/JSON
// file structure the way 0xtitan6-polymarket-mm's internal/config.Config
// does, with env overrides under the VELA_ prefix.
type Config struct {
	SnapshotDepth      int             `mapstructure:"snapshot_depth"`
	TradeLogMaxEntries int             `mapstructure:"trade_log_max_entries"`
	Transport          TransportConfig `mapstructure:"transport"`
}

// TransportConfig tunes the demonstration TCP collaborator in
// internal/transport.
type TransportConfig struct {
	Address        string `mapstructure:"address"`
	Port           int    `mapstructure:"port"`
	WorkerPoolSize int    `mapstructure:"worker_pool_size"`
}

const (
	defaultSnapshotDepth    = 10
	defaultWorkerPoolSize   = 10
	defaultTransportAddress = "0.0.0.0"
	defaultTransportPort    = 9001
)

// DefaultSnapshotDepth returns cfg.SnapshotDepth if set, else the
// package default.
func (c Config) DefaultSnapshotDepth() int {
	if c.SnapshotDepth > 0 {
		return c.SnapshotDepth
	}
	return defaultSnapshotDepth
}

// WorkerPoolSize returns cfg.Transport.WorkerPoolSize if set, else the
// package default.
func (c Config) WorkerPoolSize() int {
	if c.Transport.WorkerPoolSize > 0 {
		return c.Transport.WorkerPoolSize
	}
	return defaultWorkerPoolSize
}

// ListenAddress returns the host:port pair the transport should bind,
// falling back to 0.0.0.0:9001.
func (c Config) ListenAddress() (string, int) {
	addr := c.Transport.Address
	if addr == "" {
		addr = defaultTransportAddress
	}
	port := c.Transport.Port
	if port == 0 {
		port = defaultTransportPort
	}
	return addr, port
}

// Load reads configuration from path (if non-empty) and from any
// VELA_-prefixed environment variables, returning defaults for anything
// unset. A missing config file at path is not an error: Config's
// accessors already default sanely.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VELA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper already knows, so bind each key to
	// its VELA_ environment variable explicitly.
	for _, key := range []string{"snapshot_depth", "trade_log_max_entries", "transport.address", "transport.port", "transport.worker_pool_size"} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
