package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the operator-tunable settings for running the pool over a
// local database. Fee parameters apply only when the pool is first
// initialised; afterwards the persisted state is authoritative.
type Config struct {
	DataDir       string `toml:"DataDir"`
	Environment   string `toml:"Environment"`
	MetricsListen string `toml:"MetricsListen"`
	FeeBps        uint64 `toml:"FeeBps"`
	FlashFeeBps   uint64 `toml:"FlashFeeBps"`

	// Hex-encoded 20-byte addresses identifying the pool account and the
	// token pair it trades.
	ModuleAddress string `toml:"ModuleAddress"`
	Token0        string `toml:"Token0"`
	Token1        string `toml:"Token1"`
}

const (
	defaultDataDir     = "./pooldata"
	defaultEnvironment = "local"
	defaultFeeBps      = 30
	defaultFlashBps    = 30
	maxFeeBps          = 1_000
)

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pool engine would refuse at runtime.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: DataDir must not be empty")
	}
	if c.FeeBps > maxFeeBps {
		return fmt.Errorf("config: FeeBps %d exceeds maximum %d", c.FeeBps, maxFeeBps)
	}
	if c.FlashFeeBps > maxFeeBps {
		return fmt.Errorf("config: FlashFeeBps %d exceeds maximum %d", c.FlashFeeBps, maxFeeBps)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	if cfg.Environment == "" {
		cfg.Environment = defaultEnvironment
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir:     defaultDataDir,
		Environment: defaultEnvironment,
		FeeBps:      defaultFeeBps,
		FlashFeeBps: defaultFlashBps,
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
