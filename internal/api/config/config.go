package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

// Config holds the storage control API configuration.
type Config struct {
	Server    ServerConfig   `json:"server" yaml:"server"`
	App       AppConfig      `json:"app" yaml:"app"`
	Fleet     FleetConfig    `json:"fleet" yaml:"fleet"`
	Catalog   UpstreamConfig `json:"catalog" yaml:"catalog"`
	NodeStore UpstreamConfig `json:"node_store" yaml:"node_store"`
	Encoder   UpstreamConfig `json:"encoder" yaml:"encoder"`
	Redis     RedisConfig    `json:"redis" yaml:"redis"`
	Logger    logger.Config  `json:"logger" yaml:"logger"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type AppConfig struct {
	MaxFileSize       int64 `json:"max_file_size" yaml:"max_file_size"`
	ParallelFetch     int   `json:"parallel_fetch" yaml:"parallel_fetch"`
	SnapshotTTLMS     int   `json:"snapshot_ttl_ms" yaml:"snapshot_ttl_ms"`
	BreakerThreshold  int   `json:"breaker_threshold" yaml:"breaker_threshold"`
	BreakerCooldownMS int   `json:"breaker_cooldown_ms" yaml:"breaker_cooldown_ms"`
}

// FleetConfig declares the storage fleet. The external bucket store exposes
// no capacity figures, so capacities are assigned here, by fleet position
// (cycled when the fleet outgrows the table). These are the only place such
// defaults live; nothing downstream re-derives them.
type FleetConfig struct {
	Nodes      []string `json:"nodes" yaml:"nodes"`
	CapacityGB []int    `json:"capacity_gb" yaml:"capacity_gb"`
}

// CapacityBytes returns the capacity assigned to the fleet position.
func (f FleetConfig) CapacityBytes(position int) int64 {
	if len(f.CapacityGB) == 0 {
		return 0
	}
	gb := f.CapacityGB[position%len(f.CapacityGB)]
	return int64(gb) * 1024 * 1024 * 1024
}

type UpstreamConfig struct {
	BaseURL   string `json:"base_url" yaml:"base_url"`
	TimeoutMS int    `json:"timeout_ms" yaml:"timeout_ms"`
}

// Timeout returns the configured timeout with a safe default.
func (u UpstreamConfig) Timeout() time.Duration {
	if u.TimeoutMS > 0 {
		return time.Duration(u.TimeoutMS) * time.Millisecond
	}
	return 10 * time.Second
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		App: AppConfig{
			MaxFileSize:       512 * 1024 * 1024, // 512MB
			ParallelFetch:     4,
			SnapshotTTLMS:     2000,
			BreakerThreshold:  3,
			BreakerCooldownMS: 15000,
		},
		Fleet: FleetConfig{
			Nodes:      []string{"node-1", "node-2", "node-3", "node-4", "node-5"},
			CapacityGB: []int{45, 50, 55, 60, 48},
		},
		Catalog: UpstreamConfig{
			BaseURL:   "http://localhost:9011",
			TimeoutMS: 5000,
		},
		NodeStore: UpstreamConfig{
			BaseURL:   "http://localhost:9012",
			TimeoutMS: 5000,
		},
		Encoder: UpstreamConfig{
			BaseURL:   "http://localhost:9013",
			TimeoutMS: 30000,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// Load loads configuration from file, layering it over the defaults.
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "api", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		log.Printf("Config file not found or failed to parse, using defaults if file not specified. Path: %s, Error: %v", configPath, err)
		if path != "" {
			return nil, err
		}
		return cfg, nil
	}

	return parsedCfg, nil
}

// MustLoad loads configuration or exits on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
