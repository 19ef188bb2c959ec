package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Station    StationConfig    `yaml:"station"`
	Camera     CameraConfig     `yaml:"camera"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// Location pairs a physical storage location with the QR payload printed on it.
type Location struct {
	Name string `yaml:"name"`
	QR   string `yaml:"qr"`
}

// StationConfig holds the scan-pairing configuration. The location list is
// ordered: classification matches first to last.
type StationConfig struct {
	Locations         []Location    `yaml:"locations"`
	PairWindowSeconds int           `yaml:"pair_window_seconds"`
	PairWindow        time.Duration `yaml:"-"` // Ignored by YAML parser
	Browser           string        `yaml:"browser"`
}

// CameraConfig holds the webcam polling configuration.
type CameraConfig struct {
	Device         string        `yaml:"device"`
	ScanIntervalMS int           `yaml:"scan_interval_ms"`
	ScanInterval   time.Duration `yaml:"-"` // Ignored by YAML parser
	// Command overrides the decode command, e.g. ["zbarcam", "--raw"].
	// The device is appended when non-empty.
	Command []string `yaml:"command"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Default returns the configuration the station ships with: the stock set of
// dry boxes, AMS slots, and dryer, a 10 second pairing window, and a local
// SQLite database.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8718,
			RateLimitPerSec: 10,
			CacheTTLSeconds: 5,
		},
		Station: StationConfig{
			Locations: []Location{
				{QR: "fs://loc/pla-a", Name: "PLA Dry Box A"},
				{QR: "fs://loc/petg-b", Name: "PETG Dry Box B"},
				{QR: "fs://loc/tpu-c", Name: "TPU Dry Box C"},
				{QR: "fs://loc/ams-1", Name: "AMS Slot 1"},
				{QR: "fs://loc/ams-2", Name: "AMS Slot 2"},
				{QR: "fs://loc/ams-3", Name: "AMS Slot 3"},
				{QR: "fs://loc/ams-4", Name: "AMS Slot 4"},
				{QR: "fs://loc/dryer", Name: "Dryer"},
			},
			PairWindowSeconds: 10,
			Browser:           "chromium-browser",
		},
		Camera: CameraConfig{
			Device:         "/dev/video0",
			ScanIntervalMS: 250,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    defaultDBPath(),
		},
	}
}

func defaultDBPath() string {
	if p := os.Getenv("FS_DB_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "filaments.db"
	}
	return filepath.Join(home, ".filament_station", "filaments.db")
}

// Load reads the configuration from the given path. When the file does not
// exist, the default configuration is written there and returned, so a fresh
// kiosk boots with a config file the operator can edit.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if writeErr := writeDefault(path, cfg); writeErr != nil {
			log.Printf("could not write default config to %s: %v", path, writeErr)
		}
		return normalize(cfg)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return normalize(cfg)
}

func normalize(cfg *Config) (*Config, error) {
	if cfg.Station.PairWindowSeconds <= 0 {
		cfg.Station.PairWindowSeconds = 10
	}
	cfg.Station.PairWindow = time.Duration(cfg.Station.PairWindowSeconds) * time.Second

	if cfg.Camera.ScanIntervalMS <= 0 {
		cfg.Camera.ScanIntervalMS = 250
	}
	cfg.Camera.ScanInterval = time.Duration(cfg.Camera.ScanIntervalMS) * time.Millisecond

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = defaultDBPath()
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 5
	}
	return cfg, nil
}

func writeDefault(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
