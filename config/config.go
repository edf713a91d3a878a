package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"smartlight-backend/internal/device"
	"smartlight-backend/internal/tuya"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Tuya       TuyaConfig        `yaml:"tuya"`
	Rooms      map[string]string `yaml:"rooms"`
	Auth       AuthConfig        `yaml:"auth"`
	Database   DatabaseConfig    `yaml:"database"`
	Push       PushConfig        `yaml:"push"`
	WorkerPool WorkerPoolConfig  `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// TuyaConfig holds the cloud platform credentials. AccessKey and
// SecretKey may be overridden by TUYA_ACCESS_KEY / TUYA_SECRET_KEY so
// they can stay out of the config file.
type TuyaConfig struct {
	BaseURL   string `yaml:"base_url"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// AuthConfig holds the bearer-token settings for the HTTP API.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
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

// Load reads the configuration from the given path and applies
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if v := os.Getenv("TUYA_ACCESS_KEY"); v != "" {
		cfg.Tuya.AccessKey = v
	}
	if v := os.Getenv("TUYA_SECRET_KEY"); v != "" {
		cfg.Tuya.SecretKey = v
	}
	if v := os.Getenv("TUYA_BASE_URL"); v != "" {
		cfg.Tuya.BaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	if cfg.Tuya.BaseURL == "" {
		cfg.Tuya.BaseURL = "https://openapi.tuyaeu.com"
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "smartlight.db"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}

// Credentials builds the per-call credential value threaded into every
// core operation.
func (c *Config) Credentials() tuya.Credentials {
	return tuya.Credentials{
		AccessKey: c.Tuya.AccessKey,
		SecretKey: c.Tuya.SecretKey,
		BaseURL:   c.Tuya.BaseURL,
	}
}

// RoomTable returns the configured room mapping with normalized keys.
func (c *Config) RoomTable() device.Rooms {
	rooms := make(device.Rooms, len(c.Rooms))
	for name, id := range c.Rooms {
		rooms[device.NormalizeRoom(name)] = id
	}
	return rooms
}
