package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string   `json:"serverAddress"`
	DatabasePath  string   `json:"databasePath"`
	DatabaseURL   string   `json:"databaseUrl"`
	Geotab        Geotab   `json:"geotab"`
	SMTP          SMTP     `json:"smtp"`
	Redis         Redis    `json:"redis"`
	Sync          Sync     `json:"sync"`
	Security      Security `json:"security"`
}

// Geotab holds telemetry provider credentials
type Geotab struct {
	Server         string `json:"server"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	Database       string `json:"database"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// SMTP holds notification channel configuration
type SMTP struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	From       string `json:"from"`
	To         string `json:"to"`
	UseTLS     bool   `json:"useTls"`
	SkipVerify bool   `json:"skipVerify"`
}

// Redis holds optional live-state cache configuration
type Redis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// Sync holds the engine's timing knobs
type Sync struct {
	IntervalSeconds      int `json:"intervalSeconds"`
	AuthRetrySeconds     int `json:"authRetrySeconds"`
	ReadingWindowMinutes int `json:"readingWindowMinutes"`
	CooldownHours        int `json:"cooldownHours"`
}

// Security configuration for the status HTTP surface
type Security struct {
	APIKey       string `json:"apiKey"`
	APIKeyHeader string `json:"apiKeyHeader"`
}

// UsePostgres returns true if PostgreSQL should be used
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":5100",
		DatabasePath:  "fleetsync.db",
		Geotab: Geotab{
			Server:         "my.geotab.com",
			TimeoutSeconds: 30,
		},
		SMTP: SMTP{
			Host:   "smtp.gmail.com",
			Port:   465,
			UseTLS: true,
		},
		Sync: Sync{
			IntervalSeconds:      60,
			AuthRetrySeconds:     60,
			ReadingWindowMinutes: 60,
			CooldownHours:        24,
		},
		Security: Security{
			APIKeyHeader: "X-API-Key",
		},
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	// Mirror the provider scripts: a local .env is honored when present
	godotenv.Load()

	cfg := defaultConfig()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment variables
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		cfg.Security.APIKey = apiKey
	}

	if server := os.Getenv("GEOTAB_SERVER"); server != "" {
		cfg.Geotab.Server = server
	}
	if user := os.Getenv("GEOTAB_USER"); user != "" {
		cfg.Geotab.Username = user
	}
	if pass := os.Getenv("GEOTAB_PASSWORD"); pass != "" {
		cfg.Geotab.Password = pass
	}
	if db := os.Getenv("GEOTAB_DATABASE"); db != "" {
		cfg.Geotab.Database = db
	}

	if user := os.Getenv("EMAIL_USER"); user != "" {
		cfg.SMTP.Username = user
		if cfg.SMTP.From == "" {
			cfg.SMTP.From = user
		}
		if cfg.SMTP.To == "" {
			cfg.SMTP.To = user
		}
	}
	if pass := os.Getenv("EMAIL_PASS"); pass != "" {
		cfg.SMTP.Password = pass
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}

	if interval := os.Getenv("SYNC_INTERVAL_SECONDS"); interval != "" {
		if n, err := strconv.Atoi(interval); err == nil && n > 0 {
			cfg.Sync.IntervalSeconds = n
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Sync.IntervalSeconds <= 0 {
		return fmt.Errorf("sync interval must be positive, got %d", c.Sync.IntervalSeconds)
	}
	if c.Sync.AuthRetrySeconds <= 0 {
		return fmt.Errorf("auth retry backoff must be positive, got %d", c.Sync.AuthRetrySeconds)
	}
	if c.Sync.ReadingWindowMinutes <= 0 {
		return fmt.Errorf("reading window must be positive, got %d", c.Sync.ReadingWindowMinutes)
	}
	if c.Sync.CooldownHours <= 0 {
		return fmt.Errorf("alert cooldown must be positive, got %d", c.Sync.CooldownHours)
	}
	return nil
}
