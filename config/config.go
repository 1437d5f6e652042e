package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Dataset  DatasetConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
	Probe    ProbeConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
	CORSAllowedOrigins      []string
}

type DatasetConfig struct {
	// Path points at a local GeoJSON file; URL at a remote one. When both are
	// empty and no database is configured, the embedded fallback is used.
	Path            string
	URL             string
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
	FallbackEnabled bool
	NameProperty    string
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	RequireAPIKeys bool
	KeyHeader      string // default: Authorization Bearer <key>
	// Keys is a comma-separated list of id:bcrypt-hash pairs loaded from env.
	Keys string
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

type ProbeConfig struct {
	// TileServers are probed in order; the first reachable one wins.
	TileServers []string
	Timeout     time.Duration
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	MaxPoints     int
	RateLimitRPM  int
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
			CORSAllowedOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Dataset: DatasetConfig{
			Path:            getEnv("DATASET_PATH", ""),
			URL:             getEnv("DATASET_URL", ""),
			RefreshInterval: getEnvDuration("DATASET_REFRESH_INTERVAL", 6*time.Hour),
			FetchTimeout:    getEnvDuration("DATASET_FETCH_TIMEOUT", 30*time.Second),
			FallbackEnabled: getEnvBool("DATASET_FALLBACK_ENABLED", true),
			NameProperty:    getEnv("DATASET_NAME_PROPERTY", "nom"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", 1*time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Auth: AuthConfig{
			RequireAPIKeys: getEnvBool("AUTH_REQUIRE_API_KEYS", false),
			KeyHeader:      getEnv("AUTH_KEY_HEADER", "Authorization"),
			Keys:           getEnv("AUTH_KEYS", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		Probe: ProbeConfig{
			TileServers: getEnvList("PROBE_TILE_SERVERS", []string{
				"https://tile.openstreetmap.org/{z}/{x}/{y}.png",
				"https://a.tile.opentopomap.org/{z}/{x}/{y}.png",
			}),
			Timeout: getEnvDuration("PROBE_TIMEOUT", 5*time.Second),
		},
		Session: SessionConfig{
			TTL:           getEnvDuration("SESSION_TTL", 24*time.Hour),
			SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
			MaxPoints:     getEnvInt("SESSION_MAX_POINTS", 500),
			RateLimitRPM:  getEnvInt("LOOKUP_RATE_LIMIT_RPM", 120),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Dataset.Path != "" && c.Dataset.URL != "" {
		return fmt.Errorf("DATASET_PATH and DATASET_URL are mutually exclusive")
	}
	if c.Dataset.FetchTimeout <= 0 {
		return fmt.Errorf("dataset fetch timeout must be positive")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}
	if c.Session.MaxPoints < 1 {
		return fmt.Errorf("session max points must be at least 1")
	}
	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("probe timeout must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
