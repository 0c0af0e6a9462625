package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the genforge server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Ollama   OllamaConfig
	Worker   WorkerConfig
	FFmpeg   FFmpegConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	RateLimitPerMin int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// AuthConfig carries the bcrypt hash of the single operator API key. An empty
// hash disables authentication, for boxes that only listen on localhost.
type AuthConfig struct {
	APIKeyHash string
}

type OllamaConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// WorkerConfig points at the inference worker that actually loads models and
// runs the generation pipelines.
type WorkerConfig struct {
	URL     string
	Timeout time.Duration
}

type FFmpegConfig struct {
	FFmpegPath  string
	FFprobePath string
}

// Load reads configuration from environment variables and returns a validated
// Config. Returns an error with a descriptive message if any required value
// is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("GENFORGE_PORT", 5700),
			Env:             envString("GENFORGE_ENV", "development"),
			RateLimitPerMin: envInt("GENFORGE_RATE_LIMIT_PER_MIN", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Auth: AuthConfig{
			APIKeyHash: os.Getenv("GENFORGE_API_KEY_HASH"),
		},
		Ollama: OllamaConfig{
			URL:     envString("OLLAMA_URL", "http://localhost:11434/api/generate"),
			Model:   envString("OLLAMA_MODEL", "gemma3:27b"),
			Timeout: envDurationSecs("OLLAMA_TIMEOUT_SECS", 300*time.Second),
		},
		Worker: WorkerConfig{
			URL:     envString("WORKER_URL", "http://localhost:5701"),
			Timeout: envDurationSecs("WORKER_TIMEOUT_SECS", 1800*time.Second),
		},
		FFmpeg: FFmpegConfig{
			FFmpegPath:  envString("FFMPEG_PATH", "ffmpeg"),
			FFprobePath: envString("FFPROBE_PATH", "ffprobe"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("GENFORGE_PORT must be a valid port, got %d", c.Server.Port)
	}

	if c.Ollama.URL == "" {
		return fmt.Errorf("OLLAMA_URL must not be empty")
	}

	if c.Worker.URL == "" {
		return fmt.Errorf("WORKER_URL must not be empty")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
