// Package config loads mdfd's runtime configuration from environment
// variables, grounded on the teacher's cmd/server/config package (same
// getEnv/getEnvInt-with-defaults shape).
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything mdfd needs to wire an Engine and its
// control-plane HTTP server.
type Config struct {
	Server   ServerConfig
	Engine   EngineConfig
	Database DatabaseConfig
	NATS     NATSConfig
	Redis    RedisConfig
	LLM      LLMConfig
}

// ServerConfig configures the control-plane HTTP listener.
type ServerConfig struct {
	Host      string
	Port      int
	JWTSecret string
}

// ServerAddr returns the host:port the control-plane HTTP server should
// bind to.
func (c ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EngineConfig configures the scheduler itself.
type EngineConfig struct {
	Workers       int
	QueueCapacity int
}

// DatabaseConfig configures the Postgres drainer.
type DatabaseConfig struct {
	Host, User, Password, Database, SSLMode string
	Port                                    int
}

// NATSConfig configures NATS-backed streamers/drainers.
type NATSConfig struct {
	URL string
}

// RedisConfig configures the Redis-backed streamer.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LLMConfig configures the LLM completion nodes.
type LLMConfig struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
}

// Load reads Config from the environment, applying the same sane
// development defaults the teacher's config.Load does.
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host:      getEnv("MDFD_HOST", "0.0.0.0"),
			Port:      getEnvInt("MDFD_PORT", 8080),
			JWTSecret: getEnv("MDFD_JWT_SECRET", "development-secret-change-me"),
		},
		Engine: EngineConfig{
			Workers:       getEnvInt("MDFD_WORKERS", 8),
			QueueCapacity: getEnvInt("MDFD_QUEUE_CAPACITY", 100),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "mdf"),
			Password: getEnv("DB_PASSWORD", "mdf"),
			Database: getEnv("DB_NAME", "mdf"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		LLM: LLMConfig{
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
