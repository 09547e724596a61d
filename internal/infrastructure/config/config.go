package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// BaseURL is the public origin used to build shareable magic links.
	BaseURL string `env:"BASE_URL, default=http://localhost:8080"`

	// DevOwnerID substitutes a fixed owner identity for unauthenticated
	// requests. Only honored when Env is "development"; see DevFallbackEnabled.
	DevOwnerID string `env:"DEV_OWNER_ID"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=flowsuit"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// DevFallbackEnabled reports whether the unauthenticated dev-owner fallback
// is active. It is an explicit local-testing affordance and never applies
// outside the development environment.
func (c *Config) DevFallbackEnabled() bool {
	return c.Env == "development" && c.DevOwnerID != ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
