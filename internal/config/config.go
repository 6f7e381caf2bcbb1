package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendFirebase = "firebase"
	BackendLocal    = "local"
)

// Config contains server configuration parameters.
type Config struct {
	Port              string        `env:"PORT" envDefault:"8080"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat         string        `env:"LOG_FORMAT" envDefault:"json"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MetricsEnabled    bool          `env:"METRICS_ENABLED" envDefault:"true"`
	CORSOrigins       []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	Mongo    Mongo
	Identity Identity
	Mail     Mail
}

// Mongo contains document store connection parameters.
type Mongo struct {
	URI    string `env:"MONGODB_URI"`
	DBName string `env:"DB_NAME" envDefault:"conditions"`
}

// Identity selects and configures the identity provider.
type Identity struct {
	Backend        string `env:"IDENTITY_BACKEND" envDefault:"firebase"`
	ServiceAccount string `env:"FIREBASE_SERVICE_ACCOUNT"`
}

// Mail contains welcome mail delivery parameters. An empty API key disables delivery.
type Mail struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	From         string `env:"FROM_EMAIL" envDefault:"onboarding@resend.dev"`
}

// Load reads an optional .env file and parses the environment into Config.
func Load() (*Config, error) {
	// .env is optional; in production the variables are set directly
	_ = godotenv.Load()

	return NewConfig()
}

// NewConfig parses configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required values and enumerations.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("MONGODB_URI is required")
	}
	switch c.Identity.Backend {
	case BackendFirebase:
		if c.Identity.ServiceAccount == "" {
			return errors.New("FIREBASE_SERVICE_ACCOUNT is required for the firebase identity backend")
		}
	case BackendLocal:
	default:
		return fmt.Errorf("unknown IDENTITY_BACKEND %q", c.Identity.Backend)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}

	return nil
}
