package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
)

// Config is populated from the environment (with .env autoload).
type Config struct {
	Port           int           `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT" envDefault:"1m"`

	// BroadcastTimeout bounds the write to a single push recipient so one
	// half-closed socket cannot stall fan-out to the rest.
	BroadcastTimeout time.Duration `env:"BROADCAST_TIMEOUT" envDefault:"5s"`

	RateLimitMessages int           `env:"RATE_LIMIT_MESSAGES" envDefault:"20"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1s"`

	ConnIdleTimeout time.Duration `env:"CONN_IDLE_TIMEOUT" envDefault:"5m"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
