package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken      string        `envconfig:"BOT_TOKEN" required:"true"`
	DBPath        string        `envconfig:"DB_PATH" default:"./data/reminders.db"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"60s"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr      string        `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
