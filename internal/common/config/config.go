package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Storage struct {
		// Backend selects the snapshot store: "file" or "redis".
		Backend string `env:"STORAGE_BACKEND" envDefault:"file"`
		DataDir string `env:"DATA_DIR" envDefault:"./data"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Scheduler struct {
		TickInterval time.Duration `env:"SCHEDULER_TICK_INTERVAL" envDefault:"15s"`
	}

	// SeedPath points at the YAML file holding tenant defaults and
	// recurring template definitions. Optional.
	SeedPath string `env:"SEED_PATH" envDefault:"./config/tenants.yaml"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// Missing .env is fine; production sets variables directly.
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
