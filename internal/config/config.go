// Package config loads the environment configuration and holds the
// tunable constants of the coin economy.
package config

import (
	"log"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	BotToken string `env:"BOT_TOKEN" env-required:"true"`
	BaseURL  string `env:"BASE_URL" env-required:"true"`
	Port     string `env:"PORT" env-required:"true"`
	AdminID  int64  `env:"ADMIN_ID" env-required:"true"`
	DataFile string `env:"DATA_FILE" env-default:"data.json"`
}

// MustLoad reads the configuration from the environment (after an optional
// .env file) and aborts the process if a required value is missing.
func MustLoad() *Config {
	// A missing .env file is fine in production, the environment is enough.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
