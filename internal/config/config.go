package config

import (
	"flag"
	"github.com/caarlos0/env/v6"
)

const (
	DefaultRunAddress  = "localhost:8080"
	DefaultDatabaseURI = ""
	DefaultJWTSecret   = "supersecretkey"
	DefaultLogLevel    = "info"
)

type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`
	JWTSecret   string `env:"JWT_SECRET"`
	LogLevel    string `env:"LOG_LEVEL"`
}

func New() (*Config, error) {
	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", DefaultRunAddress, "server address")
	flag.StringVar(&cfg.DatabaseURI, "d", DefaultDatabaseURI, "database URI")
	flag.StringVar(&cfg.JWTSecret, "j", DefaultJWTSecret, "jwt secret key")
	flag.StringVar(&cfg.LogLevel, "l", DefaultLogLevel, "log level")
	flag.Parse()

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
