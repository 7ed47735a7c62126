package config

import (
	"flag"
	"os"
	"strconv"
)

type Config struct {
	RunAddress    string
	DatabaseURI   string
	SecretKey     string
	LogLevel      string
	RepairOnStart bool
}

func NewConfig() *Config {
	cfg := &Config{}
	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "HTTP server address")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "DB connection string")
	flag.StringVar(&cfg.SecretKey, "k", "paytrack-dev-secret", "JWT signing key")
	flag.StringVar(&cfg.LogLevel, "l", "info", "Log level")
	flag.BoolVar(&cfg.RepairOnStart, "repair", false, "Reconcile every order before serving")
	flag.Parse()

	ReadServerEnvironment(cfg)

	return cfg
}

func ReadServerEnvironment(cfg *Config) {
	if runAddress := os.Getenv("RUN_ADDRESS"); runAddress != "" {
		cfg.RunAddress = runAddress
	}

	if databaseURI := os.Getenv("DATABASE_URI"); databaseURI != "" {
		cfg.DatabaseURI = databaseURI
	}

	if secretKey := os.Getenv("SECRET_KEY"); secretKey != "" {
		cfg.SecretKey = secretKey
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if repair, err := strconv.ParseBool(os.Getenv("REPAIR_ON_START")); err == nil {
		cfg.RepairOnStart = repair
	}
}
