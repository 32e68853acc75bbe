package config

import (
	"flag"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultServerAddress = ":8080"
	defaultDatabaseDSN   = ""
	defaultVeracoreURL   = "https://wms.3plwinner.com/VeraCore"
	defaultLogDir        = "logs"
	defaultLogLevel      = "info"
)

// Config holds settings for both the warehouse API server and the sync job.
// Flags are parsed first, environment variables override them.
type Config struct {
	ServerAddr   string        `env:"RUN_ADDRESS"`
	DatabaseDSN  string        `env:"DATABASE_URI"`
	LogLevel     string        `env:"LOG_LEVEL"`
	JWTSecret    string        `env:"JWT_SECRET"`
	VeracoreURL  string        `env:"VERACORE_URL"`
	VeracoreUser string        `env:"VERACORE_USERNAME"`
	VeracorePass string        `env:"VERACORE_PASSWORD"`
	SystemID     string        `env:"VERACORE_SYSTEM_ID"`
	LogDir       string        `env:"SYNC_LOG_DIR"`
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
	Headless     bool          `env:"SYNC_HEADLESS"`
	MetricsAddr  string        `env:"METRICS_ADDRESS"`
}

var (
	once      sync.Once
	singleton *Config
	parseErr  error
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "warehouse server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "warehouse database DSN")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
		flag.StringVar(&cfg.JWTSecret, "s", "", "jwt signing key")
		flag.StringVar(&cfg.VeracoreURL, "u", defaultVeracoreURL, "veracore base url")
		flag.StringVar(&cfg.VeracoreUser, "n", "", "veracore username")
		flag.StringVar(&cfg.VeracorePass, "p", "", "veracore password")
		flag.StringVar(&cfg.SystemID, "i", "", "veracore system id")
		flag.StringVar(&cfg.LogDir, "o", defaultLogDir, "log and screenshot directory")
		flag.DurationVar(&cfg.SyncInterval, "t", 0, "sync loop interval, 0 runs once")
		flag.BoolVar(&cfg.Headless, "headless", true, "run browser headless")
		flag.StringVar(&cfg.MetricsAddr, "m", "", "metrics listen address, empty disables")

		flag.Parse()

		// if environment variable is set, then using it
		if err := env.Parse(&cfg); err != nil {
			parseErr = err
			return
		}

		singleton = &cfg
	})

	return singleton, parseErr
}
