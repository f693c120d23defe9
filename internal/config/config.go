// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"

	"tracker/internal/logger"
	"tracker/internal/util"
)

// ErrMissingSecret is returned when JWT_SECRET is not set.
var ErrMissingSecret = errors.New("JWT_SECRET is required")

type Config struct {
	Addr    string
	DBPath  string
	GinMode string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthRateLimit  int
	AuthRateWindow time.Duration

	Log logger.Config
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	logCfg := logger.DefaultConfig()
	logCfg.Level = util.EnvOrDefault("LOG_LEVEL", logCfg.Level)
	logCfg.Format = util.EnvOrDefault("LOG_FORMAT", logCfg.Format)
	logCfg.Output = util.EnvOrDefault("LOG_OUTPUT", logCfg.Output)
	logCfg.FilePath = util.EnvOrDefault("LOG_FILE", logCfg.FilePath)
	logCfg.MaxSize = util.EnvInt("LOG_MAX_SIZE", logCfg.MaxSize)
	logCfg.MaxBackups = util.EnvInt("LOG_MAX_BACKUPS", logCfg.MaxBackups)
	logCfg.MaxAge = util.EnvInt("LOG_MAX_AGE", logCfg.MaxAge)
	logCfg.Compress = util.EnvBool("LOG_COMPRESS", logCfg.Compress)

	cfg := &Config{
		Addr:    util.EnvOrDefault("TRACKER_ADDR", ":8080"),
		DBPath:  util.EnvOrDefault("TRACKER_DB_PATH", "data/tracker.db"),
		GinMode: util.EnvOrDefault("GIN_MODE", "release"),

		JWTSecret:  util.EnvOrDefault("JWT_SECRET", ""),
		AccessTTL:  util.EnvDuration("JWT_ACCESS_TTL", 5*time.Minute),
		RefreshTTL: util.EnvDuration("JWT_REFRESH_TTL", 24*time.Hour),

		RedisAddr:     util.EnvOrDefault("REDIS_ADDR", ""),
		RedisPassword: util.EnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       util.EnvInt("REDIS_DB", 0),

		AuthRateLimit:  util.EnvInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: util.EnvDuration("AUTH_RATE_WINDOW", time.Minute),

		Log: logCfg,
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	return cfg, nil
}
