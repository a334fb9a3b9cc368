package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the attendance engine.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	DefaultGraceWindow     time.Duration
	SuppressionInterval    time.Duration
	DedupConfidenceMargin  float64
	ConfidenceFloor        float64
	CorrectionWindow       time.Duration
	AnalyticsCacheTTL      time.Duration
	LowAttendanceThreshold float64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ATTEND")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Attendance Engine")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("grace.window", "15m")
	v.SetDefault("dedup.suppression_interval", "30s")
	v.SetDefault("dedup.confidence_margin", 5.0)
	v.SetDefault("proxy.confidence_floor", 85.0)
	v.SetDefault("override.correction_window", "48h")
	v.SetDefault("analytics.cache_ttl", "5m")
	v.SetDefault("analytics.low_attendance_threshold", 75.0)

	grace, err := parseDurationSetting(v, "grace.window")
	if err != nil {
		return Config{}, err
	}

	suppression, err := parseDurationSetting(v, "dedup.suppression_interval")
	if err != nil {
		return Config{}, err
	}

	correction, err := parseDurationSetting(v, "override.correction_window")
	if err != nil {
		return Config{}, err
	}

	cacheTTL, err := parseDurationSetting(v, "analytics.cache_ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		DefaultGraceWindow:     grace,
		SuppressionInterval:    suppression,
		DedupConfidenceMargin:  v.GetFloat64("dedup.confidence_margin"),
		ConfidenceFloor:        v.GetFloat64("proxy.confidence_floor"),
		CorrectionWindow:       correction,
		AnalyticsCacheTTL:      cacheTTL,
		LowAttendanceThreshold: v.GetFloat64("analytics.low_attendance_threshold"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ConfidenceFloor < 0 || cfg.ConfidenceFloor > 100 {
		return Config{}, fmt.Errorf("confidence floor must be within 0-100, got %v", cfg.ConfidenceFloor)
	}

	return cfg, nil
}

func parseDurationSetting(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return parsed, nil
}
