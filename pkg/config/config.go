// Package config reads the dashboard's runtime settings from the environment, with an
// optional .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"liyu1981.xyz/water-quality-dashboard/pkg/cache"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/device"
	"liyu1981.xyz/water-quality-dashboard/pkg/gauge"
	"liyu1981.xyz/water-quality-dashboard/pkg/live"
	"liyu1981.xyz/water-quality-dashboard/pkg/monitor"
)

const (
	DBTypeFile     = "file"
	DBTypeMemory   = "memory"
	DBTypePostgres = "postgres"

	defaultHttpHostPort = ":1080"
	defaultDashboardURL = "http://localhost:1080/dashboard"
)

type Config struct {
	DBType       string
	HttpHostPort string
	// GrpcHostPort empty disables the gRPC server.
	GrpcHostPort string

	// LimiterEnabled is false when neither WQ_DEFAULT_RATE nor WQ_DEFAULT_BURST is set.
	LimiterEnabled bool
	DefaultRate    rate.Limit
	DefaultBurst   int

	DeviceBaseURL string
	DeviceTimeout time.Duration
	PollInterval  time.Duration
	Variant       gauge.Variant
	Location      *time.Location
	HistoryLimit  int
	DashboardURL  string

	// Redis.Addr empty disables the snapshot mirror.
	Redis cache.Options
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s, should be an int value: %w", key, err)
	}
	return i, nil
}

func stringEnv(key string, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	return FromEnv()
}

// FromEnv is Load without the .env file.
func FromEnv() (Config, error) {
	var err error
	cfg := Config{}

	cfg.DBType = stringEnv(common.EnvKeyWQDBType, DBTypeFile)
	switch cfg.DBType {
	case DBTypeFile, DBTypeMemory:
	case DBTypePostgres:
		if strings.TrimSpace(os.Getenv(common.EnvKeyWQDbDSN)) == "" {
			return cfg, errors.New("WQ_DB_DSN is required when WQ_DB_TYPE=postgres")
		}
	default:
		return cfg, fmt.Errorf("unknown WQ_DB_TYPE: %q", cfg.DBType)
	}

	cfg.HttpHostPort = stringEnv(common.EnvKeyWQHttpHostPort, defaultHttpHostPort)
	cfg.GrpcHostPort = stringEnv(common.EnvKeyWQGrpcHostPort, "")

	rateStr := strings.TrimSpace(os.Getenv(common.EnvKeyWQDefaultRate))
	burstStr := strings.TrimSpace(os.Getenv(common.EnvKeyWQDefaultBurst))
	if rateStr != "" || burstStr != "" {
		r, err := strconv.ParseFloat(rateStr, 64)
		if err != nil || r <= 0 {
			return cfg, errors.New("invalid WQ_DEFAULT_RATE, should be a positive float64 value")
		}
		b, err := strconv.Atoi(burstStr)
		if err != nil || b <= 0 {
			return cfg, errors.New("invalid WQ_DEFAULT_BURST, should be a positive int value")
		}
		cfg.LimiterEnabled = true
		cfg.DefaultRate = rate.Limit(r)
		cfg.DefaultBurst = b
	}

	cfg.DeviceBaseURL = stringEnv(common.EnvKeyWQDeviceBaseURL, "")
	if cfg.DeviceTimeout, err = durationEnv(common.EnvKeyWQDeviceTimeout, device.DefaultTimeout); err != nil {
		return cfg, err
	}
	if cfg.PollInterval, err = durationEnv(common.EnvKeyWQPollInterval, live.DefaultPollInterval); err != nil {
		return cfg, err
	}

	if cfg.Variant, err = gauge.VariantByName(stringEnv(common.EnvKeyWQGaugeVariant, gauge.VariantClassic)); err != nil {
		return cfg, err
	}
	if err = cfg.Variant.Validate(); err != nil {
		return cfg, err
	}

	if cfg.Location, err = time.LoadLocation(stringEnv(common.EnvKeyWQTimezone, "Local")); err != nil {
		return cfg, fmt.Errorf("invalid WQ_TIMEZONE: %w", err)
	}

	if cfg.HistoryLimit, err = intEnv(common.EnvKeyWQHistoryLimit, monitor.DefaultHistoryLimit); err != nil {
		return cfg, err
	}
	if cfg.HistoryLimit <= 0 {
		return cfg, errors.New("invalid WQ_HISTORY_LIMIT, should be positive")
	}

	cfg.DashboardURL = stringEnv(common.EnvKeyWQDashboardURL, defaultDashboardURL)

	cfg.Redis = cache.Options{
		Addr:     stringEnv(common.EnvKeyWQRedisAddr, ""),
		Password: os.Getenv(common.EnvKeyWQRedisPassword),
		TTL:      cache.DefaultTTL,
	}
	if cfg.Redis.DB, err = intEnv(common.EnvKeyWQRedisDB, 0); err != nil {
		return cfg, err
	}

	return cfg, nil
}
