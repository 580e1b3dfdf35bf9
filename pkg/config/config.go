package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Booking BookingConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Log     LogConfig
	Metrics MetricsConfig
	Exports ExportsConfig
	Jobs    JobsConfig
}

// BookingConfig tunes the scheduling engine.
type BookingConfig struct {
	CancellationNotice  time.Duration
	SlotGranularity     int // minutes between template start points
	WizardSessionTTL    time.Duration
	MaxSearchDateRange  time.Duration
	DefaultDayStartHour int
	DefaultDayEndHour   int
}

// RedisConfig configures the optional distributed slot lock. When Enabled is
// false the engine serializes per teacher with in-process mutexes only.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	LockTTL  time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig gates the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// ExportsConfig gates booking history exports.
type ExportsConfig struct {
	Enabled bool
}

// JobsConfig tunes the post-confirmation side-effect queue.
type JobsConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Booking = BookingConfig{
		CancellationNotice:  parseDuration(v.GetString("BOOKING_CANCELLATION_NOTICE"), 24*time.Hour),
		SlotGranularity:     v.GetInt("BOOKING_SLOT_GRANULARITY_MINUTES"),
		WizardSessionTTL:    parseDuration(v.GetString("BOOKING_WIZARD_TTL"), 30*time.Minute),
		MaxSearchDateRange:  parseDuration(v.GetString("BOOKING_MAX_SEARCH_RANGE"), 90*24*time.Hour),
		DefaultDayStartHour: v.GetInt("BOOKING_DAY_START_HOUR"),
		DefaultDayEndHour:   v.GetInt("BOOKING_DAY_END_HOUR"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_LOCK_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		LockTTL:  parseDuration(v.GetString("REDIS_LOCK_TTL"), 10*time.Second),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}
	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOBS_RETRY_DELAY"), time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("BOOKING_CANCELLATION_NOTICE", "24h")
	v.SetDefault("BOOKING_SLOT_GRANULARITY_MINUTES", 30)
	v.SetDefault("BOOKING_WIZARD_TTL", "30m")
	v.SetDefault("BOOKING_MAX_SEARCH_RANGE", "2160h")
	v.SetDefault("BOOKING_DAY_START_HOUR", 8)
	v.SetDefault("BOOKING_DAY_END_HOUR", 20)

	v.SetDefault("REDIS_LOCK_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_LOCK_TTL", "10s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("ENABLE_EXPORTS", true)

	v.SetDefault("JOBS_WORKERS", 2)
	v.SetDefault("JOBS_MAX_RETRIES", 3)
	v.SetDefault("JOBS_RETRY_DELAY", "1s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
