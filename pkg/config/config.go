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
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Scan       ScanConfig
	Reconciler ReconcilerConfig
	Dashboard  DashboardConfig
	BulkImport BulkImportConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ScanConfig tunes the scan ingestion pipeline.
type ScanConfig struct {
	DebounceInterval  time.Duration
	DuplicateSuppress time.Duration
	StorageTimeout    time.Duration
	RetryBackoff      time.Duration
	DefaultTimezone   string
}

// ReconcilerConfig governs the absence reconciliation scheduler.
type ReconcilerConfig struct {
	Enabled      bool
	PollInterval time.Duration
	ReportTTL    time.Duration
}

// DashboardConfig governs summary caching for the dashboard endpoints.
type DashboardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// BulkImportConfig sizes the bulk scan worker pool.
type BulkImportConfig struct {
	Workers    int
	BufferSize int
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
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scan = ScanConfig{
		DebounceInterval:  parseDuration(v.GetString("SCAN_DEBOUNCE_INTERVAL"), 800*time.Millisecond),
		DuplicateSuppress: parseDuration(v.GetString("SCAN_DUPLICATE_SUPPRESS"), 3*time.Second),
		StorageTimeout:    parseDuration(v.GetString("SCAN_STORAGE_TIMEOUT"), 5*time.Second),
		RetryBackoff:      parseDuration(v.GetString("SCAN_RETRY_BACKOFF"), 200*time.Millisecond),
		DefaultTimezone:   v.GetString("ATTENDANCE_TIMEZONE"),
	}

	cfg.Reconciler = ReconcilerConfig{
		Enabled:      v.GetBool("ENABLE_RECONCILER"),
		PollInterval: parseDuration(v.GetString("RECONCILER_POLL_INTERVAL"), time.Minute),
		ReportTTL:    parseDuration(v.GetString("RECONCILER_REPORT_TTL"), 24*time.Hour),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:  v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.BulkImport = BulkImportConfig{
		Workers:    v.GetInt("BULK_IMPORT_WORKERS"),
		BufferSize: v.GetInt("BULK_IMPORT_BUFFER"),
		MaxRetries: v.GetInt("BULK_IMPORT_RETRIES"),
		RetryDelay: parseDuration(v.GetString("BULK_IMPORT_RETRY_DELAY"), time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "shift_attendance")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCAN_DEBOUNCE_INTERVAL", "800ms")
	v.SetDefault("SCAN_DUPLICATE_SUPPRESS", "3s")
	v.SetDefault("SCAN_STORAGE_TIMEOUT", "5s")
	v.SetDefault("SCAN_RETRY_BACKOFF", "200ms")
	v.SetDefault("ATTENDANCE_TIMEZONE", "Asia/Karachi")

	v.SetDefault("ENABLE_RECONCILER", true)
	v.SetDefault("RECONCILER_POLL_INTERVAL", "1m")
	v.SetDefault("RECONCILER_REPORT_TTL", "24h")

	v.SetDefault("ENABLE_DASHBOARD", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("BULK_IMPORT_WORKERS", 2)
	v.SetDefault("BULK_IMPORT_BUFFER", 64)
	v.SetDefault("BULK_IMPORT_RETRIES", 1)
	v.SetDefault("BULK_IMPORT_RETRY_DELAY", "1s")
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
