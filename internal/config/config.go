package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Storage    StorageConfig
	Geo        GeoConfig
	QR         QRConfig
	Attendance AttendanceConfig
	Cron       CronConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

type StorageConfig struct {
	// Type selects the record and directory store: "postgres" or "memory".
	Type string
	// TokenStoreType selects the QR token store: "redis" or "memory".
	TokenStoreType string
	DirectoryFile  string
}

type GeoConfig struct {
	MaxAccuracyMeters float64
	MaxReadingAge     time.Duration
}

type QRConfig struct {
	MaxValidHours int
	Retention     time.Duration
}

type AttendanceConfig struct {
	MaxFutureSkew time.Duration
}

type CronConfig struct {
	Enabled bool
}

// Load reads .env when present and builds the configuration from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	var err error

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "timesheet"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.Storage = StorageConfig{
		Type:           getEnv("STORAGE_TYPE", "postgres"),
		TokenStoreType: getEnv("TOKEN_STORE_TYPE", "redis"),
		DirectoryFile:  getEnv("DIRECTORY_FILE", ""),
	}

	// Geofence configuration
	maxAccuracy, err := strconv.ParseFloat(getEnv("GEO_MAX_ACCURACY_METERS", "50"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEO_MAX_ACCURACY_METERS: %w", err)
	}
	maxReadingAge, err := time.ParseDuration(getEnv("GEO_MAX_READING_AGE", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEO_MAX_READING_AGE: %w", err)
	}
	config.Geo = GeoConfig{
		MaxAccuracyMeters: maxAccuracy,
		MaxReadingAge:     maxReadingAge,
	}

	// QR token configuration
	maxValidHours, err := strconv.Atoi(getEnv("QR_MAX_VALID_HOURS", "720"))
	if err != nil {
		return nil, fmt.Errorf("invalid QR_MAX_VALID_HOURS: %w", err)
	}
	retention, err := time.ParseDuration(getEnv("QR_RETENTION", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid QR_RETENTION: %w", err)
	}
	config.QR = QRConfig{
		MaxValidHours: maxValidHours,
		Retention:     retention,
	}

	skew, err := time.ParseDuration(getEnv("ATTENDANCE_MAX_FUTURE_SKEW", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_MAX_FUTURE_SKEW: %w", err)
	}
	config.Attendance = AttendanceConfig{MaxFutureSkew: skew}

	cronEnabled, err := strconv.ParseBool(getEnv("CRON_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_ENABLED: %w", err)
	}
	config.Cron = CronConfig{Enabled: cronEnabled}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	switch c.Storage.Type {
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case "memory":
		if c.Storage.DirectoryFile == "" {
			return fmt.Errorf("DIRECTORY_FILE is required when STORAGE_TYPE is memory")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.Storage.Type)
	}

	switch c.Storage.TokenStoreType {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported TOKEN_STORE_TYPE %q", c.Storage.TokenStoreType)
	}

	if c.Geo.MaxAccuracyMeters <= 0 {
		return fmt.Errorf("GEO_MAX_ACCURACY_METERS must be positive")
	}
	if c.Geo.MaxReadingAge <= 0 {
		return fmt.Errorf("GEO_MAX_READING_AGE must be positive")
	}
	if c.QR.MaxValidHours < 1 {
		return fmt.Errorf("QR_MAX_VALID_HOURS must be at least 1")
	}
	if c.QR.Retention < 0 {
		return fmt.Errorf("QR_RETENTION must not be negative")
	}
	if c.Attendance.MaxFutureSkew < 0 {
		return fmt.Errorf("ATTENDANCE_MAX_FUTURE_SKEW must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
