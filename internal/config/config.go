package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	App          AppConfig
	Attendance   Settings
	Notification NotificationConfig
	Archive      ArchiveConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig holds the duty board cache connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	DutyTTL  time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	CORSOrigins []string
}

type NotificationConfig struct {
	WorkerCount   int
	BatchSize     int
	QueueSize     int
	FlushInterval time.Duration
}

// ArchiveConfig enables keeping a copy of every report export. An empty Dir
// disables the archive.
type ArchiveConfig struct {
	Dir     string
	BaseURL string
}

// Settings carries the site-wide attendance policy. It is passed explicitly to
// the services that need it instead of being read from globals.
type Settings struct {
	Location            *time.Location
	ScheduleEpoch       time.Time
	WindowHalfWidth     time.Duration
	EarlyLeaveTolerance time.Duration
	AutoCloseGrace      time.Duration

	SiteLatitude     float64
	SiteLongitude    float64
	SiteRadiusMeters float64
	EnforceGeofence  bool

	NotifyClockEvents bool
}

// DefaultSettings returns the policy used when nothing is configured.
func DefaultSettings(loc *time.Location) Settings {
	if loc == nil {
		loc = time.UTC
	}
	return Settings{
		Location:            loc,
		ScheduleEpoch:       time.Date(2025, time.January, 1, 0, 0, 0, 0, loc),
		WindowHalfWidth:     2 * time.Hour,
		EarlyLeaveTolerance: 5 * time.Minute,
		AutoCloseGrace:      time.Hour,
		SiteRadiusMeters:    100,
	}
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

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
		Name:     getEnv("DB_NAME", "estate_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	dutyTTL, err := time.ParseDuration(getEnv("REDIS_DUTY_TTL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DUTY_TTL: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		DutyTTL:  dutyTTL,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("APP_TIMEZONE", "Asia/Jakarta"),
	}
	for _, o := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			config.App.CORSOrigins = append(config.App.CORSOrigins, o)
		}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"),
	}

	settings, err := loadSettings(config.App.Timezone)
	if err != nil {
		return nil, err
	}
	config.Attendance = settings

	// Notification workers
	flushInterval, err := time.ParseDuration(getEnv("NOTIFICATION_FLUSH_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_FLUSH_INTERVAL: %w", err)
	}
	config.Notification = NotificationConfig{
		WorkerCount:   getEnvInt("NOTIFICATION_WORKERS", 2),
		BatchSize:     getEnvInt("NOTIFICATION_BATCH_SIZE", 50),
		QueueSize:     getEnvInt("NOTIFICATION_QUEUE_SIZE", 500),
		FlushInterval: flushInterval,
	}

	config.Archive = ArchiveConfig{
		Dir:     getEnv("REPORT_ARCHIVE_DIR", ""),
		BaseURL: getEnv("REPORT_ARCHIVE_URL", "/api/v1/archive"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadSettings(timezone string) (Settings, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid APP_TIMEZONE %q: %w", timezone, err)
	}

	s := DefaultSettings(loc)

	epoch, err := time.ParseInLocation("2006-01-02", getEnv("SCHEDULE_EPOCH", "2025-01-01"), loc)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid SCHEDULE_EPOCH: %w", err)
	}
	s.ScheduleEpoch = epoch

	if s.WindowHalfWidth, err = time.ParseDuration(getEnv("ATTENDANCE_WINDOW", "2h")); err != nil {
		return Settings{}, fmt.Errorf("invalid ATTENDANCE_WINDOW: %w", err)
	}
	if s.EarlyLeaveTolerance, err = time.ParseDuration(getEnv("EARLY_LEAVE_TOLERANCE", "5m")); err != nil {
		return Settings{}, fmt.Errorf("invalid EARLY_LEAVE_TOLERANCE: %w", err)
	}
	if s.AutoCloseGrace, err = time.ParseDuration(getEnv("AUTO_CLOSE_GRACE", "1h")); err != nil {
		return Settings{}, fmt.Errorf("invalid AUTO_CLOSE_GRACE: %w", err)
	}

	s.SiteLatitude = getEnvFloat("SITE_LATITUDE", 0)
	s.SiteLongitude = getEnvFloat("SITE_LONGITUDE", 0)
	s.SiteRadiusMeters = getEnvFloat("SITE_RADIUS_METERS", 100)
	s.EnforceGeofence = getEnvBool("SITE_ENFORCE_GEOFENCE", false)
	s.NotifyClockEvents = getEnvBool("NOTIFY_CLOCK_EVENTS", true)

	return s, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return c.Attendance.Validate()
}

// Validate checks the attendance policy values.
func (s Settings) Validate() error {
	if s.Location == nil {
		return fmt.Errorf("timezone is required")
	}
	if s.WindowHalfWidth <= 0 {
		return fmt.Errorf("ATTENDANCE_WINDOW must be positive")
	}
	if s.EarlyLeaveTolerance < 0 {
		return fmt.Errorf("EARLY_LEAVE_TOLERANCE must not be negative")
	}
	if s.EnforceGeofence && s.SiteRadiusMeters <= 0 {
		return fmt.Errorf("SITE_RADIUS_METERS must be positive when geofence is enforced")
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

// SlogLevel maps LOG_LEVEL to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}
