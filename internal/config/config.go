package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Attendance   AttendanceConfig
	Notification NotificationConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
	Timezone    string
}

// AttendanceConfig holds the attendance policy: the expected time window per
// session type, face verification thresholds, and the worksite geofence.
type AttendanceConfig struct {
	MorningStart   string // "HH:MM", local time
	MorningEnd     string
	AfternoonStart string
	AfternoonEnd   string
	GraceMinutes   int

	RequireFaceVerification bool
	MinFaceScore            float64

	WorksiteLatitude  float64
	WorksiteLongitude float64
	WorksiteRadiusM   float64
}

// NotificationConfig tunes the background notification workers.
type NotificationConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	WorkerCount   int
	QueueSize     int
}

func Load() (*Config, error) {
	// .env is optional; real deployments configure via the environment.
	_ = godotenv.Load()

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
		Name:     getEnv("DB_NAME", "pointage"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		Timezone:    getEnv("APP_TIMEZONE", "UTC"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance policy
	graceMinutes, err := strconv.Atoi(getEnv("ATTENDANCE_GRACE_MINUTES", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_GRACE_MINUTES: %w", err)
	}
	minFaceScore, err := strconv.ParseFloat(getEnv("ATTENDANCE_MIN_FACE_SCORE", "0.80"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_MIN_FACE_SCORE: %w", err)
	}
	worksiteLat, err := strconv.ParseFloat(getEnv("WORKSITE_LATITUDE", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKSITE_LATITUDE: %w", err)
	}
	worksiteLon, err := strconv.ParseFloat(getEnv("WORKSITE_LONGITUDE", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKSITE_LONGITUDE: %w", err)
	}
	worksiteRadius, err := strconv.ParseFloat(getEnv("WORKSITE_RADIUS_METERS", "250"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKSITE_RADIUS_METERS: %w", err)
	}

	config.Attendance = AttendanceConfig{
		MorningStart:            getEnv("ATTENDANCE_MORNING_START", "08:00"),
		MorningEnd:              getEnv("ATTENDANCE_MORNING_END", "12:00"),
		AfternoonStart:          getEnv("ATTENDANCE_AFTERNOON_START", "13:00"),
		AfternoonEnd:            getEnv("ATTENDANCE_AFTERNOON_END", "17:00"),
		GraceMinutes:            graceMinutes,
		RequireFaceVerification: getEnv("ATTENDANCE_REQUIRE_FACE", "true") == "true",
		MinFaceScore:            minFaceScore,
		WorksiteLatitude:        worksiteLat,
		WorksiteLongitude:       worksiteLon,
		WorksiteRadiusM:         worksiteRadius,
	}

	// Notification workers
	flushInterval, err := time.ParseDuration(getEnv("NOTIFICATION_FLUSH_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_FLUSH_INTERVAL: %w", err)
	}
	config.Notification = NotificationConfig{
		BatchSize:     getEnvInt("NOTIFICATION_BATCH_SIZE", 100),
		FlushInterval: flushInterval,
		WorkerCount:   getEnvInt("NOTIFICATION_WORKER_COUNT", 2),
		QueueSize:     getEnvInt("NOTIFICATION_QUEUE_SIZE", 1000),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.MinFaceScore < 0 || c.Attendance.MinFaceScore > 1 {
		return fmt.Errorf("ATTENDANCE_MIN_FACE_SCORE must be between 0 and 1")
	}
	if c.Attendance.WorksiteRadiusM <= 0 {
		return fmt.Errorf("WORKSITE_RADIUS_METERS must be positive")
	}
	for _, window := range []string{
		c.Attendance.MorningStart, c.Attendance.MorningEnd,
		c.Attendance.AfternoonStart, c.Attendance.AfternoonEnd,
	} {
		if _, err := time.Parse("15:04", window); err != nil {
			return fmt.Errorf("invalid attendance window %q: %w", window, err)
		}
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

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
