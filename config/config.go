package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	DB DBConfig

	JWTSecret string
	TokenTTL  time.Duration

	Cloudinary CloudinaryConfig

	LogLevel     string
	LogstashAddr string

	NotificationInterval time.Duration

	AdminEmail    string
	AdminPassword string
}

type DBConfig struct {
	Driver     string
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SSLMode    string
	SQLitePath string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether image hosting credentials are present
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// LoadEnv loads a .env file if present. A missing file is reported but is
// not fatal; system environment variables are used instead.
func LoadEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load reads the configuration from the environment, applying defaults
func Load() *Config {
	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "release"),
		DB: DBConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASS", "postgres"),
			Name:       getEnv("DB_NAME", "socialapp"),
			Port:       getEnv("DB_PORT", "5432"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "socialapp.db"),
		},
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),
		TokenTTL:  getDuration("TOKEN_TTL", 30*24*time.Hour),
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			Folder:    getEnv("CLOUDINARY_FOLDER", "profile_pics"),
		},
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogstashAddr:         os.Getenv("LOGSTASH_ADDR"),
		NotificationInterval: getDuration("NOTIFICATION_INTERVAL", 60*time.Second),
		AdminEmail:           os.Getenv("ADMIN_EMAIL"),
		AdminPassword:        os.Getenv("ADMIN_PASSWORD"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getDuration accepts Go durations ("90s") or a plain number of seconds.
// Values that are not positive fall back to the default.
func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		if d <= 0 {
			return fallback
		}
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
