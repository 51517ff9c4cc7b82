package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application settings
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	ML         MLConfig
	Cloudinary CloudinaryConfig
	Session    SessionConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds access token settings
type JWTConfig struct {
	Secret        string
	ExpirationHrs int `mapstructure:"expiration_hrs"`
}

// MLConfig holds settings for the external summarization and
// question-generation service
type MLConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// Timeout returns the per-request deadline for ML calls
func (m *MLConfig) Timeout() time.Duration {
	if m.TimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(m.TimeoutSec) * time.Second
}

// CloudinaryConfig holds cloud storage settings
type CloudinaryConfig struct {
	URL    string
	Folder string
}

// SessionConfig holds quiz session engine settings
type SessionConfig struct {
	FeedbackDelayMs int `mapstructure:"feedback_delay_ms"`
	IdleTTLMin      int `mapstructure:"idle_ttl_min"`
}

// FeedbackDelay returns the pause between answering and auto-advance
func (s *SessionConfig) FeedbackDelay() time.Duration {
	if s.FeedbackDelayMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(s.FeedbackDelayMs) * time.Millisecond
}

// IdleTTL returns how long an untouched session survives before the
// manager sweeps it
func (s *SessionConfig) IdleTTL() time.Duration {
	if s.IdleTTLMin <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(s.IdleTTLMin) * time.Minute
}

// Load reads configuration from the given file, with environment
// variables taking precedence
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.readtimeout", 15)
	viper.SetDefault("server.writetimeout", 15)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("jwt.expiration_hrs", 24)
	viper.SetDefault("ml.timeout_sec", 60)
	viper.SetDefault("cloudinary.folder", "study_assistant_notes")
	viper.SetDefault("session.feedback_delay_ms", 2000)
	viper.SetDefault("session.idle_ttl_min", 30)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required in config")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		return nil, fmt.Errorf("database configuration (host, dbname) is incomplete")
	}

	return &cfg, nil
}
