package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Storage    StorageConfig
	Upload     UploadConfig
	Extraction ExtractionConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	FrontendURL string
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
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// StorageConfig selects and configures the blob backend. Backend is either
// "memory" (development) or "s3".
type StorageConfig struct {
	Backend        string
	S3Region       string
	S3Bucket       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	DownloadTTLMin int
}

type UploadConfig struct {
	MaxBytes     int64
	AllowedTypes []string
}

type ExtractionConfig struct {
	AuthURL        string
	ClientID       string
	ClientSecret   string
	DocURL         string
	TimeoutSeconds int
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func (s *StorageConfig) DownloadTTL() time.Duration {
	return time.Duration(s.DownloadTTLMin) * time.Minute
}

func (e *ExtractionConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// Enabled reports whether the external extraction integration is configured.
func (e *ExtractionConfig) Enabled() bool {
	return e.AuthURL != "" && e.ClientID != "" && e.ClientSecret != "" && e.DocURL != ""
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "docshare")
	v.SetDefault("DATABASE_PASSWORD", "docshare_secret")
	v.SetDefault("DATABASE_NAME", "docshare")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("STORAGE_BACKEND", "memory")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("DOWNLOAD_URL_TTL_MINUTES", 60)
	v.SetDefault("UPLOAD_MAX_BYTES", 100*1024*1024)
	v.SetDefault("UPLOAD_ALLOWED_TYPES", "pdf,doc,docx,txt,jpg,jpeg,png,gif,xlsx,xls,ppt,pptx")
	v.SetDefault("EXTRACTION_AUTH_URL", "")
	v.SetDefault("EXTRACTION_CLIENT_ID", "")
	v.SetDefault("EXTRACTION_CLIENT_SECRET", "")
	v.SetDefault("EXTRACTION_DOC_URL", "")
	v.SetDefault("EXTRACTION_TIMEOUT_SECONDS", 30)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	allowedTypes := strings.Split(v.GetString("UPLOAD_ALLOWED_TYPES"), ",")
	for i, t := range allowedTypes {
		allowedTypes[i] = strings.ToLower(strings.TrimSpace(t))
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("SERVER_HOST"),
			Port:        v.GetInt("SERVER_PORT"),
			Env:         v.GetString("SERVER_ENV"),
			FrontendURL: strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Storage: StorageConfig{
			Backend:        v.GetString("STORAGE_BACKEND"),
			S3Region:       v.GetString("S3_REGION"),
			S3Bucket:       v.GetString("S3_BUCKET"),
			S3Endpoint:     v.GetString("S3_ENDPOINT"),
			S3AccessKey:    v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:    v.GetString("S3_SECRET_KEY"),
			DownloadTTLMin: v.GetInt("DOWNLOAD_URL_TTL_MINUTES"),
		},
		Upload: UploadConfig{
			MaxBytes:     v.GetInt64("UPLOAD_MAX_BYTES"),
			AllowedTypes: allowedTypes,
		},
		Extraction: ExtractionConfig{
			AuthURL:        v.GetString("EXTRACTION_AUTH_URL"),
			ClientID:       v.GetString("EXTRACTION_CLIENT_ID"),
			ClientSecret:   v.GetString("EXTRACTION_CLIENT_SECRET"),
			DocURL:         v.GetString("EXTRACTION_DOC_URL"),
			TimeoutSeconds: v.GetInt("EXTRACTION_TIMEOUT_SECONDS"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	return cfg, nil
}
