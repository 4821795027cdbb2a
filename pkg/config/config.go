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
	Env           string
	Port          int
	APIPrefix     string
	PublicBaseURL string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Translator TranslatorConfig
	SocialFeed SocialFeedConfig
	CourseFeed CourseFeedConfig
	Analytics  AnalyticsConfig
	Mail       MailConfig
	Media      MediaConfig
	Exports    ExportsConfig
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
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TranslatorConfig points at the machine-translation API used for bilingual content.
type TranslatorConfig struct {
	BaseURL string
	AuthKey string
	Timeout time.Duration
}

// SocialFeedConfig configures the optional social page publishing integration.
type SocialFeedConfig struct {
	Enabled     bool
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// CourseFeedConfig points at the third-party course booking page.
type CourseFeedConfig struct {
	URL      string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// AnalyticsConfig governs the analytics summary proxy and its cache.
type AnalyticsConfig struct {
	Enabled  bool
	BaseURL  string
	SiteID   string
	APIKey   string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// MailConfig holds SMTP submission settings for outbound notifications.
type MailConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	From         string
	AdminAddress string
}

// MediaConfig controls uploaded image handling.
type MediaConfig struct {
	StorageDir        string
	MaxUploadBytes    int64
	MaxFilesPerRecord int
}

// ExportsConfig controls asynchronous customer-request exports.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
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
	cfg.PublicBaseURL = v.GetString("PUBLIC_BASE_URL")

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
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Translator = TranslatorConfig{
		BaseURL: v.GetString("TRANSLATOR_BASE_URL"),
		AuthKey: v.GetString("TRANSLATOR_AUTH_KEY"),
		Timeout: parseDuration(v.GetString("TRANSLATOR_TIMEOUT"), 10*time.Second),
	}

	cfg.SocialFeed = SocialFeedConfig{
		Enabled:     v.GetBool("ENABLE_SOCIAL_FEED"),
		BaseURL:     v.GetString("SOCIAL_FEED_BASE_URL"),
		AccessToken: v.GetString("SOCIAL_FEED_ACCESS_TOKEN"),
		Timeout:     parseDuration(v.GetString("SOCIAL_FEED_TIMEOUT"), 10*time.Second),
	}

	cfg.CourseFeed = CourseFeedConfig{
		URL:      v.GetString("COURSE_FEED_URL"),
		CacheTTL: parseDuration(v.GetString("COURSE_FEED_CACHE_TTL"), 5*time.Minute),
		Timeout:  parseDuration(v.GetString("COURSE_FEED_TIMEOUT"), 10*time.Second),
	}

	cfg.Analytics = AnalyticsConfig{
		Enabled:  v.GetBool("ENABLE_ANALYTICS"),
		BaseURL:  v.GetString("ANALYTICS_BASE_URL"),
		SiteID:   v.GetString("ANALYTICS_SITE_ID"),
		APIKey:   v.GetString("ANALYTICS_API_KEY"),
		CacheTTL: parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
		Timeout:  parseDuration(v.GetString("ANALYTICS_TIMEOUT"), 10*time.Second),
	}

	cfg.Mail = MailConfig{
		Host:         v.GetString("SMTP_HOST"),
		Port:         v.GetInt("SMTP_PORT"),
		Username:     v.GetString("SMTP_USERNAME"),
		Password:     v.GetString("SMTP_PASSWORD"),
		From:         v.GetString("MAIL_FROM"),
		AdminAddress: v.GetString("MAIL_ADMIN_ADDRESS"),
	}

	maxUpload := v.GetInt64("MEDIA_MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	cfg.Media = MediaConfig{
		StorageDir:        v.GetString("MEDIA_STORAGE_DIR"),
		MaxUploadBytes:    maxUpload,
		MaxFilesPerRecord: v.GetInt("MEDIA_MAX_FILES_PER_RECORD"),
	}

	cfg.Exports = ExportsConfig{
		Enabled:           v.GetBool("ENABLE_EXPORTS"),
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "koreskole")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TRANSLATOR_BASE_URL", "https://api-free.deepl.com/v2")
	v.SetDefault("TRANSLATOR_AUTH_KEY", "")
	v.SetDefault("TRANSLATOR_TIMEOUT", "10s")

	v.SetDefault("ENABLE_SOCIAL_FEED", false)
	v.SetDefault("SOCIAL_FEED_BASE_URL", "https://graph.facebook.com/v18.0")
	v.SetDefault("SOCIAL_FEED_ACCESS_TOKEN", "")
	v.SetDefault("SOCIAL_FEED_TIMEOUT", "10s")

	v.SetDefault("COURSE_FEED_URL", "")
	v.SetDefault("COURSE_FEED_CACHE_TTL", "5m")
	v.SetDefault("COURSE_FEED_TIMEOUT", "10s")

	v.SetDefault("ENABLE_ANALYTICS", false)
	v.SetDefault("ANALYTICS_BASE_URL", "https://plausible.io/api/v1")
	v.SetDefault("ANALYTICS_SITE_ID", "")
	v.SetDefault("ANALYTICS_API_KEY", "")
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")
	v.SetDefault("ANALYTICS_TIMEOUT", "10s")

	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("MAIL_FROM", "noreply@koreklar.dk")
	v.SetDefault("MAIL_ADMIN_ADDRESS", "kontakt@koreklar.dk")

	v.SetDefault("MEDIA_STORAGE_DIR", "./uploads")
	v.SetDefault("MEDIA_MAX_UPLOAD_BYTES", 10*1024*1024)
	v.SetDefault("MEDIA_MAX_FILES_PER_RECORD", 10)

	v.SetDefault("ENABLE_EXPORTS", false)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)
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
