package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisAddr   string

	JWTSecret           string
	JWTRefreshSecret    string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	RefreshCookieMaxAge time.Duration

	// Emails promoted to superuser at registration.
	Superusers  []string
	CORSOrigins []string

	QuizSessionTTL time.Duration

	GeminiAPIKey   string
	GeminiModel    string
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
	SendgridAPIKey string
	MailFrom       string
	RollbarToken   string
	GoogleClientID string
}

// Load đọc .env (nếu có) rồi lấy cấu hình từ biến môi trường.
func Load() *Config {
	// .env is optional; real environments inject variables directly
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pathfinder")
	v.SetDefault("ACCESS_TOKEN_TTL", 10*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 48*time.Hour)
	v.SetDefault("REFRESH_COOKIE_MAX_AGE", 72*time.Hour)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("QUIZ_SESSION_TTL", 24*time.Hour)
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("SUPABASE_BUCKET", "uploads")
	v.SetDefault("MAIL_FROM", "noreply@pathfinder.local")
	v.AutomaticEnv()

	// secret mặc định chỉ dành cho môi trường dev/test
	if !strings.EqualFold(v.GetString("ENV"), EnvProduction) {
		v.SetDefault("JWT_SECRET_KEY", "dev-access-secret")
		v.SetDefault("JWT_REFRESH_KEY", "dev-refresh-secret")
	}

	cfg := &Config{
		Env:                 strings.ToLower(v.GetString("ENV")),
		Port:                v.GetString("PORT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisAddr:           v.GetString("REDIS_ADDR"),
		JWTSecret:           v.GetString("JWT_SECRET_KEY"),
		JWTRefreshSecret:    v.GetString("JWT_REFRESH_KEY"),
		AccessTokenTTL:      v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:     v.GetDuration("REFRESH_TOKEN_TTL"),
		RefreshCookieMaxAge: v.GetDuration("REFRESH_COOKIE_MAX_AGE"),
		Superusers:          splitList(v.GetString("SUPERUSERS")),
		CORSOrigins:         splitList(v.GetString("CORS_ORIGINS")),
		QuizSessionTTL:      v.GetDuration("QUIZ_SESSION_TTL"),
		GeminiAPIKey:        v.GetString("GEMINI_API_KEY"),
		GeminiModel:         v.GetString("GEMINI_MODEL"),
		SupabaseURL:         strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		SupabaseKey:         v.GetString("SUPABASE_KEY"),
		SupabaseBucket:      v.GetString("SUPABASE_BUCKET"),
		SendgridAPIKey:      v.GetString("SENDGRID_API_KEY"),
		MailFrom:            v.GetString("MAIL_FROM"),
		RollbarToken:        v.GetString("ROLLBAR_TOKEN"),
		GoogleClientID:      v.GetString("GOOGLE_CLIENT_ID"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			v.GetString("DB_HOST"), v.GetString("DB_USER"), v.GetString("DB_PASSWORD"),
			v.GetString("DB_NAME"), v.GetString("DB_PORT"),
		)
	}
	return cfg
}

// Validate chặn khởi động production thiếu cấu hình bắt buộc.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	if c.JWTSecret == "" || c.JWTRefreshSecret == "" {
		return errors.New("JWT_SECRET_KEY and JWT_REFRESH_KEY must be set in production")
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return errors.New("JWT_SECRET_KEY and JWT_REFRESH_KEY must differ")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// IsSuperuserEmail reports whether email is on the SUPERUSERS allow-list.
func (c *Config) IsSuperuserEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, su := range c.Superusers {
		if strings.ToLower(su) == email {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Hostname is used to tag error reports.
func Hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
