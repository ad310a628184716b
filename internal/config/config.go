package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
// URL, when set (DATABASE_URL), takes precedence over the individual components.
type DatabaseConfig struct {
	URL                string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StorageConfig selects where uploads and blog content images live.
type StorageConfig struct {
	Driver    string // "local" or "minio"
	UploadDir string
	MaxBytes  int64
	// PublicBaseURL prefixes object keys to build browser-facing URLs.
	PublicBaseURL string
	MinIO         MinIOConfig
}

// AuthConfig holds session token settings.
// AdminSessionTTL is the auto-logout window of the admin panel.
type AuthConfig struct {
	JWTSecret          string
	AdminSessionTTL    time.Duration
	CustomerSessionTTL time.Duration
	LoginMaxAttempts   int
	LoginWindow        time.Duration
}

// ShopConfig holds checkout pricing rules. Amounts are decimal strings in TRY.
type ShopConfig struct {
	Currency              string
	ShippingFee           string
	FreeShippingThreshold string
}

// SeedConfig describes the admin account created on first start.
type SeedConfig struct {
	AdminEmail    string
	AdminName     string
	AdminPassword string
}

// MailConfig holds transactional e-mail settings.
type MailConfig struct {
	ResendAPIKey string
	From         string
}

// AssistantConfig holds chatbot model settings.
type AssistantConfig struct {
	GeminiAPIKey string
	Model        string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	SiteURL     string
	Timezone    string
	CORSOrigins string
	Database    DatabaseConfig
	Auth        AuthConfig
	Storage     StorageConfig
	Shop        ShopConfig
	Seed        SeedConfig
	Mail        MailConfig
	Assistant   AssistantConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	appHost := getEnv("APP_HOST", "localhost:8080")
	siteURL := strings.TrimRight(firstEnv("http://localhost:3000", "SITE_URL", "NEXT_PUBLIC_BASE_URL"), "/")

	return &AppConfig{
		AppHost:     appHost,
		Port:        getEnv("PORT", "8080"),
		SiteURL:     siteURL,
		Timezone:    getEnv("APP_TIMEZONE", "Europe/Istanbul"),
		CORSOrigins: getEnv("CORS_ORIGINS", siteURL),
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			AdminSessionTTL:    getEnvDuration("ADMIN_SESSION_TTL", 8*time.Hour),
			CustomerSessionTTL: getEnvDuration("CUSTOMER_SESSION_TTL", 7*24*time.Hour),
			LoginMaxAttempts:   getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
			LoginWindow:        getEnvDuration("LOGIN_WINDOW", 2*time.Minute),
		},
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", "local"),
			UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
			MaxBytes:      int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),
			PublicBaseURL: strings.TrimRight(getEnv("UPLOAD_PUBLIC_URL", "http://"+appHost+"/uploads"), "/"),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		Shop: ShopConfig{
			Currency:              getEnv("SHOP_CURRENCY", "TRY"),
			ShippingFee:           getEnv("SHOP_SHIPPING_FEE", "149.90"),
			FreeShippingThreshold: getEnv("SHOP_FREE_SHIPPING_THRESHOLD", "2000"),
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@localhost"),
			AdminName:     getEnv("ADMIN_NAME", "Yönetici"),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		Mail: MailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("MAIL_FROM", ""),
		},
		Assistant: AssistantConfig{
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			Model:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
	}
}

// ClientBaseURL resolves the REST API base URL used by command line clients.
// Server-side names win over the browser-exposed ones.
func ClientBaseURL() string {
	return strings.TrimRight(firstEnv("http://localhost:8080", "BACKEND_URL", "API_URL", "NEXT_PUBLIC_BACKEND_URL", "NEXT_PUBLIC_API_URL"), "/")
}

// Location returns the configured time zone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstEnv(def string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
