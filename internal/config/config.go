package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     int    `default:"8000"`
	AppEnv   string `default:"dev"`
	LogLevel string `default:"info"`

	// DatabaseURL is a go-sql-driver/mysql DSN or a postgres:// URL. Empty
	// means the in-memory store.
	DatabaseURL string
	DevMode     bool

	// AdminToken, when set, must be sent as X-Admin-Token on admin writes.
	AdminToken  string
	CORSOrigins []string `default:"[\"*\"]"`

	CDNProvider         string `default:"imagekit"`
	ImageKitPublicKey   string
	ImageKitPrivateKey  string
	ImageKitURLEndpoint string
	CloudinaryURL       string

	SyncInterval time.Duration `default:"2m"`

	WhatsAppPhone string
	CurrencyLabel string `default:"د.أ"`

	// StaticDir holds the built storefront. Empty disables static serving.
	StaticDir string `default:"./static"`
}

// Load reads .env (if present) and the process environment on top of the
// declared defaults. Unparseable numbers and durations keep their defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return Config{}, err
	}

	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.DatabaseURL = getEnv("DATABASE_URL", getEnv("MYSQL_DSN", cfg.DatabaseURL))
	cfg.DevMode = getEnvBool("DEV_MODE", cfg.DevMode)
	cfg.AdminToken = getEnv("ADMIN_TOKEN", cfg.AdminToken)
	if v := getEnv("CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	cfg.CDNProvider = strings.ToLower(getEnv("CDN_PROVIDER", cfg.CDNProvider))
	cfg.ImageKitPublicKey = getEnv("IMAGEKIT_PUBLIC_KEY", cfg.ImageKitPublicKey)
	cfg.ImageKitPrivateKey = getEnv("IMAGEKIT_PRIVATE_KEY", cfg.ImageKitPrivateKey)
	cfg.ImageKitURLEndpoint = getEnv("IMAGEKIT_URL_ENDPOINT", cfg.ImageKitURLEndpoint)
	cfg.CloudinaryURL = getEnv("CLOUDINARY_URL", cfg.CloudinaryURL)
	cfg.SyncInterval = getEnvDuration("SYNC_INTERVAL", cfg.SyncInterval)
	cfg.WhatsAppPhone = getEnv("WHATSAPP_PHONE", cfg.WhatsAppPhone)
	cfg.CurrencyLabel = getEnv("CURRENCY_LABEL", cfg.CurrencyLabel)
	if v, ok := os.LookupEnv("STATIC_DIR"); ok {
		cfg.StaticDir = v
	}
	return cfg, nil
}

// UseMemoryStore reports whether the database should be skipped entirely.
func (c Config) UseMemoryStore() bool {
	return c.DevMode || c.DatabaseURL == ""
}

// CDNConfigured reports whether the selected CDN provider has credentials.
func (c Config) CDNConfigured() bool {
	switch c.CDNProvider {
	case "cloudinary":
		return c.CloudinaryURL != ""
	case "", "imagekit":
		return c.ImageKitPublicKey != "" && c.ImageKitPrivateKey != "" && c.ImageKitURLEndpoint != ""
	}
	return false
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return b
}

// getEnvDuration accepts Go durations ("90s", "2m") and bare seconds ("120").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
