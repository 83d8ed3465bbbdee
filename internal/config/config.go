package config

import (
	"flag"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	BaseURL   string `env:"BASE_URL"`
	Port      string `env:"PORT"`
	StaticDir string `env:"STATIC_DIR"`
	// TrustProxy включает разбор X-Forwarded-For / X-Real-IP
	TrustProxy bool `env:"TRUST_PROXY"`

	// Хранилище
	DatabaseDSN string `env:"DATABASE_URI"`
	DBDriver    string `env:"DB_DRIVER"`

	// Авторизация
	AuthSecret    string        `env:"AUTH_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL"`
	AdminEmail    string        `env:"ADMIN_EMAIL"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`

	// Чат-бот
	ChatAPIKey  string        `env:"CHAT_API_KEY"`
	ChatAPIURL  string        `env:"CHAT_API_URL"`
	ChatModel   string        `env:"CHAT_MODEL"`
	ChatTimeout time.Duration `env:"CHAT_TIMEOUT"`

	// Файлы
	BlobBackend   string        `env:"BLOB_BACKEND"`
	BlobBucket    string        `env:"BLOB_BUCKET"`
	BlobMaxSizeMB int           `env:"BLOB_MAX_MB"`
	S3Region      string        `env:"S3_REGION"`
	BlobGCCron    string        `env:"BLOB_GC_SCHEDULE"`
	BlobGCGrace   time.Duration `env:"BLOB_GC_GRACE"`

	// Кэш
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL"`

	// Rate limit для login/register/chatbot
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST"`
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]*:\d{1,5}$`)

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// флаги переопределяют значения из env
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "адрес сервера host:port")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "драйвер БД: sqlite, postgres, mysql")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "каталог со сборкой фронтенда")
	flag.StringVar(&cfg.BlobBackend, "blob-backend", cfg.BlobBackend, "хранилище файлов: db или s3")
	flag.BoolVar(&cfg.TrustProxy, "trust-proxy", cfg.TrustProxy, "доверять X-Forwarded-For от прокси")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.AuthSecret == "" {
		c.AuthSecret = "dev-secret-key"
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
	if !hostPortRe.MatchString(c.BaseURL) {
		c.BaseURL = "localhost:8081"
	}
	// PORT (например, на PaaS) заменяет порт из BASE_URL
	if c.Port != "" {
		host := c.BaseURL[:strings.LastIndex(c.BaseURL, ":")]
		c.BaseURL = host + ":" + c.Port
	}
	if c.StaticDir == "" {
		c.StaticDir = "./web/dist"
	}

	c.DBDriver = strings.ToLower(c.DBDriver)
	switch c.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		c.DBDriver = "sqlite"
	}
	if c.DatabaseDSN == "" {
		c.DatabaseDSN = "file:bloghub.db?cache=shared"
	}

	if c.ChatAPIURL == "" {
		c.ChatAPIURL = "https://api.openai.com/v1"
	}
	if c.ChatModel == "" {
		c.ChatModel = "gpt-4o-mini"
	}
	if c.ChatTimeout <= 0 {
		c.ChatTimeout = 30 * time.Second
	}

	if c.BlobBackend != "s3" {
		c.BlobBackend = "db"
	}
	if c.BlobBucket == "" {
		c.BlobBucket = "uploads"
	}
	if c.BlobMaxSizeMB <= 0 {
		c.BlobMaxSizeMB = 50
	}
	if c.BlobGCGrace <= 0 {
		c.BlobGCGrace = time.Hour
	}

	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Minute
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = 1
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 5
	}
}

// BlobMaxBytes лимит размера одного загружаемого файла.
func (c *Config) BlobMaxBytes() int64 {
	return int64(c.BlobMaxSizeMB) << 20
}
