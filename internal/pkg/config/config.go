package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port          string        `env:"PORT,           default=8080"`
	Env           string        `env:"ENV,            default=development"`
	LogLevel      string        `env:"LOG_LEVEL,      default=info"`
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTExpiry     time.Duration `env:"JWT_EXPIRY,     default=24h"`
	EncryptionKey string        `env:"ENCRYPTION_KEY"`
	CORSOrigins   []string      `env:"CORS_ORIGINS,   default=*"`
	InviteBaseURL string        `env:"INVITE_BASE_URL, default=http://localhost:3000/invite"`

	Mongo     MongoConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	RateLimit RateLimitConfig
	Retrier   RetrierConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=ka_kha_ga"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host       string        `env:"SMTP_HOST,        default=localhost"`
	Port       int           `env:"SMTP_PORT,        default=587"`
	Username   string        `env:"SMTP_USER"`
	Password   string        `env:"SMTP_PASSWORD"`
	From       string        `env:"SMTP_FROM,        default=no-reply@kakhaga.com"`
	MaxRetries int           `env:"SMTP_MAX_RETRIES, default=3"`
	RetryDelay time.Duration `env:"SMTP_RETRY_DELAY, default=5s"`
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS, default=20"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW,   default=1m"`
}

type RetrierConfig struct {
	Interval time.Duration `env:"EMAIL_RETRY_INTERVAL, default=5m"`
	Batch    int           `env:"EMAIL_RETRY_BATCH,    default=20"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
