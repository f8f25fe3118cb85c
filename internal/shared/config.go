package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	StoreDriver  string // mysql|mongo|memory
	MySQLDSN     string
	MongoURI     string
	MongoDB      string
	StoreTimeout time.Duration

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	JWTSecret string

	PaymentsProvider string // stripe|local
	StripeKey        string
	Currency         string

	AMQPURL string

	RateLimitRPS   float64
	RateLimitBurst int

	SeedFile    string
	SeedWorkers int

	// DotEnv reports whether a .env file was merged into the environment.
	DotEnv bool
}

// Load reads the process environment, after merging a .env file when one
// exists in the working directory. It does not log: the logger is built from
// the returned config, so callers report Warnings once it is installed.
func Load() Config {
	dotEnv := godotenv.Load() == nil
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),

		StoreDriver:  env("STORE_DRIVER", "mysql"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotels?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		MongoURI:     env("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      env("MONGO_DB", "hotel_booking"),
		StoreTimeout: time.Duration(atoi("STORE_TIMEOUT_MS", 5000)) * time.Millisecond,

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,

		JWTSecret: env("JWT_SECRET_KEY", ""),

		PaymentsProvider: env("PAYMENTS_PROVIDER", "local"),
		StripeKey:        env("STRIPE_API_KEY", ""),
		Currency:         env("PAYMENTS_CURRENCY", "gbp"),

		AMQPURL: env("AMQP_URL", ""),

		RateLimitRPS:   atof("RATE_LIMIT_RPS", 20),
		RateLimitBurst: atoi("RATE_LIMIT_BURST", 40),

		SeedFile:    env("SEED_FILE", "hotels.json"),
		SeedWorkers: atoi("SEED_WORKERS", 8),

		DotEnv: dotEnv,
	}
	return c
}

// Warnings lists settings that let the process start but leave part of it unusable.
func (c Config) Warnings() []string {
	var out []string
	if c.JWTSecret == "" {
		out = append(out, "JWT_SECRET_KEY is empty; every authenticated call will be rejected")
	}
	if c.PaymentsProvider == "stripe" && c.StripeKey == "" {
		out = append(out, "STRIPE_API_KEY is empty")
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
