package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting, read from the environment (and an optional .env file)
type Config struct {
	Port    string
	GinMode string

	DBDriver   string // sqlite | mysql
	DBDSN      string
	SQLitePath string

	JWTSecret  []byte
	JWTTTL     time.Duration
	BcryptCost int

	CORSOrigins []string

	ImageStore      string // local | s3
	UploadDir       string
	UploadURLPrefix string
	S3Bucket        string
	S3Prefix        string
	AWSRegion       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartTTL       time.Duration

	KafkaBrokers    []string
	KafkaOrderTopic string

	OrderStatusPolicy string

	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	LogFormat string

	AdminEmail    string
	AdminPassword string
	AdminNickname string
}

const defaultJWTSecret = "food_ordering_dev_secret"

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "3000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:      os.Getenv("DB_DSN"),
		SQLitePath: getEnv("SQLITE_PATH", "food_ordering.db"),

		JWTSecret:  []byte(getEnv("JWT_SECRET", defaultJWTSecret)),
		BcryptCost: 10,

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		ImageStore:      strings.ToLower(getEnv("IMAGE_STORE", "local")),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		UploadURLPrefix: getEnv("UPLOAD_URL_PREFIX", "/uploads"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Prefix:        getEnv("S3_PREFIX", "menu-images"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "orders"),

		OrderStatusPolicy: getEnv("ORDER_STATUS_POLICY", "permissive"),

		RateLimitBurst: 20,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminNickname: getEnv("ADMIN_NICKNAME", "Admin"),
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CartTTL, err = getDuration("CART_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "sqlite":
	case "mysql":
		if c.DBDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required when DB_DRIVER=mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	switch c.ImageStore {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when IMAGE_STORE=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported IMAGE_STORE %q", c.ImageStore))
	}
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.GinMode == "release" && string(c.JWTSecret) == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in release mode"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
