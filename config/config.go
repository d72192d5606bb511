package config

import (
    "fmt"
    "log"
    "os"
    "strconv"
    "strings"

    "github.com/joho/godotenv"

    "plan-payment-api/database"
    "plan-payment-api/services/email"
    "plan-payment-api/services/payment/mercadopago"
)

type Config struct {
    Database    database.DatabaseConfig
    MercadoPago MercadoPagoConfig
    SMTP        email.SMTPConfig
    Server      ServerConfig
    Redis       RedisConfig
    Auth        AuthConfig
    RateLimit   RateLimitConfig
}

type MercadoPagoConfig struct {
    AccessToken     string
    BaseURL         string
    IdempotencyKeys bool
}

type ServerConfig struct {
    Port string
}

type RedisConfig struct {
    URL               string
    QueueName         string
    WorkerConcurrency int
}

// AuthConfig enables bearer authentication on the payment endpoint when
// JWTSecret is set.
type AuthConfig struct {
    JWTSecret string
    Issuer    string
}

type RateLimitConfig struct {
    PaymentsPerMinute int
}

func Load() *Config {
    if err := godotenv.Load(); err != nil {
        log.Printf("Warning: Error loading .env file: %v", err)
    }

    cfg := &Config{
        Database: database.DatabaseConfig{
            Host:     os.Getenv("DB_HOST"),
            User:     os.Getenv("DB_USER"),
            Password: os.Getenv("DB_PASSWORD"),
            DBName:   os.Getenv("DB_NAME"),
        },
        MercadoPago: MercadoPagoConfig{
            AccessToken:     os.Getenv("MP_ACCESS_TOKEN"),
            BaseURL:         getEnv("MP_BASE_URL", mercadopago.DefaultBaseURL),
            IdempotencyKeys: getEnvBool("MP_IDEMPOTENCY_KEYS", false),
        },
        SMTP: email.SMTPConfig{
            Host:               os.Getenv("SMTP_HOST"),
            Port:               getEnv("SMTP_PORT", "587"),
            Username:           os.Getenv("SMTP_USER"),
            Password:           os.Getenv("SMTP_PASSWORD"),
            From:               getEnv("SMTP_FROM", "no-reply@localhost"),
            FromName:           getEnv("SMTP_FROM_NAME", "Pagamentos"),
            InsecureSkipVerify: getEnvBool("SMTP_INSECURE_SKIP_VERIFY", false),
        },
        Server: ServerConfig{
            Port: getEnv("SERVER_PORT", "8080"),
        },
        Redis: RedisConfig{
            URL:               getEnv("REDIS_URL", "redis://localhost:6379/0"),
            QueueName:         getEnv("REDIS_QUEUE", "notification_jobs"),
            WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 2),
        },
        Auth: AuthConfig{
            JWTSecret: os.Getenv("JWT_SECRET"),
            Issuer:    os.Getenv("JWT_ISSUER"),
        },
        RateLimit: RateLimitConfig{
            PaymentsPerMinute: getEnvInt("RATE_LIMIT_PAYMENTS_PER_MINUTE", 10),
        },
    }

    if cfg.MercadoPago.AccessToken == "" {
        log.Printf("Warning: MP_ACCESS_TOKEN not set, gateway calls will be rejected")
    }

    log.Printf("Config loaded: %s", cfg)
    return cfg
}

// String renders the configuration with every secret masked.
func (c *Config) String() string {
    return fmt.Sprintf(
        "db=%s@%s/%s mercadopago=%s idempotency=%v smtp=%s:%s redis_queue=%s workers=%d port=%s auth=%v rate=%d/min",
        c.Database.User, c.Database.Host, c.Database.DBName,
        c.MercadoPago.BaseURL, c.MercadoPago.IdempotencyKeys,
        c.SMTP.Host, c.SMTP.Port,
        c.Redis.QueueName, c.Redis.WorkerConcurrency,
        c.Server.Port, c.Auth.JWTSecret != "", c.RateLimit.PaymentsPerMinute,
    )
}

func getEnv(key, fallback string) string {
    if v := strings.TrimSpace(os.Getenv(key)); v != "" {
        return v
    }
    return fallback
}

func getEnvInt(key string, fallback int) int {
    v := strings.TrimSpace(os.Getenv(key))
    if v == "" {
        return fallback
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
        return fallback
    }
    return n
}

func getEnvBool(key string, fallback bool) bool {
    v := strings.TrimSpace(os.Getenv(key))
    if v == "" {
        return fallback
    }
    b, err := strconv.ParseBool(v)
    if err != nil {
        log.Printf("Warning: invalid %s=%q, using %v", key, v, fallback)
        return fallback
    }
    return b
}
