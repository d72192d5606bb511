package middleware

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/go-redis/redis/v8"

    "plan-payment-api/models"
)

type RateLimitConfig struct {
    Requests int
    Window   time.Duration
    Message  string
}

// DefaultRateLimits maps request paths to their limit. Paths not listed use
// the "default" entry.
func DefaultRateLimits(paymentsPerMinute int) map[string]RateLimitConfig {
    return map[string]RateLimitConfig{
        "/api/payments": {
            Requests: paymentsPerMinute,
            Window:   time.Minute,
            Message:  "Too many payment attempts. Please wait a minute.",
        },
        "default": {
            Requests: 60,
            Window:   time.Minute,
            Message:  "Rate limit exceeded. Please slow down your requests.",
        },
    }
}

// Fixed window counter: INCR the window key, set its TTL on first hit.
var rateLimitScript = redis.NewScript(`
    local current = redis.call('INCR', KEYS[1])
    if current == 1 then
        redis.call('PEXPIRE', KEYS[1], ARGV[1])
    end
    return current
`)

type RateLimiter struct {
    client  *redis.Client
    configs map[string]RateLimitConfig
    now     func() time.Time
}

func NewRateLimiter(client *redis.Client, configs map[string]RateLimitConfig) *RateLimiter {
    return &RateLimiter{
        client:  client,
        configs: configs,
        now:     time.Now,
    }
}

func (rl *RateLimiter) RateLimitMiddleware() func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            config := rl.getConfigForEndpoint(r.URL.Path)
            if config.Requests <= 0 {
                next.ServeHTTP(w, r)
                return
            }

            ip := getClientIP(r)
            allowed, remaining, resetTime, err := rl.checkRateLimit(r.Context(), ip, r.URL.Path, config)
            if err != nil {
                // Fail open: Redis trouble must not block payments.
                log.Printf("Rate limit check error: %v", err)
                next.ServeHTTP(w, r)
                return
            }

            w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Requests))
            w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
            w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

            if !allowed {
                log.Printf("Rate limit exceeded for ip: %s, endpoint: %s", ip, r.URL.Path)

                retryAfter := int64(resetTime.Sub(rl.now()).Seconds())
                if retryAfter < 1 {
                    retryAfter = 1
                }
                w.Header().Set("Content-Type", "application/json")
                w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
                w.WriteHeader(http.StatusTooManyRequests)
                json.NewEncoder(w).Encode(models.APIResponse{
                    Status:  "error",
                    Message: config.Message,
                })
                return
            }

            next.ServeHTTP(w, r)
        })
    }
}

func (rl *RateLimiter) getConfigForEndpoint(path string) RateLimitConfig {
    if config, exists := rl.configs[path]; exists {
        return config
    }
    return rl.configs["default"]
}

func (rl *RateLimiter) checkRateLimit(ctx context.Context, ip, path string, config RateLimitConfig) (allowed bool, remaining int, resetTime time.Time, err error) {
    windowStart := rl.now().Truncate(config.Window)
    resetTime = windowStart.Add(config.Window)
    key := fmt.Sprintf("rate_limit:%s:%s:%d", path, ip, windowStart.Unix())

    count, err := rateLimitScript.Run(ctx, rl.client, []string{key}, config.Window.Milliseconds()).Int()
    if err != nil {
        return false, 0, time.Time{}, err
    }

    remaining = config.Requests - count
    if remaining < 0 {
        remaining = 0
    }
    return count <= config.Requests, remaining, resetTime, nil
}

// SecurityHeadersMiddleware adds the headers every API response carries.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("X-Content-Type-Options", "nosniff")
        w.Header().Set("X-Frame-Options", "DENY")
        w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
        w.Header().Set("Content-Security-Policy", "default-src 'none'")

        if strings.HasPrefix(r.URL.Path, "/api/") {
            w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
            w.Header().Set("Pragma", "no-cache")
            w.Header().Set("Expires", "0")
        }

        next.ServeHTTP(w, r)
    })
}

func getClientIP(r *http.Request) string {
    if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
        ips := strings.Split(ip, ",")
        return strings.TrimSpace(ips[0])
    }

    if ip := r.Header.Get("X-Real-IP"); ip != "" {
        return ip
    }

    if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
        return ip
    }

    ip := r.RemoteAddr
    if idx := strings.LastIndex(ip, ":"); idx != -1 {
        ip = ip[:idx]
    }
    return ip
}
