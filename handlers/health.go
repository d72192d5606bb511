package handlers

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "runtime"
    "time"
)

type Pinger interface {
    Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
    database  Pinger
    redis     Pinger
    startTime time.Time
}

func NewHealthHandler(database, redis Pinger) *HealthHandler {
    return &HealthHandler{
        database:  database,
        redis:     redis,
        startTime: time.Now(),
    }
}

type healthStatus struct {
    Status    string `json:"status"`
    Time      string `json:"time"`
    Database  string `json:"database"`
    Redis     string `json:"redis"`
    Uptime    string `json:"uptime"`
    GoVersion string `json:"go_version"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
    ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
    defer cancel()

    health := healthStatus{
        Status:    "ok",
        Time:      time.Now().UTC().Format(time.RFC3339),
        Database:  "connected",
        Redis:     "connected",
        Uptime:    fmt.Sprintf("%v", time.Since(h.startTime).Round(time.Second)),
        GoVersion: runtime.Version(),
    }

    dbCtx, dbCancel := context.WithTimeout(ctx, 500*time.Millisecond)
    defer dbCancel()
    if err := h.database.Ping(dbCtx); err != nil {
        health.Status = "degraded"
        health.Database = "error"
    }

    redisCtx, redisCancel := context.WithTimeout(ctx, 500*time.Millisecond)
    defer redisCancel()
    if err := h.redis.Ping(redisCtx); err != nil {
        health.Status = "degraded"
        health.Redis = "error"
    }

    status := http.StatusOK
    if health.Status != "ok" {
        status = http.StatusServiceUnavailable
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    json.NewEncoder(w).Encode(health)
}
