package main

import (
    "context"
    "fmt"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    _ "github.com/go-sql-driver/mysql"
    "github.com/gorilla/mux"

    "plan-payment-api/config"
    "plan-payment-api/database"
    "plan-payment-api/handlers"
    "plan-payment-api/middleware"
    "plan-payment-api/queue"
    "plan-payment-api/schema"
    "plan-payment-api/services/auth"
    "plan-payment-api/services/email"
    "plan-payment-api/services/payment"
    "plan-payment-api/services/payment/mercadopago"
    "plan-payment-api/worker"
)

func main() {
    log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds | log.LUTC)

    cfg := config.Load()

    var db *database.Connection
    var err error
    for retries := 0; retries < 5; retries++ {
        db, err = database.NewConnection(cfg.Database)
        if err == nil {
            break
        }
        retryDelay := time.Duration(retries+1) * time.Second
        log.Printf("Failed to connect to database (attempt %d/5): %v. Retrying in %v...",
            retries+1, err, retryDelay)
        time.Sleep(retryDelay)
    }
    if err != nil {
        log.Fatalf("Failed to connect to database after retries: %v", err)
    }

    migrateCtx, migrateCancel := context.WithTimeout(context.Background(), time.Minute)
    err = db.Migrate(migrateCtx)
    migrateCancel()
    if err != nil {
        log.Fatalf("Failed to migrate database: %v", err)
    }
    log.Println("Successfully connected to database")

    jobQueue, err := queue.NewQueue(cfg.Redis.URL, cfg.Redis.QueueName)
    if err != nil {
        log.Fatalf("Failed to connect to Redis: %v", err)
    }
    log.Println("Successfully connected to Redis")

    validator, err := schema.NewValidator()
    if err != nil {
        log.Fatalf("Failed to load payment schema: %v", err)
    }

    gateway := mercadopago.NewClient(cfg.MercadoPago.AccessToken, cfg.MercadoPago.BaseURL, cfg.MercadoPago.IdempotencyKeys)
    notifications := email.NewNotificationService(db, jobQueue, email.NewSMTPService(cfg.SMTP))
    paymentService := payment.NewService(validator, gateway, db, notifications)

    workerConcurrency := cfg.Redis.WorkerConcurrency
    if workerConcurrency < 1 {
        workerConcurrency = 1
    } else if workerConcurrency > 8 {
        workerConcurrency = 8
    }
    notificationWorker := worker.NewWorker(jobQueue, notifications)
    notificationWorker.Start(workerConcurrency)

    paymentHandler, err := handlers.NewPaymentHandler(paymentService)
    if err != nil {
        log.Fatalf("Failed to initialize payment handler: %v", err)
    }
    healthHandler := handlers.NewHealthHandler(
        db,
        handlers.PingFunc(func(ctx context.Context) error { return jobQueue.Client().Ping(ctx).Err() }),
    )
    rateLimiter := middleware.NewRateLimiter(jobQueue.Client(), middleware.DefaultRateLimits(cfg.RateLimit.PaymentsPerMinute))

    router := mux.NewRouter()
    router.Use(middleware.CORSMiddleware)
    router.Use(middleware.LoggingMiddleware)
    router.Use(middleware.SecurityHeadersMiddleware)

    api := router.PathPrefix("/api").Subrouter()
    api.HandleFunc("/health", healthHandler.Health).Methods("GET")

    payments := api.PathPrefix("/payments").Subrouter()
    payments.Use(rateLimiter.RateLimitMiddleware())
    if cfg.Auth.JWTSecret != "" {
        payments.Use(middleware.AuthMiddleware(auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)))
        log.Println("Bearer authentication enabled on /api/payments")
    }
    payments.HandleFunc("", paymentHandler.CreatePayment).Methods("POST", "OPTIONS")

    srv := &http.Server{
        Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
        Handler:        router,
        ReadTimeout:    15 * time.Second,
        WriteTimeout:   60 * time.Second,
        IdleTimeout:    120 * time.Second,
        MaxHeaderBytes: 1 << 20,
    }

    go func() {
        log.Printf("Server starting on port %s", cfg.Server.Port)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatalf("Server error: %v", err)
        }
    }()

    stop := make(chan os.Signal, 1)
    signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
    <-stop
    log.Println("Shutdown signal received, gracefully shutting down...")

    shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
    defer shutdownCancel()

    log.Println("Shutting down HTTP server...")
    if err := srv.Shutdown(shutdownCtx); err != nil {
        log.Printf("Server forced to shutdown: %v", err)
    }

    log.Println("Stopping notification worker...")
    notificationWorker.Stop()

    log.Println("Closing database connections...")
    db.Close()

    log.Println("Closing Redis connections...")
    jobQueue.Close()

    log.Println("Server exited properly")
}
