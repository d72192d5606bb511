package database

import (
    "context"
    "database/sql"
    "fmt"
    "log"
    "time"
)

type DatabaseConfig struct {
    Host     string
    User     string
    Password string
    DBName   string
}

// DSN builds the go-sql-driver/mysql data source name.
func (c DatabaseConfig) DSN() string {
    return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4",
        c.User, c.Password, c.Host, c.DBName)
}

type Connection struct {
    db *sql.DB
}

func NewConnection(config DatabaseConfig) (*Connection, error) {
    db, err := sql.Open("mysql", config.DSN())
    if err != nil {
        return nil, fmt.Errorf("failed to connect to database: %w", err)
    }

    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(25)
    db.SetConnMaxLifetime(5 * time.Minute)
    db.SetConnMaxIdleTime(5 * time.Minute)

    conn := &Connection{db: db}

    if err := conn.ensureConnection(); err != nil {
        db.Close()
        return nil, err
    }

    return conn, nil
}

func (c *Connection) ensureConnection() error {
    for retries := 0; retries < 3; retries++ {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        err := c.db.PingContext(ctx)
        cancel()

        if err == nil {
            return nil
        }

        log.Printf("Database ping failed (attempt %d/3): %v", retries+1, err)
        time.Sleep(time.Second * time.Duration(retries+1))
    }
    return fmt.Errorf("failed to establish database connection after 3 attempts")
}

func (c *Connection) Close() error {
    return c.db.Close()
}

func (c *Connection) Ping(ctx context.Context) error {
    return c.db.PingContext(ctx)
}

