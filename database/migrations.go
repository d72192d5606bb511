package database

import (
    "context"
    "fmt"
    "log"
    "time"
)

var migrations = []string{
    `CREATE TABLE IF NOT EXISTS payments (
        id             CHAR(36)      NOT NULL PRIMARY KEY,
        amount         DECIMAL(12,2) NOT NULL,
        payment_method VARCHAR(32)   NOT NULL,
        cpf            VARCHAR(14)   NOT NULL,
        name           VARCHAR(255)  NOT NULL,
        recipient      VARCHAR(255)  NOT NULL,
        plan           VARCHAR(100)  NOT NULL,
        user_id        VARCHAR(100)  NOT NULL,
        installments   INT           NOT NULL DEFAULT 0,
        payer_address  JSON          NULL,
        zip_code       VARCHAR(9)    NULL,
        street_name    VARCHAR(255)  NULL,
        street_number  VARCHAR(20)   NULL,
        neighborhood   VARCHAR(100)  NULL,
        city           VARCHAR(100)  NULL,
        federal_unit   CHAR(2)       NULL,
        status         VARCHAR(16)   NOT NULL,
        external_id    VARCHAR(64)   NOT NULL,
        created_at     DATETIME(3)   NOT NULL,
        INDEX idx_payments_user (user_id),
        INDEX idx_payments_external (external_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
    `CREATE TABLE IF NOT EXISTS email_notifications (
        id          CHAR(36)     NOT NULL PRIMARY KEY,
        payment_id  CHAR(36)     NULL,
        user_id     VARCHAR(100) NULL,
        recipient   VARCHAR(255) NOT NULL,
        subject     VARCHAR(255) NOT NULL,
        content     TEXT         NOT NULL,
        status      VARCHAR(16)  NOT NULL,
        attempts    INT          NOT NULL DEFAULT 0,
        last_error  TEXT         NULL,
        created_at  DATETIME(3)  NOT NULL,
        sent_at     DATETIME(3)  NULL,
        INDEX idx_notifications_status (status)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables the service writes to when they are missing.
func (c *Connection) Migrate(ctx context.Context) error {
    for i, stmt := range migrations {
        stmtCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
        _, err := c.db.ExecContext(stmtCtx, stmt)
        cancel()
        if err != nil {
            return fmt.Errorf("migration %d failed: %w", i+1, err)
        }
    }
    log.Printf("Database schema is up to date (%d statements)", len(migrations))
    return nil
}
